package tabular

// Format identifies how a source is encoded
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// RawRow is one data row keyed by normalized column name
type RawRow map[string]string

// Table is a parsed source before numeric coercion
type Table struct {
	Headers []string // normalized column names
	Rows    []RawRow
	Skipped int // rows dropped because they could not be parsed
}

// Column returns every value of a column in row order
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// HasColumn reports whether the source carried the column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
