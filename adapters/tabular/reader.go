package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"epidash/adapters/datareadiness/coercer"
	"epidash/domain/cases"
	"epidash/domain/core"
	"epidash/internal"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// measureColumns are coerced to numbers and get a numeric health check at load
var measureColumns = []string{
	cases.ColumnTotalCases,
	cases.ColumnCasesPer100k,
	cases.ColumnTotalPopulation,
	cases.ColumnRecoveryRate,
}

// requiredColumns are the ones every projection depends on
var requiredColumns = []string{
	cases.ColumnRegion,
	cases.ColumnCountry,
	cases.ColumnYear,
	cases.ColumnTotalCases,
}

// Reader loads case records from a CSV, XLSX or JSON resource on disk or
// behind an http(s) URL
type Reader struct {
	config     Config
	httpClient *http.Client
	coercer    *coercer.MeasureCoercer
	logger     *internal.Logger
}

// NewReader creates a reader for the configured source
func NewReader(config Config, logger *internal.Logger) *Reader {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		coercer:    coercer.NewMeasureCoercer(config.Coercion),
		logger:     logger.With("DataReader"),
	}
}

// Describe names the source for logs
func (r *Reader) Describe() string {
	return r.config.Source
}

// Load fetches and parses the source into records in input order
func (r *Reader) Load(ctx context.Context) ([]cases.Record, error) {
	startTime := time.Now()

	data, contentType, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	format := r.config.Format
	if format == "" {
		format = detectFormat(r.config.Source, contentType)
	}
	r.logger.Debug("Read %d bytes from %s as %s", len(data), r.config.Source, format)

	table, err := r.ReadTable(data, format)
	if err != nil {
		return nil, core.NewMalformedSourceError(r.config.Source, err)
	}

	for _, col := range requiredColumns {
		if !table.HasColumn(col) {
			r.logger.Warn("Column %q missing from %s; its values render as not available", col, r.config.Source)
		}
	}
	if table.Skipped > 0 {
		r.logger.Warn("Skipped %d unparseable rows in %s", table.Skipped, r.config.Source)
	}
	r.analyzeColumns(table)

	records := r.ToRecords(table)
	r.logger.Info("Loaded %d records from %s in %.2fms", len(records), r.config.Source,
		float64(time.Since(startTime).Nanoseconds())/1e6)
	return records, nil
}

// fetch returns the raw bytes of the source and, for URLs, the content type
func (r *Reader) fetch(ctx context.Context) ([]byte, string, error) {
	source := strings.TrimSpace(r.config.Source)
	if source == "" {
		return nil, "", fmt.Errorf("%w: empty source", core.ErrSourceUnreachable)
	}

	if isURL(source) {
		return r.fetchURL(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", core.ErrSourceUnreachable, source, err)
	}
	return data, "", nil
}

func (r *Reader) fetchURL(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", core.ErrSourceUnreachable, url, err)
	}
	req.Header.Set("Accept", "text/csv, application/json, */*")

	reqStart := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", core.ErrSourceUnreachable, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", core.ErrSourceUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned status %d", core.ErrSourceUnreachable, url, resp.StatusCode)
	}

	r.logger.Debug("Fetched %s in %.2fms (status %d)", url,
		float64(time.Since(reqStart).Nanoseconds())/1e6, resp.StatusCode)
	return body, resp.Header.Get("Content-Type"), nil
}

// ReadTable parses raw bytes in the given format
func (r *Reader) ReadTable(data []byte, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return readCSV(data)
	case FormatXLSX:
		return readXLSX(data, r.config.Sheet)
	case FormatJSON:
		return readJSON(data, r.config.DataPath)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

func readCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: normalizeHeaders(header)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		table.Rows = append(table.Rows, toRawRow(table.Headers, row))
	}
	return table, nil
}

func readXLSX(data []byte, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}

	table := &Table{Headers: normalizeHeaders(rows[0])}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, toRawRow(table.Headers, row))
	}
	return table, nil
}

func readJSON(data []byte, dataPath string) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	result := gjson.ParseBytes(data)
	if dataPath != "" {
		result = result.Get(dataPath)
		if !result.Exists() {
			return nil, fmt.Errorf("data path '%s' not found", dataPath)
		}
	}
	if !result.IsArray() {
		return nil, errors.New("expected an array of row objects")
	}

	table := &Table{}
	seen := make(map[string]bool)
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			table.Skipped++
			return true
		}
		row := make(RawRow)
		item.ForEach(func(key, value gjson.Result) bool {
			name := normalizeHeader(key.String())
			if !seen[name] {
				seen[name] = true
				table.Headers = append(table.Headers, name)
			}
			if value.Type != gjson.Null {
				row[name] = strings.TrimSpace(value.String())
			}
			return true
		})
		table.Rows = append(table.Rows, row)
		return true
	})
	return table, nil
}

// ToRecords converts parsed rows into case records. Numeric cells that do not
// parse become invalid measures; nothing is rejected.
func (r *Reader) ToRecords(table *Table) []cases.Record {
	records := make([]cases.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, cases.Record{
			Region:          row[cases.ColumnRegion],
			Country:         row[cases.ColumnCountry],
			Year:            cases.ParseYear(row[cases.ColumnYear]),
			TotalCases:      r.coercer.Coerce(row[cases.ColumnTotalCases]),
			CasesPer100k:    r.coercer.Coerce(row[cases.ColumnCasesPer100k]),
			TotalPopulation: r.coercer.Coerce(row[cases.ColumnTotalPopulation]),
			RecoveryRate:    r.coercer.Coerce(row[cases.ColumnRecoveryRate]),
			EconomicImpact:  row[cases.ColumnEconomicImpact],
			CaseSeverity:    row[cases.ColumnCaseSeverity],
		})
	}
	return records
}

func (r *Reader) analyzeColumns(table *Table) {
	for _, col := range measureColumns {
		if !table.HasColumn(col) {
			continue
		}
		analysis := r.coercer.AnalyzeColumn(table.Column(col))
		r.logger.Debug("Column %s: %d values, %d empty, %.0f%% numeric",
			col, analysis.TotalCount, analysis.EmptyCount, analysis.NumericRatio*100)
		if analysis.TotalCount > analysis.EmptyCount && analysis.NumericRatio < 0.5 {
			r.logger.Warn("Column %s is mostly non-numeric (%.0f%%); those cells count as 0 in totals",
				col, analysis.NumericRatio*100)
		}
	}
}

// normalizeHeader maps "Cases per 100k" and "cases-per-100k" to "cases_per_100k"
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '.' {
			return '_'
		}
		return r
	}, h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}

func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = normalizeHeader(h)
	}
	return headers
}

// toRawRow pairs cells with headers. Short rows leave trailing columns empty;
// extra cells are dropped.
func toRawRow(headers []string, cells []string) RawRow {
	row := make(RawRow, len(headers))
	for j, header := range headers {
		if j < len(cells) {
			row[header] = strings.TrimSpace(cells[j])
		} else {
			row[header] = ""
		}
	}
	return row
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// detectFormat prefers the content type of a response, then the extension.
// Unknown sources default to CSV.
func detectFormat(source, contentType string) Format {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			switch {
			case strings.Contains(mediaType, "json"):
				return FormatJSON
			case strings.Contains(mediaType, "spreadsheetml"):
				return FormatXLSX
			case mediaType == "text/csv":
				return FormatCSV
			}
		}
	}

	ext := filepath.Ext(source)
	if isURL(source) {
		trimmed := source
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		ext = path.Ext(trimmed)
	}
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}
