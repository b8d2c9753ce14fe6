package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"epidash/domain/cases"
)

// thousandsPattern matches "1,234" and "1,234,567.89" but not "1,5"
var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// MeasureCoercer turns raw cell text into numeric measures with fixed rules
type MeasureCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines which textual number forms are accepted
type CoercionConfig struct {
	AllowThousands     bool `json:"allow_thousands"`      // "1,234" -> 1234
	AllowPercentSuffix bool `json:"allow_percent_suffix"` // "85%" -> 85
	AllowParenNegative bool `json:"allow_paren_negative"` // "(12)" -> -12
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		AllowThousands:     true,
		AllowPercentSuffix: true,
		AllowParenNegative: false,
	}
}

// NewMeasureCoercer creates a coercer with the given config
func NewMeasureCoercer(config CoercionConfig) *MeasureCoercer {
	return &MeasureCoercer{config: config}
}

// Coerce converts a raw cell into a Measure. Cells that do not parse produce
// an invalid measure carrying the raw text; coercion never fails.
func (c *MeasureCoercer) Coerce(raw string) cases.Measure {
	if v, ok := c.tryParseNumeric(raw); ok {
		return cases.Measure{Raw: raw, Value: v, Valid: true}
	}
	return cases.MissingMeasure(raw)
}

// tryParseNumeric parses with strict rules: no currency symbols, no locale
// decimal commas, no NaN/Inf
func (c *MeasureCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if c.config.AllowParenNegative && strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSpace(cleanVal[1 : len(cleanVal)-1])
		isNegative = true
	}

	if c.config.AllowPercentSuffix && strings.HasSuffix(cleanVal, "%") {
		cleanVal = strings.TrimSpace(strings.TrimSuffix(cleanVal, "%"))
	}

	if c.config.AllowThousands && thousandsPattern.MatchString(cleanVal) {
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	if isNegative {
		val = -val
	}
	return val, true
}

// AnalyzeColumn reports how much of a column parses as numeric. The reader
// logs this per measure column so bad exports are visible at load time.
func (c *MeasureCoercer) AnalyzeColumn(values []string) ColumnAnalysis {
	analysis := ColumnAnalysis{TotalCount: len(values)}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			analysis.EmptyCount++
			continue
		}
		if _, ok := c.tryParseNumeric(v); ok {
			analysis.NumericCount++
		}
	}
	nonEmpty := analysis.TotalCount - analysis.EmptyCount
	if nonEmpty > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(nonEmpty)
	}
	return analysis
}

// ColumnAnalysis contains the results of a numeric column scan
type ColumnAnalysis struct {
	TotalCount   int     `json:"total_count"`
	EmptyCount   int     `json:"empty_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"`
}
