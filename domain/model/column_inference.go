package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InferenceStrategy selects how column types are inferred.
type InferenceStrategy int

const (
	// InferFromSample fixes every column type from the first valid data row.
	InferFromSample InferenceStrategy = iota
	// InferFromAllRows classifies every valid row and widens the result.
	InferFromAllRows
)

// String returns the flag value of the strategy.
func (s InferenceStrategy) String() string {
	switch s {
	case InferFromAllRows:
		return "all"
	default:
		return "sample"
	}
}

// ParseInferenceStrategy parses "sample" or "all".
func ParseInferenceStrategy(s string) (InferenceStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sample":
		return InferFromSample, nil
	case "all":
		return InferFromAllRows, nil
	default:
		return InferFromSample, fmt.Errorf("%w: inference %q (want sample or all)", ErrInvalidOption, s)
	}
}

// datePattern is a compiled regular expression with the layouts that must
// also parse for a value to count as a date.
type datePattern struct {
	pattern *regexp.Regexp
	formats []string
}

var (
	isoDatePattern = datePattern{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		formats: []string{"2006-01-02"},
	}
	usDatePattern = datePattern{
		pattern: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		formats: []string{"01/02/2006", "1/2/2006"},
	}
)

func (dp datePattern) match(value string) bool {
	if !dp.pattern.MatchString(value) {
		return false
	}
	for _, format := range dp.formats {
		if _, err := time.Parse(format, value); err == nil {
			return true
		}
	}
	return false
}

// ClassifyValue returns the type of a single trimmed value. Rules are tried
// in order and the first match wins: ISO date, US date (when usDates is
// set), integer, float, text.
func ClassifyValue(value string, usDates bool) ColumnType {
	value = strings.TrimSpace(value)
	if value == "" {
		return ColumnTypeText
	}
	if isoDatePattern.match(value) {
		return ColumnTypeDate
	}
	if usDates && usDatePattern.match(value) {
		return ColumnTypeDate
	}
	if isInteger(value) {
		return ColumnTypeInteger
	}
	if isFloat(value) {
		return ColumnTypeFloat
	}
	return ColumnTypeText
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	floatPattern   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// isInteger reports whether value is a base-10 integer with an optional
// sign. Integers wider than 64 bits still count.
func isInteger(value string) bool {
	return integerPattern.MatchString(value)
}

// isFloat accepts decimal notation only; hex floats, Inf and NaN are text.
func isFloat(value string) bool {
	if !floatPattern.MatchString(value) {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// InferFromSampleRow infers one type per field of the sample row.
func InferFromSampleRow(sample Record, usDates bool) []ColumnType {
	types := make([]ColumnType, len(sample))
	for i, v := range sample {
		types[i] = ClassifyValue(v, usDates)
	}
	return types
}

// InferFromRecords infers column types over every record.
//
// Empty and NULL values are ignored. A column is DATE only if every value is
// a date; integers mixed with floats widen to FLOAT; any other mix, or no
// value at all, is TEXT. Records with a field count other than columnCount
// are ignored.
func InferFromRecords(records []Record, columnCount int, usDates bool) []ColumnType {
	types := make([]ColumnType, columnCount)
	for col := range columnCount {
		var seen, hasDate, hasInteger, hasFloat bool
		text := false

		for _, rec := range records {
			if len(rec) != columnCount {
				continue
			}
			v := strings.TrimSpace(rec[col])
			if isNullValue(v) {
				continue
			}
			seen = true

			switch ClassifyValue(v, usDates) {
			case ColumnTypeDate:
				hasDate = true
			case ColumnTypeInteger:
				hasInteger = true
			case ColumnTypeFloat:
				hasFloat = true
			default:
				text = true
			}
			if text {
				break
			}
		}

		types[col] = widen(seen, text, hasDate, hasInteger, hasFloat)
	}
	return types
}

func widen(seen, text, hasDate, hasInteger, hasFloat bool) ColumnType {
	switch {
	case !seen || text:
		return ColumnTypeText
	case hasDate && (hasInteger || hasFloat):
		return ColumnTypeText
	case hasDate:
		return ColumnTypeDate
	case hasFloat:
		return ColumnTypeFloat
	case hasInteger:
		return ColumnTypeInteger
	default:
		return ColumnTypeText
	}
}
