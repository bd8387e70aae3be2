package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"opsdash/domain/dataset"
)

var (
	booleanPattern = regexp.MustCompile(`(?i)^(true|false|yes|no|0|1)$`)

	// datePatterns are matched in order; layouts line up with the patterns.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
		regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`),
	}
	dateLayouts = []string{"2006-01-02", "01/02/2006", "01-02-2006"}
)

// TypeCoercer classifies raw column values and converts individual cells
type TypeCoercer struct{}

// NewTypeCoercer creates a coercer
func NewTypeCoercer() *TypeCoercer {
	return &TypeCoercer{}
}

// InferType classifies a column from its raw values. Missing values are
// ignored; an all-missing column is a string column. Boolean wins over number
// so 0/1 flags stay booleans, and a single date-shaped value marks a date.
func (c *TypeCoercer) InferType(values []interface{}) dataset.ColumnType {
	present := NonMissing(values)
	if len(present) == 0 {
		return dataset.TypeString
	}

	if allMatch(present, func(v interface{}) bool { return booleanPattern.MatchString(FormatValue(v)) }) {
		return dataset.TypeBoolean
	}

	if allMatch(present, func(v interface{}) bool { _, ok := ToNumber(v); return ok }) {
		return dataset.TypeNumber
	}

	for _, v := range present {
		if IsDateLike(v) {
			return dataset.TypeDate
		}
	}

	return dataset.TypeString
}

// CoerceCell converts a raw text cell the way the importers do: a non-empty
// value that parses as a finite number becomes a float64, anything else is
// kept as the original string.
func (c *TypeCoercer) CoerceCell(raw string) interface{} {
	if raw == "" {
		return raw
	}
	if n, ok := ToNumber(raw); ok {
		return n
	}
	return raw
}

// IsMissing reports whether v counts as an absent cell
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// NonMissing returns the present values in order
func NonMissing(values []interface{}) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// ToNumber converts v to a finite float64. Strings are trimmed and a blank
// string is zero; booleans are 1 and 0.
func ToNumber(v interface{}) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		if !numericText(s) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatValue renders v as display text
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	if n, ok := ToNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// IsDateLike reports whether v matches one of the accepted date shapes
func IsDateLike(v interface{}) bool {
	s := FormatValue(v)
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// ParseDate parses a value in one of the accepted date shapes, falling back
// to RFC 3339 timestamps.
func ParseDate(v interface{}) (time.Time, bool) {
	s := strings.TrimSpace(FormatValue(v))
	for i, p := range datePatterns {
		if p.MatchString(s) {
			t, err := time.Parse(dateLayouts[i], s)
			return t, err == nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func allMatch(values []interface{}, pred func(interface{}) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// numericText rejects spellings ParseFloat accepts but plain numeric text does not
// (inf, nan, underscores).
func numericText(s string) bool {
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") {
		return false
	}
	return !strings.Contains(s, "_")
}
