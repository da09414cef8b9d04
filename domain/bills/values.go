package bills

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// cell returns the trimmed text of a row's value for role, or "" when the
// role did not resolve, the row lacks the column or the value is empty.
func cell(row Row, cols Columns, role Role) string {
	label, ok := cols[role]
	if !ok {
		return ""
	}
	v, ok := row[label]
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// number reads a numeric cell. ok is false for missing, blank, non-numeric or
// non-finite values.
func number(row Row, cols Columns, role Role) (float64, bool) {
	label, ok := cols[role]
	if !ok {
		return 0, false
	}
	v, ok := row[label]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
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
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringify renders a cell the way the sheet shows it: whole floats without a
// trailing ".0", NaN as empty.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// round2 rounds the exact binary value to two decimals, ties to even, so
// 1.125 becomes 1.12 and 0.375 becomes 0.38.
func round2(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil {
		return f
	}
	return r
}

// capHours reduces a duration modulo MaxEntryHours into [0, MaxEntryHours).
func capHours(h float64) float64 {
	m := math.Mod(h, MaxEntryHours)
	if m < 0 {
		m += MaxEntryHours
	}
	// 11.999 would print as 12.00
	if round2(m) >= MaxEntryHours {
		return 0
	}
	return m
}
