package parse

import (
	"math"
	"strconv"
	"strings"
)

// A single CSV record, keyed by column name. Missing columns read as
// empty strings.
type Row map[string]string

func (r Row) String(column string) string {
	return r[column]
}

// Returns the column as a float, or def if absent or non-numeric.
func (r Row) Float(column string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[column]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Returns the column as an int, or def if absent or non-numeric.
// Decimal values such as "3.0" are truncated.
func (r Row) Int(column string, def int) int {
	v, ok := r.OptionalInt(column)
	if !ok {
		return def
	}
	return v
}

// Like Int, but reports whether the value was present and valid.
func (r Row) OptionalInt(column string) (int, bool) {
	s := strings.TrimSpace(r[column])
	v, err := strconv.Atoi(s)
	if err == nil {
		return v, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
