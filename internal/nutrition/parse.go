// Package nutrition converts the raw nutrition strings published on menu pages
// ("25.9g", "340mg", "—") into numeric values.
package nutrition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedValue is returned when a nutrition string is neither a sentinel
// nor a number followed by its unit.
var ErrMalformedValue = errors.New("malformed nutrition value")

// MalformedValueError carries the offending input.
type MalformedValueError struct {
	Raw  string
	Unit string
}

func (e *MalformedValueError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("malformed nutrition value %q", e.Raw)
	}
	return fmt.Sprintf("malformed nutrition value %q (unit %q)", e.Raw, e.Unit)
}

func (e *MalformedValueError) Unwrap() error { return ErrMalformedValue }

// Common units as they appear on the source pages.
const (
	Grams      = "g"
	Milligrams = "mg"
	NoUnit     = ""
)

// sentinels mark an unreported value. Compared after trimming and lowercasing.
var sentinels = map[string]struct{}{
	"":    {},
	"—":   {},
	"–":   {},
	"-":   {},
	"--":  {},
	"n/a": {},
	"na":  {},
}

// Parse returns the numeric value of raw after stripping unit. A nil pointer
// means the source reported no value, which is distinct from zero.
func Parse(raw, unit string) (*float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := sentinels[s]; ok {
		return nil, nil
	}

	if u := strings.ToLower(unit); u != "" && strings.HasSuffix(s, u) {
		s = strings.TrimSpace(strings.TrimSuffix(s, u))
	}

	if !isPlainDecimal(s) {
		return nil, &MalformedValueError{Raw: raw, Unit: unit}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &MalformedValueError{Raw: raw, Unit: unit}
	}
	return &v, nil
}

// isPlainDecimal reports whether s is digits with at most one decimal point.
// Signs, exponents, hex and the nan/inf spellings are rejected.
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// ParseLenient behaves like Parse but reports malformed input through warn and
// returns nil instead of failing.
func ParseLenient(raw, unit string, warn func(error)) *float64 {
	v, err := Parse(raw, unit)
	if err != nil {
		if warn != nil {
			warn(err)
		}
		return nil
	}
	return v
}

// MaxCalories bounds a calorie count to what the INTEGER column holds.
const MaxCalories = math.MaxInt32

// ParseCalories parses a calorie count, which is stored as a whole number.
func ParseCalories(raw string) (*int, error) {
	v, err := Parse(raw, "cal")
	if err != nil || v == nil {
		return nil, err
	}
	if math.Floor(*v+0.5) > MaxCalories {
		return nil, &MalformedValueError{Raw: raw, Unit: "cal"}
	}
	n := int(*v + 0.5)
	return &n, nil
}
