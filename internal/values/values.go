// Package values provides value equality, comparison, and canonical
// formatting for the domain-typed values that flow between evidence,
// worlds, and distributions. Observed values arrive from YAML decoding,
// distribution tables, and term evaluation, so the same quantity may
// show up as int, int64, or float64; equality here normalizes numerics
// before comparing.
package values

import (
	"fmt"
	"reflect"
)

// Equal reports whether two domain values are equal. Numeric values are
// compared after conversion to float64; everything else falls back to
// reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := AsFloat(a)
	fb, bok := AsFloat(b)
	if aok && bok {
		return fa == fb
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two values. It returns (-1|0|1, true) for numeric pairs
// and string pairs, and (0, false) for anything else.
func Compare(a, b any) (int, bool) {
	fa, aok := AsFloat(a)
	fb, bok := AsFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat converts any numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Format renders a value in its canonical string form, used when values
// become map-key components (e.g. ground arguments of a basic variable).
// Integral floats print without a decimal point so that 3 and 3.0 share
// one canonical form.
func Format(v any) string {
	if f, ok := AsFloat(v); ok {
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%g", f)
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%v", v)
}
