// Package cast provides type conversion helpers for argument values held as any.
package cast

import (
	"math"
	"reflect"
)

// IsNumber reports whether v is one of the built-in int/uint/float types.
func IsNumber(v any) bool {
	_, ok := ToFloat64(v)
	return ok
}

// IsScalar reports whether v is a string or a number.
func IsScalar(v any) bool {
	if _, ok := v.(string); ok {
		return true
	}
	return IsNumber(v)
}

// ToFloat64 converts a numeric value to float64. Supports int/uint/float types.
func ToFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ToInt64 converts a numeric value to int64.
// Values outside the int64 range and floats with a fractional part are rejected.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		return floatToInt64(x)
	case float32:
		return floatToInt64(float64(x))
	default:
		return 0, false
	}
}

// ToUint64 converts a numeric value to uint64.
// Negative values and floats that are fractional or out of range are rejected.
func ToUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case uint:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case float64:
		return floatToUint64(x)
	case float32:
		return floatToUint64(float64(x))
	}
	n, ok := ToInt64(v)
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

// 2^63 and 2^64 are exact in float64; conversions outside [-2^63, 2^63) and [0, 2^64) are undefined.
const (
	twoPow63 = float64(1 << 63)
	twoPow64 = twoPow63 * 2
)

func floatToInt64(x float64) (int64, bool) {
	if math.IsNaN(x) || x != math.Trunc(x) || x < -twoPow63 || x >= twoPow63 {
		return 0, false
	}
	return int64(x), true
}

func floatToUint64(x float64) (uint64, bool) {
	if math.IsNaN(x) || x != math.Trunc(x) || x < 0 || x >= twoPow64 {
		return 0, false
	}
	return uint64(x), true
}

// ToString returns the value of a string or of any type whose underlying type is string.
func ToString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

var byteSliceType = reflect.TypeFor[[]byte]()

// ToSequence returns the elements of any slice or array as []any.
// Strings and []byte are not sequences.
func ToSequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().ConvertibleTo(byteSliceType) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
