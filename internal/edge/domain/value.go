package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Placeholder is rendered for any counter that is unknown.
const Placeholder = "-"

// Value is one field of a stats record. The zero Value is absent.
type Value struct {
	raw     any
	present bool
}

// Absent returns a Value with nothing in it.
func Absent() Value { return Value{} }

// ValueOf wraps v. A nil v is absent, matching a JSON null.
func ValueOf(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{raw: v, present: true}
}

// Present reports whether the field carried a non-null value.
func (v Value) Present() bool { return v.present }

// Raw returns the underlying decoded value, or nil when absent.
func (v Value) Raw() any { return v.raw }

// Number returns the value as a finite float64. Strings, booleans,
// containers and non-finite floats are not numbers.
func (v Value) Number() (float64, bool) {
	if !v.present {
		return 0, false
	}
	var f float64
	switch n := v.raw.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String renders a present value as text without any decoration.
// Integral numbers lose their fraction; absent renders as Placeholder.
func (v Value) String() string {
	if !v.present {
		return Placeholder
	}
	if n, ok := v.raw.(json.Number); ok {
		if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return string(n)
		}
	}
	if f, ok := v.Number(); ok {
		return formatPlain(f)
	}
	switch r := v.raw.(type) {
	case string:
		return r
	case bool:
		return strconv.FormatBool(r)
	case float64, float32:
		// non-finite
		return fmt.Sprint(r)
	}
	b, err := json.Marshal(v.raw)
	if err != nil {
		return fmt.Sprint(v.raw)
	}
	return string(b)
}

func formatPlain(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
