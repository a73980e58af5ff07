package godatabend

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt64
	ValueUint64
	ValueFloat64
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueInt64:
		return "int64"
	case ValueUint64:
		return "uint64"
	case ValueFloat64:
		return "float64"
	case ValueString:
		return "string"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a decoded cell. Signed widths are carried as int64 and unsigned
// widths as uint64; width checks happened at decode time.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// Int64Value wraps a signed integer.
func Int64Value(i int64) Value { return Value{kind: ValueInt64, i: i} }

// Uint64Value wraps an unsigned integer.
func Uint64Value(u uint64) Value { return Value{kind: ValueUint64, u: u} }

// Float64Value wraps a float.
func Float64Value(f float64) Value { return Value{kind: ValueFloat64, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: ValueString, s: s} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// Bool returns the bool and whether the value holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == ValueBool }

// Int64 returns the signed integer and whether the value holds one.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == ValueInt64 }

// Uint64 returns the unsigned integer and whether the value holds one.
func (v Value) Uint64() (uint64, bool) { return v.u, v.kind == ValueUint64 }

// Float64 returns the float and whether the value holds one.
func (v Value) Float64() (float64, bool) { return v.f, v.kind == ValueFloat64 }

// Text returns the string and whether the value holds one.
func (v Value) Text() (string, bool) { return v.s, v.kind == ValueString }

// Any returns the native Go value, or nil for null.
func (v Value) Any() any {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt64:
		return v.i
	case ValueUint64:
		return v.u
	case ValueFloat64:
		return v.f
	case ValueString:
		return v.s
	}
	return nil
}

// String renders the value the way the server would have sent it; null renders as "NULL".
func (v Value) String() string {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueInt64:
		return strconv.FormatInt(v.i, 10)
	case ValueUint64:
		return strconv.FormatUint(v.u, 10)
	case ValueFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueString:
		return v.s
	}
	return "NULL"
}
