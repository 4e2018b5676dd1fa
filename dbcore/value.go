package dbcore

import "fmt"

// ValueKind tags the active variant of a TypedValue (§3, §9 design notes:
// "a tagged union ... avoid generic any containers").
type ValueKind byte

const (
	ValueNull ValueKind = iota
	ValueInteger
	ValueFloat
	ValueString
	ValueBinary
)

// TypedValue is the decoded, typed content of one field (§3).
type TypedValue struct {
	Kind    ValueKind
	Integer int64
	Float   float64
	String  string
	Binary  []byte
}

func nullValue() TypedValue {
	return TypedValue{Kind: ValueNull}
}

func integerValue(v int64) TypedValue {
	return TypedValue{Kind: ValueInteger, Integer: v}
}

func floatValue(v float64) TypedValue {
	return TypedValue{Kind: ValueFloat, Float: v}
}

func stringValue(v string) TypedValue {
	return TypedValue{Kind: ValueString, String: v}
}

func binaryValue(v []byte) TypedValue {
	return TypedValue{Kind: ValueBinary, Binary: v}
}

// Render stringifies the value for filter comparison (§4.7 "stringify the
// typed value"): integers and floats in canonical decimal, strings as-is,
// binary as a %x hex string, and null never matches a non-empty filter.
func (v TypedValue) Render() (text string, matchable bool) {
	switch v.Kind {
	case ValueInteger:
		return fmt.Sprintf("%d", v.Integer), true
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float), true
	case ValueString:
		return v.String, true
	case ValueBinary:
		return fmt.Sprintf("%x", v.Binary), true
	default:
		return "", false
	}
}
