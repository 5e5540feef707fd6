package heap

import "aistore/types"

// Value is the tagged union of scalar and variable-length values a tuple
// field can hold: Null, the fixed-width numeric/boolean kinds, or a
// length-prefixed VarChar/Blob.
type Value struct {
	Kind  types.ColumnKind
	Int   int64   // Int8/16/32/64, UInt8/16/32/64 (stored sign-extended then masked on encode)
	Float float64 // Float32/64
	Bool  bool
	Str   string // VarChar
	Bytes []byte // Blob
	null  bool
}

// NullValue returns the NULL value.
func NullValue() Value { return Value{null: true} }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.null }

func IntValue(kind types.ColumnKind, n int64) Value  { return Value{Kind: kind, Int: n} }
func UintValue(kind types.ColumnKind, n uint64) Value {
	return Value{Kind: kind, Int: int64(n)}
}
func FloatValue(kind types.ColumnKind, f float64) Value { return Value{Kind: kind, Float: f} }
func BoolValue(b bool) Value                            { return Value{Kind: types.KindBool, Bool: b} }
func VarcharValue(s string) Value                       { return Value{Kind: types.KindVarchar, Str: s} }
func BlobValue(b []byte) Value                          { return Value{Kind: types.KindBlob, Bytes: b} }
