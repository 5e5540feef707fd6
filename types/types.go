// Package types holds the constants, identifiers and column type domain
// shared across every storage layer: page ids, page geometry, and the
// column type enum tuples are serialized against.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PageId is a 64-bit page identifier: the top 32 bits select a file group,
// the bottom 32 bits select the page index within that group's file.
type PageId uint64

// InvalidPageID is the sentinel for "no page".
const InvalidPageID PageId = ^PageId(0)

// NewPageID packs a file group and an in-group page index into a PageId.
func NewPageID(fileGroup, pageIndex uint32) PageId {
	return PageId(uint64(fileGroup)<<32 | uint64(pageIndex))
}

// FileGroup returns the top 32 bits of the page id.
func (p PageId) FileGroup() uint32 {
	return uint32(uint64(p) >> 32)
}

// PageIndex returns the bottom 32 bits of the page id.
func (p PageId) PageIndex() uint32 {
	return uint32(uint64(p) & 0xFFFFFFFF)
}

func (p PageId) String() string {
	return fmt.Sprintf("%d", uint64(p))
}

// PAGE_SIZE is fixed across the whole storage stack.
const PageSize = 8192

// Extent geometry.
const (
	ExtentSize         = 1 << 20 // 1 MiB
	ExtentPageCount     = 128
	ExtentUsablePages   = ExtentPageCount - 1 // first page is the extent header
)

// SegmentID identifies an entry in a segment directory.
type SegmentID = uint64

// TablespaceID identifies a registered tablespace.
type TablespaceID = uint64

// ColumnType is the domain of column data types a table's schema can
// declare. Variable-length kinds (Varchar, Blob) carry a declared maximum
// length used both for validation and for computing storage size.
type ColumnType struct {
	Kind   ColumnKind
	MaxLen uint32 // only meaningful for Varchar/Blob
}

// ColumnKind enumerates the scalar and variable-length type tags.
type ColumnKind uint8

const (
	KindInvalid ColumnKind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindBool
	KindVarchar
	KindBlob
)

// Int8Type, Int16Type, ... are the fixed-width scalar column types.
var (
	Int8Type    = ColumnType{Kind: KindInt8}
	Int16Type   = ColumnType{Kind: KindInt16}
	Int32Type   = ColumnType{Kind: KindInt32}
	Int64Type   = ColumnType{Kind: KindInt64}
	UInt8Type   = ColumnType{Kind: KindUInt8}
	UInt16Type  = ColumnType{Kind: KindUInt16}
	UInt32Type  = ColumnType{Kind: KindUInt32}
	UInt64Type  = ColumnType{Kind: KindUInt64}
	Float32Type = ColumnType{Kind: KindFloat32}
	Float64Type = ColumnType{Kind: KindFloat64}
	BoolType    = ColumnType{Kind: KindBool}
)

// VarcharType builds a VARCHAR(n) column type.
func VarcharType(maxLen uint32) ColumnType { return ColumnType{Kind: KindVarchar, MaxLen: maxLen} }

// BlobType builds a BLOB(n) column type.
func BlobType(maxLen uint32) ColumnType { return ColumnType{Kind: KindBlob, MaxLen: maxLen} }

// Size returns the number of bytes this column type occupies in a
// serialized tuple's non-null field area. Varchar/Blob are length-prefixed:
// 4 bytes of length followed by up to MaxLen bytes of payload.
func (t ColumnType) Size() int {
	switch t.Kind {
	case KindInt8, KindUInt8, KindBool:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32, KindFloat32:
		return 4
	case KindInt64, KindUInt64, KindFloat64:
		return 8
	case KindVarchar, KindBlob:
		return 4 + int(t.MaxLen)
	default:
		return 0
	}
}

// IsVariableLength reports whether the type's on-disk size depends on
// actual content length rather than being purely fixed-width.
func (t ColumnType) IsVariableLength() bool {
	return t.Kind == KindVarchar || t.Kind == KindBlob
}

// IsNumeric reports whether the type is one of the integer or floating
// point scalar kinds.
func (t ColumnType) IsNumeric() bool {
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64,
		KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

func (t ColumnType) String() string {
	switch t.Kind {
	case KindInt8:
		return "INT8"
	case KindInt16:
		return "INT16"
	case KindInt32:
		return "INT32"
	case KindInt64:
		return "INT64"
	case KindUInt8:
		return "UINT8"
	case KindUInt16:
		return "UINT16"
	case KindUInt32:
		return "UINT32"
	case KindUInt64:
		return "UINT64"
	case KindFloat32:
		return "FLOAT32"
	case KindFloat64:
		return "FLOAT64"
	case KindBool:
		return "BOOL"
	case KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.MaxLen)
	case KindBlob:
		return fmt.Sprintf("BLOB(%d)", t.MaxLen)
	default:
		return "INVALID"
	}
}

// ParseColumnType parses the catalog's on-disk type encoding, e.g. "Int64"
// or "Varchar(255)".
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "Int8":
		return Int8Type, nil
	case "Int16":
		return Int16Type, nil
	case "Int32":
		return Int32Type, nil
	case "Int64":
		return Int64Type, nil
	case "UInt8":
		return UInt8Type, nil
	case "UInt16":
		return UInt16Type, nil
	case "UInt32":
		return UInt32Type, nil
	case "UInt64":
		return UInt64Type, nil
	case "Float32":
		return Float32Type, nil
	case "Float64":
		return Float64Type, nil
	case "Bool":
		return BoolType, nil
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		if n, err := strconv.ParseUint(s[open+1:len(s)-1], 10, 32); err == nil {
			switch s[:open] {
			case "Varchar":
				return VarcharType(uint32(n)), nil
			case "Blob":
				return BlobType(uint32(n)), nil
			}
		}
	}
	return ColumnType{}, fmt.Errorf("unknown column type: %q", s)
}

// Column is a single column's schema metadata: name, type, nullability
// and its dense ordinal (physical position, 0-indexed).
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Ordinal  uint32
}

// NewColumn builds a Column.
func NewColumn(name string, typ ColumnType, nullable bool, ordinal uint32) Column {
	return Column{Name: name, Type: typ, Nullable: nullable, Ordinal: ordinal}
}

// TypeName returns the on-disk identifier for scalar types (matching the
// catalog's text encoding), e.g. "Int64", "Varchar".
func (t ColumnType) TypeName() string {
	switch t.Kind {
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBool:
		return "Bool"
	case KindVarchar:
		return fmt.Sprintf("Varchar(%d)", t.MaxLen)
	case KindBlob:
		return fmt.Sprintf("Blob(%d)", t.MaxLen)
	default:
		return "Invalid"
	}
}
