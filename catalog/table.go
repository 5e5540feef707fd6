package catalog

import "aistore/types"

// TableType tags why a table exists: ordinary user data, internal system
// bookkeeping, or a session-scoped temporary table.
type TableType uint8

const (
	TableTypeUser TableType = iota
	TableTypeSystem
	TableTypeTemporary
)

func (t TableType) String() string {
	switch t {
	case TableTypeUser:
		return "User"
	case TableTypeSystem:
		return "System"
	case TableTypeTemporary:
		return "Temporary"
	default:
		return "User"
	}
}

// Table is one catalog entry: identity, the segment backing its heap
// pages, and its column schema.
type Table struct {
	TableID   uint64
	Name      string
	SegmentID uint64
	Type      TableType
	Columns   []types.Column
	RowCount  uint64
	CreatedAt int64
}

// ColumnByName returns the column named name, if any.
func (t *Table) ColumnByName(name string) (types.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return types.Column{}, false
}
