package heap

import (
	"sync"

	"aistore/buffer"
	"aistore/types"

	"github.com/pkg/errors"
)

// RowId identifies one tuple: the heap page it lives on and its slot
// index within that page.
type RowId struct {
	PageID types.PageId
	Slot   int
}

// segmentAllocator is the subset of segment.Manager a table needs to
// grow: allocating a fresh page id when no cached page has room.
type segmentAllocator interface {
	AllocatePage(segmentID uint64) (types.PageId, error)
}

// Table is a heap-organized table: an ordered set of pages holding
// variable-length tuples, backed by a buffer pool for I/O and a segment
// for page allocation.
type Table struct {
	mu        sync.Mutex
	name      string
	segmentID uint64
	columns   []types.Column
	pool      *buffer.Pool
	seg       segmentAllocator
	pageIDs   []types.PageId
}

// NewTable builds a heap table over an already-created segment; pageIDs
// lists pages already known to belong to this table (empty for a
// freshly created table).
func NewTable(name string, segmentID uint64, columns []types.Column, pool *buffer.Pool, seg segmentAllocator, pageIDs []types.PageId) *Table {
	return &Table{
		name:      name,
		segmentID: segmentID,
		columns:   columns,
		pool:      pool,
		seg:       seg,
		pageIDs:   append([]types.PageId(nil), pageIDs...),
	}
}

// Name returns the table's catalog name.
func (t *Table) Name() string { return t.name }

// PageIDs returns every page currently known to belong to this table.
func (t *Table) PageIDs() []types.PageId {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]types.PageId(nil), t.pageIDs...)
}

// Insert serializes values against the table's schema and writes them
// into the first page with room, allocating a fresh page from the
// table's segment when none does.
func (t *Table) Insert(values []Value) (RowId, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tupleBytes, err := Serialize(values, t.columns)
	if err != nil {
		return RowId{}, err
	}

	for _, pid := range t.pageIDs {
		buf, err := t.pool.GetPage(pid)
		if err != nil {
			return RowId{}, err
		}
		page, err := FromBytes(pid, buf)
		if err != nil {
			t.pool.UnpinPage(pid)
			return RowId{}, err
		}
		slot, err := page.InsertTuple(tupleBytes)
		if err == nil {
			copy(buf, page.Bytes())
			t.pool.MarkDirty(pid)
			t.pool.UnpinPage(pid)
			return RowId{PageID: pid, Slot: slot}, nil
		}
		t.pool.UnpinPage(pid)
		if !errors.Is(err, ErrOutOfSpace) {
			return RowId{}, err
		}
	}

	pid, err := t.seg.AllocatePage(t.segmentID)
	if err != nil {
		return RowId{}, errors.Wrap(err, "allocate new heap page")
	}
	page := NewPage(pid)
	slot, err := page.InsertTuple(tupleBytes)
	if err != nil {
		return RowId{}, err
	}
	buf, err := t.pool.GetPage(pid)
	if err != nil {
		return RowId{}, err
	}
	copy(buf, page.Bytes())
	t.pool.MarkDirty(pid)
	t.pool.UnpinPage(pid)
	t.pageIDs = append(t.pageIDs, pid)

	return RowId{PageID: pid, Slot: slot}, nil
}

// Scan returns every non-tombstone tuple across every page, decoded
// against the table's schema.
func (t *Table) Scan() ([]Tuple, error) {
	t.mu.Lock()
	pageIDs := append([]types.PageId(nil), t.pageIDs...)
	t.mu.Unlock()

	var out []Tuple
	for _, pid := range pageIDs {
		buf, err := t.pool.GetPage(pid)
		if err != nil {
			return nil, err
		}
		page, err := FromBytes(pid, buf)
		if err != nil {
			t.pool.UnpinPage(pid)
			return nil, err
		}
		for _, raw := range page.LiveTuples() {
			values, err := Deserialize(raw, t.columns)
			if err != nil {
				t.pool.UnpinPage(pid)
				return nil, err
			}
			out = append(out, Tuple{Values: values})
		}
		t.pool.UnpinPage(pid)
	}
	return out, nil
}

// ScanPage decodes every slot of one page, indexed by slot number; a
// tombstoned or invalid slot yields a nil entry so callers can recover
// correct RowIds for tuples that survive.
func (t *Table) ScanPage(pid types.PageId) (*Page, [][]Value, error) {
	buf, err := t.pool.GetPage(pid)
	if err != nil {
		return nil, nil, err
	}
	defer t.pool.UnpinPage(pid)

	page, err := FromBytes(pid, buf)
	if err != nil {
		return nil, nil, err
	}

	out := make([][]Value, page.SlotCount())
	for slot := 0; slot < page.SlotCount(); slot++ {
		raw, err := page.GetTuple(slot)
		if err != nil {
			continue
		}
		values, err := Deserialize(raw, t.columns)
		if err != nil {
			return nil, nil, err
		}
		out[slot] = values
	}
	return page, out, nil
}

// Delete tombstones the tuple at rowID.
func (t *Table) Delete(rowID RowId) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf, err := t.pool.GetPage(rowID.PageID)
	if err != nil {
		return err
	}
	page, err := FromBytes(rowID.PageID, buf)
	if err != nil {
		t.pool.UnpinPage(rowID.PageID)
		return err
	}
	if err := page.DeleteTuple(rowID.Slot); err != nil {
		t.pool.UnpinPage(rowID.PageID)
		return err
	}
	copy(buf, page.Bytes())
	t.pool.MarkDirty(rowID.PageID)
	t.pool.UnpinPage(rowID.PageID)
	return nil
}

// Update deletes the tuple at rowID and inserts values as a brand new
// tuple. It does not return the new RowId to the caller — a quirk
// carried forward intentionally from this table's lineage.
func (t *Table) Update(rowID RowId, values []Value) error {
	if err := t.Delete(rowID); err != nil {
		return err
	}
	_, err := t.Insert(values)
	return err
}
