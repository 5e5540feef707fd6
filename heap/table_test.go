package heap

import (
	"testing"

	"aistore/buffer"
	"aistore/types"
	"aistore/vfs"

	"github.com/stretchr/testify/require"
)

// stubAllocator hands out sequential pages in one fake file-group, enough
// to exercise Table without needing a full tablespace/segment stack.
type stubAllocator struct {
	group uint32
	next  uint32
}

func (s *stubAllocator) AllocatePage(segmentID uint64) (types.PageId, error) {
	id := types.NewPageID(s.group, s.next)
	s.next++
	return id, nil
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	pool := buffer.New(8, vfs.NewLocalFS(), t.TempDir())
	cols := []types.Column{
		types.NewColumn("id", types.Int64Type, false, 0),
		types.NewColumn("name", types.VarcharType(32), false, 1),
	}
	return NewTable("t", 1, cols, pool, &stubAllocator{group: 1}, nil)
}

func TestTableInsertAndScan(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Insert([]Value{IntValue(types.KindInt64, 1), VarcharValue("a")})
	require.NoError(t, err)
	_, err = tbl.Insert([]Value{IntValue(types.KindInt64, 2), VarcharValue("b")})
	require.NoError(t, err)

	tuples, err := tbl.Scan()
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	require.EqualValues(t, 1, tuples[0].Values[0].Int)
	require.Equal(t, "b", tuples[1].Values[1].Str)
}

func TestTableDeleteRemovesFromScan(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.Insert([]Value{IntValue(types.KindInt64, 1), VarcharValue("a")})
	require.NoError(t, err)
	_, err = tbl.Insert([]Value{IntValue(types.KindInt64, 2), VarcharValue("b")})
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(rid))

	tuples, err := tbl.Scan()
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	require.EqualValues(t, 2, tuples[0].Values[0].Int)
}

func TestTableUpdateReplacesValuesButNotRowId(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.Insert([]Value{IntValue(types.KindInt64, 1), VarcharValue("old")})
	require.NoError(t, err)

	err = tbl.Update(rid, []Value{IntValue(types.KindInt64, 1), VarcharValue("new")})
	require.NoError(t, err)

	tuples, err := tbl.Scan()
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	require.Equal(t, "new", tuples[0].Values[1].Str)
}

func TestTableAllocatesNewPageWhenFull(t *testing.T) {
	tbl := newTestTable(t)

	payload := string(make([]byte, 20))
	for i := 0; i < 500; i++ {
		_, err := tbl.Insert([]Value{IntValue(types.KindInt64, int64(i)), VarcharValue(payload)})
		require.NoError(t, err)
	}
	require.Greater(t, len(tbl.PageIDs()), 1, "500 rows should have spilled onto a second page")
}

func TestScanPageReturnsNilForTombstonedSlot(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.Insert([]Value{IntValue(types.KindInt64, 1), VarcharValue("a")})
	require.NoError(t, err)
	_, err = tbl.Insert([]Value{IntValue(types.KindInt64, 2), VarcharValue("b")})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(rid))

	_, values, err := tbl.ScanPage(rid.PageID)
	require.NoError(t, err)
	require.Nil(t, values[rid.Slot])
}
