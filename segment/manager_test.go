package segment

import (
	"testing"

	"aistore/tablespace"
	"aistore/types"
	"aistore/vfs"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, types.TablespaceID) {
	t.Helper()
	dir := t.TempDir()
	tsMgr := tablespace.NewManager(vfs.NewLocalFS(), dir)
	tsID, err := tsMgr.CreateTablespace("main", tablespace.DefaultConfig())
	require.NoError(t, err)
	return NewManager(tsMgr), tsID
}

func TestCreateSegmentAssignsIncreasingIDs(t *testing.T) {
	mgr, tsID := newTestManager(t)

	id1, err := mgr.CreateSegment(tsID, TypeData)
	require.NoError(t, err)
	require.EqualValues(t, 1, id1)

	id2, err := mgr.CreateSegment(tsID, TypeIndex)
	require.NoError(t, err)
	require.EqualValues(t, 2, id2)
}

func TestAllocatePageReturnsPageIDScopedToSegment(t *testing.T) {
	mgr, tsID := newTestManager(t)

	segID, err := mgr.CreateSegment(tsID, TypeData)
	require.NoError(t, err)

	pid, err := mgr.AllocatePage(segID)
	require.NoError(t, err)
	require.EqualValues(t, segID, pid.FileGroup())
}

func TestAllocatePageGrowsAcrossExtents(t *testing.T) {
	mgr, tsID := newTestManager(t)

	segID, err := mgr.CreateSegment(tsID, TypeData)
	require.NoError(t, err)

	// one extent's header page is reserved at creation, leaving
	// ExtentUsablePages-1 pages before a second extent must be pulled in.
	seen := make(map[types.PageId]bool)
	for i := 0; i < int(types.ExtentUsablePages)*2; i++ {
		pid, err := mgr.AllocatePage(segID)
		require.NoError(t, err)
		require.False(t, seen[pid], "page id allocated twice: %v", pid)
		seen[pid] = true
	}
}

func TestGetEntryReturnsDirectoryEntry(t *testing.T) {
	mgr, tsID := newTestManager(t)

	segID, err := mgr.CreateSegment(tsID, TypeSystem)
	require.NoError(t, err)

	entry, err := mgr.GetEntry(segID)
	require.NoError(t, err)
	require.Equal(t, TypeSystem, entry.SegmentType)
	require.Equal(t, tsID, entry.TablespaceID)
}

func TestAllocatePageUnknownSegmentFails(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.AllocatePage(999)
	require.Error(t, err)
}

func TestSegmentHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := NewHeader(1, TypeData, 1, tablespace.FileHeaderSize)
	decoded, err := DecodeHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h.SegmentID, decoded.SegmentID)
	require.Equal(t, h.SegmentType, decoded.SegmentType)
}

func TestDirectoryGetOutOfRange(t *testing.T) {
	d := NewDirectory()
	_, err := d.Get(1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirectoryCreateAndGet(t *testing.T) {
	d := NewDirectory()
	id := d.CreateSegment(TypeData, 1, tablespace.FreeExtent{FreePages: 10}, 100)
	require.EqualValues(t, 1, id)

	entry, err := d.Get(id)
	require.NoError(t, err)
	require.EqualValues(t, 10, entry.TotalPages)
}
