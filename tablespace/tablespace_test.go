package tablespace

import (
	"testing"

	"aistore/types"
	"aistore/vfs"

	"github.com/stretchr/testify/require"
)

func TestFileHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := &FileHeader{
		Magic:        FileMagic,
		Version:      FileVersion,
		TablespaceID: 3,
		FileSize:     FileHeaderSize,
		ExtentCount:  0,
		FreePages:    0,
	}
	h.initChecksum()

	decoded, err := DecodeFileHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h.TablespaceID, decoded.TablespaceID)
	require.Equal(t, h.FileSize, decoded.FileSize)
}

func TestFileHeaderRejectsBadMagic(t *testing.T) {
	h := &FileHeader{Magic: 0xDEADBEEF, Version: FileVersion}
	h.initChecksum()
	_, err := DecodeFileHeader(h.Encode())
	require.ErrorIs(t, err, ErrInvalidFileHeader)
}

func TestFileHeaderDetectsChecksumMismatch(t *testing.T) {
	h := &FileHeader{Magic: FileMagic, Version: FileVersion, TablespaceID: 1}
	h.initChecksum()
	buf := h.Encode()
	buf[16] ^= 0xFF // corrupt file size after the checksum was computed

	_, err := DecodeFileHeader(buf)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestExtentHeaderAllocateAndFreePage(t *testing.T) {
	h := NewExtentHeader(1, 1, FileHeaderSize)
	require.EqualValues(t, types.ExtentUsablePages, h.FreePages)
	require.True(t, h.HasFreePages())

	idx, err := h.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.EqualValues(t, types.ExtentUsablePages-1, h.FreePages)
	require.Equal(t, int(h.FreePages), h.PopCount())

	require.NoError(t, h.FreePage(idx))
	require.EqualValues(t, types.ExtentUsablePages, h.FreePages)
}

func TestExtentHeaderAllocateUntilFull(t *testing.T) {
	h := NewExtentHeader(1, 1, FileHeaderSize)
	for i := 0; i < types.ExtentUsablePages; i++ {
		_, err := h.AllocatePage()
		require.NoError(t, err)
	}
	require.True(t, h.IsFull())
	_, err := h.AllocatePage()
	require.ErrorIs(t, err, ErrNoFreeExtent)
}

func TestExtentHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := NewExtentHeader(5, 5, FileHeaderSize)
	_, err := h.AllocatePage()
	require.NoError(t, err)

	decoded, err := DecodeExtentHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h.FreePages, decoded.FreePages)
	require.Equal(t, h.Bitmap, decoded.Bitmap)
}

func TestFreeExtentListReturnsRoomiestFirst(t *testing.T) {
	fl := newFreeExtentList()
	fl.AddExtent(FreeExtent{FileID: 1, ExtentOffset: 0, FreePages: 10})
	fl.AddExtent(FreeExtent{FileID: 1, ExtentOffset: 1, FreePages: 50})

	got, ok := fl.GetExtent(1)
	require.True(t, ok)
	require.EqualValues(t, 50, got.FreePages)
}

func TestFreeExtentListNoneQualifies(t *testing.T) {
	fl := newFreeExtentList()
	fl.AddExtent(FreeExtent{FileID: 1, ExtentOffset: 0, FreePages: 5})

	_, ok := fl.GetExtent(10)
	require.False(t, ok)
}

func TestManagerCreateAndOpenTablespace(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(vfs.NewLocalFS(), dir)

	id, err := mgr.CreateTablespace("main", DefaultConfig())
	require.NoError(t, err)
	require.EqualValues(t, 1, id)

	opened, err := mgr.OpenTablespace("main")
	require.NoError(t, err)
	require.Equal(t, id, opened)
}

func TestManagerCreateDuplicateTablespaceFails(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(vfs.NewLocalFS(), dir)

	_, err := mgr.CreateTablespace("main", DefaultConfig())
	require.NoError(t, err)

	_, err = mgr.CreateTablespace("main", DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestManagerAllocateExtentGrowsFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(vfs.NewLocalFS(), dir)

	id, err := mgr.CreateTablespace("main", DefaultConfig())
	require.NoError(t, err)

	ext, err := mgr.AllocateExtent(id)
	require.NoError(t, err)
	require.EqualValues(t, types.ExtentUsablePages, ext.FreePages)

	ext2, err := mgr.AllocateExtent(id)
	require.NoError(t, err)
	require.NotEqual(t, ext.ExtentOffset, ext2.ExtentOffset)
}

func TestManagerWriteExtentHeaderPersists(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(vfs.NewLocalFS(), dir)

	id, err := mgr.CreateTablespace("main", DefaultConfig())
	require.NoError(t, err)

	ext, err := mgr.AllocateExtent(id)
	require.NoError(t, err)

	_, err = ext.AllocatePage()
	require.NoError(t, err)
	require.NoError(t, mgr.WriteExtentHeader(id, ext))

	reread, err := mgr.readExtentHeaderLocked(id, ext.ExtentOffset)
	require.NoError(t, err)
	require.Equal(t, ext.FreePages, reread.FreePages)
}
