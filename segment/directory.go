package segment

import (
	"time"

	"aistore/tablespace"
	"aistore/types"
)

// DirEntry is one segment directory slot: identity, owning tablespace,
// its current (last-allocated) extent, and running page counters.
type DirEntry struct {
	SegmentID    uint64
	SegmentType  Type
	TablespaceID types.TablespaceID
	Extent       tablespace.FreeExtent
	TotalPages   uint64
	UsedPages    uint64
	FreePages    uint64
	CreatedAt    int64
	ModifiedAt   int64
}

// Directory is the in-memory segment directory: a dense, 1-indexed slice
// of optional entries (segment_id == index+1), matching the source's
// Vec<Option<SegmentDirEntry>> exactly.
type Directory struct {
	segments []*DirEntry
}

// NewDirectory builds an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// CreateSegment appends a new entry and returns its 1-based segment id.
func (d *Directory) CreateSegment(segType Type, tablespaceID types.TablespaceID, extent tablespace.FreeExtent, now int64) uint64 {
	id := uint64(len(d.segments) + 1)
	d.segments = append(d.segments, &DirEntry{
		SegmentID:    id,
		SegmentType:  segType,
		TablespaceID: tablespaceID,
		Extent:       extent,
		TotalPages:   uint64(extent.FreePages),
		FreePages:    uint64(extent.FreePages),
		CreatedAt:    now,
		ModifiedAt:   now,
	})
	return id
}

// Get returns the entry for segmentID, or ErrNotFound if out of range or
// a hole.
func (d *Directory) Get(segmentID uint64) (*DirEntry, error) {
	if segmentID == 0 || segmentID > uint64(len(d.segments)) {
		return nil, ErrNotFound
	}
	e := d.segments[segmentID-1]
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// now is a seam for tests; production callers use time.Now().Unix().
var now = func() int64 { return time.Now().Unix() }
