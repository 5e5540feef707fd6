package tablespace

import "sort"

// FreeExtent is a lightweight handle into the free list: which file and
// offset the extent lives at, and how many pages it currently has free.
type FreeExtent struct {
	FileID       uint32
	ExtentOffset uint64
	FreePages    uint32
}

// freeExtentList tracks extents with at least one free page, sorted
// descending by free page count so GetExtent's linear scan finds the
// roomiest candidate first.
type freeExtentList struct {
	extents []FreeExtent
}

func newFreeExtentList() *freeExtentList {
	return &freeExtentList{}
}

// GetExtent removes and returns the first extent with at least minPages
// free, or ok=false if none qualifies.
func (l *freeExtentList) GetExtent(minPages uint32) (FreeExtent, bool) {
	for i, e := range l.extents {
		if e.FreePages >= minPages {
			l.extents = append(l.extents[:i], l.extents[i+1:]...)
			return e, true
		}
	}
	return FreeExtent{}, false
}

// ReturnExtent reinserts an extent (e.g. after a page within it was
// freed), keeping the list sorted descending by FreePages.
func (l *freeExtentList) ReturnExtent(e FreeExtent) {
	l.extents = append(l.extents, e)
	sort.Slice(l.extents, func(i, j int) bool {
		return l.extents[i].FreePages > l.extents[j].FreePages
	})
}

// AddExtent registers a brand new extent (e.g. right after
// extendTablespace creates it).
func (l *freeExtentList) AddExtent(e FreeExtent) {
	l.ReturnExtent(e)
}
