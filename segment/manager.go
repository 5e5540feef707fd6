package segment

import (
	"sync"

	"aistore/tablespace"
	"aistore/types"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// extentState is the manager's in-memory working copy of one extent's
// header plus the segment it belongs to, kept alongside the directory
// entry so AllocatePage can mutate the bitmap without a round trip.
type extentState struct {
	header *tablespace.ExtentHeader
}

// Manager ties the segment directory to a tablespace.Manager: creating a
// segment allocates its first extent and reserves its first page for a
// segment header (the header is built in memory and not written to
// disk); allocating a page within a segment walks (and grows) the
// segment's extent chain.
type Manager struct {
	mu     sync.Mutex
	ts     *tablespace.Manager
	dir    *Directory
	log    *logrus.Entry
	chains map[uint64][]*extentState // segmentID -> ordered extent chain
}

// NewManager builds a segment manager over an existing tablespace
// manager.
func NewManager(ts *tablespace.Manager) *Manager {
	return &Manager{
		ts:     ts,
		dir:    NewDirectory(),
		log:    logrus.WithField("component", "segment"),
		chains: make(map[uint64][]*extentState),
	}
}

// CreateSegment allocates one extent from tablespaceID, reserves the
// extent's first usable page for a segment header, registers a directory
// entry, and returns the new monotonically increasing segment id. The
// segment header is built in memory only; nothing is written to the
// reserved page.
func (m *Manager) CreateSegment(tablespaceID types.TablespaceID, segType Type) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ext, err := m.ts.AllocateExtent(tablespaceID)
	if err != nil {
		return 0, errors.Wrap(err, "allocate first extent")
	}

	// Reserve the extent's first usable page for the segment header
	// itself.
	if _, err := ext.AllocatePage(); err != nil {
		return 0, errors.Wrap(err, "reserve header page")
	}
	if err := m.ts.WriteExtentHeader(tablespaceID, ext); err != nil {
		return 0, err
	}

	fe := tablespace.FreeExtent{FileID: ext.FileID, ExtentOffset: ext.ExtentOffset, FreePages: ext.FreePages}
	segmentID := m.dir.CreateSegment(segType, tablespaceID, fe, now())

	header := NewHeader(segmentID, segType, tablespaceID, ext.ExtentOffset)
	_ = header // not written to disk

	m.chains[segmentID] = []*extentState{{header: ext}}
	m.log.WithField("segment_id", segmentID).WithField("type", segType).Info("created segment")
	return segmentID, nil
}

// AllocatePage finds space in the segment's current extent, extending
// the chain via tablespace.AllocateExtent when the current extent is
// full, and returns a globally unique page id for the new page. The page
// id's file group equals the segment id, so every segment's pages live
// under their own page_<segment_id>.dat file in the buffer pool.
func (m *Manager) AllocatePage(segmentID uint64) (types.PageId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.dir.Get(segmentID)
	if err != nil {
		return types.InvalidPageID, err
	}
	chain := m.chains[segmentID]
	if len(chain) == 0 {
		return types.InvalidPageID, ErrExtentNotFound
	}

	current := chain[len(chain)-1]
	if !current.header.HasFreePages() {
		ext, err := m.ts.AllocateExtent(entry.TablespaceID)
		if err != nil {
			return types.InvalidPageID, errors.Wrap(err, "extend segment")
		}
		current = &extentState{header: ext}
		chain = append(chain, current)
		m.chains[segmentID] = chain
		entry.TotalPages += uint64(ext.FreePages)
	}

	if _, err := current.header.AllocatePage(); err != nil {
		return types.InvalidPageID, err
	}
	if err := m.ts.WriteExtentHeader(entry.TablespaceID, current.header); err != nil {
		return types.InvalidPageID, err
	}

	entry.UsedPages++
	if entry.FreePages > 0 {
		entry.FreePages--
	}
	entry.ModifiedAt = now()

	pageID := types.NewPageID(uint32(segmentID), uint32(entry.UsedPages))
	return pageID, nil
}

// GetEntry returns the directory entry for segmentID.
func (m *Manager) GetEntry(segmentID uint64) (*DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir.Get(segmentID)
}
