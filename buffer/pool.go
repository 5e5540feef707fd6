// Package buffer implements the fixed-size, pin-counted page cache that
// sits between the heap layer and the virtual filesystem: a chained hash
// table keyed by page id, a three-generation LRU (§4.4.1), and
// cache-line-aligned frame descriptors carrying an atomic dirty/pin state
// word.
package buffer

import (
	"fmt"
	"hash/fnv"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"aistore/types"
	"aistore/vfs"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// hashEntry is one node of a chained hash table bucket.
type hashEntry struct {
	pageID types.PageId
	frame  int
	next   int // index into Pool.chain, sentinel for end of bucket
}

// Pool is a fixed-capacity buffer pool. All mutating operations on the
// hash table and LRU happen under a single pool-scope mutex (§4.4, §5):
// the design accepts coarse serialization at the pool boundary in
// exchange for simplicity, matching the source it's grounded on.
type Pool struct {
	mu      sync.Mutex
	vfs     vfs.VFS
	dataDir string
	log     *logrus.Entry

	capacity int
	frames   []*frameDesc
	pages    [][]byte // parallel array of PAGE_SIZE buffers, one per frame

	buckets []int // bucket head index into chain, sentinel for empty
	chain   []hashEntry

	freeFrames []int // frames never yet assigned a page
	lru        *lruManager
}

// New builds a buffer pool with capacity frames, persisting pages under
// dataDir via vfs at path page_<group>.dat (§6).
func New(capacity int, v vfs.VFS, dataDir string) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	hotCap := capacity / 2
	coldCap := capacity * 3 / 10
	freeCap := capacity / 5

	p := &Pool{
		vfs:        v,
		dataDir:    dataDir,
		log:        logrus.WithField("component", "buffer"),
		capacity:   capacity,
		frames:     make([]*frameDesc, capacity),
		pages:      make([][]byte, capacity),
		buckets:    make([]int, capacity),
		chain:      make([]hashEntry, 0, capacity),
		freeFrames: make([]int, capacity),
		lru:        newLRUManager(hotCap, coldCap, freeCap),
	}
	for i := 0; i < capacity; i++ {
		p.frames[i] = newFrameDesc()
		p.pages[i] = make([]byte, types.PageSize)
		p.buckets[i] = sentinel
		p.freeFrames[i] = capacity - 1 - i // pop from the back, arbitrary order
	}
	return p
}

func (p *Pool) hashBucket(id types.PageId) int {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatUint(uint64(id), 10)))
	return int(h.Sum64() % uint64(p.capacity))
}

func (p *Pool) lookupLocked(id types.PageId) (int, bool) {
	bucket := p.hashBucket(id)
	idx := p.buckets[bucket]
	for idx != sentinel {
		e := &p.chain[idx]
		if e.pageID == id {
			return e.frame, true
		}
		idx = e.next
	}
	return 0, false
}

func (p *Pool) insertHashEntryLocked(id types.PageId, frame int) {
	bucket := p.hashBucket(id)
	p.chain = append(p.chain, hashEntry{pageID: id, frame: frame, next: p.buckets[bucket]})
	p.buckets[bucket] = len(p.chain) - 1
}

func (p *Pool) removeHashEntryLocked(id types.PageId) {
	bucket := p.hashBucket(id)
	idx := p.buckets[bucket]
	prev := sentinel
	for idx != sentinel {
		e := &p.chain[idx]
		if e.pageID == id {
			if prev == sentinel {
				p.buckets[bucket] = e.next
			} else {
				p.chain[prev].next = e.next
			}
			return
		}
		prev = idx
		idx = e.next
	}
}

func (p *Pool) pagePath(id types.PageId) string {
	return filepath.Join(p.dataDir, fmt.Sprintf("page_%d.dat", id.FileGroup()))
}

func (p *Pool) pageOffset(id types.PageId) int64 {
	return int64(id.PageIndex()) * int64(types.PageSize)
}

func (p *Pool) readPageFromDisk(id types.PageId, buf []byte) error {
	path := p.pagePath(id)
	n, err := p.vfs.Pread(path, buf, p.pageOffset(id))
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) || errors.Is(err, io.EOF) {
			// A page id never written to disk (or short-read past the
			// current file end) reads as a zeroed page.
			for i := n; i < len(buf); i++ {
				buf[i] = 0
			}
			return nil
		}
		return err
	}
	return nil
}

func (p *Pool) writePageToDisk(id types.PageId, buf []byte) error {
	path := p.pagePath(id)
	_, err := p.vfs.Pwrite(path, buf, p.pageOffset(id))
	if errors.Is(err, vfs.ErrNotFound) {
		// First write to this file group: create its page file.
		f, cerr := p.vfs.CreateFile(path)
		if cerr != nil {
			return errors.Wrapf(cerr, "create page file for %d", id)
		}
		f.Close()
		_, err = p.vfs.Pwrite(path, buf, p.pageOffset(id))
	}
	if err != nil {
		return errors.Wrapf(err, "flush page %d", id)
	}
	return nil
}

// evictOneLocked selects and reclaims one frame, returning its index. It
// retries when the LRU's victim is still pinned, reinserting the pinned
// frame and trying again (§4.4.1), then falls back to any loaded,
// unpinned frame: progress is guaranteed as long as the total pin count
// is below capacity.
func (p *Pool) evictOneLocked() (int, bool) {
	if len(p.freeFrames) > 0 {
		idx := p.freeFrames[len(p.freeFrames)-1]
		p.freeFrames = p.freeFrames[:len(p.freeFrames)-1]
		return idx, true
	}
	victim := -1
	for attempt := 0; attempt < p.capacity && victim < 0; attempt++ {
		frame, ok := p.lru.evict()
		if !ok {
			break
		}
		if p.frames[frame].canEvict() {
			victim = frame
		} else {
			p.lru.add(frame)
		}
	}
	// Frames dropped off the LRU's free list belong to no list.
	for frame := 0; frame < p.capacity && victim < 0; frame++ {
		if d := p.frames[frame]; d.pageID != types.InvalidPageID && d.canEvict() {
			p.lru.remove(frame)
			victim = frame
		}
	}
	if victim < 0 {
		return 0, false
	}
	desc := p.frames[victim]
	if desc.isDirty() {
		if err := p.writePageToDisk(desc.pageID, p.pages[victim]); err != nil {
			p.log.WithError(err).WithField("page_id", desc.pageID).Error("failed to flush dirty victim")
		}
		desc.clearDirty()
	}
	p.removeHashEntryLocked(desc.pageID)
	desc.pageID = types.InvalidPageID
	return victim, true
}

// GetPage returns a pinned page for id, loading it from disk on a cache
// miss. Callers must call UnpinPage when done.
func (p *Pool) GetPage(id types.PageId) ([]byte, error) {
	if id == types.InvalidPageID {
		return nil, ErrInvalidPageID
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame, ok := p.lookupLocked(id); ok {
		p.lru.access(frame)
		p.frames[frame].pin()
		return p.pages[frame], nil
	}

	frame, ok := p.evictOneLocked()
	if !ok {
		return nil, ErrPoolFull
	}
	if err := p.readPageFromDisk(id, p.pages[frame]); err != nil {
		p.freeFrames = append(p.freeFrames, frame)
		return nil, errors.Wrapf(err, "read page %d", id)
	}
	p.frames[frame].pageID = id
	p.insertHashEntryLocked(id, frame)
	p.lru.add(frame)
	p.frames[frame].pin()
	return p.pages[frame], nil
}

// MarkDirty sets the dirty bit for id. No-op if the page is not cached.
func (p *Pool) MarkDirty(id types.PageId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if frame, ok := p.lookupLocked(id); ok {
		p.frames[frame].setDirty()
	}
}

// UnpinPage decrements the pin count for id. Fails with ErrPageNotFound if
// the page is not cached.
func (p *Pool) UnpinPage(id types.PageId) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	frame, ok := p.lookupLocked(id)
	if !ok {
		return ErrPageNotFound
	}
	p.frames[frame].unpin()
	return nil
}

// FlushAll writes every dirty frame's page to disk and clears its dirty
// bit.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for frame, desc := range p.frames {
		if desc.pageID == types.InvalidPageID || !desc.isDirty() {
			continue
		}
		if err := p.writePageToDisk(desc.pageID, p.pages[frame]); err != nil {
			return err
		}
		desc.clearDirty()
	}
	return nil
}

// Capacity returns the pool's fixed frame count.
func (p *Pool) Capacity() int { return p.capacity }
