// Package tablespace implements the extent allocator: one tablespace is
// one named on-disk file beginning with a 40-byte header, followed by a
// sequence of 1 MiB extents, each itself headed by a 56-byte bitmap page
// (§4.2).
package tablespace

import (
	"fmt"
	"path/filepath"
	"sync"

	"aistore/types"
	"aistore/vfs"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config configures a new tablespace's initial sizing.
type Config struct {
	InitialFileSize uint64
	AutoExtendSize  uint64
}

// DefaultConfig returns the stock initial/auto-extend sizing.
func DefaultConfig() Config {
	return Config{InitialFileSize: DefaultInitialFileSize, AutoExtendSize: DefaultAutoExtendSize}
}

type tablespaceMeta struct {
	id       types.TablespaceID
	name     string
	path     string
	fileSize uint64
}

// Manager owns every registered tablespace: name/id lookup, the
// per-tablespace free-extent list, and the file-scope write lock that
// serializes extent allocation (§4.2, §5).
type Manager struct {
	vfs     vfs.VFS
	dataDir string
	log     *logrus.Entry

	mu         sync.RWMutex
	spaces     map[types.TablespaceID]*tablespaceMeta
	freeLists  map[types.TablespaceID]*freeExtentList
	nameToID   map[string]types.TablespaceID
	nextID     types.TablespaceID
	fileLock   sync.Mutex
}

// NewManager builds a tablespace manager rooted at dataDir.
func NewManager(v vfs.VFS, dataDir string) *Manager {
	return &Manager{
		vfs:       v,
		dataDir:   dataDir,
		log:       logrus.WithField("component", "tablespace"),
		spaces:    make(map[types.TablespaceID]*tablespaceMeta),
		freeLists: make(map[types.TablespaceID]*freeExtentList),
		nameToID:  make(map[string]types.TablespaceID),
		nextID:    1,
	}
}

func (m *Manager) pathFor(name string) string {
	return filepath.Join(m.dataDir, name+".tbl")
}

// CreateTablespace writes a fresh file header and registers the
// tablespace under name. Duplicate names fail with ErrInvalidArgument.
func (m *Manager) CreateTablespace(name string, cfg Config) (types.TablespaceID, error) {
	m.fileLock.Lock()
	defer m.fileLock.Unlock()

	m.mu.RLock()
	_, exists := m.nameToID[name]
	m.mu.RUnlock()
	if exists {
		return 0, errors.Wrapf(ErrInvalidArgument, "tablespace %q already exists", name)
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.mu.Unlock()

	if cfg.InitialFileSize == 0 {
		cfg = DefaultConfig()
	}

	path := m.pathFor(name)
	if err := m.vfs.CreateDir(m.dataDir); err != nil {
		return 0, errors.Wrap(err, "create data dir")
	}
	f, err := m.vfs.CreateFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create tablespace file %q", path)
	}
	defer f.Close()

	header := &FileHeader{
		Magic:        FileMagic,
		Version:      FileVersion,
		TablespaceID: id,
		FileSize:     FileHeaderSize,
		ExtentCount:  0,
		FreePages:    0,
	}
	header.initChecksum()
	if _, err := f.WriteAt(header.Encode(), 0); err != nil {
		return 0, errors.Wrap(err, "write file header")
	}

	m.mu.Lock()
	m.spaces[id] = &tablespaceMeta{id: id, name: name, path: path, fileSize: header.FileSize}
	m.freeLists[id] = newFreeExtentList()
	m.nameToID[name] = id
	m.mu.Unlock()

	m.log.WithField("tablespace", name).WithField("id", id).Info("created tablespace")
	return id, nil
}

// OpenTablespace resolves a tablespace id by name.
func (m *Manager) OpenTablespace(name string) (types.TablespaceID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.nameToID[name]
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "tablespace %q", name)
	}
	return id, nil
}

func (m *Manager) metaFor(id types.TablespaceID) (*tablespaceMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.spaces[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "tablespace id %d", id)
	}
	return meta, nil
}

// GetFile returns the on-disk path for a tablespace id.
func (m *Manager) GetFile(id types.TablespaceID) (string, error) {
	meta, err := m.metaFor(id)
	if err != nil {
		return "", err
	}
	return meta.path, nil
}

// ListTablespaces returns every registered tablespace's name.
func (m *Manager) ListTablespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.nameToID))
	for name := range m.nameToID {
		names = append(names, name)
	}
	return names
}

// AllocateExtent returns a free extent for the tablespace, preferring an
// existing one with capacity over growing the file.
func (m *Manager) AllocateExtent(id types.TablespaceID) (*ExtentHeader, error) {
	m.fileLock.Lock()
	defer m.fileLock.Unlock()

	m.mu.Lock()
	fl, ok := m.freeLists[id]
	m.mu.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "tablespace id %d", id)
	}

	if fe, ok := fl.GetExtent(types.ExtentUsablePages); ok {
		return m.readExtentHeaderLocked(id, fe.ExtentOffset)
	}
	return m.extendTablespaceLocked(id)
}

// ReturnExtent puts an extent back on the free list after a page within
// it is freed.
func (m *Manager) ReturnExtent(id types.TablespaceID, h *ExtentHeader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fl, ok := m.freeLists[id]
	if !ok {
		return
	}
	fl.ReturnExtent(FreeExtent{FileID: h.FileID, ExtentOffset: h.ExtentOffset, FreePages: h.FreePages})
}

func (m *Manager) readExtentHeaderLocked(id types.TablespaceID, offset uint64) (*ExtentHeader, error) {
	meta, err := m.metaFor(id)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, ExtentHeaderSize)
	if _, err := m.vfs.Pread(meta.path, buf, int64(offset)); err != nil {
		return nil, errors.Wrap(err, "read extent header")
	}
	return DecodeExtentHeader(buf)
}

// extendTablespaceLocked appends a new extent to the tablespace's file,
// updates the file header's size/extent_count/free_pages, and returns the
// new extent's header to the caller. Caller must hold m.fileLock.
func (m *Manager) extendTablespaceLocked(id types.TablespaceID) (*ExtentHeader, error) {
	meta, err := m.metaFor(id)
	if err != nil {
		return nil, err
	}

	f, err := m.vfs.OpenFile(meta.path)
	if err != nil {
		return nil, errors.Wrap(err, "open tablespace file")
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return nil, errors.Wrap(err, "stat tablespace file")
	}
	extentOffset := uint64(size)
	if extentOffset < FileHeaderSize {
		extentOffset = FileHeaderSize
	}

	newHeader := NewExtentHeader(id, uint32(id), extentOffset)
	if err := f.Truncate(int64(extentOffset) + types.ExtentSize); err != nil {
		return nil, errors.Wrap(err, "grow tablespace file")
	}
	if _, err := f.WriteAt(newHeader.Encode(), int64(extentOffset)); err != nil {
		return nil, errors.Wrap(err, "write new extent header")
	}

	fileHeaderBuf := make([]byte, FileHeaderSize)
	if _, err := f.ReadAt(fileHeaderBuf, 0); err != nil {
		return nil, errors.Wrap(err, "read file header")
	}
	fh, err := DecodeFileHeader(fileHeaderBuf)
	if err != nil {
		return nil, err
	}
	fh.FileSize = extentOffset + types.ExtentSize
	fh.ExtentCount++
	fh.FreePages += types.ExtentUsablePages
	fh.initChecksum()
	if _, err := f.WriteAt(fh.Encode(), 0); err != nil {
		return nil, errors.Wrap(err, "update file header")
	}

	m.mu.Lock()
	meta.fileSize = fh.FileSize
	m.mu.Unlock()

	m.log.WithField("tablespace_id", id).WithField("extent_offset", extentOffset).Info("extended tablespace")
	return newHeader, nil
}

// WriteExtentHeader persists an updated extent header back to its file
// (used after AllocatePage/FreePage mutate its bitmap).
func (m *Manager) WriteExtentHeader(id types.TablespaceID, h *ExtentHeader) error {
	meta, err := m.metaFor(id)
	if err != nil {
		return err
	}
	if _, err := m.vfs.Pwrite(meta.path, h.Encode(), int64(h.ExtentOffset)); err != nil {
		return errors.Wrap(err, "write extent header")
	}
	return nil
}

func (m *Manager) String() string {
	return fmt.Sprintf("tablespace.Manager(%s)", m.dataDir)
}
