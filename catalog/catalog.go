// Package catalog persists table schemas as line-oriented text files
// under <data_dir>/system, one file per table, mirroring the pipe
// delimited record|column format used throughout this storage stack's
// lineage.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"aistore/types"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	systemDirName = "system"
	tableFileExt  = ".tbl"
)

// Catalog is the in-memory, disk-backed registry of every table.
type Catalog struct {
	mu         sync.RWMutex
	dataDir    string
	systemDir  string
	log        *logrus.Entry
	byName     map[string]*Table
	byID       map[uint64]*Table
	nextID     uint64
}

// New creates (or reopens) the system directory under dataDir without
// loading any existing table files; call Load to populate from disk.
func New(dataDir string) (*Catalog, error) {
	systemDir := filepath.Join(dataDir, systemDirName)
	if err := os.MkdirAll(systemDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create system dir")
	}
	return &Catalog{
		dataDir:   dataDir,
		systemDir: systemDir,
		log:       logrus.WithField("component", "catalog"),
		byName:    make(map[string]*Table),
		byID:      make(map[uint64]*Table),
		nextID:    1,
	}, nil
}

// Load creates a catalog and populates it from every *.tbl file already
// present under its system directory.
func Load(dataDir string) (*Catalog, error) {
	c, err := New(dataDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.systemDir)
	if err != nil {
		return nil, errors.Wrap(err, "read system dir")
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != tableFileExt {
			continue
		}
		table, err := c.parseTableFile(filepath.Join(c.systemDir, e.Name()))
		if err != nil {
			return nil, err
		}
		if table != nil {
			if err := c.addToCache(table); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// CreateTable allocates a table id, registers the table, and persists it
// to its .tbl file. Fails with ErrTableExists on a duplicate name.
func (c *Catalog) CreateTable(name string, segmentID uint64, columns []types.Column) (*Table, error) {
	c.mu.Lock()
	if _, exists := c.byName[name]; exists {
		c.mu.Unlock()
		return nil, errors.Wrapf(ErrTableExists, "table %q", name)
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Name] {
			c.mu.Unlock()
			return nil, errors.Wrapf(ErrInvalidSchema, "duplicate column %q", col.Name)
		}
		seen[col.Name] = true
	}
	id := c.nextID
	c.nextID++
	c.mu.Unlock()

	table := &Table{
		TableID:   id,
		Name:      name,
		SegmentID: segmentID,
		Type:      TableTypeUser,
		Columns:   columns,
		CreatedAt: now(),
	}

	if err := c.persistTable(table); err != nil {
		return nil, err
	}
	if err := c.addToCache(table); err != nil {
		return nil, err
	}
	c.log.WithField("table", name).WithField("table_id", id).Info("created table")
	return table, nil
}

// GetTable looks up a table by name.
func (c *Catalog) GetTable(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "table %q", name)
	}
	return t, nil
}

// GetTableByID looks up a table by its numeric id.
func (c *Catalog) GetTableByID(id uint64) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "table id %d", id)
	}
	return t, nil
}

// ListTables returns every registered table.
func (c *Catalog) ListTables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Table, 0, len(c.byName))
	for _, t := range c.byName {
		out = append(out, t)
	}
	return out
}

// TableExists reports whether name is registered.
func (c *Catalog) TableExists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byName[name]
	return ok
}

// DropTable removes name's registration and deletes its .tbl file.
func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	t, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(ErrTableNotFound, "table %q", name)
	}
	delete(c.byName, name)
	delete(c.byID, t.TableID)
	c.mu.Unlock()

	path := c.tableFilePath(name)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return errors.Wrap(err, "remove table file")
		}
	}
	return nil
}

// SetRowCount updates a table's cached row count and re-persists it.
func (c *Catalog) SetRowCount(name string, count uint64) error {
	c.mu.Lock()
	t, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(ErrTableNotFound, "table %q", name)
	}
	t.RowCount = count
	c.mu.Unlock()
	return c.persistTable(t)
}

func (c *Catalog) addToCache(t *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[t.Name]; exists {
		return errors.Wrapf(ErrTableExists, "table %q", t.Name)
	}
	c.byName[t.Name] = t
	c.byID[t.TableID] = t
	if t.TableID >= c.nextID {
		c.nextID = t.TableID + 1
	}
	return nil
}

func (c *Catalog) tableFilePath(name string) string {
	return filepath.Join(c.systemDir, name+tableFileExt)
}

// persistTable writes a table's header line followed by one COLUMN line
// per column, pipe-delimited: matches the legacy on-disk table format
// this catalog's schema persistence is grounded on.
func (c *Catalog) persistTable(t *Table) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s|%d|%s|%d|%d|%d\n",
		t.TableID, t.Name, t.SegmentID, t.Type, t.RowCount, len(t.Columns), t.CreatedAt)
	for _, col := range t.Columns {
		fmt.Fprintf(&b, "COLUMN|%s|%s|%t|%d\n", col.Name, col.Type.TypeName(), col.Nullable, col.Ordinal)
	}
	if err := os.WriteFile(c.tableFilePath(t.Name), []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(err, "write table file")
	}
	return nil
}

func (c *Catalog) parseTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open table file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, nil
	}
	header := strings.Split(scanner.Text(), "|")
	if len(header) != 7 {
		return nil, errors.Wrapf(ErrInvalidSchema, "malformed table header in %s", path)
	}
	tableID, err := strconv.ParseUint(header[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse table_id")
	}
	segmentID, err := strconv.ParseUint(header[2], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse segment_id")
	}
	tableType := parseTableType(header[3])
	rowCount, err := strconv.ParseUint(header[4], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse row_count")
	}
	createdAt, err := strconv.ParseInt(header[6], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse created_at")
	}

	var columns []types.Column
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "COLUMN|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 5 {
			continue
		}
		colType, err := types.ParseColumnType(parts[2])
		if err != nil {
			return nil, err
		}
		ordinal, err := strconv.ParseUint(parts[4], 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "parse ordinal")
		}
		columns = append(columns, types.NewColumn(parts[1], colType, parts[3] == "true", uint32(ordinal)))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan table file")
	}

	return &Table{
		TableID:   tableID,
		Name:      header[1],
		SegmentID: segmentID,
		Type:      tableType,
		Columns:   columns,
		RowCount:  rowCount,
		CreatedAt: createdAt,
	}, nil
}

func parseTableType(s string) TableType {
	switch s {
	case "System":
		return TableTypeSystem
	case "Temporary":
		return TableTypeTemporary
	default:
		return TableTypeUser
	}
}
