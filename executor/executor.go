// Package executor dispatches parsed SQL statements onto the catalog and
// heap storage layers.
package executor

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"aistore/buffer"
	"aistore/catalog"
	"aistore/heap"
	"aistore/segment"
	"aistore/sql"
	"aistore/types"

	"github.com/pkg/errors"
)

// Executor runs parsed SQL statements against a catalog and a shared
// buffer pool / segment manager. Each worker goroutine in the benchmark
// harness owns its own Executor rather than sharing one (§5).
type Executor struct {
	mu           sync.Mutex
	cat          *catalog.Catalog
	segMgr       *segment.Manager
	pool         *buffer.Pool
	tablespaceID types.TablespaceID
	heapTables   map[string]*heap.Table
}

// New builds an executor over an already-open catalog, segment manager,
// and buffer pool, all sharing tablespaceID for new tables.
func New(cat *catalog.Catalog, segMgr *segment.Manager, pool *buffer.Pool, tablespaceID types.TablespaceID) *Executor {
	return &Executor{
		cat:          cat,
		segMgr:       segMgr,
		pool:         pool,
		tablespaceID: tablespaceID,
		heapTables:   make(map[string]*heap.Table),
	}
}

// Execute parses and runs one SQL statement, returning a human-readable
// result summary.
func (e *Executor) Execute(sqlText string) (string, error) {
	stmt, err := sql.Parse(sqlText)
	if err != nil {
		return "", err
	}
	switch s := stmt.(type) {
	case sql.CreateTableStmt:
		return e.execCreateTable(s)
	case sql.InsertStmt:
		return e.execInsert(s)
	case sql.SelectStmt:
		return e.execSelect(s)
	case sql.UpdateStmt:
		return e.execUpdate(s)
	case sql.DeleteStmt:
		return e.execDelete(s)
	default:
		return "", errors.New("executor: unrecognized statement")
	}
}

func (e *Executor) execCreateTable(ct sql.CreateTableStmt) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	columns := make([]types.Column, len(ct.Columns))
	for i, col := range ct.Columns {
		columns[i] = types.NewColumn(col.Name, col.DataType, col.Nullable, uint32(i))
	}

	segmentID, err := e.segMgr.CreateSegment(e.tablespaceID, segment.TypeData)
	if err != nil {
		return "", errors.Wrap(err, "create segment")
	}

	table, err := e.cat.CreateTable(ct.TableName, segmentID, columns)
	if err != nil {
		return "", err
	}

	e.heapTables[ct.TableName] = heap.NewTable(ct.TableName, segmentID, table.Columns, e.pool, e.segMgr, nil)
	return fmt.Sprintf("Created table '%s'", ct.TableName), nil
}

func (e *Executor) openTable(name string) (*catalog.Table, *heap.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.cat.GetTable(name)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrTableNotFound, "table %q", name)
	}
	ht, ok := e.heapTables[name]
	if !ok {
		ht = heap.NewTable(name, table.SegmentID, table.Columns, e.pool, e.segMgr, nil)
		e.heapTables[name] = ht
	}
	return table, ht, nil
}

func (e *Executor) execInsert(ins sql.InsertStmt) (string, error) {
	table, ht, err := e.openTable(ins.TableName)
	if err != nil {
		return "", err
	}
	if len(ins.Values) != len(table.Columns) {
		return "", errors.Errorf("INSERT: expected %d values, got %d", len(table.Columns), len(ins.Values))
	}

	values := make([]heap.Value, len(ins.Values))
	for i, lit := range ins.Values {
		v, err := coerceLiteral(lit, table.Columns[i].Type)
		if err != nil {
			return "", errors.Wrapf(err, "column %q", table.Columns[i].Name)
		}
		values[i] = v
	}

	if _, err := ht.Insert(values); err != nil {
		return "", err
	}
	if err := e.cat.SetRowCount(table.Name, table.RowCount+1); err != nil {
		return "", err
	}
	return fmt.Sprintf("INSERT: %d values provided", len(ins.Values)), nil
}

func (e *Executor) execSelect(sel sql.SelectStmt) (string, error) {
	_, ht, err := e.openTable(sel.From)
	if err != nil {
		return "", err
	}
	tuples, err := ht.Scan()
	if err != nil {
		return "", err
	}
	if len(tuples) == 0 {
		return "(empty result)", nil
	}
	var b strings.Builder
	for _, t := range tuples {
		parts := make([]string, len(t.Values))
		for i, v := range t.Values {
			parts[i] = formatValue(v)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// execUpdate applies every SET assignment to every row currently in the
// table (no WHERE evaluation — see package sql) and returns the number
// of rows scanned, matching this engine's known full-scan-count quirk
// for affected-row reporting.
func (e *Executor) execUpdate(upd sql.UpdateStmt) (string, error) {
	table, ht, err := e.openTable(upd.TableName)
	if err != nil {
		return "", err
	}

	assignments := make(map[string]string, len(upd.Set))
	for _, a := range upd.Set {
		assignments[a.Column] = a.Value
	}

	rowIDs, rows, err := scanWithRowIDs(ht, table.Columns)
	if err != nil {
		return "", err
	}

	for i, rid := range rowIDs {
		newValues := append([]heap.Value(nil), rows[i]...)
		for colIdx, col := range table.Columns {
			if lit, ok := assignments[col.Name]; ok {
				v, err := coerceLiteral(lit, col.Type)
				if err != nil {
					return "", err
				}
				newValues[colIdx] = v
			}
		}
		if err := ht.Update(rid, newValues); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("UPDATE on '%s': %d rows affected", upd.TableName, len(rowIDs)), nil
}

func (e *Executor) execDelete(del sql.DeleteStmt) (string, error) {
	_, ht, err := e.openTable(del.TableName)
	if err != nil {
		return "", err
	}
	rowIDs, _, err := scanWithRowIDs(ht, nil)
	if err != nil {
		return "", err
	}
	for _, rid := range rowIDs {
		if err := ht.Delete(rid); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("DELETE from '%s': %d rows affected", del.TableName, len(rowIDs)), nil
}

// scanWithRowIDs re-derives RowIds by scanning each page directly
// (heap.Table.Scan discards slot identity), needed by UPDATE/DELETE to
// address individual tuples.
func scanWithRowIDs(ht *heap.Table, columns []types.Column) ([]heap.RowId, [][]heap.Value, error) {
	var rowIDs []heap.RowId
	var rows [][]heap.Value
	for _, pid := range ht.PageIDs() {
		page, values, err := ht.ScanPage(pid)
		if err != nil {
			return nil, nil, err
		}
		for slot, v := range values {
			if v == nil {
				continue
			}
			rowIDs = append(rowIDs, heap.RowId{PageID: pid, Slot: slot})
			rows = append(rows, v)
		}
		_ = page
	}
	return rowIDs, rows, nil
}

func formatValue(v heap.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Kind {
	case types.KindBool:
		return strconv.FormatBool(v.Bool)
	case types.KindFloat32, types.KindFloat64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.KindVarchar:
		return v.Str
	case types.KindBlob:
		return fmt.Sprintf("<%d bytes>", len(v.Bytes))
	case types.KindUInt8, types.KindUInt16, types.KindUInt32, types.KindUInt64:
		return strconv.FormatUint(uint64(v.Int), 10)
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// coerceLiteral converts a raw SQL literal token into a typed Value
// against the target column type: integer literal -> int/uint of the
// column's kind, decimal literal -> float, quoted text -> string, NULL
// (case-insensitive) -> null, anything else -> raw text as Varchar.
//
// Integer literals are parsed at 32-bit width before widening, even for
// Int64/UInt64 columns — a parser quirk carried forward intentionally.
func coerceLiteral(lit string, colType types.ColumnType) (heap.Value, error) {
	trimmed := strings.TrimSpace(lit)
	if strings.EqualFold(trimmed, "NULL") {
		return heap.NullValue(), nil
	}
	if len(trimmed) >= 2 && (trimmed[0] == '\'' || trimmed[0] == '"') && trimmed[len(trimmed)-1] == trimmed[0] {
		return heap.VarcharValue(trimmed[1 : len(trimmed)-1]), nil
	}

	if colType.IsNumeric() {
		if colType.Kind == types.KindFloat32 || colType.Kind == types.KindFloat64 {
			f, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return heap.Value{}, errors.Wrapf(err, "invalid float literal %q", lit)
			}
			return heap.FloatValue(colType.Kind, f), nil
		}
		if isUnsignedKind(colType.Kind) {
			n, err := strconv.ParseUint(trimmed, 10, 32)
			if err != nil {
				return heap.Value{}, errors.Wrapf(err, "invalid integer literal %q", lit)
			}
			return heap.UintValue(colType.Kind, n), nil
		}
		n, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return heap.Value{}, errors.Wrapf(err, "invalid integer literal %q", lit)
		}
		return heap.IntValue(colType.Kind, int64(n)), nil
	}
	if colType.Kind == types.KindBool {
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return heap.Value{}, errors.Wrapf(err, "invalid bool literal %q", lit)
		}
		return heap.BoolValue(b), nil
	}

	return heap.VarcharValue(trimmed), nil
}

func isUnsignedKind(k types.ColumnKind) bool {
	switch k {
	case types.KindUInt8, types.KindUInt16, types.KindUInt32, types.KindUInt64:
		return true
	default:
		return false
	}
}
