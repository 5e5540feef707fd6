package bench

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"aistore/executor"

	"github.com/pkg/errors"
)

// Scenario is one synthetic workload the benchmark tool can drive.
type Scenario interface {
	Prepare(exec *executor.Executor) error
	Execute(exec *executor.Executor, rng *rand.Rand) error
	TableName() string
}

const tableSchema = "CREATE TABLE %s (id INT64, k INT64, c VARCHAR(100), pad VARCHAR(60))"

func createTable(exec *executor.Executor, name string) error {
	_, err := exec.Execute(fmt.Sprintf(tableSchema, name))
	return err
}

// PointSelect issues SELECT ... WHERE id = <random id>. The executor does
// not evaluate WHERE, so each call returns every row in the table.
type PointSelect struct {
	table string
	rows  int
}

func NewPointSelect(rows int) *PointSelect { return &PointSelect{table: "sbtest1", rows: rows} }
func (s *PointSelect) TableName() string   { return s.table }
func (s *PointSelect) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *PointSelect) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := rng.Intn(s.rows) + 1
	_, err := exec.Execute(fmt.Sprintf("SELECT * FROM %s WHERE id = %d", s.table, id))
	return err
}

// ReadOnly issues a full table scan every iteration.
type ReadOnly struct{ table string }

func NewReadOnly() *ReadOnly                              { return &ReadOnly{table: "sbtest1"} }
func (s *ReadOnly) TableName() string                      { return s.table }
func (s *ReadOnly) Prepare(exec *executor.Executor) error  { return createTable(exec, s.table) }
func (s *ReadOnly) Execute(exec *executor.Executor, rng *rand.Rand) error {
	_, err := exec.Execute(fmt.Sprintf("SELECT * FROM %s", s.table))
	return err
}

// ReadWrite scans the table then issues UPDATE ... SET k WHERE id =
// <random id>; with WHERE not evaluated, every row is updated.
type ReadWrite struct {
	table string
	rows  int
}

func NewReadWrite(rows int) *ReadWrite { return &ReadWrite{table: "sbtest1", rows: rows} }
func (s *ReadWrite) TableName() string { return s.table }
func (s *ReadWrite) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *ReadWrite) Execute(exec *executor.Executor, rng *rand.Rand) error {
	if _, err := exec.Execute(fmt.Sprintf("SELECT * FROM %s", s.table)); err != nil {
		return err
	}
	id := rng.Intn(s.rows) + 1
	_, err := exec.Execute(fmt.Sprintf("UPDATE %s SET k = %d WHERE id = %d", s.table, rng.Int31(), id))
	return err
}

// WriteOnly inserts a fresh row then issues UPDATE ... WHERE id =
// <random id>; with WHERE not evaluated, every row is updated.
type WriteOnly struct {
	table  string
	rows   int
	nextID int64
}

func NewWriteOnly(rows int) *WriteOnly {
	return &WriteOnly{table: "sbtest1", rows: rows, nextID: int64(rows + 1)}
}
func (s *WriteOnly) TableName() string { return s.table }
func (s *WriteOnly) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *WriteOnly) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := atomic.AddInt64(&s.nextID, 1) - 1
	k := rng.Int31()
	if _, err := exec.Execute(fmt.Sprintf("INSERT INTO %s VALUES (%d, %d, 'test', 'pad')", s.table, id, k)); err != nil {
		return err
	}
	updateID := rng.Intn(s.rows) + 1
	_, err := exec.Execute(fmt.Sprintf("UPDATE %s SET k = %d WHERE id = %d", s.table, rng.Int31(), updateID))
	return err
}

// UpdateIndex issues UPDATE ... SET k WHERE id = <random id>. No index
// exists on k, and with WHERE not evaluated every row is updated.
type UpdateIndex struct {
	table string
	rows  int
}

func NewUpdateIndex(rows int) *UpdateIndex { return &UpdateIndex{table: "sbtest1", rows: rows} }
func (s *UpdateIndex) TableName() string   { return s.table }
func (s *UpdateIndex) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *UpdateIndex) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := rng.Intn(s.rows) + 1
	_, err := exec.Execute(fmt.Sprintf("UPDATE %s SET k = %d WHERE id = %d", s.table, rng.Int31(), id))
	return err
}

// UpdateNonIndex issues UPDATE ... SET pad WHERE id = <random id>; with
// WHERE not evaluated, every row is updated.
type UpdateNonIndex struct {
	table string
	rows  int
}

func NewUpdateNonIndex(rows int) *UpdateNonIndex { return &UpdateNonIndex{table: "sbtest1", rows: rows} }
func (s *UpdateNonIndex) TableName() string      { return s.table }
func (s *UpdateNonIndex) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *UpdateNonIndex) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := rng.Intn(s.rows) + 1
	_, err := exec.Execute(fmt.Sprintf("UPDATE %s SET pad = 'updated' WHERE id = %d", s.table, id))
	return err
}

// Insert appends a single fresh row every iteration.
type Insert struct {
	table  string
	nextID int64
}

func NewInsert(rows int) *Insert { return &Insert{table: "sbtest1", nextID: int64(rows + 1)} }
func (s *Insert) TableName() string { return s.table }
func (s *Insert) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *Insert) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := atomic.AddInt64(&s.nextID, 1) - 1
	k := rng.Int31()
	_, err := exec.Execute(fmt.Sprintf("INSERT INTO %s VALUES (%d, %d, 'test data', 'padding')", s.table, id, k))
	return err
}

// Delete issues DELETE ... WHERE id = n for n = 1..rows, once each, then
// becomes a no-op. With WHERE not evaluated, each statement deletes
// every row in the table.
type Delete struct {
	table        string
	rows         int
	nextDeleteID int64
}

func NewDelete(rows int) *Delete { return &Delete{table: "sbtest1", rows: rows, nextDeleteID: 1} }
func (s *Delete) TableName() string { return s.table }
func (s *Delete) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *Delete) Execute(exec *executor.Executor, rng *rand.Rand) error {
	id := atomic.AddInt64(&s.nextDeleteID, 1) - 1
	if id > int64(s.rows) {
		return nil
	}
	_, err := exec.Execute(fmt.Sprintf("DELETE FROM %s WHERE id = %d", s.table, id))
	return err
}

// BulkInsert inserts a batch of rows, one INSERT statement per row,
// every iteration — this parser has no notion of a multi-tuple VALUES
// list, so a batch is issued as batchSize sequential statements rather
// than one.
type BulkInsert struct {
	table     string
	batchSize int
	nextID    int64
}

func NewBulkInsert(rows int) *BulkInsert {
	return &BulkInsert{table: "sbtest1", batchSize: 100, nextID: int64(rows + 1)}
}
func (s *BulkInsert) TableName() string { return s.table }
func (s *BulkInsert) Prepare(exec *executor.Executor) error { return createTable(exec, s.table) }
func (s *BulkInsert) Execute(exec *executor.Executor, rng *rand.Rand) error {
	startID := atomic.AddInt64(&s.nextID, int64(s.batchSize)) - int64(s.batchSize)
	for i := 0; i < s.batchSize; i++ {
		id := startID + int64(i)
		k := rng.Int31()
		if _, err := exec.Execute(fmt.Sprintf("INSERT INTO %s VALUES (%d, %d, 'data', 'pad')", s.table, id, k)); err != nil {
			return err
		}
	}
	return nil
}

// NewScenario builds the named scenario, or an error for an unknown name.
func NewScenario(name string, rows int) (Scenario, error) {
	switch name {
	case "point_select":
		return NewPointSelect(rows), nil
	case "read_only":
		return NewReadOnly(), nil
	case "read_write":
		return NewReadWrite(rows), nil
	case "write_only":
		return NewWriteOnly(rows), nil
	case "update_index":
		return NewUpdateIndex(rows), nil
	case "update_non_index":
		return NewUpdateNonIndex(rows), nil
	case "insert":
		return NewInsert(rows), nil
	case "delete":
		return NewDelete(rows), nil
	case "bulk_insert":
		return NewBulkInsert(rows), nil
	default:
		return nil, errors.Errorf("unknown scenario: %s", name)
	}
}
