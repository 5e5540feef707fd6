package bench

import (
	"math/rand"
	"testing"

	"aistore/buffer"
	"aistore/catalog"
	"aistore/executor"
	"aistore/segment"
	"aistore/tablespace"
	"aistore/vfs"

	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	dir := t.TempDir()
	v := vfs.NewLocalFS()

	tsMgr := tablespace.NewManager(v, dir)
	tsID, err := tsMgr.CreateTablespace("main", tablespace.DefaultConfig())
	require.NoError(t, err)

	segMgr := segment.NewManager(tsMgr)
	pool := buffer.New(64, v, dir)

	cat, err := catalog.New(dir)
	require.NoError(t, err)

	return executor.New(cat, segMgr, pool, tsID)
}

func TestNewScenarioUnknownNameFails(t *testing.T) {
	_, err := NewScenario("not_a_scenario", 100)
	require.Error(t, err)
}

func TestNewScenarioKnownNames(t *testing.T) {
	names := []string{
		"point_select", "read_only", "read_write", "write_only",
		"update_index", "update_non_index", "insert", "delete", "bulk_insert",
	}
	for _, n := range names {
		scn, err := NewScenario(n, 10)
		require.NoError(t, err, n)
		require.Equal(t, "sbtest1", scn.TableName(), n)
	}
}

func TestPointSelectPrepareAndExecute(t *testing.T) {
	exec := newTestExecutor(t)
	scn := NewPointSelect(10)
	require.NoError(t, scn.Prepare(exec))

	_, err := exec.Execute("INSERT INTO sbtest1 VALUES (1, 1, 'c', 'p')")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, scn.Execute(exec, rng))
}

func TestWriteOnlyInsertsAndUpdates(t *testing.T) {
	exec := newTestExecutor(t)
	scn := NewWriteOnly(5)
	require.NoError(t, scn.Prepare(exec))

	for i := 0; i < 5; i++ {
		_, err := exec.Execute("INSERT INTO sbtest1 VALUES (" +
			itoa(i+1) + ", 0, 'c', 'p')")
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewSource(2))
	require.NoError(t, scn.Execute(exec, rng))
}

func TestDeleteScenarioBecomesNoOpPastRowCount(t *testing.T) {
	exec := newTestExecutor(t)
	scn := NewDelete(1)
	require.NoError(t, scn.Prepare(exec))

	_, err := exec.Execute("INSERT INTO sbtest1 VALUES (1, 0, 'c', 'p')")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	require.NoError(t, scn.Execute(exec, rng)) // deletes row 1
	require.NoError(t, scn.Execute(exec, rng)) // counter now past rows; no-op
}

func TestBulkInsertIssuesBatchOfRows(t *testing.T) {
	exec := newTestExecutor(t)
	scn := NewBulkInsert(0)
	require.NoError(t, scn.Prepare(exec))

	rng := rand.New(rand.NewSource(4))
	require.NoError(t, scn.Execute(exec, rng))

	out, err := exec.Execute("SELECT * FROM sbtest1")
	require.NoError(t, err)
	require.NotEqual(t, "(empty result)", out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
