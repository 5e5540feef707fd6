package executor

import (
	"strings"
	"testing"

	"aistore/buffer"
	"aistore/catalog"
	"aistore/segment"
	"aistore/tablespace"
	"aistore/vfs"

	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T) *Executor {
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

	return New(cat, segMgr, pool, tsID)
}

func TestExecuteCreateTable(t *testing.T) {
	exec := newTestExecutor(t)

	out, err := exec.Execute("CREATE TABLE users (id INT64, name VARCHAR(32))")
	require.NoError(t, err)
	require.Contains(t, out, "users")
}

func TestExecuteInsertAndSelect(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Execute("CREATE TABLE users (id INT64, name VARCHAR(32))")
	require.NoError(t, err)

	_, err = exec.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)
	_, err = exec.Execute("INSERT INTO users VALUES (2, 'bob')")
	require.NoError(t, err)

	out, err := exec.Execute("SELECT * FROM users")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "alice"))
	require.True(t, strings.Contains(out, "bob"))
}

func TestExecuteInsertWrongColumnCountFails(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("CREATE TABLE users (id INT64, name VARCHAR(32))")
	require.NoError(t, err)

	_, err = exec.Execute("INSERT INTO users VALUES (1)")
	require.Error(t, err)
}

func TestExecuteSelectUnknownTableFails(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("SELECT * FROM nope")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestExecuteUpdateAppliesToAllRows(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("CREATE TABLE users (id INT64, k INT64)")
	require.NoError(t, err)

	_, err = exec.Execute("INSERT INTO users VALUES (1, 10)")
	require.NoError(t, err)
	_, err = exec.Execute("INSERT INTO users VALUES (2, 20)")
	require.NoError(t, err)

	_, err = exec.Execute("UPDATE users SET k = 99 WHERE id = 1")
	require.NoError(t, err)

	out, err := exec.Execute("SELECT * FROM users")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "99"))
}

func TestExecuteDeleteRemovesAllRows(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("CREATE TABLE users (id INT64)")
	require.NoError(t, err)

	_, err = exec.Execute("INSERT INTO users VALUES (1)")
	require.NoError(t, err)
	_, err = exec.Execute("INSERT INTO users VALUES (2)")
	require.NoError(t, err)

	_, err = exec.Execute("DELETE FROM users WHERE id = 1")
	require.NoError(t, err)

	out, err := exec.Execute("SELECT * FROM users")
	require.NoError(t, err)
	require.Equal(t, "(empty result)", out)
}

func TestCoerceLiteralParsesIntAtInt32WidthEvenForInt64Column(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("CREATE TABLE big (id INT64)")
	require.NoError(t, err)

	// value fits in int64 but not int32; the documented quirk means this
	// literal is parsed at 32-bit width and fails rather than widening.
	_, err = exec.Execute("INSERT INTO big VALUES (9999999999)")
	require.Error(t, err)
}

func TestCoerceLiteralNullRequiresNullableColumn(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Execute("CREATE TABLE strict (id INT64 NOT NULL)")
	require.NoError(t, err)

	_, err = exec.Execute("INSERT INTO strict VALUES (NULL)")
	require.Error(t, err)
}
