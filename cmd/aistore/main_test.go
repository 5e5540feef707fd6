package main

import (
	"strings"
	"testing"

	"aistore/config"

	"github.com/stretchr/testify/require"
)

func TestBootstrapCreatesTablespaceOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig(dir)

	exec, cleanup, err := bootstrap(cfg)
	require.NoError(t, err)
	defer cleanup()

	_, err = exec.Execute("CREATE TABLE t (id INT64)")
	require.NoError(t, err)
}

func TestBootstrapReopensExistingTablespace(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig(dir)

	exec1, cleanup1, err := bootstrap(cfg)
	require.NoError(t, err)
	_, err = exec1.Execute("CREATE TABLE t (id INT64)")
	require.NoError(t, err)
	_, err = exec1.Execute("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	cleanup1()

	exec2, cleanup2, err := bootstrap(cfg)
	require.NoError(t, err)
	defer cleanup2()

	out, err := exec2.Execute("SELECT * FROM t")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "1"))
}

func TestRunREPLExecutesStatementsUntilExit(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig(dir)
	exec, cleanup, err := bootstrap(cfg)
	require.NoError(t, err)
	defer cleanup()

	// EXIT stops the loop; the trailing SELECT is never reached.
	input := strings.NewReader("CREATE TABLE t (id INT64)\nINSERT INTO t VALUES (1)\nEXIT\nSELECT * FROM t\n")
	err = runREPL(exec, input)
	require.NoError(t, err)

	out, err := exec.Execute("SELECT * FROM t")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "1"))
}

func TestRunREPLSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig(dir)
	exec, cleanup, err := bootstrap(cfg)
	require.NoError(t, err)
	defer cleanup()

	err = runREPL(exec, strings.NewReader("\n\nCREATE TABLE t (id INT64)\n\nEXIT\n"))
	require.NoError(t, err)
}
