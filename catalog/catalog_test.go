package catalog

import (
	"testing"

	"aistore/types"

	"github.com/stretchr/testify/require"
)

func testColumns() []types.Column {
	return []types.Column{
		types.NewColumn("id", types.Int64Type, false, 0),
		types.NewColumn("name", types.VarcharType(64), true, 1),
	}
}

func TestCreateTableAndGet(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	tbl, err := cat.CreateTable("users", 1, testColumns())
	require.NoError(t, err)
	require.EqualValues(t, 1, tbl.TableID)

	got, err := cat.GetTable("users")
	require.NoError(t, err)
	require.Equal(t, tbl.TableID, got.TableID)

	byID, err := cat.GetTableByID(tbl.TableID)
	require.NoError(t, err)
	require.Equal(t, "users", byID.Name)
}

func TestCreateTableDuplicateNameFails(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = cat.CreateTable("users", 1, testColumns())
	require.NoError(t, err)

	_, err = cat.CreateTable("users", 2, testColumns())
	require.ErrorIs(t, err, ErrTableExists)
}

func TestCreateTableDuplicateColumnFails(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	cols := []types.Column{
		types.NewColumn("id", types.Int64Type, false, 0),
		types.NewColumn("id", types.Int64Type, false, 1),
	}
	_, err = cat.CreateTable("bad", 1, cols)
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestGetTableNotFound(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = cat.GetTable("missing")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestTableIDsIncreaseMonotonically(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	t1, err := cat.CreateTable("a", 1, testColumns())
	require.NoError(t, err)
	t2, err := cat.CreateTable("b", 2, testColumns())
	require.NoError(t, err)
	require.Greater(t, t2.TableID, t1.TableID)
}

func TestDropTableRemovesRegistration(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = cat.CreateTable("gone", 1, testColumns())
	require.NoError(t, err)
	require.True(t, cat.TableExists("gone"))

	require.NoError(t, cat.DropTable("gone"))
	require.False(t, cat.TableExists("gone"))
}

func TestSetRowCountPersists(t *testing.T) {
	dir := t.TempDir()
	cat, err := New(dir)
	require.NoError(t, err)

	_, err = cat.CreateTable("t", 1, testColumns())
	require.NoError(t, err)
	require.NoError(t, cat.SetRowCount("t", 7))

	reopened, err := Load(dir)
	require.NoError(t, err)

	got, err := reopened.GetTable("t")
	require.NoError(t, err)
	require.EqualValues(t, 7, got.RowCount)
}

func TestLoadReopensPersistedTables(t *testing.T) {
	dir := t.TempDir()
	cat, err := New(dir)
	require.NoError(t, err)

	_, err = cat.CreateTable("persisted", 5, testColumns())
	require.NoError(t, err)
	require.NoError(t, cat.SetRowCount("persisted", 3))

	reopened, err := Load(dir)
	require.NoError(t, err)

	got, err := reopened.GetTable("persisted")
	require.NoError(t, err)
	require.EqualValues(t, 5, got.SegmentID)
	require.EqualValues(t, 3, got.RowCount)
	require.Len(t, got.Columns, 2)
	require.Equal(t, "name", got.Columns[1].Name)
	require.True(t, got.Columns[1].Nullable)
}

func TestTableColumnByName(t *testing.T) {
	tbl := &Table{Columns: testColumns()}
	col, ok := tbl.ColumnByName("name")
	require.True(t, ok)
	require.Equal(t, types.VarcharType(64), col.Type)

	_, ok = tbl.ColumnByName("missing")
	require.False(t, ok)
}
