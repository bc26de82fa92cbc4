package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ridgedb/internal/bkey"
	"ridgedb/internal/page"
)

func TestRowEncodeDecodeRoundTrip(t *testing.T) {
	schema := Schema{
		{Name: "id", Type: Int},
		{Name: "username", Type: Text, Width: 32},
		{Name: "email", Type: Text, Width: 255},
	}
	buf := make([]byte, schema.RowSize())
	require.NoError(t, EncodeRow(schema, []interface{}{uint32(7), "alice", "alice@example.com"}, buf))
	values, err := DecodeRow(schema, buf)
	require.NoError(t, err)
	require.Equal(t, uint32(7), values[0])
	require.Equal(t, "alice", values[1])
	require.Equal(t, "alice@example.com", values[2])
}

func TestEncodeRowRejectsOverlongText(t *testing.T) {
	schema := Schema{{Name: "username", Type: Text, Width: 4}}
	buf := make([]byte, schema.RowSize())
	err := EncodeRow(schema, []interface{}{"toolong"}, buf)
	require.Error(t, err)
}

func TestDirectoryEncodeDecodeRoundTrip(t *testing.T) {
	descs := []TableDescriptor{
		{
			Name:          "users",
			Columns:       Schema{{Name: "id", Type: Int}, {Name: "username", Type: Text, Width: 32}},
			RootPage:      2,
			IndexColumn:   "username",
			IndexRootPage: 5,
		},
		{
			Name:     "orders",
			Columns:  Schema{{Name: "id", Type: Int}, {Name: "user_id", Type: Int}},
			RootPage: 6,
		},
	}
	p := &page.Page{}
	require.NoError(t, writeDirectory(p, descs))
	got, err := readDirectory(p)
	require.NoError(t, err)
	require.Equal(t, descs, got)
}

func TestBootstrapSeedsDefaultTablesAndIndex(t *testing.T) {
	dir := t.TempDir()
	pgr, err := page.Open(filepath.Join(dir, "c.db"), nil)
	require.NoError(t, err)
	cat, err := Bootstrap(pgr, nil)
	require.NoError(t, err)

	users, ok := cat.Table("users")
	require.True(t, ok)
	require.NotNil(t, users.Index)
	orders, ok := cat.Table("orders")
	require.True(t, ok)
	require.Nil(t, orders.Index)
	require.ElementsMatch(t, []string{"users", "orders"}, cat.TableNames())

	row := make([]byte, users.Desc.Columns.RowSize())
	require.NoError(t, EncodeRow(users.Desc.Columns, []interface{}{uint32(1), "alice", "a@example.com"}, row))
	require.NoError(t, users.Rows.Insert(bkey.NewUint32(1), row))
	require.NoError(t, users.Index.Insert(bkey.NewFixedBytes([]byte("alice"), 32), row[:4]))

	v, found, err := users.Rows.Find(bkey.NewUint32(1))
	require.NoError(t, err)
	require.True(t, found)
	values, err := DecodeRow(users.Desc.Columns, v)
	require.NoError(t, err)
	require.Equal(t, "alice", values[1])
}

func TestCatalogReopenSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.db")
	pgr, err := page.Open(path, nil)
	require.NoError(t, err)
	cat, err := Bootstrap(pgr, nil)
	require.NoError(t, err)
	require.NoError(t, cat.CreateTable("widgets", Schema{{Name: "id", Type: Int}}))
	require.NoError(t, pgr.Close())

	pgr2, err := page.Open(path, nil)
	require.NoError(t, err)
	cat2, err := Open(pgr2, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"users", "orders", "widgets"}, cat2.TableNames())
	widgets, ok := cat2.Table("widgets")
	require.True(t, ok)
	require.Nil(t, widgets.Index)
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	pgr, err := page.Open(filepath.Join(dir, "c.db"), nil)
	require.NoError(t, err)
	cat, err := Bootstrap(pgr, nil)
	require.NoError(t, err)
	err = cat.CreateTable("users", Schema{{Name: "id", Type: Int}})
	require.ErrorIs(t, err, ErrTableAlreadyExists)
}
