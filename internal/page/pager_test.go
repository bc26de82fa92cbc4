package page

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateGetPageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pgr, err := Open(filepath.Join(dir, "t.db"), nil)
	require.NoError(t, err)

	n := pgr.AllocatePage()
	require.Equal(t, uint32(0), n)
	p, err := pgr.GetPage(n)
	require.NoError(t, err)
	p.Data[0] = 42
	p.Dirty = true

	p2, err := pgr.GetPage(n)
	require.NoError(t, err)
	require.Same(t, p, p2)
	require.Equal(t, byte(42), p2.Data[0])
}

func TestFlushPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.db")
	pgr, err := Open(path, nil)
	require.NoError(t, err)

	n := pgr.AllocatePage()
	p, err := pgr.GetPage(n)
	require.NoError(t, err)
	p.Data[10] = 7
	p.Dirty = true
	require.NoError(t, pgr.Close())

	pgr2, err := Open(path, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(1), pgr2.NumPages())
	p2, err := pgr2.GetPage(n)
	require.NoError(t, err)
	require.Equal(t, byte(7), p2.Data[10])
}

func TestRollbackRestoresShadowedPage(t *testing.T) {
	dir := t.TempDir()
	pgr, err := Open(filepath.Join(dir, "t.db"), nil)
	require.NoError(t, err)

	n := pgr.AllocatePage()
	p, err := pgr.GetPage(n)
	require.NoError(t, err)
	p.Data[0] = 1
	require.NoError(t, pgr.Flush(n, Size))

	pgr.BeginTx()
	require.NoError(t, pgr.Touch(n))
	p, err = pgr.GetPage(n)
	require.NoError(t, err)
	p.Data[0] = 99

	require.NoError(t, pgr.RollbackTx())
	p, err = pgr.GetPage(n)
	require.NoError(t, err)
	require.Equal(t, byte(1), p.Data[0])
}

func TestRollbackDiscardsPagesAllocatedDuringTx(t *testing.T) {
	dir := t.TempDir()
	pgr, err := Open(filepath.Join(dir, "t.db"), nil)
	require.NoError(t, err)

	pgr.BeginTx()
	before := pgr.NumPages()
	n := pgr.AllocatePage()
	_, err = pgr.GetPage(n)
	require.NoError(t, err)
	require.NoError(t, pgr.RollbackTx())
	require.Equal(t, before, pgr.NumPages())
}

func TestCommitFlushesDirtyPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.db")
	pgr, err := Open(path, nil)
	require.NoError(t, err)

	pgr.BeginTx()
	n := pgr.AllocatePage()
	require.NoError(t, pgr.Touch(n))
	p, err := pgr.GetPage(n)
	require.NoError(t, err)
	p.Data[0] = 55
	require.NoError(t, pgr.CommitTx())
	require.False(t, pgr.InTx())

	pgr2, err := Open(path, nil)
	require.NoError(t, err)
	p2, err := pgr2.GetPage(n)
	require.NoError(t, err)
	require.Equal(t, byte(55), p2.Data[0])
}

func TestFatalHookInvokedOnFullDirtyCache(t *testing.T) {
	dir := t.TempDir()
	pgr, err := Open(filepath.Join(dir, "t.db"), nil)
	require.NoError(t, err)
	pgr.cacheCap = 2

	var gotFatal bool
	pgr.SetFatal(func(format string, args ...interface{}) { gotFatal = true })

	for i := 0; i < 3; i++ {
		n := pgr.AllocatePage()
		require.NoError(t, pgr.Touch(n))
	}
	require.True(t, gotFatal)
}
