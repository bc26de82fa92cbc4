package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ridgedb/internal/bkey"
	"ridgedb/internal/node"
	"ridgedb/internal/page"
)

func newTestTree(t *testing.T, valueSize int) *Tree {
	t.Helper()
	dir := t.TempDir()
	pgr, err := page.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	layout := node.Layout{KeyKind: bkey.Uint32, KeyWidth: 4, ValueSize: valueSize}
	tree, err := Create(pgr, layout, nil)
	require.NoError(t, err)
	return tree
}

func valueFor(id uint32, size int) []byte {
	v := make([]byte, size)
	copy(v, fmt.Sprintf("row-%d", id))
	return v
}

func TestInsertFindSmall(t *testing.T) {
	tree := newTestTree(t, 16)
	for i := uint32(1); i <= 5; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(i), valueFor(i, 16)))
	}
	for i := uint32(1); i <= 5; i++ {
		v, found, err := tree.Find(bkey.NewUint32(i))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, valueFor(i, 16), v)
	}
	_, found, err := tree.Find(bkey.NewUint32(99))
	require.NoError(t, err)
	require.False(t, found)
}

func TestInsertDuplicateKeyRejected(t *testing.T) {
	tree := newTestTree(t, 16)
	require.NoError(t, tree.Insert(bkey.NewUint32(1), valueFor(1, 16)))
	err := tree.Insert(bkey.NewUint32(1), valueFor(1, 16))
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertCausesLeafSplit(t *testing.T) {
	// A large value size shrinks LeafMaxCells (20 cells), so this count
	// forces dozens of leaf splits under a single internal root.
	tree := newTestTree(t, 200)
	const n = 500
	for i := uint32(0); i < n; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(i), valueFor(i, 200)))
	}
	for i := uint32(0); i < n; i++ {
		v, found, err := tree.Find(bkey.NewUint32(i))
		require.NoError(t, err)
		require.True(t, found, "key %d", i)
		require.Equal(t, valueFor(i, 200), v)
	}
}

func TestInsertOutOfOrderStillFindsAll(t *testing.T) {
	tree := newTestTree(t, 64)
	ids := []uint32{50, 10, 90, 30, 70, 20, 80, 40, 60, 1, 99, 55}
	for _, id := range ids {
		require.NoError(t, tree.Insert(bkey.NewUint32(id), valueFor(id, 64)))
	}
	for _, id := range ids {
		v, found, err := tree.Find(bkey.NewUint32(id))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, valueFor(id, 64), v)
	}
}

func TestRangeScanOrdered(t *testing.T) {
	tree := newTestTree(t, 100)
	const n = 300
	for i := uint32(0); i < n; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(n-1-i), valueFor(n-1-i, 100)))
	}
	cur, err := tree.Start()
	require.NoError(t, err)
	var seen []uint32
	for cur.Valid() {
		k, err := cur.Key()
		require.NoError(t, err)
		seen = append(seen, k.Value)
		require.NoError(t, cur.Advance())
	}
	require.Len(t, seen, n)
	for i := 0; i < n; i++ {
		require.Equal(t, uint32(i), seen[i])
	}
}

func TestSeekFindsFirstKeyAtOrAfter(t *testing.T) {
	tree := newTestTree(t, 32)
	for _, id := range []uint32{5, 10, 15, 20, 25} {
		require.NoError(t, tree.Insert(bkey.NewUint32(id), valueFor(id, 32)))
	}
	cur, err := tree.Seek(bkey.NewUint32(12))
	require.NoError(t, err)
	require.True(t, cur.Valid())
	k, err := cur.Key()
	require.NoError(t, err)
	require.Equal(t, uint32(15), k.Value)

	cur2, err := tree.Seek(bkey.NewUint32(100))
	require.NoError(t, err)
	require.False(t, cur2.Valid())
}

func TestDeleteRemovesKey(t *testing.T) {
	tree := newTestTree(t, 32)
	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(i), valueFor(i, 32)))
	}
	require.NoError(t, tree.Delete(bkey.NewUint32(5)))
	_, found, err := tree.Find(bkey.NewUint32(5))
	require.NoError(t, err)
	require.False(t, found)
	for _, id := range []uint32{1, 2, 3, 4, 6, 7, 8, 9, 10} {
		_, found, err := tree.Find(bkey.NewUint32(id))
		require.NoError(t, err)
		require.True(t, found, "key %d should survive delete", id)
	}
}

func TestDeleteMissingKeyErrors(t *testing.T) {
	tree := newTestTree(t, 32)
	require.NoError(t, tree.Insert(bkey.NewUint32(1), valueFor(1, 32)))
	err := tree.Delete(bkey.NewUint32(2))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteMaxKeyFixesParentSeparator(t *testing.T) {
	tree := newTestTree(t, 200)
	const n = 400
	for i := uint32(0); i < n; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(i), valueFor(i, 200)))
	}
	require.NoError(t, tree.Delete(bkey.NewUint32(n-1)))
	_, found, err := tree.Find(bkey.NewUint32(n - 1))
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, tree.Insert(bkey.NewUint32(n-1), valueFor(n-1, 200)))
	v, found, err := tree.Find(bkey.NewUint32(n - 1))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, valueFor(n-1, 200), v)
}

func TestRootPageNumberNeverChanges(t *testing.T) {
	tree := newTestTree(t, 200)
	root := tree.RootPage()
	for i := uint32(0); i < 1000; i++ {
		require.NoError(t, tree.Insert(bkey.NewUint32(i), valueFor(i, 200)))
	}
	require.Equal(t, root, tree.RootPage())
}

func TestFixedBytesKeyTree(t *testing.T) {
	dir := t.TempDir()
	pgr, err := page.Open(filepath.Join(dir, "idx.db"), nil)
	require.NoError(t, err)
	layout := node.Layout{KeyKind: bkey.FixedBytes, KeyWidth: 32, ValueSize: 4}
	tree, err := Create(pgr, layout, nil)
	require.NoError(t, err)

	names := []string{"carol", "alice", "bob", "zeke", "mallory"}
	for i, name := range names {
		key := bkey.NewFixedBytes([]byte(name), 32)
		val := make([]byte, 4)
		val[0] = byte(i)
		require.NoError(t, tree.Insert(key, val))
	}
	cur, err := tree.Start()
	require.NoError(t, err)
	var order []string
	for cur.Valid() {
		k, err := cur.Key()
		require.NoError(t, err)
		order = append(order, string(trimNulBytes(k.Bytes)))
		require.NoError(t, cur.Advance())
	}
	require.Equal(t, []string{"alice", "bob", "carol", "mallory", "zeke"}, order)
}

func trimNulBytes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return b[:i]
}
