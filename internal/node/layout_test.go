package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridgedb/internal/bkey"
	"ridgedb/internal/page"
)

func TestLeafHeaderRoundTrip(t *testing.T) {
	p := &page.Page{Num: 3}
	InitLeaf(p, true, 7)
	assert.True(t, IsLeaf(p))
	assert.True(t, IsRoot(p))
	assert.Equal(t, uint32(7), ParentPage(p))
	assert.Equal(t, uint32(0), NumCells(p))

	SetNumCells(p, 2)
	SetNextLeaf(p, 42)
	assert.Equal(t, uint32(2), NumCells(p))
	assert.Equal(t, uint32(42), NextLeaf(p))
}

func TestInternalHeaderRoundTrip(t *testing.T) {
	p := &page.Page{Num: 5}
	InitInternal(p, false, 1)
	assert.False(t, IsLeaf(p))
	assert.False(t, IsRoot(p))
	assert.Equal(t, uint32(1), ParentPage(p))

	SetRightChild(p, 99)
	assert.Equal(t, uint32(99), RightChild(p))
}

func TestLeafCells(t *testing.T) {
	l := Layout{KeyKind: bkey.Uint32, KeyWidth: 4, ValueSize: 8}
	p := &page.Page{}
	InitLeaf(p, true, 0)

	l.SetLeafCell(p, 0, bkey.NewUint32(10), []byte("rowdata1"))
	l.SetLeafCell(p, 1, bkey.NewUint32(20), []byte("rowdata2"))

	require.Equal(t, uint32(10), l.LeafKey(p, 0).Value)
	require.Equal(t, uint32(20), l.LeafKey(p, 1).Value)
	assert.Equal(t, []byte("rowdata1"), l.LeafValueBytes(p, 0))
	assert.Equal(t, []byte("rowdata2"), l.LeafValueBytes(p, 1))
}

func TestInternalCells(t *testing.T) {
	l := Layout{KeyKind: bkey.Uint32, KeyWidth: 4}
	p := &page.Page{}
	InitInternal(p, false, 0)

	l.SetInternalCell(p, 0, 100, bkey.NewUint32(50))
	assert.Equal(t, uint32(100), l.InternalChildPage(p, 0))
	assert.Equal(t, uint32(50), l.InternalKey(p, 0).Value)

	l.SetInternalChildPage(p, 0, 200)
	assert.Equal(t, uint32(200), l.InternalChildPage(p, 0))
	assert.Equal(t, uint32(50), l.InternalKey(p, 0).Value)
}

func TestMaxCellsFitsPage(t *testing.T) {
	l := Layout{KeyKind: bkey.Uint32, KeyWidth: 4, ValueSize: 293}
	maxLeaf := l.LeafMaxCells()
	assert.Greater(t, maxLeaf, 0)
	assert.LessOrEqual(t, HeaderSize+maxLeaf*l.LeafCellSize(), page.Size)

	maxInt := l.InternalMaxCells()
	assert.Greater(t, maxInt, 0)
	assert.LessOrEqual(t, HeaderSize+maxInt*l.InternalCellSize(), page.Size)
}

func TestCopyLeafCell(t *testing.T) {
	l := Layout{KeyKind: bkey.FixedBytes, KeyWidth: 8, ValueSize: 4}
	src := &page.Page{}
	dst := &page.Page{}
	InitLeaf(src, false, 0)
	InitLeaf(dst, false, 0)
	l.SetLeafCell(src, 0, bkey.NewFixedBytes([]byte("alice"), 8), []byte{1, 2, 3, 4})
	l.CopyLeafCell(dst, src, 0, 0)
	assert.Equal(t, src.Data[HeaderSize:HeaderSize+l.LeafCellSize()], dst.Data[HeaderSize:HeaderSize+l.LeafCellSize()])
}
