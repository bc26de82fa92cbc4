// Package node implements the on-disk byte layout of B+tree pages: the
// common header shared by leaf and internal nodes, and the cell arrays
// that follow it. It operates directly on a page's byte buffer, the way
// the original tutorial's node.c accessor functions do, generalized to
// support variable key widths and row sizes via a Layout value computed
// from a table's schema.
package node

import (
	"encoding/binary"

	"ridgedb/internal/bkey"
	"ridgedb/internal/page"
)

// Node type tags, stored in the header's first byte.
const (
	TypeInternal byte = 0
	TypeLeaf     byte = 1
)

// Common + type-specific header layout. Both node types use the same
// 14-byte header shape; the field at offset 10 means "next leaf page" for
// leaf nodes and "rightmost child page" for internal nodes.
const (
	offNodeType   = 0
	offIsRoot     = 1
	offParentPage = 2
	offNumCells   = 6
	offRightPtr   = 10
	// HeaderSize is the number of bytes occupied by the header on every
	// node page, leaf or internal.
	HeaderSize = 14
)

// NodeType reads the page's node type tag.
func NodeType(p *page.Page) byte { return p.Data[offNodeType] }

// IsLeaf reports whether p holds a leaf node.
func IsLeaf(p *page.Page) bool { return p.Data[offNodeType] == TypeLeaf }

// IsRoot reports the page's root flag.
func IsRoot(p *page.Page) bool { return p.Data[offIsRoot] != 0 }

// SetIsRoot sets the page's root flag.
func SetIsRoot(p *page.Page, v bool) {
	if v {
		p.Data[offIsRoot] = 1
	} else {
		p.Data[offIsRoot] = 0
	}
	p.Dirty = true
}

// ParentPage reads the page's parent pointer.
func ParentPage(p *page.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[offParentPage : offParentPage+4])
}

// SetParentPage sets the page's parent pointer.
func SetParentPage(p *page.Page, parent uint32) {
	binary.LittleEndian.PutUint32(p.Data[offParentPage:offParentPage+4], parent)
	p.Dirty = true
}

// NumCells reads the page's cell count (number of keys, for internal
// nodes; number of key/value pairs, for leaf nodes).
func NumCells(p *page.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[offNumCells : offNumCells+4])
}

// SetNumCells sets the page's cell count.
func SetNumCells(p *page.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[offNumCells:offNumCells+4], n)
	p.Dirty = true
}

// NextLeaf reads a leaf page's right-sibling pointer (0 means none).
func NextLeaf(p *page.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[offRightPtr : offRightPtr+4])
}

// SetNextLeaf sets a leaf page's right-sibling pointer.
func SetNextLeaf(p *page.Page, next uint32) {
	binary.LittleEndian.PutUint32(p.Data[offRightPtr:offRightPtr+4], next)
	p.Dirty = true
}

// RightChild reads an internal page's rightmost child pointer.
func RightChild(p *page.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[offRightPtr : offRightPtr+4])
}

// SetRightChild sets an internal page's rightmost child pointer.
func SetRightChild(p *page.Page, child uint32) {
	binary.LittleEndian.PutUint32(p.Data[offRightPtr:offRightPtr+4], child)
	p.Dirty = true
}

// InitLeaf zeroes p and writes a fresh, empty leaf header.
func InitLeaf(p *page.Page, isRoot bool, parent uint32) {
	clear(p.Data[:])
	p.Data[offNodeType] = TypeLeaf
	SetIsRoot(p, isRoot)
	SetParentPage(p, parent)
	SetNumCells(p, 0)
	SetNextLeaf(p, 0)
}

// InitInternal zeroes p and writes a fresh, empty internal header.
func InitInternal(p *page.Page, isRoot bool, parent uint32) {
	clear(p.Data[:])
	p.Data[offNodeType] = TypeInternal
	SetIsRoot(p, isRoot)
	SetParentPage(p, parent)
	SetNumCells(p, 0)
	SetRightChild(p, 0)
}

// Layout describes the fixed cell geometry for one B+tree: the kind and
// width of its keys, and (for the leaf level) the width of its stored
// rows. An internal index built over the same key kind shares the same
// KeyKind/KeyWidth but has its own ValueSize (the primary key width, for
// a secondary index whose leaves store primary keys rather than rows).
type Layout struct {
	KeyKind   bkey.Kind
	KeyWidth  int
	ValueSize int
}

// LeafCellSize is the byte width of one leaf cell (key + value).
func (l Layout) LeafCellSize() int { return l.KeyWidth + l.ValueSize }

// InternalCellSize is the byte width of one internal cell (child page +
// key).
func (l Layout) InternalCellSize() int { return 4 + l.KeyWidth }

// LeafMaxCells is the largest number of leaf cells that fit in one page.
func (l Layout) LeafMaxCells() int {
	return (page.Size - HeaderSize) / l.LeafCellSize()
}

// InternalMaxCells is the largest number of internal cells that fit in
// one page (in addition to the header's right-child pointer).
func (l Layout) InternalMaxCells() int {
	return (page.Size - HeaderSize) / l.InternalCellSize()
}

func (l Layout) leafCellOffset(i int) int { return HeaderSize + i*l.LeafCellSize() }
func (l Layout) internalCellOffset(i int) int { return HeaderSize + i*l.InternalCellSize() }

// LeafKeyBytes returns the raw key bytes of leaf cell i.
func (l Layout) LeafKeyBytes(p *page.Page, i int) []byte {
	off := l.leafCellOffset(i)
	return p.Data[off : off+l.KeyWidth]
}

// LeafKey decodes the key of leaf cell i.
func (l Layout) LeafKey(p *page.Page, i int) bkey.Key {
	return bkey.Decode(l.KeyKind, l.KeyWidth, l.LeafKeyBytes(p, i))
}

// LeafValueBytes returns the raw value bytes of leaf cell i.
func (l Layout) LeafValueBytes(p *page.Page, i int) []byte {
	off := l.leafCellOffset(i) + l.KeyWidth
	return p.Data[off : off+l.ValueSize]
}

// SetLeafCell writes key and value into leaf cell slot i.
func (l Layout) SetLeafCell(p *page.Page, i int, key bkey.Key, value []byte) {
	off := l.leafCellOffset(i)
	key.Encode(p.Data[off : off+l.KeyWidth])
	copy(p.Data[off+l.KeyWidth:off+l.KeyWidth+l.ValueSize], value)
	p.Dirty = true
}

// CopyLeafCell copies leaf cell i of src into slot j of dst. src and dst
// must share the same Layout.
func (l Layout) CopyLeafCell(dst, src *page.Page, j, i int) {
	doff := l.leafCellOffset(j)
	soff := l.leafCellOffset(i)
	copy(dst.Data[doff:doff+l.LeafCellSize()], src.Data[soff:soff+l.LeafCellSize()])
	dst.Dirty = true
}

// InternalChildPage returns the child page pointer of internal cell i.
func (l Layout) InternalChildPage(p *page.Page, i int) uint32 {
	off := l.internalCellOffset(i)
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}

// InternalKey decodes the separator key of internal cell i.
func (l Layout) InternalKey(p *page.Page, i int) bkey.Key {
	off := l.internalCellOffset(i) + 4
	return bkey.Decode(l.KeyKind, l.KeyWidth, p.Data[off:off+l.KeyWidth])
}

// SetInternalCell writes a child pointer and separator key into internal
// cell slot i.
func (l Layout) SetInternalCell(p *page.Page, i int, child uint32, key bkey.Key) {
	off := l.internalCellOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+4], child)
	key.Encode(p.Data[off+4 : off+4+l.KeyWidth])
	p.Dirty = true
}

// SetInternalChildPage rewrites only the child pointer of internal cell
// i, leaving its separator key untouched.
func (l Layout) SetInternalChildPage(p *page.Page, i int, child uint32) {
	off := l.internalCellOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+4], child)
	p.Dirty = true
}

// SetInternalKey rewrites only the separator key of internal cell i,
// leaving its child pointer untouched. Used to fix a cell's separator
// after its child's subtree max key shrinks or grows without a split.
func (l Layout) SetInternalKey(p *page.Page, i int, key bkey.Key) {
	off := l.internalCellOffset(i) + 4
	key.Encode(p.Data[off : off+l.KeyWidth])
	p.Dirty = true
}

// CopyInternalCell copies internal cell i of src into slot j of dst.
func (l Layout) CopyInternalCell(dst, src *page.Page, j, i int) {
	doff := l.internalCellOffset(j)
	soff := l.internalCellOffset(i)
	copy(dst.Data[doff:doff+l.InternalCellSize()], src.Data[soff:soff+l.InternalCellSize()])
	dst.Dirty = true
}
