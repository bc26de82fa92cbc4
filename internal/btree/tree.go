// Package btree implements the paged B+tree: a single-writer, disk-backed
// index over either a table's rows (keyed by the primary uint32 id) or a
// secondary index (keyed by a fixed_bytes column value, with the primary
// key as its stored value). Every table and every secondary index owns
// its own Tree, sharing one underlying pager.
package btree

import (
	"go.uber.org/zap"

	"ridgedb/internal/bkey"
	"ridgedb/internal/node"
	"ridgedb/internal/page"
)

// Tree is a B+tree rooted at a fixed page number that never changes for
// the lifetime of the tree: Insert's root-split path always reuses the
// same root page number, relocating the old root's content to a new
// page instead.
type Tree struct {
	pager    *page.Pager
	rootPage uint32
	layout   node.Layout
	log      *zap.Logger
}

// Open wraps an existing root page (e.g. one recorded in the catalog) as
// a Tree.
func Open(pgr *page.Pager, rootPage uint32, layout node.Layout, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tree{pager: pgr, rootPage: rootPage, layout: layout, log: log}
}

// Create allocates a fresh root page (an empty leaf) and returns the Tree
// rooted there.
func Create(pgr *page.Pager, layout node.Layout, log *zap.Logger) (*Tree, error) {
	rootPageNum := pgr.AllocatePage()
	p, err := pgr.GetPage(rootPageNum)
	if err != nil {
		return nil, err
	}
	if err := pgr.Touch(rootPageNum); err != nil {
		return nil, err
	}
	node.InitLeaf(p, true, 0)
	return Open(pgr, rootPageNum, layout, log), nil
}

// RootPage returns the tree's (fixed, lifetime-stable) root page number.
func (t *Tree) RootPage() uint32 { return t.rootPage }

// Layout returns the tree's cell geometry.
func (t *Tree) Layout() node.Layout { return t.layout }

// descendToLeaf walks from the root to the leaf page that would contain
// key, following the convention that an internal cell's key is the
// maximum key of the subtree reachable through its child pointer.
func (t *Tree) descendToLeaf(key bkey.Key) (uint32, error) {
	pageNum := t.rootPage
	for {
		p, err := t.pager.GetPage(pageNum)
		if err != nil {
			return 0, err
		}
		if node.IsLeaf(p) {
			return pageNum, nil
		}
		numCells := int(node.NumCells(p))
		lo, hi := 0, numCells
		for lo < hi {
			mid := (lo + hi) / 2
			if bkey.Compare(t.layout.InternalKey(p, mid), key) < 0 {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < numCells {
			pageNum = t.layout.InternalChildPage(p, lo)
		} else {
			pageNum = node.RightChild(p)
		}
	}
}

// leafInsertIndex returns the first cell index in p whose key is >= key
// (the sorted insertion point, or the position of an exact match).
func (t *Tree) leafInsertIndex(p *page.Page, numCells int, key bkey.Key) int {
	lo, hi := 0, numCells
	for lo < hi {
		mid := (lo + hi) / 2
		if bkey.Compare(t.layout.LeafKey(p, mid), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Find looks up key and returns its stored value.
func (t *Tree) Find(key bkey.Key) ([]byte, bool, error) {
	leafPg, err := t.descendToLeaf(key)
	if err != nil {
		return nil, false, err
	}
	p, err := t.pager.GetPage(leafPg)
	if err != nil {
		return nil, false, err
	}
	numCells := int(node.NumCells(p))
	idx := t.leafInsertIndex(p, numCells, key)
	if idx < numCells && bkey.Equal(t.layout.LeafKey(p, idx), key) {
		return append([]byte(nil), t.layout.LeafValueBytes(p, idx)...), true, nil
	}
	return nil, false, nil
}

// Insert adds key/value to the tree. Returns ErrDuplicateKey if key is
// already present.
func (t *Tree) Insert(key bkey.Key, value []byte) error {
	leafPg, err := t.descendToLeaf(key)
	if err != nil {
		return err
	}
	p, err := t.pager.GetPage(leafPg)
	if err != nil {
		return err
	}
	numCells := int(node.NumCells(p))
	idx := t.leafInsertIndex(p, numCells, key)
	if idx < numCells && bkey.Equal(t.layout.LeafKey(p, idx), key) {
		return ErrDuplicateKey
	}
	return t.insertIntoLeaf(leafPg, idx, key, value)
}

func (t *Tree) insertIntoLeaf(leafPage uint32, idx int, key bkey.Key, value []byte) error {
	if err := t.pager.Touch(leafPage); err != nil {
		return err
	}
	lp, err := t.pager.GetPage(leafPage)
	if err != nil {
		return err
	}
	numCells := int(node.NumCells(lp))
	maxCells := t.layout.LeafMaxCells()

	if numCells < maxCells {
		t.shiftLeafCellsRight(lp, idx, numCells)
		t.layout.SetLeafCell(lp, idx, key, value)
		node.SetNumCells(lp, uint32(numCells+1))
		if idx == numCells && !node.IsRoot(lp) {
			return t.updateSeparatorForChild(node.ParentPage(lp), leafPage, key)
		}
		return nil
	}

	return t.splitLeafAndInsert(leafPage, idx, key, value)
}

func (t *Tree) shiftLeafCellsRight(p *page.Page, idx, numCells int) {
	for i := numCells; i > idx; i-- {
		t.layout.CopyLeafCell(p, p, i, i-1)
	}
}

// splitLeafAndInsert splits an overflowing leaf (numCells already at
// LeafMaxCells) to make room for one more cell at idx, then propagates
// the new right sibling upward.
func (t *Tree) splitLeafAndInsert(leafPage uint32, idx int, key bkey.Key, value []byte) error {
	lp, err := t.pager.GetPage(leafPage)
	if err != nil {
		return err
	}
	maxCells := t.layout.LeafMaxCells()

	wasRoot := node.IsRoot(lp)
	parentBefore := node.ParentPage(lp)
	oldNextLeaf := node.NextLeaf(lp)

	type kv struct {
		key   bkey.Key
		value []byte
	}
	combined := make([]kv, 0, maxCells+1)
	for i := 0; i < maxCells; i++ {
		if i == idx {
			combined = append(combined, kv{key, value})
		}
		combined = append(combined, kv{
			key:   t.layout.LeafKey(lp, i),
			value: append([]byte(nil), t.layout.LeafValueBytes(lp, i)...),
		})
	}
	if idx == maxCells {
		combined = append(combined, kv{key, value})
	}

	leftCount := len(combined) / 2

	rightPageNum := t.pager.AllocatePage()
	if err := t.pager.Touch(rightPageNum); err != nil {
		return err
	}
	rp, err := t.pager.GetPage(rightPageNum)
	if err != nil {
		return err
	}
	node.InitLeaf(rp, false, parentBefore)
	node.SetNextLeaf(rp, oldNextLeaf)
	for i := leftCount; i < len(combined); i++ {
		t.layout.SetLeafCell(rp, i-leftCount, combined[i].key, combined[i].value)
	}
	node.SetNumCells(rp, uint32(len(combined)-leftCount))

	node.InitLeaf(lp, wasRoot, parentBefore)
	for i := 0; i < leftCount; i++ {
		t.layout.SetLeafCell(lp, i, combined[i].key, combined[i].value)
	}
	node.SetNumCells(lp, uint32(leftCount))
	node.SetNextLeaf(lp, rightPageNum)

	rightMax := combined[len(combined)-1].key
	return t.propagateSplit(leafPage, rightPageNum, rightMax, wasRoot)
}

// Delete removes key from the tree. Per the store's weak minimum-fill
// contract, a leaf left under-full by a delete is never merged with a
// sibling or reclaimed — only its cell count shrinks.
func (t *Tree) Delete(key bkey.Key) error {
	leafPg, err := t.descendToLeaf(key)
	if err != nil {
		return err
	}
	if err := t.pager.Touch(leafPg); err != nil {
		return err
	}
	p, err := t.pager.GetPage(leafPg)
	if err != nil {
		return err
	}
	numCells := int(node.NumCells(p))
	idx := t.leafInsertIndex(p, numCells, key)
	if idx >= numCells || !bkey.Equal(t.layout.LeafKey(p, idx), key) {
		return ErrKeyNotFound
	}
	wasMax := idx == numCells-1
	for i := idx; i < numCells-1; i++ {
		t.layout.CopyLeafCell(p, p, i, i+1)
	}
	node.SetNumCells(p, uint32(numCells-1))
	if wasMax && numCells-1 > 0 && !node.IsRoot(p) {
		newMax := t.layout.LeafKey(p, numCells-2)
		return t.updateSeparatorForChild(node.ParentPage(p), leafPg, newMax)
	}
	return nil
}
