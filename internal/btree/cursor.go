package btree

import (
	"ridgedb/internal/bkey"
	"ridgedb/internal/node"
)

// Cursor walks a tree's leaves in key order. It never holds onto a raw
// page buffer pointer across calls: every accessor re-acquires the page
// through the pager, so a cursor remains valid even if its current page
// was evicted from cache between calls.
type Cursor struct {
	tree    *Tree
	pageNum uint32
	cellIdx int
	done    bool
}

// Start returns a cursor positioned at the first cell of the tree's
// leftmost leaf. If that leaf has no cells, the cursor is not Valid(),
// even when leaves further along the chain still hold keys.
func (t *Tree) Start() (*Cursor, error) {
	pageNum := t.rootPage
	for {
		p, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if node.IsLeaf(p) {
			break
		}
		if node.NumCells(p) > 0 {
			pageNum = t.layout.InternalChildPage(p, 0)
		} else {
			pageNum = node.RightChild(p)
		}
	}
	p, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{tree: t, pageNum: pageNum, cellIdx: 0, done: node.NumCells(p) == 0}, nil
}

// Seek returns a cursor positioned at the first key >= key (an
// exact-match cursor if key is present, otherwise the next key in
// order). Valid() is false if no such key exists.
func (t *Tree) Seek(key bkey.Key) (*Cursor, error) {
	leafPg, err := t.descendToLeaf(key)
	if err != nil {
		return nil, err
	}
	p, err := t.pager.GetPage(leafPg)
	if err != nil {
		return nil, err
	}
	numCells := int(node.NumCells(p))
	idx := t.leafInsertIndex(p, numCells, key)
	c := &Cursor{tree: t, pageNum: leafPg, cellIdx: idx, done: idx >= numCells}
	if c.done {
		if err := c.rollToNextLeaf(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Valid reports whether the cursor is positioned on a real cell.
func (c *Cursor) Valid() bool { return !c.done }

// Key returns the key at the cursor's current position.
func (c *Cursor) Key() (bkey.Key, error) {
	p, err := c.tree.pager.GetPage(c.pageNum)
	if err != nil {
		return bkey.Key{}, err
	}
	return c.tree.layout.LeafKey(p, c.cellIdx), nil
}

// Value returns the value at the cursor's current position.
func (c *Cursor) Value() ([]byte, error) {
	p, err := c.tree.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), c.tree.layout.LeafValueBytes(p, c.cellIdx)...), nil
}

// Advance moves the cursor to the next key in order, following the
// leaf chain when the current leaf is exhausted.
func (c *Cursor) Advance() error {
	if c.done {
		return nil
	}
	p, err := c.tree.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellIdx++
	if c.cellIdx >= int(node.NumCells(p)) {
		return c.rollToNextLeaf()
	}
	return nil
}

// rollToNextLeaf advances the cursor onto the next non-empty leaf in the
// chain, skipping leaves that Delete has emptied (deletion never merges
// or unlinks leaves).
func (c *Cursor) rollToNextLeaf() error {
	for {
		cur, err := c.tree.pager.GetPage(c.pageNum)
		if err != nil {
			return err
		}
		next := node.NextLeaf(cur)
		if next == 0 {
			c.done = true
			return nil
		}
		np, err := c.tree.pager.GetPage(next)
		if err != nil {
			return err
		}
		c.pageNum = next
		c.cellIdx = 0
		if node.NumCells(np) > 0 {
			c.done = false
			return nil
		}
	}
}
