package btree

import (
	"fmt"

	"ridgedb/internal/bkey"
	"ridgedb/internal/node"
)

// subtreeMaxKey returns the largest key stored anywhere under pageNum: a
// leaf's own last cell, or (recursively) its rightmost child's.
func (t *Tree) subtreeMaxKey(pageNum uint32) (bkey.Key, error) {
	p, err := t.pager.GetPage(pageNum)
	if err != nil {
		return bkey.Key{}, err
	}
	if node.IsLeaf(p) {
		n := int(node.NumCells(p))
		if n == 0 {
			return bkey.Key{}, fmt.Errorf("btree: empty leaf page %d has no max key", pageNum)
		}
		return t.layout.LeafKey(p, n-1), nil
	}
	return t.subtreeMaxKey(node.RightChild(p))
}

func (t *Tree) setChildParent(childPage, parentPage uint32) error {
	cp, err := t.pager.GetPage(childPage)
	if err != nil {
		return err
	}
	if err := t.pager.Touch(childPage); err != nil {
		return err
	}
	node.SetParentPage(cp, parentPage)
	return nil
}

func (t *Tree) internalFindChild(parentPage, childPage uint32) (int, bool) {
	pp, err := t.pager.GetPage(parentPage)
	if err != nil {
		return 0, false
	}
	n := int(node.NumCells(pp))
	for i := 0; i < n; i++ {
		if t.layout.InternalChildPage(pp, i) == childPage {
			return i, true
		}
	}
	return 0, false
}

// updateSeparatorForChild fixes up the separator key that parentPage
// keeps for childPage after childPage's subtree max key changes without
// a split. If childPage is parentPage's rightmost child, parentPage's own
// max key just changed too, so the fix propagates one level further up
// (unless parentPage is the root).
func (t *Tree) updateSeparatorForChild(parentPage, childPage uint32, newMax bkey.Key) error {
	if err := t.pager.Touch(parentPage); err != nil {
		return err
	}
	pp, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}
	if node.RightChild(pp) == childPage {
		if node.IsRoot(pp) {
			return nil
		}
		return t.updateSeparatorForChild(node.ParentPage(pp), parentPage, newMax)
	}
	idx, ok := t.internalFindChild(parentPage, childPage)
	if !ok {
		return fmt.Errorf("btree: child page %d not found under parent %d", childPage, parentPage)
	}
	t.layout.SetInternalKey(pp, idx, newMax)
	return nil
}

// propagateSplit installs a freshly split-off sibling (newPage, whose
// subtree max is newPageMax) next to oldPage in oldPage's parent. If
// oldPage was the root, a new root is created instead.
func (t *Tree) propagateSplit(oldPage, newPage uint32, newPageMax bkey.Key, wasRoot bool) error {
	if wasRoot {
		return t.createNewRoot(oldPage, newPage)
	}
	op, err := t.pager.GetPage(oldPage)
	if err != nil {
		return err
	}
	parentPage := node.ParentPage(op)
	return t.insertChildAndPropagate(parentPage, oldPage, newPage, newPageMax)
}

type intEntry struct {
	page uint32
	max  bkey.Key
}

// insertChildAndPropagate inserts a new child pointer (rightChild, whose
// subtree max is rightMax) into parentPage immediately after leftChild,
// refreshing leftChild's own separator first since its subtree may have
// just shrunk. If parentPage overflows, it splits and the split
// propagates upward in turn.
func (t *Tree) insertChildAndPropagate(parentPage, leftChild, rightChild uint32, rightMax bkey.Key) error {
	if err := t.pager.Touch(parentPage); err != nil {
		return err
	}
	pp, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}

	numCells := int(node.NumCells(pp))
	oldRightChild := node.RightChild(pp)
	wasRoot := node.IsRoot(pp)
	origParent := node.ParentPage(pp)

	entries := make([]intEntry, 0, numCells+2)
	leftPos := -1
	for i := 0; i < numCells; i++ {
		child := t.layout.InternalChildPage(pp, i)
		if child == leftChild {
			leftPos = len(entries)
		}
		entries = append(entries, intEntry{page: child, max: t.layout.InternalKey(pp, i)})
	}
	if oldRightChild == leftChild {
		leftPos = len(entries)
	}
	entries = append(entries, intEntry{page: oldRightChild})

	if leftPos < 0 {
		return fmt.Errorf("btree: child page %d not found under parent %d", leftChild, parentPage)
	}

	leftMax, err := t.subtreeMaxKey(leftChild)
	if err != nil {
		return err
	}
	entries[leftPos].max = leftMax

	insertAt := leftPos + 1
	entries = append(entries, intEntry{})
	copy(entries[insertAt+1:], entries[insertAt:len(entries)-1])
	entries[insertAt] = intEntry{page: rightChild, max: rightMax}

	maxCells := t.layout.InternalMaxCells()

	if len(entries)-1 <= maxCells {
		newRightChild := entries[len(entries)-1].page
		node.InitInternal(pp, wasRoot, origParent)
		for i := 0; i < len(entries)-1; i++ {
			t.layout.SetInternalCell(pp, i, entries[i].page, entries[i].max)
		}
		node.SetNumCells(pp, uint32(len(entries)-1))
		node.SetRightChild(pp, newRightChild)
		if err := t.setChildParent(leftChild, parentPage); err != nil {
			return err
		}
		if err := t.setChildParent(rightChild, parentPage); err != nil {
			return err
		}
		if newRightChild != oldRightChild && !wasRoot {
			newMax, err := t.subtreeMaxKey(newRightChild)
			if err != nil {
				return err
			}
			return t.updateSeparatorForChild(origParent, parentPage, newMax)
		}
		return nil
	}

	return t.splitInternal(parentPage, entries, wasRoot, origParent)
}

// splitInternal distributes entries (numCells+2 virtual children, the
// last of which is always the rightmost pointer) between parentPage
// (kept, holding the left half) and a freshly allocated right sibling,
// then propagates the split upward.
func (t *Tree) splitInternal(parentPage uint32, entries []intEntry, wasRoot bool, origParent uint32) error {
	pp, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}

	leftCount := len(entries) / 2
	leftPart := entries[:leftCount]
	rightPart := entries[leftCount:]

	siblingPageNum := t.pager.AllocatePage()
	if err := t.pager.Touch(siblingPageNum); err != nil {
		return err
	}
	sp, err := t.pager.GetPage(siblingPageNum)
	if err != nil {
		return err
	}
	node.InitInternal(sp, false, origParent)
	for i := 0; i < len(rightPart)-1; i++ {
		t.layout.SetInternalCell(sp, i, rightPart[i].page, rightPart[i].max)
	}
	node.SetNumCells(sp, uint32(len(rightPart)-1))
	node.SetRightChild(sp, rightPart[len(rightPart)-1].page)
	for _, e := range rightPart {
		if err := t.setChildParent(e.page, siblingPageNum); err != nil {
			return err
		}
	}

	node.InitInternal(pp, wasRoot, origParent)
	for i := 0; i < len(leftPart)-1; i++ {
		t.layout.SetInternalCell(pp, i, leftPart[i].page, leftPart[i].max)
	}
	node.SetNumCells(pp, uint32(len(leftPart)-1))
	node.SetRightChild(pp, leftPart[len(leftPart)-1].page)
	for _, e := range leftPart {
		if err := t.setChildParent(e.page, parentPage); err != nil {
			return err
		}
	}

	rightMax, err := t.subtreeMaxKey(siblingPageNum)
	if err != nil {
		return err
	}
	return t.propagateSplit(parentPage, siblingPageNum, rightMax, wasRoot)
}

// createNewRoot replaces rootPage's content with a fresh internal node
// holding two children: a newly allocated page carrying rootPage's old
// content (left) and rightPage, the sibling already produced by the
// split that triggered this call. rootPage's page number never changes —
// only a tree's content moves, the root page number is fixed for the
// tree's lifetime.
func (t *Tree) createNewRoot(rootPage, rightPage uint32) error {
	root, err := t.pager.GetPage(rootPage)
	if err != nil {
		return err
	}
	if err := t.pager.Touch(rootPage); err != nil {
		return err
	}

	wasLeaf := node.IsLeaf(root)
	snapshot := root.Data

	leftPageNum := t.pager.AllocatePage()
	if err := t.pager.Touch(leftPageNum); err != nil {
		return err
	}
	left, err := t.pager.GetPage(leftPageNum)
	if err != nil {
		return err
	}
	left.Data = snapshot
	left.Dirty = true
	node.SetIsRoot(left, false)
	node.SetParentPage(left, rootPage)

	if !wasLeaf {
		numCells := int(node.NumCells(left))
		for i := 0; i < numCells; i++ {
			if err := t.setChildParent(t.layout.InternalChildPage(left, i), leftPageNum); err != nil {
				return err
			}
		}
		if err := t.setChildParent(node.RightChild(left), leftPageNum); err != nil {
			return err
		}
	}

	leftMax, err := t.subtreeMaxKey(leftPageNum)
	if err != nil {
		return err
	}

	node.InitInternal(root, true, 0)
	t.layout.SetInternalCell(root, 0, leftPageNum, leftMax)
	node.SetNumCells(root, 1)
	node.SetRightChild(root, rightPage)

	return t.setChildParent(rightPage, rootPage)
}
