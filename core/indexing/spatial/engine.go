package spatial

import (
	"go.uber.org/zap"

	pagemanager "github.com/gojodb/spatialidx/core/write_engine/page_manager"
)

// Entry is a single (key, value) pair as handed back by search and
// traversal operations. Value is always a copy, never a slice into
// block memory.
type Entry[T Coordinate] struct {
	Key   MBR[T]
	Value []byte
}

// pathFrame records one inner-node step on the way down to a leaf:
// which node, and which of its entries was chosen to descend into.
type pathFrame struct {
	offset     uint64
	entryIndex int
}

// engine is the R-tree proper: search, choose-leaf, quadratic split,
// MBR propagation, find-leaf, root promotion. It knows the schema and
// the block store but nothing about file lifecycle — that is Index's
// job in index.go.
type engine[T Coordinate] struct {
	store  *pagemanager.Store
	schema Schema
	logger *zap.Logger
}

func newEngine[T Coordinate](store *pagemanager.Store, schema Schema, logger *zap.Logger) *engine[T] {
	return &engine[T]{store: store, schema: schema, logger: logger}
}

func (e *engine[T]) mustGetBlock(offset uint64) []byte {
	b, err := e.store.GetBlock(offset)
	if err != nil {
		abortIO(err)
	}
	return b
}

func (e *engine[T]) loadView(offset uint64) nodeView[T] {
	return newNodeView[T](e.mustGetBlock(offset), e.schema)
}

func (e *engine[T]) allocateNode(bt blockType) (uint64, nodeView[T]) {
	offset, err := e.store.Allocate()
	if err != nil {
		abortIO(err)
	}
	view := newNodeView[T](e.mustGetBlock(offset), e.schema)
	view.setHeader(bt, 0, offset)
	return offset, view
}

func (e *engine[T]) headerBlock() []byte { return e.mustGetBlock(0) }

func (e *engine[T]) rootOffset() uint64 {
	return readHeaderFields(e.headerBlock()).RootOffset
}

func (e *engine[T]) setRootOffset(offset uint64) {
	block := e.headerBlock()
	h := readHeaderFields(block)
	h.RootOffset = offset
	writeHeaderFields(block, h)
}

func collectEntries[T Coordinate](view nodeView[T]) []rawEntry[T] {
	n := view.count()
	out := make([]rawEntry[T], n)
	for i := 0; i < n; i++ {
		out[i] = rawEntry[T]{key: view.keyAt(i), value: view.valueBytesAt(i)}
	}
	return out
}

func rewriteNode[T Coordinate](view nodeView[T], group splitGroup[T]) {
	view.clear()
	for _, e := range group.entries {
		view.appendEntry(e.key, e.value)
	}
}

func encodeChildOffset(offset uint64) []byte {
	buf := make([]byte, childOffsetSize)
	putUint64(buf, offset)
	return buf
}

func checkKeyDims[T Coordinate](schema Schema, key MBR[T]) {
	if len(key.Lo) != schema.Dimensions {
		abortInvariant("key dimensionality does not match index schema")
	}
}

// chooseLeafPath descends from the root, at each inner node picking
// the entry that minimises enlargementCost to cover key, ties broken
// by smaller area then lowest index. Returns the recorded path of
// inner-node decisions and the offset of the leaf reached.
func (e *engine[T]) chooseLeafPath(key MBR[T]) ([]pathFrame, uint64) {
	offset := e.rootOffset()
	var path []pathFrame
	for {
		view := e.loadView(offset)
		if view.isLeaf() {
			return path, offset
		}
		bestIdx := 0
		bestKey := view.keyAt(0)
		bestCost := bestKey.EnlargementCost(key)
		bestArea := bestKey.Area()
		for i := 1; i < view.count(); i++ {
			k := view.keyAt(i)
			cost := k.EnlargementCost(key)
			area := k.Area()
			if cost < bestCost || (cost == bestCost && area < bestArea) {
				bestIdx, bestCost, bestArea = i, cost, area
			}
		}
		path = append(path, pathFrame{offset: offset, entryIndex: bestIdx})
		offset = uint64(view.childOffsetAt(bestIdx))
	}
}

// Insert handles the empty tree as a special case, otherwise chooses
// a leaf, installs the entry (splitting if full), propagates MBR and
// split information upward, and promotes a new root if the split
// reaches the top.
func (e *engine[T]) Insert(key MBR[T], value []byte) {
	checkKeyDims(e.schema, key)
	if len(value) != e.schema.ValueSize {
		abortInvariant("value size does not match index schema")
	}

	if e.rootOffset() == uint64(pagemanager.InvalidPageID) {
		offset, view := e.allocateNode(blockTypeLeaf)
		view.appendEntry(key, value)
		e.setRootOffset(offset)
		return
	}

	path, leafOffset := e.chooseLeafPath(key)
	leafView := e.loadView(leafOffset)

	var splitOffset uint64
	var splitMBR MBR[T]
	var childMBR MBR[T]

	if leafView.count() < leafView.capacity() {
		leafView.appendEntry(key, value)
		childMBR = leafView.coveringMBR()
	} else {
		entries := append(collectEntries(leafView), rawEntry[T]{key: key, value: value})
		groupA, groupB := splitEntries(entries)
		rewriteNode(leafView, groupB)
		newOffset, newView := e.allocateNode(blockTypeLeaf)
		rewriteNode(newView, groupA)
		childMBR = groupB.mbr
		splitOffset = newOffset
		splitMBR = groupA.mbr
		e.logger.Debug("leaf split", zap.Uint64("original", leafOffset), zap.Uint64("new", newOffset))
	}

	currentOffset := leafOffset
	for i := len(path) - 1; i >= 0; i-- {
		frame := path[i]
		parentView := e.loadView(frame.offset)

		changed := !parentView.keyAt(frame.entryIndex).Equals(childMBR)
		if changed {
			parentView.setKeyAt(frame.entryIndex, childMBR)
		}

		if splitOffset != 0 {
			if parentView.count() < parentView.capacity() {
				parentView.appendChild(splitMBR, pagemanager.PageID(splitOffset))
				splitOffset = 0
			} else {
				entries := append(collectEntries(parentView), rawEntry[T]{key: splitMBR, value: encodeChildOffset(splitOffset)})
				groupA, groupB := splitEntries(entries)
				rewriteNode(parentView, groupB)
				newOffset, newView := e.allocateNode(blockTypeInner)
				rewriteNode(newView, groupA)
				splitOffset = newOffset
				splitMBR = groupA.mbr
				e.logger.Debug("inner split", zap.Uint64("original", frame.offset), zap.Uint64("new", newOffset))
			}
			changed = true
		}

		if !changed {
			break
		}
		childMBR = parentView.coveringMBR()
		currentOffset = frame.offset
	}

	if splitOffset != 0 {
		newRootOffset, newRootView := e.allocateNode(blockTypeInner)
		newRootView.appendChild(childMBR, pagemanager.PageID(currentOffset))
		newRootView.appendChild(splitMBR, pagemanager.PageID(splitOffset))
		e.setRootOffset(newRootOffset)
		e.logger.Debug("root promoted", zap.Uint64("new_root", newRootOffset))
	}
}

// findLeaf descends recursively: at an inner node, it tries every
// entry whose key contains targetKey, returning on the first
// successful deeper match; at a leaf, it looks for an exact key
// match.
func (e *engine[T]) findLeaf(offset uint64, path []pathFrame, targetKey MBR[T]) ([]pathFrame, uint64, int, bool) {
	view := e.loadView(offset)
	if view.isLeaf() {
		for i := 0; i < view.count(); i++ {
			if view.keyAt(i).Equals(targetKey) {
				return path, offset, i, true
			}
		}
		return path, offset, -1, false
	}
	for i := 0; i < view.count(); i++ {
		if view.keyAt(i).Contains(targetKey) {
			childOffset := uint64(view.childOffsetAt(i))
			candidate := append(append([]pathFrame{}, path...), pathFrame{offset: offset, entryIndex: i})
			if p, leafOffset, idx, found := e.findLeaf(childOffset, candidate, targetKey); found {
				return p, leafOffset, idx, true
			}
		}
	}
	return path, 0, -1, false
}

// Delete implements find-leaf, slot removal, and upward MBR
// condensation (shrink only — no re-insertion or underflow merge, per
// the Non-goal this revision honours).
func (e *engine[T]) Delete(key MBR[T]) bool {
	checkKeyDims(e.schema, key)

	root := e.rootOffset()
	if root == uint64(pagemanager.InvalidPageID) {
		return false
	}

	path, leafOffset, idx, found := e.findLeaf(root, nil, key)
	if !found {
		return false
	}

	leafView := e.loadView(leafOffset)
	leafView.removeAt(idx)

	haveMBR := leafView.count() > 0
	var childMBR MBR[T]
	if haveMBR {
		childMBR = leafView.coveringMBR()
	}

	for i := len(path) - 1; i >= 0; i-- {
		if !haveMBR {
			// Leaf (or a previously visited child) is now empty; its
			// covering MBR is undefined. Tolerate the empty block and
			// stop condensing rather than guessing an MBR.
			break
		}
		frame := path[i]
		parentView := e.loadView(frame.offset)
		if parentView.keyAt(frame.entryIndex).Equals(childMBR) {
			break
		}
		parentView.setKeyAt(frame.entryIndex, childMBR)
		childMBR = parentView.coveringMBR()
	}

	return true
}

func (e *engine[T]) searchRec(offset uint64, query MBR[T], containment bool, out *[]Entry[T]) {
	view := e.loadView(offset)
	if view.isLeaf() {
		for i := 0; i < view.count(); i++ {
			k := view.keyAt(i)
			var match bool
			if containment {
				match = query.Contains(k)
			} else {
				match = k.Overlap(query)
			}
			if match {
				*out = append(*out, Entry[T]{Key: k, Value: view.valueBytesAt(i)})
			}
		}
		return
	}
	// Both search modes prune inner nodes by overlap: a subtree whose
	// covering MBR merely overlaps the query can still hold leaves
	// that are fully contained by it, so containment search cannot
	// prune by contains() at the inner level. See DESIGN NOTES.
	for i := 0; i < view.count(); i++ {
		if view.keyAt(i).Overlap(query) {
			e.searchRec(uint64(view.childOffsetAt(i)), query, containment, out)
		}
	}
}

// OverlapSearch returns every stored entry whose key intersects query.
func (e *engine[T]) OverlapSearch(query MBR[T]) []Entry[T] {
	checkKeyDims(e.schema, query)
	var out []Entry[T]
	if e.rootOffset() == uint64(pagemanager.InvalidPageID) {
		return out
	}
	e.searchRec(e.rootOffset(), query, false, &out)
	return out
}

// ContainmentSearch returns every stored entry whose key is fully
// covered by query.
func (e *engine[T]) ContainmentSearch(query MBR[T]) []Entry[T] {
	checkKeyDims(e.schema, query)
	var out []Entry[T]
	if e.rootOffset() == uint64(pagemanager.InvalidPageID) {
		return out
	}
	e.searchRec(e.rootOffset(), query, true, &out)
	return out
}

func (e *engine[T]) collectAll(offset uint64, out *[]Entry[T]) {
	view := e.loadView(offset)
	if view.isLeaf() {
		for i := 0; i < view.count(); i++ {
			*out = append(*out, Entry[T]{Key: view.keyAt(i), Value: view.valueBytesAt(i)})
		}
		return
	}
	for i := 0; i < view.count(); i++ {
		e.collectAll(uint64(view.childOffsetAt(i)), out)
	}
}

// GetAllEntries is a full depth-first traversal collecting every leaf
// entry, result order unspecified.
func (e *engine[T]) GetAllEntries() []Entry[T] {
	var out []Entry[T]
	if e.rootOffset() == uint64(pagemanager.InvalidPageID) {
		return out
	}
	e.collectAll(e.rootOffset(), &out)
	return out
}
