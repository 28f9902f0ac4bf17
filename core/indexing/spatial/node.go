package spatial

import pagemanager "github.com/gojodb/spatialidx/core/write_engine/page_manager"

// nodeView interprets a raw block as an R-tree node: a header plus a
// packed array of (key, value) slots. It holds the live block slice
// and writes straight through it, but every read accessor (keyAt,
// valueBytesAt) decodes into a fresh copy rather than aliasing into
// the slice, so a caller can't mutate stored data by holding onto a
// returned key or value.
type nodeView[T Coordinate] struct {
	block  []byte
	schema Schema
}

func newNodeView[T Coordinate](block []byte, schema Schema) nodeView[T] {
	return nodeView[T]{block: block, schema: schema}
}

func (v nodeView[T]) blockType() blockType { return blockType(v.block[0]) }
func (v nodeView[T]) isLeaf() bool         { return v.blockType() == blockTypeLeaf }
func (v nodeView[T]) count() int           { return int(getUint64(v.block[8:16])) }
func (v nodeView[T]) selfOffset() uint64   { return getUint64(v.block[16:24]) }
func (v nodeView[T]) capacity() int        { return v.schema.capacityFor(v.blockType()) }

func (v nodeView[T]) slotValueSize() int { return v.schema.slotValueSize(v.blockType()) }
func (v nodeView[T]) slotSize() int      { return v.schema.KeySize + v.slotValueSize() }

func (v nodeView[T]) slotOffset(i int) int { return headerSize + i*v.slotSize() }

// setHeader writes the three header fields in one call; selfOffset is
// assigned once at allocation per spec and never passed here again
// after that, but the setter accepts it for that one call site.
func (v nodeView[T]) setHeader(bt blockType, count int, selfOffset uint64) {
	v.block[0] = byte(bt)
	v.block[1] = 0
	v.block[2] = 0
	v.block[3] = 0
	v.block[4] = 0
	v.block[5] = 0
	v.block[6] = 0
	v.block[7] = 0
	putUint64(v.block[8:16], uint64(count))
	putUint64(v.block[16:24], selfOffset)
}

func (v nodeView[T]) setCount(count int) {
	putUint64(v.block[8:16], uint64(count))
}

// keyAt decodes slot i's MBR into a freshly allocated value.
func (v nodeView[T]) keyAt(i int) MBR[T] {
	if i < 0 || i >= v.count() {
		abortInvariant("keyAt index out of range")
	}
	off := v.slotOffset(i)
	return decodeMBR[T](v.block[off:off+v.schema.KeySize], v.schema.Dimensions)
}

// valueBytesAt copies out slot i's value bytes (payload for a leaf,
// the 8-byte child offset for an inner node).
func (v nodeView[T]) valueBytesAt(i int) []byte {
	if i < 0 || i >= v.count() {
		abortInvariant("valueBytesAt index out of range")
	}
	off := v.slotOffset(i) + v.schema.KeySize
	out := make([]byte, v.slotValueSize())
	copy(out, v.block[off:off+v.slotValueSize()])
	return out
}

func (v nodeView[T]) childOffsetAt(i int) pagemanager.PageID {
	return pagemanager.PageID(getUint64(v.valueBytesAt(i)))
}

// setKeyAt overwrites slot i's key in place, re-resolving the block
// address off the live slice on every call rather than caching a
// pointer from an earlier read.
func (v nodeView[T]) setKeyAt(i int, key MBR[T]) {
	if i < 0 || i >= v.count() {
		abortInvariant("setKeyAt index out of range")
	}
	off := v.slotOffset(i)
	encodeMBR(v.block[off:off+v.schema.KeySize], key)
}

func (v nodeView[T]) setValueAt(i int, value []byte) {
	if i < 0 || i >= v.count() {
		abortInvariant("setValueAt index out of range")
	}
	if len(value) != v.slotValueSize() {
		abortInvariant("value size mismatch")
	}
	off := v.slotOffset(i) + v.schema.KeySize
	copy(v.block[off:off+v.slotValueSize()], value)
}

// appendEntry writes at slot `count` and increments count; it aborts
// if the node is already full.
func (v nodeView[T]) appendEntry(key MBR[T], value []byte) {
	n := v.count()
	if n >= v.capacity() {
		abortInvariant("appendEntry on a full node")
	}
	v.setCount(n + 1)
	v.setKeyAt(n, key)
	v.setValueAt(n, value)
}

func (v nodeView[T]) appendChild(key MBR[T], child pagemanager.PageID) {
	buf := make([]byte, childOffsetSize)
	putUint64(buf, uint64(child))
	v.appendEntry(key, buf)
}

// removeAt shifts slots (i+1..count) left by one and decrements
// count.
func (v nodeView[T]) removeAt(i int) {
	n := v.count()
	if i < 0 || i >= n {
		abortInvariant("removeAt index out of range")
	}
	slotSize := v.slotSize()
	for j := i + 1; j < n; j++ {
		dst := v.slotOffset(j - 1)
		src := v.slotOffset(j)
		copy(v.block[dst:dst+slotSize], v.block[src:src+slotSize])
	}
	v.setCount(n - 1)
}

func (v nodeView[T]) clear() {
	v.setCount(0)
}

// coveringMBR returns the axis-wise union of every key currently in
// the node. Callers must not call this on an empty node.
func (v nodeView[T]) coveringMBR() MBR[T] {
	n := v.count()
	if n == 0 {
		abortInvariant("coveringMBR on an empty node")
	}
	mbr := v.keyAt(0)
	for i := 1; i < n; i++ {
		mbr = mbr.Union(v.keyAt(i))
	}
	return mbr
}
