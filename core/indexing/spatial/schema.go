package spatial

import (
	"fmt"

	pagemanager "github.com/gojodb/spatialidx/core/write_engine/page_manager"
)

// headerSize is the fixed 24-byte node header: 1-byte BlockType, 7
// bytes padding, 8-byte EntryCount, 8-byte SelfOffset.
const headerSize = 24

// childOffsetSize is the on-disk width of an inner-node slot value —
// always 8 bytes, independent of the caller's value size. Using the
// caller's ValueSize here for inner nodes was the earliest draft's
// capacity bug; see DESIGN NOTES.
const childOffsetSize = 8

// blockType tags a node block as leaf or inner data.
type blockType uint8

const (
	blockTypeLeaf  blockType = 0
	blockTypeInner blockType = 1
)

// Schema fixes the four parameters that must agree between the writer
// and every subsequent reader of an index file: dimensionality, key
// and value byte sizes, and block size.
type Schema struct {
	Dimensions int
	KeySize    int
	ValueSize  int
	BlockSize  int
}

// keySizeFor returns the on-disk key size for a given dimensionality:
// 2*D coordinates, 8 bytes each.
func keySizeFor(dims int) int { return 2 * dims * 8 }

func (s Schema) validate() error {
	if s.Dimensions <= 0 {
		return fmt.Errorf("spatial: %w: dimensions must be positive, got %d", ErrSchemaMismatch, s.Dimensions)
	}
	if want := keySizeFor(s.Dimensions); s.KeySize != want {
		return fmt.Errorf("spatial: %w: key size %d does not match dimensions %d (want %d)", ErrSchemaMismatch, s.KeySize, s.Dimensions, want)
	}
	if s.ValueSize <= 0 {
		return fmt.Errorf("spatial: %w: value size must be positive, got %d", ErrSchemaMismatch, s.ValueSize)
	}
	if s.BlockSize <= 0 || s.BlockSize%pagemanager.PageUnit != 0 {
		return fmt.Errorf("spatial: %w: block size %d is not a positive multiple of %d", ErrSchemaMismatch, s.BlockSize, pagemanager.PageUnit)
	}
	return nil
}

// leafCapacity and innerCapacity implement C = floor((B - headerSize)
// / (K + slotValueSize)), where slotValueSize is the caller's
// ValueSize for leaves but a fixed 8-byte child offset for inner
// nodes.
func (s Schema) leafCapacity() int {
	return (s.BlockSize - headerSize) / (s.KeySize + s.ValueSize)
}

func (s Schema) innerCapacity() int {
	return (s.BlockSize - headerSize) / (s.KeySize + childOffsetSize)
}

func (s Schema) capacityFor(bt blockType) int {
	if bt == blockTypeLeaf {
		return s.leafCapacity()
	}
	return s.innerCapacity()
}

func (s Schema) slotValueSize(bt blockType) int {
	if bt == blockTypeLeaf {
		return s.ValueSize
	}
	return childOffsetSize
}

// headerFields is the decoded block-0 header: five little-endian
// uint64 fields, the rest of block 0 reserved.
type headerFields struct {
	Dimensions uint64
	KeySize    uint64
	ValueSize  uint64
	BlockSize  uint64
	RootOffset uint64
}

func readHeaderFields(block []byte) headerFields {
	return headerFields{
		Dimensions: getUint64(block[0:8]),
		KeySize:    getUint64(block[8:16]),
		ValueSize:  getUint64(block[16:24]),
		BlockSize:  getUint64(block[24:32]),
		RootOffset: getUint64(block[32:40]),
	}
}

func writeHeaderFields(block []byte, h headerFields) {
	putUint64(block[0:8], h.Dimensions)
	putUint64(block[8:16], h.KeySize)
	putUint64(block[16:24], h.ValueSize)
	putUint64(block[24:32], h.BlockSize)
	putUint64(block[32:40], h.RootOffset)
	for i := 40; i < len(block); i++ {
		block[i] = 0
	}
}

func (h headerFields) schema() Schema {
	return Schema{
		Dimensions: int(h.Dimensions),
		KeySize:    int(h.KeySize),
		ValueSize:  int(h.ValueSize),
		BlockSize:  int(h.BlockSize),
	}
}
