package spatial

import (
	"fmt"

	"go.uber.org/zap"

	pagemanager "github.com/gojodb/spatialidx/core/write_engine/page_manager"
	"github.com/gojodb/spatialidx/pkg/logger"
)

// Index is the public façade over a single disk-resident R-tree:
// Create/Open, schema validation, and the Insert/Delete/search/print
// operations over a single index file. It owns the block store and
// the tree engine underneath it.
type Index[T Coordinate] struct {
	store  *pagemanager.Store
	engine *engine[T]
	schema Schema
	logger *zap.Logger
}

// Create opens path exclusively, grows it to one block, and writes
// the index header with the supplied schema and a sentinel (empty)
// root. It fails if path already exists.
func Create[T Coordinate](path string, dimensions, valueSize, blockSize int, log *zap.Logger) (*Index[T], error) {
	if log == nil {
		log = logger.Nop()
	}
	schema := Schema{
		Dimensions: dimensions,
		KeySize:    keySizeFor(dimensions),
		ValueSize:  valueSize,
		BlockSize:  blockSize,
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}

	store, err := pagemanager.Create(path, blockSize, log)
	if err != nil {
		return nil, fmt.Errorf("spatial: create: %w", err)
	}
	if _, err := store.Allocate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("spatial: create: allocate header block: %w", err)
	}
	header, err := store.GetBlock(0)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("spatial: create: %w", err)
	}
	writeHeaderFields(header, headerFields{
		Dimensions: uint64(schema.Dimensions),
		KeySize:    uint64(schema.KeySize),
		ValueSize:  uint64(schema.ValueSize),
		BlockSize:  uint64(schema.BlockSize),
		RootOffset: uint64(pagemanager.InvalidPageID),
	})

	return &Index[T]{
		store:  store,
		engine: newEngine[T](store, schema, log),
		schema: schema,
		logger: log,
	}, nil
}

// Open opens an existing file read-write, reads block 0, and
// validates every schema field independently against the caller's
// parameters — KeySize, ValueSize, BlockSize, Dimensions each get
// their own check, so a mismatch names the offending field rather
// than collapsing to one boolean. On mismatch it returns
// ErrSchemaMismatch and no usable handle.
func Open[T Coordinate](path string, dimensions, valueSize, blockSize int, log *zap.Logger) (*Index[T], error) {
	if log == nil {
		log = logger.Nop()
	}
	want := Schema{
		Dimensions: dimensions,
		KeySize:    keySizeFor(dimensions),
		ValueSize:  valueSize,
		BlockSize:  blockSize,
	}

	store, err := pagemanager.Open(path, blockSize, log)
	if err != nil {
		return nil, fmt.Errorf("spatial: open: %w", err)
	}
	header, err := store.GetBlock(0)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("spatial: open: %w", err)
	}
	got := readHeaderFields(header).schema()

	if err := checkSchemaMatch(want, got); err != nil {
		store.Close()
		return nil, err
	}

	return &Index[T]{
		store:  store,
		engine: newEngine[T](store, want, log),
		schema: want,
		logger: log,
	}, nil
}

func checkSchemaMatch(want, got Schema) error {
	if got.Dimensions != want.Dimensions {
		return fmt.Errorf("spatial: %w: dimensions on disk is %d, caller asked for %d", ErrSchemaMismatch, got.Dimensions, want.Dimensions)
	}
	if got.KeySize != want.KeySize {
		return fmt.Errorf("spatial: %w: key size on disk is %d, caller asked for %d", ErrSchemaMismatch, got.KeySize, want.KeySize)
	}
	if got.ValueSize != want.ValueSize {
		return fmt.Errorf("spatial: %w: value size on disk is %d, caller asked for %d", ErrSchemaMismatch, got.ValueSize, want.ValueSize)
	}
	if got.BlockSize != want.BlockSize {
		return fmt.Errorf("spatial: %w: block size on disk is %d, caller asked for %d", ErrSchemaMismatch, got.BlockSize, want.BlockSize)
	}
	return nil
}

// Insert stores (key, value). key must have Dimensions axes and value
// must be exactly ValueSize bytes; either mismatch aborts the process.
func (idx *Index[T]) Insert(key MBR[T], value []byte) {
	idx.engine.Insert(key, value)
}

// Delete removes the entry whose key exactly equals key, returning
// whether one was found. It is idempotent: deleting an absent key
// returns false and leaves the tree unchanged.
func (idx *Index[T]) Delete(key MBR[T]) bool {
	return idx.engine.Delete(key)
}

// OverlapSearch returns every stored entry whose key intersects query.
func (idx *Index[T]) OverlapSearch(query MBR[T]) []Entry[T] {
	return idx.engine.OverlapSearch(query)
}

// ContainmentSearch returns every stored entry whose key is fully
// covered by query.
func (idx *Index[T]) ContainmentSearch(query MBR[T]) []Entry[T] {
	return idx.engine.ContainmentSearch(query)
}

// GetAllEntries returns every stored entry via full traversal, in
// unspecified order.
func (idx *Index[T]) GetAllEntries() []Entry[T] {
	return idx.engine.GetAllEntries()
}

// PrintTree renders a level-indented dump of the on-disk tree.
func (idx *Index[T]) PrintTree() string {
	return idx.engine.PrintTree()
}

// Schema returns the index's validated schema.
func (idx *Index[T]) Schema() Schema { return idx.schema }

// Close flushes and unmaps the backing store and closes its file
// descriptor. Safe to call exactly once.
func (idx *Index[T]) Close() error {
	return idx.store.Close()
}
