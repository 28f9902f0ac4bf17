package pagemanager

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// PageUnit is the OS page granularity every block size must be a
// multiple of.
const PageUnit = 4096

// Store owns the backing file for an index and serves blocks by byte
// offset out of a memory mapping. Blocks are allocated append-only;
// this revision never frees one.
//
// Growth never remaps or moves a chunk already handed out: each call
// to Grow maps exactly the newly added bytes as one more chunk and
// appends it to the chunk list, so every slice returned by GetBlock
// before a Grow stays valid after it, satisfying the no-invalidation
// requirement without any unsafe aliasing.
type Store struct {
	file      *os.File
	blockSize int
	fileSize  int64
	chunks    [][]byte
	logger    *zap.Logger
}

func validateBlockSize(blockSize int) error {
	if blockSize <= 0 || blockSize%PageUnit != 0 {
		return fmt.Errorf("pagemanager: %w: block size %d is not a positive multiple of %d", ErrInvalidBlockSize, blockSize, PageUnit)
	}
	return nil
}

// Create opens path exclusively and fails if it already exists.
func Create(path string, blockSize int, logger *zap.Logger) (*Store, error) {
	if err := validateBlockSize(blockSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("pagemanager: %w: %s", ErrDBFileExists, path)
		}
		return nil, fmt.Errorf("pagemanager: %w: open %s: %v", ErrIO, path, err)
	}
	return &Store{file: f, blockSize: blockSize, logger: logger}, nil
}

// Open opens an existing file read-write and maps whatever it already
// contains as one chunk.
func Open(path string, blockSize int, logger *zap.Logger) (*Store, error) {
	if err := validateBlockSize(blockSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pagemanager: %w: %s", ErrDBFileNotFound, path)
		}
		return nil, fmt.Errorf("pagemanager: %w: open %s: %v", ErrIO, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pagemanager: %w: stat: %v", ErrIO, err)
	}
	s := &Store{file: f, blockSize: blockSize, logger: logger}
	if info.Size() > 0 {
		chunk, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("pagemanager: %w: mmap: %v", ErrIO, err)
		}
		s.chunks = append(s.chunks, chunk)
		s.fileSize = info.Size()
	}
	return s, nil
}

// BlockSize reports the fixed block size the store was opened with.
func (s *Store) BlockSize() int { return s.blockSize }

// Size reports the store's current logical size in bytes, always a
// multiple of BlockSize.
func (s *Store) Size() int64 { return s.fileSize }

// Grow extends the store to newSize bytes, a multiple of the block
// size. newSize <= Size() is a no-op. A freshly grown region reads as
// zero, since it comes straight from a ftruncate-extended file.
func (s *Store) Grow(newSize int64) error {
	if newSize <= s.fileSize {
		return nil
	}
	delta := newSize - s.fileSize
	if delta%int64(s.blockSize) != 0 {
		return fmt.Errorf("pagemanager: %w: grow delta %d is not block-aligned", ErrInvalidBlockSize, delta)
	}
	if err := s.file.Truncate(newSize); err != nil {
		return fmt.Errorf("pagemanager: %w: truncate to %d: %v", ErrIO, newSize, err)
	}
	chunk, err := unix.Mmap(int(s.file.Fd()), s.fileSize, int(delta), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("pagemanager: %w: mmap growth: %v", ErrIO, err)
	}
	s.chunks = append(s.chunks, chunk)
	s.fileSize = newSize
	if s.logger != nil {
		s.logger.Debug("store grew", zap.Int64("new_size", newSize), zap.Int64("delta", delta))
	}
	return nil
}

// Allocate appends one new block and returns its offset.
func (s *Store) Allocate() (uint64, error) {
	offset := uint64(s.fileSize)
	if err := s.Grow(int64(offset) + int64(s.blockSize)); err != nil {
		return 0, err
	}
	return offset, nil
}

// GetBlock returns the live, mutable slice for the block at offset.
// The slice aliases the store's memory mapping: writes through it are
// visible to every other holder of the same block and persist on
// Close (or an explicit Sync).
func (s *Store) GetBlock(offset uint64) ([]byte, error) {
	if int64(offset)%int64(s.blockSize) != 0 {
		return nil, fmt.Errorf("pagemanager: %w: offset %d is not block-aligned", ErrIO, offset)
	}
	end := int64(offset) + int64(s.blockSize)
	if end > s.fileSize {
		return nil, fmt.Errorf("pagemanager: %w: offset %d exceeds size %d", ErrBlockNotFound, offset, s.fileSize)
	}
	var base int64
	for _, chunk := range s.chunks {
		chunkEnd := base + int64(len(chunk))
		if int64(offset) >= base && end <= chunkEnd {
			start := int64(offset) - base
			return chunk[start : start+int64(s.blockSize)], nil
		}
		base = chunkEnd
	}
	return nil, fmt.Errorf("pagemanager: %w: block %d spans a chunk boundary", ErrIO, offset)
}

// Sync flushes every mapped chunk to disk without closing the store.
func (s *Store) Sync() error {
	for _, chunk := range s.chunks {
		if len(chunk) == 0 {
			continue
		}
		if err := unix.Msync(chunk, unix.MS_SYNC); err != nil {
			return fmt.Errorf("pagemanager: %w: msync: %v", ErrIO, err)
		}
	}
	return nil
}

// Close flushes and unmaps every chunk and closes the file.
func (s *Store) Close() error {
	if err := s.Sync(); err != nil {
		return err
	}
	for _, chunk := range s.chunks {
		if len(chunk) == 0 {
			continue
		}
		if err := unix.Munmap(chunk); err != nil {
			return fmt.Errorf("pagemanager: %w: munmap: %v", ErrIO, err)
		}
	}
	s.chunks = nil
	return s.file.Close()
}
