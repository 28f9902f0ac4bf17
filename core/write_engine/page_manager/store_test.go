package pagemanager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gojodb/spatialidx/pkg/logger"
)

func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks.db")
	s, err := Create(path, PageUnit, logger.Nop())
	require.NoError(t, err)
	return s, path
}

func TestCreate_RejectsExistingFile(t *testing.T) {
	_, path := setupStore(t)
	_, err := Create(path, PageUnit, logger.Nop())
	require.ErrorIs(t, err, ErrDBFileExists)
}

func TestOpen_RejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "absent.db"), PageUnit, logger.Nop())
	require.ErrorIs(t, err, ErrDBFileNotFound)
}

func TestValidateBlockSize(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "x.db"), PageUnit+1, logger.Nop())
	require.ErrorIs(t, err, ErrInvalidBlockSize)

	_, err = Create(filepath.Join(dir, "y.db"), 0, logger.Nop())
	require.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestAllocate_ReturnsSequentialOffsets(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	off0, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, uint64(0), off0)

	off1, err := s.Allocate()
	require.NoError(t, err)
	require.Equal(t, uint64(PageUnit), off1)

	require.Equal(t, int64(2*PageUnit), s.Size())
}

func TestGetBlock_FreshlyGrownRegionIsZeroed(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	off, err := s.Allocate()
	require.NoError(t, err)
	block, err := s.GetBlock(off)
	require.NoError(t, err)
	for _, b := range block {
		require.Equal(t, byte(0), b)
	}
}

func TestGetBlock_WritesPersistAcrossCalls(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	off, err := s.Allocate()
	require.NoError(t, err)

	block, err := s.GetBlock(off)
	require.NoError(t, err)
	block[0] = 0xAB

	again, err := s.GetBlock(off)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), again[0])
}

func TestGetBlock_RejectsMisalignedOffset(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	_, err := s.Allocate()
	require.NoError(t, err)

	_, err = s.GetBlock(1)
	require.ErrorIs(t, err, ErrIO)
}

func TestGetBlock_RejectsOffsetPastEnd(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	_, err := s.GetBlock(uint64(PageUnit) * 10)
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestGrow_EarlierBlockViewsSurviveLaterGrows(t *testing.T) {
	s, _ := setupStore(t)
	defer s.Close()

	off0, err := s.Allocate()
	require.NoError(t, err)
	first, err := s.GetBlock(off0)
	require.NoError(t, err)
	first[0] = 0x42

	// Allocate many more blocks, forcing several chunk-extending grows.
	for i := 0; i < 50; i++ {
		_, err := s.Allocate()
		require.NoError(t, err)
	}

	require.Equal(t, byte(0x42), first[0], "a slice returned before growth must stay valid and correct after it")
}

func TestClose_PersistsAcrossReopen(t *testing.T) {
	s, path := setupStore(t)

	off, err := s.Allocate()
	require.NoError(t, err)
	block, err := s.GetBlock(off)
	require.NoError(t, err)
	block[10] = 0x7

	require.NoError(t, s.Close())

	reopened, err := Open(path, PageUnit, logger.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetBlock(off)
	require.NoError(t, err)
	require.Equal(t, byte(0x7), got[10])
}
