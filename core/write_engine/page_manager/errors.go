package pagemanager

import "errors"

// Error sentinels for the block store. Callers match these with
// errors.Is against the wrapped error returned from Store methods.
var (
	ErrBlockNotFound    = errors.New("block not found in store")
	ErrIO               = errors.New("i/o error")
	ErrInvalidBlockSize = errors.New("block size must be a positive, block-aligned multiple of the page unit")
	ErrDBFileExists     = errors.New("database file already exists")
	ErrDBFileNotFound   = errors.New("database file not found")
)
