// Package pagemanager owns the on-disk block store for a spatial
// index: the backing file, its memory mapping, and offset-addressed
// block access. It knows nothing about R-trees — it hands out raw,
// fixed-size byte slices by offset.
package pagemanager

// PageID addresses a block by its byte offset within the index file.
// Block 0 holds the index header; InvalidPageID (0) doubles as the
// "empty tree" root sentinel, since the header block itself is never
// a valid node offset.
type PageID uint64

// InvalidPageID marks an unallocated or absent block reference.
const InvalidPageID PageID = 0

// Offset returns the page's byte offset in the backing file.
func (p PageID) Offset() uint64 { return uint64(p) }
