package spatial

import "errors"

// Error sentinels for two of the four error kinds; the other two
// (invariant violation, I/O failure) are the panic values below.
// ErrNotFound never escapes the package boundary as an error value —
// Delete reports a miss as a bool — and nothing in this package
// returns it.
var (
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrNotFound       = errors.New("key not found")
)

// invariantViolation is the panic value raised by abortInvariant. It
// is never recovered anywhere in this package: it propagates straight
// out of Insert/Delete/search.
type invariantViolation struct{ msg string }

func (e invariantViolation) Error() string { return "invariant violation: " + e.msg }

// ioFailure wraps a block-store error that surfaced during a mutating
// operation. Per the failure semantics a production rewrite would
// surface this as a recoverable error; this revision aborts.
type ioFailure struct{ err error }

func (e ioFailure) Error() string { return "i/o failure: " + e.err.Error() }

func abortInvariant(msg string) {
	panic(invariantViolation{msg})
}

func abortIO(err error) {
	panic(ioFailure{err})
}
