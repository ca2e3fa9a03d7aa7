package document

import (
	"errors"
	"fmt"
)

// ErrCorrupt matches any CorruptError via errors.Is.
var ErrCorrupt = errors.New("corrupt document")

// CorruptError reports a document whose bytes could not be decoded.
type CorruptError struct {
	Name string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("document %s is corrupt: %v", e.Name, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Is reports ErrCorrupt as a match.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// ErrNotEnlisted is returned when a store is staged in a Tx it did not join.
var ErrNotEnlisted = errors.New("store not enlisted in transaction")
