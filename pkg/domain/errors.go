package domain

import (
	"errors"
	"fmt"
)

// Error kinds returned by the registries. They are wrapped in RecordError, so
// match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNoRoomsAvailable = errors.New("no rooms available")
	ErrRoomsAtCapacity  = errors.New("rooms already at capacity")
	ErrInvalidRecord    = errors.New("invalid record")
)

// RecordError ties an error kind to the record it concerns.
type RecordError struct {
	Entity EntityType
	ID     string
	Err    error
}

// NewRecordError wraps kind for the given record.
func NewRecordError(entity EntityType, id string, kind error) *RecordError {
	return &RecordError{Entity: entity, ID: id, Err: kind}
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Entity, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
