// Package document persists identifier-keyed record mappings as whole JSON
// documents. A Store owns one named document on a Backend and rewrites it in
// full on every mutation.
package document

import (
	"context"
	"errors"
)

//go:generate mockgen -source=backend.go -destination=mocks/backend.go -package=mocks

// Driver identifies a concrete document backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"       // directory of JSON files (default)
	DriverMemory     Driver = "memory"   // in-memory (tests / ephemeral)
	DriverSQLite     Driver = "sqlite"   // embedded sqlite file
	DriverPostgres   Driver = "postgres" // PostgreSQL server
	DriverS3         Driver = "s3"       // S3 / MinIO compatible bucket
	DriverRedis      Driver = "redis"    // Redis keys
)

// ErrNotExist is returned by Backend.Read when the named document has never
// been written (or was deleted).
var ErrNotExist = errors.New("document does not exist")

// Backend stores raw document bytes by name. Write must replace the whole
// document atomically from the reader's point of view.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	Driver() Driver
}
