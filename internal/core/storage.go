package core

import (
	"context"
	"fmt"
	"io"
	"slices"

	"innkeeper/internal/document"
	"innkeeper/internal/infra/persistence/fs"
	"innkeeper/internal/infra/persistence/memory"
	"innkeeper/internal/infra/persistence/postgres"
	"innkeeper/internal/infra/persistence/redis"
	"innkeeper/internal/infra/persistence/s3"
	"innkeeper/internal/infra/persistence/sqlite"
	"innkeeper/internal/platform/config"
)

// OpenBackend constructs the document backend selected by cfg.Driver.
func OpenBackend(ctx context.Context, cfg config.Storage) (document.Backend, error) {
	var (
		backend document.Backend
		err     error
	)
	switch cfg.Driver {
	case "", document.DriverFilesystem:
		backend, err = nonNil(fs.New(cfg.DataDir))
	case document.DriverMemory:
		backend = memory.New()
	case document.DriverSQLite:
		backend, err = nonNil(sqlite.NewStore(cfg.SQLitePath))
	case document.DriverPostgres:
		backend, err = nonNil(postgres.NewStore(ctx, cfg.PostgresDSN))
	case document.DriverS3:
		backend, err = nonNil(s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}))
	case document.DriverRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithKeyPrefix(cfg.Redis.Prefix))
		}
		backend, err = nonNil(redis.Open(ctx, cfg.Redis.URL, opts...))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Driver, err)
	}
	return backend, nil
}

// nonNil keeps a failed constructor's typed nil pointer out of the interface.
func nonNil[B document.Backend](b B, err error) (document.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CloseBackend releases backends that hold connections or file handles.
func CloseBackend(backend document.Backend) error {
	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Registries groups the three registries over one backend.
type Registries struct {
	Hotels       *HotelRegistry
	Customers    *CustomerRegistry
	Reservations *ReservationLedger
}

// NewRegistries wires the registries from a resolved configuration. Shared
// options (logger, metrics, tracer, rules) apply to all three.
func NewRegistries(backend document.Backend, cfg config.Config, opts ...Option) *Registries {
	shared := append([]Option{WithDocumentOptions(document.WithCorruptionPolicy(cfg.OnCorrupt))}, opts...)
	named := func(name string) []Option {
		return slices.Concat(shared, []Option{WithDocumentName(name)})
	}
	hotels := NewHotelRegistry(backend, named(cfg.Documents.Hotels)...)
	customers := NewCustomerRegistry(backend, named(cfg.Documents.Customers)...)
	var validate *CustomerRegistry
	if cfg.ValidateCustomers {
		validate = customers
	}
	reservations := NewReservationLedger(backend, hotels, validate, named(cfg.Documents.Reservations)...)
	return &Registries{Hotels: hotels, Customers: customers, Reservations: reservations}
}
