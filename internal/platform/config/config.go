// Package config resolves innkeeper settings from flags, environment variables
// (prefix INNKEEPER_), an optional config file, and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"innkeeper/internal/document"
)

// EnvPrefix namespaces every environment variable, e.g. INNKEEPER_STORAGE_DRIVER.
const EnvPrefix = "INNKEEPER"

// Keys understood by Load. Nested keys map to env vars with "." replaced by
// "_", so storage.driver is INNKEEPER_STORAGE_DRIVER.
const (
	KeyStorageDriver     = "storage.driver"
	KeyDataDir           = "data_dir"
	KeyOnCorrupt         = "on_corrupt"
	KeyLogLevel          = "log_level"
	KeyMetricsFile       = "metrics_file"
	KeySQLitePath        = "sqlite.path"
	KeyPostgresDSN       = "postgres.dsn"
	KeyS3Bucket          = "s3.bucket"
	KeyS3Region          = "s3.region"
	KeyS3Endpoint        = "s3.endpoint"
	KeyS3Prefix          = "s3.prefix"
	KeyS3PathStyle       = "s3.path_style"
	KeyS3AccessKeyID     = "s3.access_key_id"
	KeyS3SecretAccessKey = "s3.secret_access_key"
	KeyRedisURL          = "redis.url"
	KeyRedisPrefix       = "redis.prefix"
	KeyHotelsDocument    = "documents.hotels"
	KeyCustomersDocument = "documents.customers"
	KeyReservationsDoc   = "documents.reservations"
	KeyValidateCustomers = "validate_customers"
)

// S3 configures the s3 driver.
type S3 struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Redis configures the redis driver.
type Redis struct {
	URL    string
	Prefix string
}

// Storage selects and configures the document backend.
type Storage struct {
	Driver      document.Driver
	DataDir     string
	SQLitePath  string
	PostgresDSN string
	S3          S3
	Redis       Redis
}

// Documents names the JSON documents each registry owns.
type Documents struct {
	Hotels       string
	Customers    string
	Reservations string
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Storage           Storage
	Documents         Documents
	OnCorrupt         document.CorruptionPolicy
	LogLevel          slog.Level
	MetricsFile       string
	ValidateCustomers bool
}

// New returns a viper instance wired for innkeeper's env prefix and defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyStorageDriver, string(document.DriverFilesystem))
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyOnCorrupt, string(document.CorruptionFail))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeySQLitePath, "")
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeyS3Bucket, "")
	v.SetDefault(KeyS3Region, "us-east-1")
	v.SetDefault(KeyS3Endpoint, "")
	v.SetDefault(KeyS3Prefix, "")
	v.SetDefault(KeyS3PathStyle, false)
	v.SetDefault(KeyS3AccessKeyID, "")
	v.SetDefault(KeyS3SecretAccessKey, "")
	v.SetDefault(KeyRedisURL, "redis://localhost:6379/0")
	v.SetDefault(KeyRedisPrefix, "innkeeper:doc:")
	v.SetDefault(KeyHotelsDocument, "hotels.json")
	v.SetDefault(KeyCustomersDocument, "customers.json")
	v.SetDefault(KeyReservationsDoc, "reservations.json")
	v.SetDefault(KeyValidateCustomers, false)
	return v
}

// LoadDotEnv merges KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReadFile merges a yaml/json/toml config file into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates a Config from v.
func Load(v *viper.Viper) (Config, error) {
	driver := document.Driver(strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageDriver))))
	switch driver {
	case document.DriverFilesystem, document.DriverMemory, document.DriverSQLite,
		document.DriverPostgres, document.DriverS3, document.DriverRedis:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", driver)
	}

	policy, err := document.ParseCorruptionPolicy(strings.ToLower(v.GetString(KeyOnCorrupt)))
	if err != nil {
		return Config{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", v.GetString(KeyLogLevel), err)
	}

	dataDir := v.GetString(KeyDataDir)
	sqlitePath := v.GetString(KeySQLitePath)
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dataDir, "innkeeper.db")
	}

	cfg := Config{
		Storage: Storage{
			Driver:      driver,
			DataDir:     dataDir,
			SQLitePath:  sqlitePath,
			PostgresDSN: v.GetString(KeyPostgresDSN),
			S3: S3{
				Bucket:          v.GetString(KeyS3Bucket),
				Region:          v.GetString(KeyS3Region),
				Endpoint:        v.GetString(KeyS3Endpoint),
				Prefix:          v.GetString(KeyS3Prefix),
				PathStyle:       v.GetBool(KeyS3PathStyle),
				AccessKeyID:     v.GetString(KeyS3AccessKeyID),
				SecretAccessKey: v.GetString(KeyS3SecretAccessKey),
			},
			Redis: Redis{
				URL:    v.GetString(KeyRedisURL),
				Prefix: v.GetString(KeyRedisPrefix),
			},
		},
		Documents: Documents{
			Hotels:       v.GetString(KeyHotelsDocument),
			Customers:    v.GetString(KeyCustomersDocument),
			Reservations: v.GetString(KeyReservationsDoc),
		},
		OnCorrupt:         policy,
		LogLevel:          level,
		MetricsFile:       v.GetString(KeyMetricsFile),
		ValidateCustomers: v.GetBool(KeyValidateCustomers),
	}
	if driver == document.DriverS3 && cfg.Storage.S3.Bucket == "" {
		return Config{}, fmt.Errorf("%s_S3_BUCKET required for s3 driver", EnvPrefix)
	}
	return cfg, nil
}
