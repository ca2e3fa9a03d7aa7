package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"innkeeper/internal/core"
	"innkeeper/internal/document"
	"innkeeper/internal/platform/config"
)

// app holds what a command needs once configuration has been resolved.
type app struct {
	v       *viper.Viper
	stdout  io.Writer
	stderr  io.Writer
	cfg     config.Config
	logger  *slog.Logger
	metrics *prometheus.Registry
	backend document.Backend
	regs    *core.Registries
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{v: config.New(), stdout: stdout, stderr: stderr}
}

func newRootCommand(a *app) *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:           "innkeeper",
		Short:         "Hotel, customer and reservation records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			if err := config.ReadFile(a.v, configFile); err != nil {
				return err
			}
			return a.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file merged into the environment when present")
	flags.String("driver", string(document.DriverFilesystem), "storage driver: fs, memory, sqlite, postgres, s3, redis")
	flags.String("data-dir", ".", "directory for the fs driver (and default sqlite file)")
	flags.String("on-corrupt", string(document.CorruptionFail), "corrupt document policy: fail or discard")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("metrics-file", "", "write Prometheus text metrics to this file on exit")
	flags.Bool("validate-customers", false, "require reservations to name an existing customer")
	for key, flag := range map[string]string{
		config.KeyStorageDriver:     "driver",
		config.KeyDataDir:           "data-dir",
		config.KeyOnCorrupt:         "on-corrupt",
		config.KeyLogLevel:          "log-level",
		config.KeyMetricsFile:       "metrics-file",
		config.KeyValidateCustomers: "validate-customers",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newHotelCommand(a),
		newCustomerCommand(a),
		newReservationCommand(a),
		newExportCommand(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	a.metrics = prometheus.NewRegistry()

	backend, err := core.OpenBackend(cmd.Context(), cfg.Storage)
	if err != nil {
		return err
	}
	a.backend = backend
	a.logger.Debug("backend opened", "driver", backend.Driver())

	a.regs = core.NewRegistries(backend, cfg,
		core.WithLogger(a.logger),
		core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(a.metrics)),
		core.WithTracer(core.NewOTelTracer(nil)),
		core.WithDocumentOptions(document.WithLogger(a.logger)),
	)
	return nil
}

// close flushes metrics and releases the backend. It runs whether or not the
// command succeeded.
func (a *app) close() error {
	var errs []error
	if a.cfg.MetricsFile != "" && a.metrics != nil {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.metrics); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.backend != nil {
		if err := core.CloseBackend(a.backend); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
