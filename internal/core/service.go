package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"innkeeper/internal/document"
	"innkeeper/pkg/domain"
)

// Default document names.
const (
	HotelsDocument       = "hotels.json"
	CustomersDocument    = "customers.json"
	ReservationsDocument = "reservations.json"
)

// Option configures a registry or the reservation ledger.
type Option func(*options)

type options struct {
	logger       Logger
	metrics      MetricsRecorder
	tracer       Tracer
	engine       *domain.RulesEngine
	documentName string
	documentOpts []document.Option
}

func defaultOptions() options {
	return options{
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		engine:  NewDefaultRulesEngine(),
	}
}

// WithLogger routes operation logs to logger.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder records one observation per operation.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer wraps every operation in a span.
func WithTracer(tracer Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithRulesEngine replaces the default rules. A nil engine disables rule
// evaluation entirely.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithDocumentName overrides the document a registry owns.
func WithDocumentName(name string) Option {
	return func(o *options) {
		if strings.TrimSpace(name) != "" {
			o.documentName = name
		}
	}
}

// WithDocumentOptions passes options through to the underlying document store.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(o *options) {
		o.documentOpts = append(o.documentOpts, opts...)
	}
}

func buildOptions(defaultDocument string, opts []Option) options {
	cfg := defaultOptions()
	cfg.documentName = defaultDocument
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// instrumentation carries the cross-cutting concerns shared by the registries.
type instrumentation struct {
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	engine  *domain.RulesEngine
}

func newInstrumentation(cfg options) instrumentation {
	return instrumentation{
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		engine:  cfg.engine,
	}
}

// run times fn, closes its span, records the outcome and logs it.
func (in instrumentation) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := in.tracer.Start(ctx, operation)
	err := fn(ctx)
	elapsed := time.Since(start)
	span.End(err)
	in.metrics.Observe(ctx, operation, err == nil, elapsed)

	switch {
	case err == nil:
		in.logger.Debug("operation completed", "operation", operation, "duration", elapsed)
	case isRejection(err):
		in.logger.Warn("operation rejected", "operation", operation, "error", err)
	default:
		in.logger.Error("operation failed", "operation", operation, "error", err)
	}
	return err
}

// evaluate runs the rules engine over changes. Warnings and notices are
// logged; blocking violations are returned as domain.RuleViolationError.
func (in instrumentation) evaluate(ctx context.Context, changes ...domain.Change) error {
	if in.engine == nil || len(changes) == 0 {
		return nil
	}
	res, err := in.engine.Evaluate(ctx, changes)
	if err != nil {
		return fmt.Errorf("evaluate rules: %w", err)
	}
	for _, v := range res.Violations {
		switch v.Severity {
		case domain.SeverityWarn:
			in.logger.Warn("rule warning", "rule", v.Rule, "entity", v.Entity, "id", v.EntityID, "message", v.Message)
		case domain.SeverityLog:
			in.logger.Info("rule notice", "rule", v.Rule, "entity", v.Entity, "id", v.EntityID, "message", v.Message)
		}
	}
	if res.HasBlocking() {
		return domain.RuleViolationError{Result: res}
	}
	return nil
}

// isRejection reports errors caused by the request rather than the system.
func isRejection(err error) bool {
	var recErr *domain.RecordError
	var ruleErr domain.RuleViolationError
	return errors.As(err, &recErr) || errors.As(err, &ruleErr)
}

func requireID(entity domain.EntityType, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewRecordError(entity, id, domain.ErrInvalidRecord)
	}
	return nil
}
