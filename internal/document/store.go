package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("innkeeper/internal/document")

// CorruptionPolicy decides what a load does with a document that fails to decode.
type CorruptionPolicy string

const (
	// CorruptionFail surfaces a CorruptError and leaves the document untouched.
	CorruptionFail CorruptionPolicy = "fail"
	// CorruptionDiscard logs the failure and treats the document as empty. The
	// next successful write replaces the corrupt bytes.
	CorruptionDiscard CorruptionPolicy = "discard"
)

// ParseCorruptionPolicy maps a configuration string to a policy. Empty selects
// CorruptionFail.
func ParseCorruptionPolicy(s string) (CorruptionPolicy, error) {
	switch CorruptionPolicy(s) {
	case "", CorruptionFail:
		return CorruptionFail, nil
	case CorruptionDiscard:
		return CorruptionDiscard, nil
	default:
		return "", fmt.Errorf("unknown corruption policy %q", s)
	}
}

// Records is the decoded form of a document: identifier to record.
type Records[T any] map[string]T

// Clone returns a shallow copy. Record types are flat value structs, so this
// isolates callers from the stored mapping.
func (r Records[T]) Clone() Records[T] {
	out := make(Records[T], len(r))
	maps.Copy(out, r)
	return out
}

// Option configures a Store.
type Option func(*docState)

// WithCorruptionPolicy selects how undecodable documents are handled.
func WithCorruptionPolicy(policy CorruptionPolicy) Option {
	return func(s *docState) {
		if policy != "" {
			s.policy = policy
		}
	}
}

// WithLogger routes load/save diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *docState) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Participant is a store that can join a Run critical section. It is
// implemented by *Store[T] for every record type.
type Participant interface {
	state() *docState
}

// docState is the record-type independent half of a Store.
type docState struct {
	name    string
	backend Backend
	policy  CorruptionPolicy
	logger  *slog.Logger
	mu      sync.Mutex
}

// Store persists Records[T] as the named document on a backend. All access is
// serialized by an in-process mutex held for the whole load-mutate-save cycle.
type Store[T any] struct {
	doc docState
}

// New binds a store to the named document.
func New[T any](name string, backend Backend, opts ...Option) *Store[T] {
	s := &Store[T]{doc: docState{
		name:    name,
		backend: backend,
		policy:  CorruptionFail,
		logger:  slog.New(slog.DiscardHandler),
	}}
	for _, opt := range opts {
		opt(&s.doc)
	}
	return s
}

func (s *Store[T]) state() *docState { return &s.doc }

// Name returns the document name, e.g. "hotels.json".
func (s *Store[T]) Name() string { return s.doc.name }

// Load returns the current records. A missing document loads as empty.
func (s *Store[T]) Load(ctx context.Context) (Records[T], error) {
	var out Records[T]
	err := Run(ctx, func(tx *Tx) error {
		var err error
		out, err = Read(tx, s)
		return err
	}, s)
	return out, err
}

// Save replaces the document with records. The current contents are not
// decoded, so a corrupt document can be overwritten under either policy.
func (s *Store[T]) Save(ctx context.Context, records Records[T]) error {
	return Run(ctx, func(tx *Tx) error {
		return Replace(tx, s, records)
	}, s)
}

// Get returns the record stored under id and whether it exists.
func (s *Store[T]) Get(ctx context.Context, id string) (T, bool, error) {
	records, err := s.Load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	rec, ok := records[id]
	return rec, ok, nil
}

// Update loads the records, applies fn to a private copy, and writes the copy
// back if fn succeeds. Nothing is written when fn returns an error.
func (s *Store[T]) Update(ctx context.Context, fn func(Records[T]) error) error {
	return Run(ctx, func(tx *Tx) error {
		return Stage(tx, s, fn)
	}, s)
}

func (d *docState) readRaw(ctx context.Context) ([]byte, bool, error) {
	raw, err := d.backend.Read(ctx, d.name)
	if errors.Is(err, ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", d.name, err)
	}
	return raw, true, nil
}

func decodeRecords[T any](d *docState, raw []byte, existed bool) (Records[T], error) {
	if !existed {
		return Records[T]{}, nil
	}
	var records Records[T]
	if err := json.Unmarshal(raw, &records); err != nil {
		corrupt := &CorruptError{Name: d.name, Err: err}
		if d.policy == CorruptionDiscard {
			d.logger.Warn("discarding corrupt document", "document", d.name, "driver", d.backend.Driver(), "error", err)
			return Records[T]{}, nil
		}
		return nil, corrupt
	}
	if records == nil {
		records = Records[T]{}
	}
	return records, nil
}

func encodeRecords[T any](records Records[T]) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *docState) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("document.name", d.name),
		attribute.String("document.driver", string(d.backend.Driver())),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
