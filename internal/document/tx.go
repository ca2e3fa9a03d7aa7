package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Tx is a critical section over one or more stores. Every document staged in
// it is written immediately; if the Run callback then fails, the documents are
// restored to their pre-images in reverse order.
type Tx struct {
	ctx      context.Context
	enlisted map[*docState]struct{}
	undo     []preImage
	done     bool
}

type preImage struct {
	doc     *docState
	raw     []byte
	existed bool
}

// Context returns the context the critical section runs under.
func (tx *Tx) Context() context.Context { return tx.ctx }

// Run locks every participant, ordered by document name, and calls fn. When fn
// returns an error, writes already made through Stage are rolled back before
// the locks are released.
func Run(ctx context.Context, fn func(tx *Tx) error, participants ...Participant) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("critical section aborted: %w", err)
	}

	docs := make([]*docState, 0, len(participants))
	seen := make(map[*docState]struct{}, len(participants))
	for _, p := range participants {
		d := p.state()
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		docs = append(docs, d)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].name < docs[j].name })

	for _, d := range docs {
		d.mu.Lock()
	}
	defer func() {
		for i := len(docs) - 1; i >= 0; i-- {
			docs[i].mu.Unlock()
		}
	}()

	tx := &Tx{ctx: ctx, enlisted: seen}
	defer func() { tx.done = true }()

	if err = fn(tx); err != nil {
		if rbErr := tx.rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}
	return err
}

func (tx *Tx) check(d *docState) error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	if _, ok := tx.enlisted[d]; !ok {
		return fmt.Errorf("%s: %w", d.name, ErrNotEnlisted)
	}
	return nil
}

// rollback restores pre-images. A restore uses a fresh context so that a
// cancelled caller context cannot strand half of a critical section.
func (tx *Tx) rollback() error {
	var errs []error
	ctx := context.WithoutCancel(tx.ctx)
	for i := len(tx.undo) - 1; i >= 0; i-- {
		img := tx.undo[i]
		var err error
		if img.existed {
			err = img.doc.backend.Write(ctx, img.doc.name, img.raw)
		} else {
			err = img.doc.backend.Delete(ctx, img.doc.name)
		}
		if err != nil {
			img.doc.logger.Error("restore document failed", "document", img.doc.name, "error", err)
			errs = append(errs, fmt.Errorf("restore %s: %w", img.doc.name, err))
			continue
		}
		img.doc.logger.Debug("document restored", "document", img.doc.name)
	}
	tx.undo = nil
	return errors.Join(errs...)
}

// Read loads the records of an enlisted store without writing.
func Read[T any](tx *Tx, s *Store[T]) (_ Records[T], err error) {
	d := s.state()
	if err := tx.check(d); err != nil {
		return nil, err
	}
	ctx, span := d.startSpan(tx.ctx, "document.read")
	defer func() { endSpan(span, err) }()

	raw, existed, err := d.readRaw(ctx)
	if err != nil {
		return nil, err
	}
	return decodeRecords[T](d, raw, existed)
}

// Stage loads the records of an enlisted store, applies fn to a copy and
// writes the copy back. Nothing is written when fn fails.
func Stage[T any](tx *Tx, s *Store[T], fn func(Records[T]) error) (err error) {
	d := s.state()
	if err := tx.check(d); err != nil {
		return err
	}
	ctx, span := d.startSpan(tx.ctx, "document.stage")
	defer func() { endSpan(span, err) }()

	raw, existed, err := d.readRaw(ctx)
	if err != nil {
		return err
	}
	records, err := decodeRecords[T](d, raw, existed)
	if err != nil {
		return err
	}
	working := records.Clone()
	if err := fn(working); err != nil {
		return err
	}
	return writeRecords(ctx, tx, d, working, preImage{doc: d, raw: raw, existed: existed})
}

// Replace writes records over an enlisted store without decoding what is
// there now. The previous bytes are kept for rollback as they were.
func Replace[T any](tx *Tx, s *Store[T], records Records[T]) (err error) {
	d := s.state()
	if err := tx.check(d); err != nil {
		return err
	}
	ctx, span := d.startSpan(tx.ctx, "document.replace")
	defer func() { endSpan(span, err) }()

	raw, existed, err := d.readRaw(ctx)
	if err != nil {
		return err
	}
	return writeRecords(ctx, tx, d, records.Clone(), preImage{doc: d, raw: raw, existed: existed})
}

func writeRecords[T any](ctx context.Context, tx *Tx, d *docState, records Records[T], img preImage) error {
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s aborted: %w", d.name, err)
	}
	if err := d.backend.Write(ctx, d.name, data); err != nil {
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	tx.undo = append(tx.undo, img)
	d.logger.Debug("document written", "document", d.name, "records", len(records), "bytes", len(data))
	return nil
}
