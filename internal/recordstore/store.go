// Package recordstore is the CRUD engine for the saved contacts and jobs.
//
// Each collection is one JSON array stored under a fixed key of a [kvstore.Store]. Every
// mutation reads the whole collection, changes it in memory and writes the whole collection
// back. Concurrent writers against the same key are not coordinated: the last write wins.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
)

// Schema describes one record kind.
type Schema[T any] struct {
	// Kind names the record kind in errors and logs, e.g. "contact".
	Kind string

	// StoreKey is the key-value store key holding the collection.
	StoreKey string

	// KeyField is the JSON name of the natural key field.
	KeyField string

	// Key returns the natural key of a record.
	Key func(T) string

	// Prepare normalizes a new record and fills creation defaults such as timestamps and ids.
	Prepare func(T, time.Time) T

	// Validate checks the required fields of a record.
	Validate func(T) error

	// Migrate decodes a stored collection, including shapes written by older versions.
	Migrate func([]byte) ([]T, error)
}

// Store implements list, add, remove, update and clear for one collection.
type Store[T any] struct {
	kv     kvstore.Store
	schema Schema[T]
	now    func() time.Time
	log    *slog.Logger
}

type options struct {
	now func() time.Time
	log *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithClock sets the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger for mutations and store failures.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New returns a Store for the collection described by schema.
func New[T any](kv kvstore.Store, schema Schema[T], opts ...Option) *Store[T] {
	o := options{
		now: time.Now,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{kv: kv, schema: schema, now: o.now, log: o.log.With("kind", schema.Kind)}
}

// List returns the stored collection in stored order. An absent collection is empty.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	raw, err := s.kv.Get(ctx, s.schema.StoreKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, s.ioError("load", err)
	}
	records, err := s.schema.Migrate(raw)
	if err != nil {
		return nil, s.ioError("decode", err)
	}
	return records, nil
}

// Get returns the record with the given natural key.
func (s *Store[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	records, err := s.List(ctx)
	if err != nil {
		return zero, err
	}
	i := s.indexOf(records, key)
	if i < 0 {
		return zero, &NotFoundError{Kind: s.schema.Kind, Key: key}
	}
	return records[i], nil
}

// Add validates record, fills its creation defaults and inserts it at the head of the
// collection. It returns the stored record.
func (s *Store[T]) Add(ctx context.Context, record T) (T, error) {
	var zero T
	record = s.schema.Prepare(record, s.now())
	if err := s.schema.Validate(record); err != nil {
		return zero, err
	}
	records, err := s.List(ctx)
	if err != nil {
		return zero, err
	}
	key := s.schema.Key(record)
	if s.indexOf(records, key) >= 0 {
		return zero, &DuplicateKeyError{Kind: s.schema.Kind, Key: key}
	}
	records = slices.Insert(records, 0, record)
	if err := s.save(ctx, records); err != nil {
		return zero, err
	}
	s.log.Debug("record added", "key", key, "count", len(records))
	return record, nil
}

// Remove deletes the record with the given natural key. Removing an absent key succeeds and
// writes the unchanged collection.
func (s *Store[T]) Remove(ctx context.Context, key string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	before := len(records)
	records = slices.DeleteFunc(records, func(r T) bool { return s.schema.Key(r) == key })
	if err := s.save(ctx, records); err != nil {
		return err
	}
	s.log.Debug("record removed", "key", key, "removed", before-len(records))
	return nil
}

// Update replaces the record with the given natural key by mutate(record). The natural key must
// not change. The updated record is not validated again, so records written by older versions
// stay updatable.
func (s *Store[T]) Update(ctx context.Context, key string, mutate func(T) T) (T, error) {
	var zero T
	records, err := s.List(ctx)
	if err != nil {
		return zero, err
	}
	i := s.indexOf(records, key)
	if i < 0 {
		return zero, &NotFoundError{Kind: s.schema.Kind, Key: key}
	}
	updated := mutate(records[i])
	if s.schema.Key(updated) != key {
		return zero, &ValidationError{Field: s.schema.KeyField, Reason: "cannot be changed"}
	}
	records[i] = updated
	if err := s.save(ctx, records); err != nil {
		return zero, err
	}
	s.log.Debug("record updated", "key", key)
	return updated, nil
}

// Clear removes the whole collection.
func (s *Store[T]) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.schema.StoreKey); err != nil {
		return s.ioError("clear", err)
	}
	s.log.Debug("collection cleared")
	return nil
}

func (s *Store[T]) indexOf(records []T, key string) int {
	return slices.IndexFunc(records, func(r T) bool { return s.schema.Key(r) == key })
}

func (s *Store[T]) save(ctx context.Context, records []T) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return s.ioError("encode", err)
	}
	if err := s.kv.Set(ctx, s.schema.StoreKey, raw); err != nil {
		return s.ioError("save", err)
	}
	return nil
}

func (s *Store[T]) ioError(op string, err error) error {
	s.log.Error("store operation failed", "op", op, "err", err)
	return &IoError{Op: s.schema.Kind + " " + op, Err: err}
}
