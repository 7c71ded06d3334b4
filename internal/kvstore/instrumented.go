package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Instrumented implements [Store] by delegating to another Store and counting every operation
// by outcome.
type Instrumented struct {
	next Store
	set  *metrics.Set
}

var _ Store = (*Instrumented)(nil)

// Instrument wraps next so that its operations are recorded in set.
func Instrument(next Store, set *metrics.Set) *Instrumented {
	return &Instrumented{next: next, set: set}
}

func (s *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	return value, err
}

func (s *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

func (s *Instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.observe("remove", start, err)
	return err
}

// Ping delegates to the wrapped store when it can be pinged.
func (s *Instrumented) Ping(ctx context.Context) error {
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	s.set.GetOrCreateCounter(OperationsMetric(op, result(err))).Inc()
	s.set.GetOrCreateHistogram(fmt.Sprintf(`kvstore_operation_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

// OperationsMetric returns the name of the counter for op with the given result.
func OperationsMetric(op, result string) string {
	return fmt.Sprintf(`kvstore_operations_total{op=%q,result=%q}`, op, result)
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
