package storage

import (
	"context"
	"errors"
	"time"

	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/observability"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around an ObjectStore.
type BreakerConfig struct {
	Name             string
	Timeout          time.Duration // per call
	OpenTimeout      time.Duration // how long the breaker stays open
	FailureThreshold uint32
}

// DefaultBreakerConfig trips after five consecutive failures and retries after 30s.
func DefaultBreakerConfig(callTimeout time.Duration) BreakerConfig {
	return BreakerConfig{
		Name:             "object-store",
		Timeout:          callTimeout,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore guards an ObjectStore with a per-call timeout and a circuit breaker.
// Every failure surfaces as a STORAGE_ERROR AppError.
type BreakerStore struct {
	next    ObjectStore
	cb      *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
}

// NewBreakerStore wraps next.
func NewBreakerStore(next ObjectStore, cfg BreakerConfig) *BreakerStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A missing object is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			middleware.Logger.Warn("object store circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerStore{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[struct{}](settings),
		timeout: cfg.Timeout,
	}
}

// State reports the breaker state for health output.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func (b *BreakerStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	return b.call(ctx, "put", name, func(ctx context.Context) error {
		return b.next.Put(ctx, name, data, contentType)
	})
}

func (b *BreakerStore) Remove(ctx context.Context, name string) error {
	return b.call(ctx, "remove", name, func(ctx context.Context) error {
		return b.next.Remove(ctx, name)
	})
}

func (b *BreakerStore) call(ctx context.Context, op, name string, fn func(context.Context) error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		callCtx := ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		return struct{}{}, fn(callCtx)
	})
	if err == nil {
		observability.StorageOperations.WithLabelValues(op, "ok").Inc()
		return nil
	}

	observability.StorageOperations.WithLabelValues(op, "error").Inc()
	switch {
	case errors.Is(err, ErrObjectNotFound):
		return models.NewNotFoundError("Object", name)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return models.NewStorageError("Image storage is temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewStorageError("Image storage timed out", err)
	default:
		return models.NewStorageError("Image storage request failed", err)
	}
}
