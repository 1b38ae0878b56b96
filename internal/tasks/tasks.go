// Package tasks runs detached background work.
//
// A detached task is started after its triggering request has been answered;
// its outcome is observable only through later reads of the persisted record.
// The runner tracks in-flight tasks so the process can drain them on shutdown
// instead of abandoning them, and recovers panics so no task can crash the
// host process.
package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDrainTimeout is returned by Drain when in-flight tasks did not finish
// before the context expired.
var ErrDrainTimeout = errors.New("timed out draining background tasks")

// ErrClosed is returned by Go after Drain has begun.
var ErrClosed = errors.New("task runner is shut down")

// Runner tracks detached background tasks.
type Runner struct {
	log *zap.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewRunner returns a Runner logging through log.
func NewRunner(log *zap.Logger) *Runner {
	return &Runner{log: log}
}

// Go starts fn as a detached task. The task receives a fresh background
// context: it must not be bound to the triggering request's lifetime.
func (r *Runner) Go(name string, fn func(ctx context.Context)) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	taskID := uuid.NewString()
	log := r.log.With(zap.String("task", name), zap.String("task_id", taskID))

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("background task panicked", zap.Any("panic", rec))
			}
		}()

		log.Debug("background task started")
		fn(context.Background())
		log.Debug("background task finished")
	}()

	return nil
}

// Drain rejects new tasks and waits for in-flight ones to finish, or until
// ctx expires.
func (r *Runner) Drain(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrDrainTimeout
	}
}
