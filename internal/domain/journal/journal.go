// internal/domain/journal/journal.go
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/metrics"
)

// Handler applies the follow-up write of an operation. Handlers must be
// idempotent and derive the target state from the source of truth, since an
// operation may run more than once.
type Handler func(ctx context.Context, op *Operation) error

// ReplayGrace keeps replay away from operations still being run by the
// request that recorded them.
var ReplayGrace = 30 * time.Second

// RunRetries is how many times Run retries a failing handler before leaving
// the operation pending.
var RunRetries uint64 = 3

func runBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(b, RunRetries), ctx)
}

// ReplayResult summarises one replay pass.
type ReplayResult struct {
	Attempted int `json:"attempted"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Journal records and completes cross-aggregate operations.
type Journal struct {
	repo     Repository
	logger   *logrus.Entry
	mu       sync.RWMutex
	handlers map[string]Handler
	now      func() time.Time
}

func New(repo Repository, logger *logrus.Logger) *Journal {
	return &Journal{
		repo:     repo,
		logger:   logger.WithField("component", "journal"),
		handlers: make(map[string]Handler),
		now:      time.Now,
	}
}

// Register binds a handler to an operation kind. Registering a kind twice
// replaces the earlier handler.
func (j *Journal) Register(kind string, handler Handler) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.handlers[kind] = handler
}

func (j *Journal) handler(kind string) (Handler, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	h, ok := j.handlers[kind]
	return h, ok
}

// Begin records a pending operation. Call it before the first write.
func (j *Journal) Begin(ctx context.Context, kind, aggregateID, subjectID string) (*Operation, error) {
	if _, ok := j.handler(kind); !ok {
		return nil, fmt.Errorf("no handler registered for operation %q", kind)
	}

	now := j.now().UTC()
	op := &Operation{
		ID:          repository.NewID(),
		Kind:        kind,
		AggregateID: aggregateID,
		SubjectID:   subjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := j.repo.Create(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to record %s operation: %w", kind, err)
	}
	return op, nil
}

// Run applies the operation's follow-up write, retrying transient failures,
// and removes the operation once it succeeds. On failure the operation stays
// pending for replay.
func (j *Journal) Run(ctx context.Context, op *Operation) error {
	h, ok := j.handler(op.Kind)
	if !ok {
		return fmt.Errorf("no handler registered for operation %q", op.Kind)
	}

	err := backoff.Retry(func() error { return h(ctx, op) }, runBackoff(ctx))
	if err != nil {
		metrics.JournalOperations.WithLabelValues(op.Kind, "failed").Inc()
		j.recordFailure(ctx, op, err)
		return fmt.Errorf("%s operation %s: %w", op.Kind, op.ID, err)
	}

	metrics.JournalOperations.WithLabelValues(op.Kind, "completed").Inc()
	j.remove(ctx, op)
	return nil
}

// Discard drops an operation whose first write never happened.
func (j *Journal) Discard(ctx context.Context, op *Operation) {
	metrics.JournalOperations.WithLabelValues(op.Kind, "discarded").Inc()
	j.remove(ctx, op)
}

// Pending lists operations waiting for replay, oldest first.
func (j *Journal) Pending(ctx context.Context, limit int) ([]*Operation, error) {
	return j.repo.FindPending(ctx, time.Time{}, limit)
}

// Replay runs every pending operation older than ReplayGrace.
func (j *Journal) Replay(ctx context.Context, limit int) (ReplayResult, error) {
	var result ReplayResult

	ops, err := j.repo.FindPending(ctx, j.now().UTC().Add(-ReplayGrace), limit)
	if err != nil {
		return result, fmt.Errorf("failed to list pending operations: %w", err)
	}

	for _, op := range ops {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Attempted++
		if err := j.Run(ctx, op); err != nil {
			result.Failed++
			j.logger.WithError(err).WithFields(logrus.Fields{
				"operation_id": op.ID,
				"kind":         op.Kind,
				"attempts":     op.Attempts,
			}).Warn("Replay of pending operation failed")
			continue
		}
		result.Completed++
	}

	if result.Attempted > 0 {
		j.logger.WithFields(logrus.Fields{
			"attempted": result.Attempted,
			"completed": result.Completed,
			"failed":    result.Failed,
		}).Info("Journal replay finished")
	}
	return result, nil
}

// StartReplayLoop replays pending operations every interval until ctx is done.
func (j *Journal) StartReplayLoop(ctx context.Context, interval time.Duration, batch int) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Replay(ctx, batch); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.WithError(err).Error("Journal replay failed")
			}
		}
	}
}

func (j *Journal) remove(ctx context.Context, op *Operation) {
	err := j.repo.Delete(ctx, op.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		j.logger.WithError(err).WithField("operation_id", op.ID).Warn("Failed to remove finished operation")
	}
}

func (j *Journal) recordFailure(ctx context.Context, op *Operation, cause error) {
	updated, err := repository.Mutate[*Operation](ctx, j.repo, op.ID, func(o *Operation) error {
		o.Attempts++
		o.LastError = cause.Error()
		o.UpdatedAt = j.now().UTC()
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			j.logger.WithError(err).WithField("operation_id", op.ID).Warn("Failed to record operation failure")
		}
		return
	}
	op.Attempts = updated.Attempts
	op.LastError = updated.LastError
	op.Version = updated.Version
}
