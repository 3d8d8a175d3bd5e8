package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/your-org/ecommerce-core/internal/pkg/metrics"
)

// ErrNoChange can be returned by a Mutate callback to skip the write.
var ErrNoChange = errors.New("no change")

// MaxConflictWait bounds how long Mutate keeps retrying version conflicts.
var MaxConflictWait = 3 * time.Second

func conflictBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.Multiplier = 1.6
	b.MaxElapsedTime = MaxConflictWait
	return backoff.WithContext(b, ctx)
}

// RetryOnConflict runs op until it returns something other than
// ErrVersionConflict, backing off between attempts. Exhausting the budget
// returns the last conflict.
func RetryOnConflict(ctx context.Context, aggregate string, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrVersionConflict) {
			metrics.VersionConflicts.WithLabelValues(aggregate).Inc()
			return err
		}
		return backoff.Permanent(err)
	}, conflictBackoff(ctx))
}

// Mutate loads the entity, applies fn and writes it back with optimistic
// concurrency, reloading and reapplying fn on every conflict. fn must be a
// pure function of the loaded entity. The written entity is returned; when
// fn returns ErrNoChange the loaded entity is returned without a write.
func Mutate[T Entity](ctx context.Context, repo CRUD[T], id string, fn func(T) error) (T, error) {
	var result T
	aggregate := aggregateName[T]()

	err := RetryOnConflict(ctx, aggregate, func() error {
		entity, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(entity); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = entity
				return nil
			}
			return err
		}
		if err := repo.Update(ctx, entity); err != nil {
			return err
		}
		result = entity
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func aggregateName[T Entity]() string {
	var zero T
	name := fmt.Sprintf("%T", zero)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
