// Package memory provides process-local repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// Record is the constraint for entities stored in a Table. Clone must return
// a deep copy so callers never share slices with the stored row.
type Record[E any] interface {
	*E
	repository.Entity
	Clone() *E
}

// UniqueKey extracts a key that must be unique across the table. An empty
// key is not indexed.
type UniqueKey[E any] func(*E) string

// Table is a generic versioned row store guarded by a single mutex.
type Table[E any, P Record[E]] struct {
	mu     sync.RWMutex
	rows   map[string]P
	unique []UniqueKey[E]
}

func NewTable[E any, P Record[E]](unique ...UniqueKey[E]) *Table[E, P] {
	return &Table[E, P]{
		rows:   make(map[string]P),
		unique: unique,
	}
}

func (t *Table[E, P]) Create(ctx context.Context, entity P) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	id := entity.GetID()
	if _, exists := t.rows[id]; exists {
		return repository.ErrDuplicate
	}
	if t.violatesUnique(id, entity) {
		return repository.ErrDuplicate
	}
	entity.SetVersion(1)
	t.rows[id] = P(entity.Clone())
	return nil
}

func (t *Table[E, P]) FindByID(ctx context.Context, id string) (P, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return P(row.Clone()), nil
}

func (t *Table[E, P]) Update(ctx context.Context, entity P) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	id := entity.GetID()
	current, ok := t.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if current.GetVersion() != entity.GetVersion() {
		return repository.ErrVersionConflict
	}
	if t.violatesUnique(id, entity) {
		return repository.ErrDuplicate
	}
	entity.SetVersion(entity.GetVersion() + 1)
	t.rows[id] = P(entity.Clone())
	return nil
}

func (t *Table[E, P]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *Table[E, P]) DeleteVersion(ctx context.Context, id string, version int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if current.GetVersion() != version {
		return repository.ErrVersionConflict
	}
	delete(t.rows, id)
	return nil
}

// Select returns copies of every row matching keep, ordered by less when
// it is non-nil.
func (t *Table[E, P]) Select(ctx context.Context, keep func(P) bool, less func(a, b P) bool) ([]P, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	out := make([]P, 0)
	for _, row := range t.rows {
		if keep == nil || keep(row) {
			out = append(out, P(row.Clone()))
		}
	}
	t.mu.RUnlock()

	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

// First returns the first row matching keep or ErrNotFound.
func (t *Table[E, P]) First(ctx context.Context, keep func(P) bool) (P, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if keep(row) {
			return P(row.Clone()), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *Table[E, P]) violatesUnique(id string, entity P) bool {
	for _, key := range t.unique {
		want := key((*E)(entity))
		if want == "" {
			continue
		}
		for otherID, row := range t.rows {
			if otherID != id && key((*E)(row)) == want {
				return true
			}
		}
	}
	return false
}
