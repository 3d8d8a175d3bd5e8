// internal/infrastructure/database/postgres/table.go
package postgres

import (
	"context"
	"errors"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"gorm.io/gorm"
)

// Record is the constraint for rows stored through Table.
type Record[E any] interface {
	*E
	repository.Entity
}

// Table implements repository.CRUD over one GORM model. Updates are
// conditional on the stored version.
type Table[E any, P Record[E]] struct {
	db *gorm.DB
}

func NewTable[E any, P Record[E]](db *gorm.DB) *Table[E, P] {
	return &Table[E, P]{db: db}
}

func (t *Table[E, P]) Create(ctx context.Context, entity P) error {
	entity.SetVersion(1)
	if err := t.db.WithContext(ctx).Create(entity).Error; err != nil {
		entity.SetVersion(0)
		return translate(err)
	}
	return nil
}

func (t *Table[E, P]) FindByID(ctx context.Context, id string) (P, error) {
	var row E
	if err := t.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return P(&row), nil
}

func (t *Table[E, P]) Update(ctx context.Context, entity P) error {
	old := entity.GetVersion()
	entity.SetVersion(old + 1)

	result := t.db.WithContext(ctx).Model(entity).
		Where("version = ?", old).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		entity.SetVersion(old)
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		entity.SetVersion(old)
		var count int64
		if err := t.db.WithContext(ctx).Model(P(new(E))).Where("id = ?", entity.GetID()).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	return nil
}

func (t *Table[E, P]) Delete(ctx context.Context, id string) error {
	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(P(new(E)))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *Table[E, P]) DeleteVersion(ctx context.Context, id string, version int64) error {
	result := t.db.WithContext(ctx).Where("id = ? AND version = ?", id, version).Delete(P(new(E)))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := t.db.WithContext(ctx).Model(P(new(E))).Where("id = ?", id).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	return nil
}

// find runs a query and returns pointer rows.
func find[E any, P Record[E]](query *gorm.DB) ([]P, error) {
	var rows []E
	if err := query.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]P, len(rows))
	for i := range rows {
		out[i] = P(&rows[i])
	}
	return out, nil
}

func first[E any, P Record[E]](query *gorm.DB) (P, error) {
	var row E
	if err := query.Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return P(&row), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	default:
		return err
	}
}
