package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

func newCategory(id, name string) *category.Category {
	return &category.Category{ID: id, Name: name, Slug: name, ChildIDs: []string{}}
}

func TestTable_CreateAssignsVersionAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()

	c := newCategory("c1", "books")
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, int64(1), c.Version)

	assert.ErrorIs(t, repo.Create(ctx, newCategory("c1", "other")), repository.ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, newCategory("c2", "books")), repository.ErrDuplicate)
}

func TestTable_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()
	require.NoError(t, repo.Create(ctx, newCategory("c1", "books")))

	first, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)

	first.Description = "first"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Description = "second"
	assert.ErrorIs(t, repo.Update(ctx, second), repository.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Description)
}

func TestTable_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()
	c := newCategory("c1", "books")
	c.ChildIDs = []string{"a"}
	require.NoError(t, repo.Create(ctx, c))

	c.ChildIDs[0] = "mutated"
	loaded, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	loaded.ChildIDs = append(loaded.ChildIDs, "b")

	again, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.ChildIDs)
}

func TestTable_DeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()
	require.NoError(t, repo.Create(ctx, newCategory("c1", "books")))

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), repository.ErrNotFound)
	_, err := repo.FindByID(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newCategory("c1", "books")), repository.ErrNotFound)
}

func TestTable_DeleteVersionIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()
	require.NoError(t, repo.Create(ctx, newCategory("c1", "books")))

	stale, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	fresh, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	fresh.ChildIDs = []string{"c2"}
	require.NoError(t, repo.Update(ctx, fresh))

	assert.ErrorIs(t, repo.DeleteVersion(ctx, "c1", stale.Version), repository.ErrVersionConflict)
	_, err = repo.FindByID(ctx, "c1")
	require.NoError(t, err, "a stale delete leaves the row in place")

	require.NoError(t, repo.DeleteVersion(ctx, "c1", fresh.Version))
	assert.ErrorIs(t, repo.DeleteVersion(ctx, "c1", fresh.Version), repository.ErrNotFound)
}

func TestCategoryRepository_FindRootsOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository()
	parent := "p"

	for _, c := range []*category.Category{
		{ID: "p", Name: "zeta", Slug: "zeta", Order: 2},
		{ID: "a", Name: "alpha", Slug: "alpha", Order: 1},
		{ID: "b", Name: "beta", Slug: "beta", Order: 1},
		{ID: "child", Name: "child", Slug: "child", ParentID: &parent},
	} {
		require.NoError(t, repo.Create(ctx, c))
	}

	roots, err := repo.FindRoots(ctx)
	require.NoError(t, err)
	var names []string
	for _, r := range roots {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, names)
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, paginate(rows, 2, 2))
	assert.Equal(t, []int{5}, paginate(rows, 4, 10))
	assert.Empty(t, paginate(rows, 9, 2))
	assert.Equal(t, rows, paginate(rows, 0, 0))
}
