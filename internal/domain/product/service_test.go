package product_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/memory"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

type fixture struct {
	products   *memory.ProductRepository
	writes     *flakyProducts
	users      *memory.UserRepository
	categoryID string
	journal    *journal.Journal
	catalog    *product.Service
	reviews    *product.ReviewService
	ratings    *product.RatingAggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	categories := memory.NewCategoryRepository()
	cat := &category.Category{ID: "cat-1", Name: "Electronics", Slug: "electronics", ChildIDs: []string{}}
	require.NoError(t, categories.Create(ctx, cat))

	products := memory.NewProductRepository()
	writes := &flakyProducts{Repository: products}
	reviews := memory.NewReviewRepository()
	users := memory.NewUserRepository()
	j := journal.New(memory.NewOperationRepository(), logger.Discard())

	return &fixture{
		products:   products,
		writes:     writes,
		users:      users,
		categoryID: cat.ID,
		journal:    j,
		catalog:    product.NewService(writes, categories, logger.Discard()),
		reviews:    product.NewReviewService(reviews, writes, users, j, true, logger.Discard()),
		ratings:    product.NewRatingAggregator(writes, reviews, j, logger.Discard()),
	}
}

// flakyProducts fails product updates while fail is set.
type flakyProducts struct {
	product.Repository

	mu   sync.Mutex
	fail error
}

func (r *flakyProducts) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	fail := r.fail
	r.mu.Unlock()
	if fail != nil {
		return fail
	}
	return r.Repository.Update(ctx, p)
}

func (r *flakyProducts) setFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (f *fixture) newProduct(t *testing.T, sku string) *product.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), product.CreateRequest{
		SKU:        sku,
		Name:       "Product " + sku,
		Price:      19.99,
		CategoryID: f.categoryID,
		Stock:      10,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) rating(t *testing.T, productID string) (product.Rating, []string) {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Rating, p.ReviewIDs
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.newProduct(t, "SKU-1")
	assert.Equal(t, "product-sku-1", p.Slug)
	assert.Equal(t, product.Rating{}, p.Rating)
	assert.Empty(t, p.ReviewIDs)
	assert.True(t, p.IsActive)

	_, err := f.catalog.Create(ctx, product.CreateRequest{SKU: "SKU-1", Name: "Other", Price: 1, CategoryID: f.categoryID})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.catalog.Create(ctx, product.CreateRequest{SKU: "SKU-2", Name: "Other", Price: 1, CategoryID: "missing"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.catalog.Create(ctx, product.CreateRequest{SKU: "SKU-3", Name: "Free", Price: 0, CategoryID: f.categoryID})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestListProducts_Paginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.newProduct(t, fmt.Sprintf("SKU-%d", i))
	}

	page, err := f.catalog.List(context.Background(), product.ListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, int64(5), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestFindByIDs_PreservesOrder(t *testing.T) {
	f := newFixture(t)
	a := f.newProduct(t, "A")
	b := f.newProduct(t, "B")

	found, err := f.catalog.FindByIDs(context.Background(), []string{b.ID, "missing", a.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, b.ID, found[0].ID)
	assert.Equal(t, a.ID, found[1].ID)
}

func TestSummarize(t *testing.T) {
	rating, ids := product.Summarize(nil)
	assert.Equal(t, product.Rating{}, rating)
	assert.Empty(t, ids)

	rating, _ = product.Summarize([]*product.Review{{ID: "a", Rating: 5}, {ID: "b", Rating: 4}, {ID: "c", Rating: 4}})
	assert.InDelta(t, 4.333, rating.Average, 0.001)
	assert.Equal(t, 3, rating.Count)
}

func TestReviews_DriveRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")

	first, err := f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 4, Title: "Good"})
	require.NoError(t, err)
	second, err := f.reviews.Create(ctx, "user-2", product.CreateReviewRequest{ProductID: p.ID, Rating: 2})
	require.NoError(t, err)

	rating, ids := f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 3, Count: 2}, rating)
	assert.Equal(t, []string{first.ID, second.ID}, ids)

	_, err = f.reviews.Update(ctx, second.ID, "user-2", product.UpdateReviewRequest{Rating: ptr(5)})
	require.NoError(t, err)
	rating, _ = f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 4.5, Count: 2}, rating)

	require.NoError(t, f.reviews.Delete(ctx, second.ID, "user-2", false))
	rating, ids = f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 4, Count: 1}, rating)
	assert.Equal(t, []string{first.ID}, ids)

	require.NoError(t, f.reviews.Delete(ctx, first.ID, "admin", true))
	rating, ids = f.rating(t, p.ID)
	assert.Equal(t, product.Rating{}, rating)
	assert.Empty(t, ids)

	pending, err := f.journal.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateReview_DuplicateLeavesRatingUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")

	_, err := f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 5})
	require.NoError(t, err)

	_, err = f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 1})
	assert.ErrorIs(t, err, apperror.ErrDuplicateReview)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	rating, ids := f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 5, Count: 1}, rating)
	assert.Len(t, ids, 1)
}

func TestCreateReview_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")

	_, err := f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 6})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: "missing", Rating: 3})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestReviewOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")
	review, err := f.reviews.Create(ctx, "author", product.CreateReviewRequest{ProductID: p.ID, Rating: 3})
	require.NoError(t, err)

	_, err = f.reviews.Update(ctx, review.ID, "intruder", product.UpdateReviewRequest{Rating: ptr(1)})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	err = f.reviews.Delete(ctx, review.ID, "intruder", false)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	rating, _ := f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 3, Count: 1}, rating)
}

func TestListForProduct_OnlyApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")
	a, err := f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, "user-2", product.CreateReviewRequest{ProductID: p.ID, Rating: 1})
	require.NoError(t, err)

	_, err = f.reviews.SetApproval(ctx, a.ID, false)
	require.NoError(t, err)

	listed, err := f.reviews.ListForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "user-2", listed[0].UserID)
	assert.Nil(t, listed[0].User, "authors that no longer exist are left unresolved")

	// Hidden reviews still count toward the rating.
	rating, _ := f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 3, Count: 2}, rating)
}

func TestListForProduct_ResolvesAuthors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")
	for _, u := range []*user.User{
		{ID: "user-1", Name: "Asha", Email: "asha@example.com", Avatar: "https://cdn.example.com/asha.png"},
		{ID: "user-2", Name: "Ben", Email: "ben@example.com"},
	} {
		require.NoError(t, f.users.Create(ctx, u))
	}

	for _, id := range []string{"user-1", "user-2"} {
		_, err := f.reviews.Create(ctx, id, product.CreateReviewRequest{ProductID: p.ID, Rating: 4})
		require.NoError(t, err)
	}

	listed, err := f.reviews.ListForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byUser := map[string]*product.Reviewer{}
	for _, view := range listed {
		require.NotNil(t, view.User)
		byUser[view.UserID] = view.User
	}
	assert.Equal(t, &product.Reviewer{ID: "user-1", Name: "Asha", Avatar: "https://cdn.example.com/asha.png"}, byUser["user-1"])
	assert.Equal(t, "Ben", byUser["user-2"].Name)
	assert.Empty(t, byUser["user-2"].Avatar)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")
	for i, rating := range []int{5, 2, 4} {
		_, err := f.reviews.Create(ctx, fmt.Sprintf("user-%d", i), product.CreateReviewRequest{ProductID: p.ID, Rating: rating})
		require.NoError(t, err)
	}

	first, err := f.ratings.Recompute(ctx, p.ID)
	require.NoError(t, err)
	second, err := f.ratings.Recompute(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Rating, second.Rating)
	assert.Equal(t, first.ReviewIDs, second.ReviewIDs)
	assert.Equal(t, first.Version, second.Version, "an unchanged rating is not rewritten")
	assert.Equal(t, 3, second.Rating.Count)
	assert.InDelta(t, 11.0/3, second.Rating.Average, 0.0001)

	stored, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, stored.Version)
}

func TestReplayRepairsInterruptedRecompute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProduct(t, "SKU-1")

	f.writes.setFailure(errors.New("connection reset"))
	_, err := f.reviews.Create(ctx, "user-1", product.CreateReviewRequest{ProductID: p.ID, Rating: 4})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	f.writes.setFailure(nil)

	rating, ids := f.rating(t, p.ID)
	assert.Equal(t, product.Rating{}, rating, "the review is stored but the rating is stale")
	assert.Empty(t, ids)

	pending, err := f.journal.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, product.OpRecomputeRating, pending[0].Kind)
	assert.Equal(t, p.ID, pending[0].AggregateID)
	assert.Positive(t, pending[0].Attempts)

	grace := journal.ReplayGrace
	journal.ReplayGrace = 0
	t.Cleanup(func() { journal.ReplayGrace = grace })
	time.Sleep(time.Millisecond)

	result, err := f.journal.Replay(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)

	rating, ids = f.rating(t, p.ID)
	assert.Equal(t, product.Rating{Average: 4, Count: 1}, rating)
	assert.Len(t, ids, 1)

	pending, err = f.journal.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConcurrentReviews(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t, "SKU-1")

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.reviews.Create(context.Background(), fmt.Sprintf("user-%d", i), product.CreateReviewRequest{
				ProductID: p.ID,
				Rating:    i%5 + 1,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rating, ids := f.rating(t, p.ID)
	assert.Equal(t, n, rating.Count)
	assert.Len(t, ids, n)
	assert.InDelta(t, 3.0, rating.Average, 0.0001)
}

func TestRecompute_MissingProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.ratings.Recompute(context.Background(), "missing")
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
