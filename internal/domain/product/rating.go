// internal/domain/product/rating.go
package product

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// OpRecomputeRating is the journal kind for refreshing a product's rating
// after one of its reviews changed.
const OpRecomputeRating = "product.recompute_rating"

// RatingAggregator keeps Product.Rating and Product.ReviewIDs in step with
// the product's reviews.
type RatingAggregator struct {
	products Repository
	reviews  ReviewRepository
	logger   *logrus.Entry
	now      func() time.Time
}

// NewRatingAggregator creates the aggregator and registers its journal handler
func NewRatingAggregator(products Repository, reviews ReviewRepository, j *journal.Journal, logger *logrus.Logger) *RatingAggregator {
	a := &RatingAggregator{
		products: products,
		reviews:  reviews,
		logger:   logger.WithField("component", "rating"),
		now:      time.Now,
	}
	j.Register(OpRecomputeRating, func(ctx context.Context, op *journal.Operation) error {
		_, err := a.Recompute(ctx, op.AggregateID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})
	return a
}

// Summarize computes the rating over every review regardless of approval,
// and the review ids in creation order.
func Summarize(reviews []*Review) (Rating, []string) {
	sorted := append([]*Review(nil), reviews...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	ids := make([]string, 0, len(sorted))
	total := 0
	for _, r := range sorted {
		ids = append(ids, r.ID)
		total += r.Rating
	}
	if len(sorted) == 0 {
		return Rating{}, ids
	}
	return Rating{
		Average: float64(total) / float64(len(sorted)),
		Count:   len(sorted),
	}, ids
}

// Recompute rebuilds the product's rating from its current reviews. The
// review set is re-read on every optimistic retry, so the last write always
// reflects every review committed before it started. Returns
// repository.ErrNotFound when the product does not exist.
func (a *RatingAggregator) Recompute(ctx context.Context, productID string) (*Product, error) {
	ctx, span := tracer.Start(ctx, "product.RecomputeRating")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	product, err := repository.Mutate[*Product](ctx, a.products, productID, func(p *Product) error {
		reviews, err := a.reviews.FindByProduct(ctx, productID, false)
		if err != nil {
			return err
		}
		rating, ids := Summarize(reviews)
		if p.Rating == rating && equalIDs(p.ReviewIDs, ids) {
			return repository.ErrNoChange
		}
		p.Rating = rating
		p.ReviewIDs = ids
		p.UpdatedAt = a.now().UTC()
		return nil
	})
	if err != nil {
		metrics.RatingRecomputes.WithLabelValues("error").Inc()
		if !errors.Is(err, repository.ErrNotFound) {
			a.logger.WithError(err).WithField("product_id", productID).Error("Rating recompute failed")
		}
		return nil, err
	}

	metrics.RatingRecomputes.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.Float64("rating.average", product.Rating.Average),
		attribute.Int("rating.count", product.Rating.Count),
	)
	return product, nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
