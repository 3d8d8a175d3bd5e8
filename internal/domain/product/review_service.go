// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"go.opentelemetry.io/otel/attribute"
)

// UserLookup resolves review authors for listings. user.Repository
// satisfies it.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Reviewer is the public profile shown next to a review
type Reviewer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ReviewView is a review with its author resolved. User is nil when the
// author no longer exists.
type ReviewView struct {
	*Review
	User *Reviewer `json:"user"`
}

// ReviewService handles review writes and keeps product ratings current
type ReviewService struct {
	reviews     ReviewRepository
	products    Repository
	users       UserLookup
	journal     *journal.Journal
	autoApprove bool
	logger      *logrus.Entry
	now         func() time.Time
}

// NewReviewService creates a new review service. The RatingAggregator must
// be constructed on the same journal so recompute operations have a handler.
func NewReviewService(reviews ReviewRepository, products Repository, users UserLookup, j *journal.Journal, autoApprove bool, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		products:    products,
		users:       users,
		journal:     j,
		autoApprove: autoApprove,
		logger:      logger.WithField("component", "review"),
		now:         time.Now,
	}
}

// CreateReviewRequest represents the request to create a review
type CreateReviewRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Title     string   `json:"title" binding:"max=255"`
	Comment   string   `json:"comment" binding:"max=2000"`
	Images    []string `json:"images,omitempty" binding:"max=5"`
}

// UpdateReviewRequest represents the request to update a review
type UpdateReviewRequest struct {
	Rating  *int     `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Title   *string  `json:"title,omitempty" binding:"omitempty,max=255"`
	Comment *string  `json:"comment,omitempty" binding:"omitempty,max=2000"`
	Images  []string `json:"images,omitempty" binding:"omitempty,max=5"`
}

// Create stores a user's review and refreshes the product rating
func (s *ReviewService) Create(ctx context.Context, userID string, req CreateReviewRequest) (*Review, error) {
	ctx, span := tracer.Start(ctx, "review.Create")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", req.ProductID))

	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return nil, notFoundOr(err, "product not found", "failed to verify product")
	}

	_, err := s.reviews.FindByProductAndUser(ctx, req.ProductID, userID)
	switch {
	case err == nil:
		return nil, apperror.ErrDuplicateReview
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperror.Internal("failed to check existing review", err)
	}

	now := s.now().UTC()
	review := &Review{
		ID:         repository.NewID(),
		ProductID:  req.ProductID,
		UserID:     userID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
		Images:     nonNil(req.Images),
		IsApproved: s.autoApprove,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	op, err := s.journal.Begin(ctx, OpRecomputeRating, review.ProductID, review.ID)
	if err != nil {
		return nil, apperror.Internal("failed to create review", err)
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		s.journal.Discard(context.WithoutCancel(ctx), op)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.ErrDuplicateReview
		}
		return nil, apperror.Internal("failed to create review", err)
	}
	if err := s.journal.Run(context.WithoutCancel(ctx), op); err != nil {
		return nil, apperror.Internal("review saved but product rating update is pending", err)
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"user_id":    userID,
	}).Info("Review created")
	return review, nil
}

// Get retrieves a review by id
func (s *ReviewService) Get(ctx context.Context, id string) (*Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "review not found", "failed to retrieve review")
	}
	return review, nil
}

// ListForProduct returns the approved reviews of a product, newest first,
// each with its author's name and avatar.
func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]*ReviewView, error) {
	reviews, err := s.reviews.FindByProduct(ctx, productID, true)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve reviews", err)
	}

	authors := make(map[string]*Reviewer)
	views := make([]*ReviewView, 0, len(reviews))
	for _, review := range reviews {
		author, seen := authors[review.UserID]
		if !seen {
			u, err := s.users.FindByID(ctx, review.UserID)
			switch {
			case err == nil:
				author = &Reviewer{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
			case !errors.Is(err, repository.ErrNotFound):
				return nil, apperror.Internal("failed to retrieve reviewers", err)
			}
			authors[review.UserID] = author
		}
		views = append(views, &ReviewView{Review: review, User: author})
	}
	return views, nil
}

// Update lets the author edit their review
func (s *ReviewService) Update(ctx context.Context, reviewID, userID string, req UpdateReviewRequest) (*Review, error) {
	ctx, span := tracer.Start(ctx, "review.Update")
	defer span.End()

	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
	}

	current, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "review not found", "failed to retrieve review")
	}
	if !current.CanBeEditedBy(userID) {
		return nil, apperror.Forbidden("you cannot edit this review")
	}

	var op *journal.Operation
	if req.Rating != nil {
		op, err = s.journal.Begin(ctx, OpRecomputeRating, current.ProductID, reviewID)
		if err != nil {
			return nil, apperror.Internal("failed to update review", err)
		}
	}

	review, err := repository.Mutate[*Review](ctx, s.reviews, reviewID, func(r *Review) error {
		if req.Rating != nil {
			r.Rating = *req.Rating
		}
		if req.Title != nil {
			r.Title = *req.Title
		}
		if req.Comment != nil {
			r.Comment = *req.Comment
		}
		if req.Images != nil {
			r.Images = req.Images
		}
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if op != nil {
			s.journal.Discard(context.WithoutCancel(ctx), op)
		}
		return nil, writeError(err, "review not found", "failed to update review")
	}

	if op != nil {
		if err := s.journal.Run(context.WithoutCancel(ctx), op); err != nil {
			return nil, apperror.Internal("review updated but product rating update is pending", err)
		}
	}
	return review, nil
}

// Delete removes a review. Only its author or an administrator may do so.
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID string, isAdmin bool) error {
	ctx, span := tracer.Start(ctx, "review.Delete")
	defer span.End()

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return notFoundOr(err, "review not found", "failed to retrieve review")
	}
	if !review.CanBeEditedBy(userID) && !isAdmin {
		return apperror.Forbidden("you cannot delete this review")
	}

	op, err := s.journal.Begin(ctx, OpRecomputeRating, review.ProductID, reviewID)
	if err != nil {
		return apperror.Internal("failed to delete review", err)
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		s.journal.Discard(context.WithoutCancel(ctx), op)
		return notFoundOr(err, "review not found", "failed to delete review")
	}
	if err := s.journal.Run(context.WithoutCancel(ctx), op); err != nil {
		return apperror.Internal("review deleted but product rating update is pending", err)
	}

	s.logger.WithFields(logrus.Fields{"review_id": reviewID, "product_id": review.ProductID}).Info("Review deleted")
	return nil
}

// SetApproval publishes or hides a review. Ratings count every review, so
// approval does not touch the product.
func (s *ReviewService) SetApproval(ctx context.Context, reviewID string, approved bool) (*Review, error) {
	review, err := repository.Mutate[*Review](ctx, s.reviews, reviewID, func(r *Review) error {
		if r.IsApproved == approved {
			return repository.ErrNoChange
		}
		r.IsApproved = approved
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, writeError(err, "review not found", "failed to update review status")
	}
	return review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperror.Validation("rating must be between 1 and 5")
	}
	return nil
}
