// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/slug"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/your-org/ecommerce-core/internal/domain/product")

// Service handles product business logic
type Service struct {
	repo       Repository
	categories category.Repository
	logger     *logrus.Entry
	now        func() time.Time
}

// NewService creates a new product service
func NewService(repo Repository, categories category.Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger.WithField("component", "product"),
		now:        time.Now,
	}
}

// ListRequest represents product listing query parameters
type ListRequest struct {
	Page            int    `form:"page,default=1"`
	Limit           int    `form:"limit,default=20"`
	CategoryID      string `form:"category_id"`
	IsFeatured      *bool  `form:"is_featured"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	SKU              string   `json:"sku" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Price            float64  `json:"price" binding:"required,gt=0"`
	ComparePrice     float64  `json:"compare_price" binding:"gte=0"`
	DiscountPercent  float64  `json:"discount_percent" binding:"gte=0,lte=100"`
	CategoryID       string   `json:"category_id" binding:"required"`
	SubcategoryID    *string  `json:"subcategory_id"`
	Brand            string   `json:"brand"`
	Stock            int      `json:"stock" binding:"gte=0"`
	Images           []string `json:"images"`
	Tags             []string `json:"tags"`
	IsFeatured       bool     `json:"is_featured"`
	IsActive         *bool    `json:"is_active"`
}

// UpdateRequest represents product update data. Rating fields are not
// writable here.
type UpdateRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description"`
	Price            *float64 `json:"price" binding:"omitempty,gt=0"`
	ComparePrice     *float64 `json:"compare_price" binding:"omitempty,gte=0"`
	DiscountPercent  *float64 `json:"discount_percent" binding:"omitempty,gte=0,lte=100"`
	CategoryID       *string  `json:"category_id"`
	Brand            *string  `json:"brand"`
	Stock            *int     `json:"stock" binding:"omitempty,gte=0"`
	Images           []string `json:"images"`
	Tags             []string `json:"tags"`
	IsFeatured       *bool    `json:"is_featured"`
	IsActive         *bool    `json:"is_active"`
}

// ListResponse represents one page of products
type ListResponse struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// List retrieves products with filtering and pagination
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	products, total, err := s.repo.List(ctx, ListFilter{
		CategoryID:      req.CategoryID,
		Featured:        req.IsFeatured,
		IncludeInactive: req.IncludeInactive,
		Offset:          (req.Page - 1) * req.Limit,
		Limit:           req.Limit,
	})
	if err != nil {
		return nil, apperror.Internal("failed to retrieve products", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(req.Limit)))
	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Get retrieves a product by id
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "failed to retrieve product")
	}
	return product, nil
}

// GetBySlug retrieves a product by slug
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*Product, error) {
	product, err := s.repo.FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "failed to retrieve product")
	}
	return product, nil
}

// FindByIDs resolves products in the order of ids, skipping missing ones
func (s *Service) FindByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve products", err)
	}
	byID := make(map[string]*Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Create creates a new product with an empty rating
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("product name is required")
	}
	if req.Price <= 0 {
		return nil, apperror.Validation("price must be positive")
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, apperror.Validation("discount percent must be between 0 and 100")
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if req.SubcategoryID != nil && *req.SubcategoryID != "" {
		if err := s.ensureCategory(ctx, *req.SubcategoryID); err != nil {
			return nil, err
		}
	}
	if _, err := s.repo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, apperror.Conflict("product with this SKU already exists")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now().UTC()
	product := &Product{
		ID:               repository.NewID(),
		Name:             name,
		Slug:             slug.Make(name),
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		ComparePrice:     req.ComparePrice,
		DiscountPercent:  req.DiscountPercent,
		CategoryID:       req.CategoryID,
		SubcategoryID:    req.SubcategoryID,
		Brand:            req.Brand,
		SKU:              req.SKU,
		Stock:            req.Stock,
		Images:           nonNil(req.Images),
		Tags:             nonNil(req.Tags),
		ReviewIDs:        []string{},
		IsFeatured:       req.IsFeatured,
		IsActive:         isActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("product with this name or SKU already exists")
		}
		return nil, apperror.Internal("failed to create product", err)
	}

	s.logger.WithFields(logrus.Fields{"product_id": product.ID, "sku": product.SKU}).Info("Product created")
	return product, nil
}

// Update updates an existing product
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Product, error) {
	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("product name is required")
		}
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := repository.Mutate[*Product](ctx, s.repo, id, func(p *Product) error {
		if req.Name != nil {
			p.Name = name
			p.Slug = slug.Make(name)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.ShortDescription != nil {
			p.ShortDescription = *req.ShortDescription
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.ComparePrice != nil {
			p.ComparePrice = *req.ComparePrice
		}
		if req.DiscountPercent != nil {
			p.DiscountPercent = *req.DiscountPercent
		}
		if req.CategoryID != nil {
			p.CategoryID = *req.CategoryID
		}
		if req.Brand != nil {
			p.Brand = *req.Brand
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.Images != nil {
			p.Images = req.Images
		}
		if req.Tags != nil {
			p.Tags = req.Tags
		}
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("product with this name already exists")
		}
		return nil, writeError(err, "product not found", "failed to update product")
	}
	return product, nil
}

// Delete deletes a product
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "product not found", "failed to delete product")
	}
	s.logger.WithField("product_id", id).Info("Product deleted")
	return nil
}

func (s *Service) ensureCategory(ctx context.Context, id string) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "category not found", "failed to verify category")
	}
	return nil
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(internal, err)
}

func writeError(err error, notFound, internal string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperror.Concurrency("resource was modified concurrently, please retry", err)
	default:
		return apperror.Internal(internal, err)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
