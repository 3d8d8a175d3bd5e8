// internal/domain/category/service.go
package category

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/metrics"
	"github.com/your-org/ecommerce-core/internal/pkg/slug"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// Journal operation kinds owned by the category tree.
const (
	OpLinkChild   = "category.link_child"
	OpUnlinkChild = "category.unlink_child"
)

const rootsCacheKey = "categories:roots"

var tracer = otel.Tracer("github.com/your-org/ecommerce-core/internal/domain/category")

// Service maintains the category tree and its parent/child links
type Service struct {
	repo     Repository
	journal  *journal.Journal
	cache    Cache
	cacheTTL time.Duration
	group    singleflight.Group
	gen      atomic.Int64
	logger   *logrus.Entry
	now      func() time.Time
}

// NewService creates a category service and registers its journal handlers
func NewService(repo Repository, j *journal.Journal, cache Cache, cacheTTL time.Duration, logger *logrus.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	s := &Service{
		repo:     repo,
		journal:  j,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.WithField("component", "category"),
		now:      time.Now,
	}
	j.Register(OpLinkChild, s.applyLink)
	j.Register(OpUnlinkChild, s.applyUnlink)
	return s
}

// CreateRequest represents category creation data
type CreateRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Icon        string            `json:"icon"`
	ParentID    *string           `json:"parent_id"`
	Order       int               `json:"order"`
	IsActive    *bool             `json:"is_active"`
	Metadata    map[string]string `json:"metadata"`
}

// UpdateRequest represents a partial category update. An empty ParentID or
// ClearParent moves the category to the root level.
type UpdateRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Image       *string           `json:"image"`
	Icon        *string           `json:"icon"`
	ParentID    *string           `json:"parent_id"`
	ClearParent bool              `json:"clear_parent"`
	Order       *int              `json:"order"`
	IsActive    *bool             `json:"is_active"`
	Metadata    map[string]string `json:"metadata"`
}

// Create adds a category and links it under its parent
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Category, error) {
	ctx, span := tracer.Start(ctx, "category.Create")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	categorySlug := slug.Make(name)
	if err := s.ensureUnique(ctx, "", name, categorySlug); err != nil {
		return nil, err
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, s.lookupError(err, "parent category not found")
		}
		parentID = &parent.ID
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now().UTC()
	category := &Category{
		ID:          repository.NewID(),
		Name:        name,
		Slug:        categorySlug,
		Description: req.Description,
		Image:       req.Image,
		Icon:        req.Icon,
		ParentID:    parentID,
		ChildIDs:    []string{},
		IsActive:    isActive,
		Order:       req.Order,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	span.SetAttributes(attribute.String("category.id", category.ID))

	var link *journal.Operation
	if parentID != nil {
		op, err := s.journal.Begin(ctx, OpLinkChild, *parentID, category.ID)
		if err != nil {
			return nil, apperror.Internal("failed to create category", err)
		}
		link = op
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if link != nil {
			s.journal.Discard(context.WithoutCancel(ctx), link)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("category with this name already exists")
		}
		return nil, apperror.Internal("failed to create category", err)
	}
	s.invalidate(ctx)

	if link != nil {
		if err := s.journal.Run(context.WithoutCancel(ctx), link); err != nil {
			return nil, apperror.Internal("category created but linking to parent is pending", err)
		}
		s.invalidate(ctx)
	}

	s.logger.WithFields(logrus.Fields{"category_id": category.ID, "slug": category.Slug}).Info("Category created")
	return category, nil
}

// Update applies a partial update. Renames re-derive the slug and
// re-parenting moves the child link between parents.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Category, error) {
	ctx, span := tracer.Start(ctx, "category.Update")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "category not found")
	}

	name := current.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("category name is required")
		}
	}
	categorySlug := slug.Make(name)
	if name != current.Name {
		if err := s.ensureUnique(ctx, id, name, categorySlug); err != nil {
			return nil, err
		}
	}

	oldParent := current.ParentID
	newParent := oldParent
	switch {
	case req.ClearParent:
		newParent = nil
	case req.ParentID != nil && *req.ParentID == "":
		newParent = nil
	case req.ParentID != nil:
		p := *req.ParentID
		newParent = &p
	}
	reparent := !sameParent(oldParent, newParent)
	if reparent && newParent != nil {
		if err := s.validateParent(ctx, id, *newParent, false); err != nil {
			return nil, err
		}
	}

	var ops []*journal.Operation
	discard := func() {
		for _, op := range ops {
			s.journal.Discard(context.WithoutCancel(ctx), op)
		}
	}
	if reparent {
		if oldParent != nil {
			op, err := s.journal.Begin(ctx, OpUnlinkChild, *oldParent, id)
			if err != nil {
				return nil, apperror.Internal("failed to update category", err)
			}
			ops = append(ops, op)
		}
		if newParent != nil {
			op, err := s.journal.Begin(ctx, OpLinkChild, *newParent, id)
			if err != nil {
				discard()
				return nil, apperror.Internal("failed to update category", err)
			}
			ops = append(ops, op)
		}
	}

	errMoved := errors.New("category was re-parented concurrently")
	updated, err := repository.Mutate[*Category](ctx, s.repo, id, func(c *Category) error {
		if reparent {
			if !sameParent(c.ParentID, oldParent) {
				return errMoved
			}
			if newParent != nil {
				if err := s.validateParent(ctx, id, *newParent, true); err != nil {
					return err
				}
			}
			c.ParentID = newParent
		}
		if req.Name != nil {
			c.Name = name
			c.Slug = categorySlug
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Image != nil {
			c.Image = *req.Image
		}
		if req.Icon != nil {
			c.Icon = *req.Icon
		}
		if req.Order != nil {
			c.Order = *req.Order
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		if req.Metadata != nil {
			c.Metadata = req.Metadata
		}
		c.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		discard()
		switch {
		case errors.Is(err, errMoved):
			return nil, apperror.Concurrency(errMoved.Error(), nil)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperror.Conflict("category with this name already exists")
		}
		return nil, s.writeError(err, "category not found", "failed to update category")
	}
	s.invalidate(ctx)

	for _, op := range ops {
		if err := s.journal.Run(context.WithoutCancel(ctx), op); err != nil {
			return nil, apperror.Internal("category updated but moving it between parents is pending", err)
		}
	}
	if len(ops) > 0 {
		s.invalidate(ctx)
	}

	return updated, nil
}

// Delete removes a leaf category. The category is unlinked from its parent
// first and then deleted at the version that passed the leaf check, so a
// child linked in between makes the delete retry and fail with HasChildren.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "category.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	err := repository.RetryOnConflict(ctx, "category", func() error {
		return s.deleteLeaf(ctx, id)
	})
	if err != nil {
		return s.writeError(err, "category not found", "failed to delete category")
	}
	s.invalidate(ctx)

	s.logger.WithField("category_id", id).Info("Category deleted")
	return nil
}

func (s *Service) deleteLeaf(ctx context.Context, id string) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if len(category.ChildIDs) > 0 {
		return apperror.ErrHasChildren
	}
	children, err := s.repo.FindByParent(ctx, id)
	if err != nil {
		return apperror.Internal("failed to delete category", err)
	}
	if len(children) > 0 {
		return apperror.ErrHasChildren
	}

	if category.ParentID == nil {
		return s.repo.DeleteVersion(ctx, id, category.Version)
	}
	parentID := *category.ParentID

	// The link op restores the parent's entry if the category survives and
	// clears it if the category is gone, so it settles either outcome.
	relink, err := s.journal.Begin(ctx, OpLinkChild, parentID, id)
	if err != nil {
		return apperror.Internal("failed to delete category", err)
	}

	if err := s.dropChild(ctx, parentID, id); err != nil {
		s.journal.Discard(context.WithoutCancel(ctx), relink)
		return err
	}
	s.invalidate(ctx)

	deleteErr := s.repo.DeleteVersion(ctx, id, category.Version)
	if err := s.journal.Run(context.WithoutCancel(ctx), relink); err != nil {
		if deleteErr == nil {
			return apperror.Internal("category deleted but unlinking from parent is pending", err)
		}
		return apperror.Internal("failed to delete category and relinking to parent is pending", err)
	}
	return deleteErr
}

// Get returns a category with its parent and direct children resolved
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "category not found")
	}

	detail := &Detail{Category: category}
	if category.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *category.ParentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Internal("failed to load parent category", err)
		}
		detail.Parent = parent
	}

	children, err := s.resolveChildren(ctx, category)
	if err != nil {
		return nil, err
	}
	detail.Children = children
	return detail, nil
}

// ListRoots returns top-level categories ordered by Order, each with its
// direct children in link order.
func (s *Service) ListRoots(ctx context.Context) ([]*Detail, error) {
	var cached []*Detail
	hit, err := s.cache.Get(ctx, rootsCacheKey, &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Category cache read failed")
	}
	if hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := s.group.Do(rootsCacheKey, func() (any, error) {
		buildCtx := context.WithoutCancel(ctx)
		gen := s.gen.Load()
		roots, err := s.loadRoots(buildCtx)
		if err != nil {
			return nil, err
		}
		if s.gen.Load() == gen {
			if err := s.cache.Set(buildCtx, rootsCacheKey, roots, s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Category cache write failed")
			}
		}
		return roots, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Detail), nil
}

// CheckIntegrity reports every parent/child link that disagrees with the
// children's ParentID. An empty result means the tree is consistent.
func (s *Service) CheckIntegrity(ctx context.Context) ([]string, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load categories", err)
	}

	byID := make(map[string]*Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	var problems []string
	for _, c := range all {
		seen := make(map[string]bool, len(c.ChildIDs))
		for _, childID := range c.ChildIDs {
			if seen[childID] {
				problems = append(problems, fmt.Sprintf("category %s lists child %s twice", c.ID, childID))
				continue
			}
			seen[childID] = true
			child, ok := byID[childID]
			switch {
			case !ok:
				problems = append(problems, fmt.Sprintf("category %s lists missing child %s", c.ID, childID))
			case child.ParentID == nil || *child.ParentID != c.ID:
				problems = append(problems, fmt.Sprintf("category %s lists child %s which has another parent", c.ID, childID))
			}
		}
		if c.ParentID != nil {
			parent, ok := byID[*c.ParentID]
			switch {
			case !ok:
				problems = append(problems, fmt.Sprintf("category %s points to missing parent %s", c.ID, *c.ParentID))
			case !parent.HasChild(c.ID):
				problems = append(problems, fmt.Sprintf("category %s is not listed by parent %s", c.ID, *c.ParentID))
			}
		}
	}
	sort.Strings(problems)
	return problems, nil
}

func (s *Service) loadRoots(ctx context.Context) ([]*Detail, error) {
	roots, err := s.repo.FindRoots(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load categories", err)
	}

	details := make([]*Detail, 0, len(roots))
	for _, root := range roots {
		children, err := s.resolveChildren(ctx, root)
		if err != nil {
			return nil, err
		}
		details = append(details, &Detail{Category: root, Children: children})
	}
	return details, nil
}

func (s *Service) resolveChildren(ctx context.Context, parent *Category) ([]*Category, error) {
	children := make([]*Category, 0, len(parent.ChildIDs))
	if len(parent.ChildIDs) == 0 {
		return children, nil
	}
	found, err := s.repo.FindByIDs(ctx, parent.ChildIDs)
	if err != nil {
		return nil, apperror.Internal("failed to load subcategories", err)
	}
	byID := make(map[string]*Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	for _, id := range parent.ChildIDs {
		if c, ok := byID[id]; ok {
			children = append(children, c)
		}
	}
	return children, nil
}

// validateParent rejects a parent that is the category itself, a
// descendant of it, or missing. With touch set every ancestor read is
// written back at the version seen, so a concurrent re-parent anywhere on
// the chain turns into a version conflict instead of a cycle.
func (s *Service) validateParent(ctx context.Context, id, parentID string, touch bool) error {
	if parentID == id {
		return apperror.ErrInvalidHierarchy
	}

	var chain []*Category
	visited := map[string]bool{}
	cursor := parentID
	for {
		if visited[cursor] {
			return apperror.Internal("category hierarchy contains a cycle", nil)
		}
		visited[cursor] = true

		node, err := s.repo.FindByID(ctx, cursor)
		if err != nil {
			if cursor == parentID {
				return s.lookupError(err, "parent category not found")
			}
			if errors.Is(err, repository.ErrNotFound) {
				break
			}
			return apperror.Internal("failed to validate category hierarchy", err)
		}
		chain = append(chain, node)
		if node.ParentID == nil {
			break
		}
		if *node.ParentID == id {
			return apperror.ErrInvalidHierarchy
		}
		cursor = *node.ParentID
	}

	if !touch {
		return nil
	}
	for _, node := range chain {
		err := s.repo.Update(ctx, node)
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrVersionConflict
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, id, name, categorySlug string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err == nil && existing.ID != id {
		return apperror.Conflict("category with this name already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("failed to check category name", err)
	}

	existing, err = s.repo.FindBySlug(ctx, categorySlug)
	if err == nil && existing.ID != id {
		return apperror.Conflict("category with this slug already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("failed to check category slug", err)
	}
	return nil
}

// applyLink adds the subject to the aggregate's children if the subject
// still names the aggregate as parent. A deleted subject is removed from
// the aggregate instead, and a child whose parent vanished is moved to the
// root level.
func (s *Service) applyLink(ctx context.Context, op *journal.Operation) error {
	ctx, span := tracer.Start(ctx, "category.applyLink")
	defer span.End()

	parentID, childID := op.AggregateID, op.SubjectID
	child, err := s.repo.FindByID(ctx, childID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.dropChild(ctx, parentID, childID)
	}
	if err != nil {
		return err
	}
	if child.ParentID == nil || *child.ParentID != parentID {
		return nil
	}

	_, err = repository.Mutate[*Category](ctx, s.repo, parentID, func(p *Category) error {
		if !p.addChild(childID) {
			return repository.ErrNoChange
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WithFields(logrus.Fields{"category_id": childID, "parent_id": parentID}).
			Warn("Parent category vanished, moving child to root")
		_, err = repository.Mutate[*Category](ctx, s.repo, childID, func(c *Category) error {
			if c.ParentID == nil || *c.ParentID != parentID {
				return repository.ErrNoChange
			}
			c.ParentID = nil
			c.UpdatedAt = s.now().UTC()
			return nil
		})
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
	}
	return err
}

// applyUnlink removes the subject from the aggregate's children unless the
// subject still names the aggregate as parent.
func (s *Service) applyUnlink(ctx context.Context, op *journal.Operation) error {
	ctx, span := tracer.Start(ctx, "category.applyUnlink")
	defer span.End()

	parentID, childID := op.AggregateID, op.SubjectID
	child, err := s.repo.FindByID(ctx, childID)
	switch {
	case err == nil:
		if child.ParentID != nil && *child.ParentID == parentID {
			return nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return s.dropChild(ctx, parentID, childID)
}

func (s *Service) dropChild(ctx context.Context, parentID, childID string) error {
	_, err := repository.Mutate[*Category](ctx, s.repo, parentID, func(p *Category) error {
		if !p.removeChild(childID) {
			return repository.ErrNoChange
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	s.gen.Add(1)
	if err := s.cache.Delete(context.WithoutCancel(ctx), rootsCacheKey); err != nil {
		s.logger.WithError(err).Warn("Category cache invalidation failed")
	}
}

func (s *Service) lookupError(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal("failed to load category", err)
}

func (s *Service) writeError(err error, notFound, internal string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperror.Concurrency("category was modified concurrently, please retry", err)
	default:
		return apperror.Internal(internal, err)
	}
}
