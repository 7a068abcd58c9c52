package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
)

type categoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, row *models.Category) (*models.Category, error)
	Update(ctx context.Context, row *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes category operations to the HTTP layer.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	Tree(ctx context.Context) ([]Node, error)
}

type service struct {
	repo categoryRepository
}

// NewService builds a category service backed by the provided repository.
func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

// Input captures the payload for a category create or full replace.
type Input struct {
	Name        string
	Slug        string
	Description *string
	Image       *string
	ParentID    *uuid.UUID
	IsActive    *bool
	Featured    bool
	SortOrder   int
}

// Node is a category with its children nested for menu rendering.
type Node struct {
	models.Category
	Children []Node
}

var slugScrubber = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := slugScrubber.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (in Input) normalized() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	} else {
		in.Slug = Slugify(in.Slug)
	}
	if in.Slug == "" {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "category name must contain letters or digits")
	}
	return in, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Category, error) {
	input, err := input.normalized()
	if err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(ctx, input.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, input.ParentID, uuid.Nil); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	row := &models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Image:       input.Image,
		ParentID:    input.ParentID,
		IsActive:    active,
		Featured:    input.Featured,
		SortOrder:   input.SortOrder,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Category, error) {
	input, err := input.normalized()
	if err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(ctx, input.Slug, id); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, input.ParentID, id); err != nil {
		return nil, err
	}

	row.Name = input.Name
	row.Slug = input.Slug
	row.Description = input.Description
	row.Image = input.Image
	row.ParentID = input.ParentID
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	row.Featured = input.Featured
	row.SortOrder = input.SortOrder

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subcategories")
	}
	if hasChildren {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has subcategories")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

// Tree nests active categories under their parents. Rows whose parent is
// missing or inactive surface at the top level rather than disappearing.
func (s *service) Tree(ctx context.Context) ([]Node, error) {
	rows, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		present[row.ID] = true
	}

	children := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, row := range rows {
		if row.ParentID != nil && present[*row.ParentID] {
			children[*row.ParentID] = append(children[*row.ParentID], row)
			continue
		}
		roots = append(roots, row)
	}

	var build func(rows []models.Category) []Node
	build = func(rows []models.Category) []Node {
		nodes := make([]Node, 0, len(rows))
		for _, row := range rows {
			nodes = append(nodes, Node{
				Category: row,
				Children: build(children[row.ID]),
			})
		}
		return nodes
	}
	return build(roots), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return row, nil
}

func (s *service) checkSlugFree(ctx context.Context, slug string, selfID uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category slug")
	}
	if existing.ID == selfID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "category slug is already in use").
		WithDetails(map[string]any{"slug": slug})
}

func (s *service) checkParent(ctx context.Context, parentID *uuid.UUID, selfID uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == selfID {
		return pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
	}
	if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
	}
	return nil
}
