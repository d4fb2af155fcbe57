package service

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the interface for product category management
type CategoryService interface {
	List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.ProductCategory], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProductCategory, error)
	Create(ctx context.Context, name string) (*domain.ProductCategory, error)
	Update(ctx context.Context, id uuid.UUID, name *string) (*domain.ProductCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.ProductCategory], error) {
	categories, total, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return domain.Page[*domain.ProductCategory]{}, fmt.Errorf("failed to list categories: %w", err)
	}
	return domain.NewPage(categories, query, total), nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.ProductCategory, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.ProductCategory, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.ProductCategory{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Update renames a category; a nil name leaves it unchanged
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, name *string) (*domain.ProductCategory, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, &domain.ProductCategory{
		ID:        id,
		Name:      valueOr(name, current.Name),
		CreatedAt: current.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// MaterialService defines the interface for product material management
type MaterialService interface {
	List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.ProductMaterial], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProductMaterial, error)
	Create(ctx context.Context, name string) (*domain.ProductMaterial, error)
	Update(ctx context.Context, id uuid.UUID, name *string) (*domain.ProductMaterial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type materialService struct {
	repo repository.MaterialRepository
}

// NewMaterialService creates a new instance of MaterialService
func NewMaterialService(repo repository.MaterialRepository) MaterialService {
	return &materialService{repo: repo}
}

func (s *materialService) List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.ProductMaterial], error) {
	materials, total, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return domain.Page[*domain.ProductMaterial]{}, fmt.Errorf("failed to list materials: %w", err)
	}
	return domain.NewPage(materials, query, total), nil
}

func (s *materialService) Get(ctx context.Context, id uuid.UUID) (*domain.ProductMaterial, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *materialService) Create(ctx context.Context, name string) (*domain.ProductMaterial, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.ProductMaterial{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *materialService) Update(ctx context.Context, id uuid.UUID, name *string) (*domain.ProductMaterial, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, &domain.ProductMaterial{
		ID:        id,
		Name:      valueOr(name, current.Name),
		CreatedAt: current.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *materialService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
