package repository

import (
	"context"
	"database/sql"
	"time"

	"catalog-backend/internal/domain"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.ProductCategory) (*domain.ProductCategory, error)
	FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.ProductCategory, uint64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductCategory, error)
	Update(ctx context.Context, id uuid.UUID, category *domain.ProductCategory) (*domain.ProductCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	store *lookupStore
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{store: &lookupStore{
		db:           db,
		table:        categoriesTable,
		notFound:     ErrCategoryNotFound,
		alreadyExist: ErrCategoryAlreadyExists,
		inUse:        ErrCategoryInUse,
	}}
}

func toCategory(row *lookupRow) *domain.ProductCategory {
	return &domain.ProductCategory{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// Create inserts a new category. A duplicate name yields ErrCategoryAlreadyExists.
func (r *categoryRepository) Create(ctx context.Context, category *domain.ProductCategory) (*domain.ProductCategory, error) {
	now := time.Now().UTC()
	row, err := r.store.create(ctx, lookupRow{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: timestampOr(category.CreatedAt, now),
		UpdatedAt: timestampOr(category.UpdatedAt, now),
	})
	if err != nil {
		return nil, err
	}
	return toCategory(row), nil
}

// FindAll lists categories newest first
func (r *categoryRepository) FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.ProductCategory, uint64, error) {
	rows, total, err := r.store.findAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	categories := make([]*domain.ProductCategory, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, toCategory(row))
	}
	return categories, total, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductCategory, error) {
	row, err := r.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategory(row), nil
}

func (r *categoryRepository) Update(ctx context.Context, id uuid.UUID, category *domain.ProductCategory) (*domain.ProductCategory, error) {
	row, err := r.store.update(ctx, id, category.Name, timestampOr(category.UpdatedAt, time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	return toCategory(row), nil
}

// Delete removes a category. Categories still linked to products are kept and
// ErrCategoryInUse is returned.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.delete(ctx, id)
}
