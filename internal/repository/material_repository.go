package repository

import (
	"context"
	"database/sql"
	"time"

	"catalog-backend/internal/domain"

	"github.com/google/uuid"
)

// MaterialRepository defines the interface for material data access
type MaterialRepository interface {
	Create(ctx context.Context, material *domain.ProductMaterial) (*domain.ProductMaterial, error)
	FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.ProductMaterial, uint64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductMaterial, error)
	Update(ctx context.Context, id uuid.UUID, material *domain.ProductMaterial) (*domain.ProductMaterial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type materialRepository struct {
	store *lookupStore
}

// NewMaterialRepository creates a new instance of MaterialRepository
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{store: &lookupStore{
		db:           db,
		table:        materialsTable,
		notFound:     ErrMaterialNotFound,
		alreadyExist: ErrMaterialAlreadyExists,
	}}
}

func toMaterial(row *lookupRow) *domain.ProductMaterial {
	return &domain.ProductMaterial{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *materialRepository) Create(ctx context.Context, material *domain.ProductMaterial) (*domain.ProductMaterial, error) {
	now := time.Now().UTC()
	row, err := r.store.create(ctx, lookupRow{
		ID:        material.ID,
		Name:      material.Name,
		CreatedAt: timestampOr(material.CreatedAt, now),
		UpdatedAt: timestampOr(material.UpdatedAt, now),
	})
	if err != nil {
		return nil, err
	}
	return toMaterial(row), nil
}

func (r *materialRepository) FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.ProductMaterial, uint64, error) {
	rows, total, err := r.store.findAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	materials := make([]*domain.ProductMaterial, 0, len(rows))
	for _, row := range rows {
		materials = append(materials, toMaterial(row))
	}
	return materials, total, nil
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductMaterial, error) {
	row, err := r.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMaterial(row), nil
}

func (r *materialRepository) Update(ctx context.Context, id uuid.UUID, material *domain.ProductMaterial) (*domain.ProductMaterial, error) {
	row, err := r.store.update(ctx, id, material.Name, timestampOr(material.UpdatedAt, time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	return toMaterial(row), nil
}

// Delete removes a material and, through the cascade, its product links
func (r *materialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.delete(ctx, id)
}
