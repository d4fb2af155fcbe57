package service

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/logger"
	"catalog-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ObjectValidator confirms that an image URL refers to a stored object
type ObjectValidator interface {
	ValidateObject(ctx context.Context, url string) error
}

// CreateProductInput carries the fields of a new product
type CreateProductInput struct {
	CategoryIDs []uuid.UUID
	MaterialIDs []uuid.UUID
	Name        string
	Price       decimal.Decimal
	Description string
	Status      string
	ImageURLs   []string
}

// UpdateProductInput carries a partial update. Nil fields keep the stored
// value; a non-nil empty ImageURLs removes every image.
type UpdateProductInput struct {
	CategoryIDs []uuid.UUID
	MaterialIDs []uuid.UUID
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Status      *string
	ImageURLs   []string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.Product], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo      repository.ProductRepository
	validator ObjectValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new instance of ProductService. A nil validator
// accepts every image URL.
func NewProductService(repo repository.ProductRepository, validator ObjectValidator, log *zap.Logger) ProductService {
	return &productService{
		repo:      repo,
		validator: validator,
		logger:    logger.Component(log, "product_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of products with the page count derived from the
// total number of matches.
func (s *productService) List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.Product], error) {
	products, total, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return domain.NewPage(products, query, total), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create validates the image URLs, assigns ids and timestamps and persists
// the aggregate.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := s.validateImages(ctx, input.ImageURLs); err != nil {
		return nil, err
	}

	now := s.now()
	id := uuid.New()
	product := &domain.Product{
		ID:          id,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
		CategoryIDs: input.CategoryIDs,
		MaterialIDs: input.MaterialIDs,
		Images:      newImages(id, input.ImageURLs, now),
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", created.ID.String()),
		zap.Int("categories", len(created.CategoryIDs)),
		zap.Int("images", len(created.Images)),
	)
	return created, nil
}

// Update merges input over the stored aggregate and writes the result back
// with replace-all semantics for its relations.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	// URLs already attached to the product were checked when they were added
	if err := s.validateImages(ctx, newURLs(input.ImageURLs, current.ImageURLs())); err != nil {
		return nil, err
	}

	now := s.now()
	merged := &domain.Product{
		ID:          id,
		Name:        valueOr(input.Name, current.Name),
		Price:       valueOr(input.Price, current.Price),
		Description: valueOr(input.Description, current.Description),
		Status:      valueOr(input.Status, current.Status),
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   now,
		CategoryIDs: current.CategoryIDs,
		MaterialIDs: current.MaterialIDs,
		Images:      current.Images,
	}
	if input.CategoryIDs != nil {
		merged.CategoryIDs = input.CategoryIDs
	}
	if input.MaterialIDs != nil {
		merged.MaterialIDs = input.MaterialIDs
	}
	if input.ImageURLs != nil {
		merged.Images = newImages(id, input.ImageURLs, now)
	}

	updated, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated", zap.String("product_id", id.String()))
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) validateImages(ctx context.Context, urls []string) error {
	if s.validator == nil {
		return nil
	}
	for _, url := range urls {
		if err := s.validator.ValidateObject(ctx, url); err != nil {
			return fmt.Errorf("invalid image %q: %w", url, err)
		}
	}
	return nil
}

// newURLs returns the urls not present in attached
func newURLs(urls, attached []string) []string {
	known := make(map[string]struct{}, len(attached))
	for _, url := range attached {
		known[url] = struct{}{}
	}
	var out []string
	for _, url := range urls {
		if _, ok := known[url]; !ok {
			out = append(out, url)
		}
	}
	return out
}

func newImages(productID uuid.UUID, urls []string, now time.Time) []domain.ProductImage {
	images := make([]domain.ProductImage, 0, len(urls))
	for _, url := range urls {
		images = append(images, domain.ProductImage{
			ID:        uuid.New(),
			ProductID: productID,
			URL:       url,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return images
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
