package repository

import (
	"context"
	"database/sql"
	"time"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRepository defines the interface for product aggregate persistence.
// Every call is a self-contained unit of work.
type ProductRepository interface {
	FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.Product, uint64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.Component(log, "product_repository"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindAll returns one page of hydrated products and the size of the filtered
// set. The page and its relations are read in one read-only transaction.
func (r *productRepository) FindAll(ctx context.Context, query domain.PaginationQuery) ([]*domain.Product, uint64, error) {
	var (
		products []*domain.Product
		total    uint64
	)

	err := withTx(ctx, r.db, readOnlyTx, func(tx *sql.Tx) error {
		var err error
		products, total, err = listProductRows(ctx, tx, query)
		if err != nil {
			return err
		}
		return hydrate(ctx, tx, products)
	})
	if err != nil {
		return nil, 0, err
	}

	r.logger.Debug("Listed products",
		zap.Int("page", query.GetPage()),
		zap.Int("limit", query.GetLimit()),
		zap.Int("returned", len(products)),
		zap.Uint64("total", total),
	)

	return products, total, nil
}

// FindByID retrieves a single hydrated product
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product *domain.Product

	err := withTx(ctx, r.db, readOnlyTx, func(tx *sql.Tx) error {
		var err error
		product, err = findProductRow(ctx, tx, id)
		if err != nil {
			return err
		}
		return hydrate(ctx, tx, []*domain.Product{product})
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// Create persists the product row and all its relation rows atomically and
// returns the aggregate as read back from storage.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == uuid.Nil {
		return nil, ErrMissingID
	}
	categoryIDs := uniqueIDs(product.CategoryIDs)
	if len(categoryIDs) == 0 {
		r.logger.Warn("Rejected product without categories", zap.String("product_id", product.ID.String()))
		return nil, ErrNoCategories
	}
	materialIDs := uniqueIDs(product.MaterialIDs)

	now := r.now()
	createdAt := timestampOr(product.CreatedAt, now)
	updatedAt := timestampOr(product.UpdatedAt, now)

	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := categoryLinks.ensureExist(ctx, tx, categoryIDs); err != nil {
			return err
		}
		if err := materialLinks.ensureExist(ctx, tx, materialIDs); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, insertProduct,
			product.ID,
			product.Name,
			product.Price,
			product.Description,
			product.Status,
			createdAt,
			updatedAt,
		)
		if err != nil {
			return classifyProductRowError("create product", err)
		}

		return writeRelations(ctx, tx, product.ID, categoryIDs, materialIDs, product.Images, now)
	})
	if err != nil {
		r.logger.Warn("Product create rolled back",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("Product created", zap.String("product_id", product.ID.String()))
	return r.FindByID(ctx, product.ID)
}

// Update overwrites the scalar columns and replaces every relation set of the
// product with the ones carried by product. An id that matches no row writes
// nothing; the read-back then reports ErrProductNotFound.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, product *domain.Product) (*domain.Product, error) {
	categoryIDs := uniqueIDs(product.CategoryIDs)
	if len(categoryIDs) == 0 {
		r.logger.Warn("Rejected product update without categories", zap.String("product_id", id.String()))
		return nil, ErrNoCategories
	}
	materialIDs := uniqueIDs(product.MaterialIDs)

	now := r.now()
	updatedAt := timestampOr(product.UpdatedAt, now)

	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := categoryLinks.ensureExist(ctx, tx, categoryIDs); err != nil {
			return err
		}
		if err := materialLinks.ensureExist(ctx, tx, materialIDs); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, updateProduct,
			id,
			product.Name,
			product.Price,
			product.Description,
			product.Status,
			updatedAt,
		)
		if err != nil {
			return classifyProductRowError("update product", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return domain.NewStorageError("get rows affected", err)
		}
		if affected == 0 {
			return nil
		}

		if err := clearRelations(ctx, tx, id); err != nil {
			return err
		}
		return writeRelations(ctx, tx, id, categoryIDs, materialIDs, product.Images, now)
	})
	if err != nil {
		r.logger.Warn("Product update rolled back",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("Product updated", zap.String("product_id", id.String()))
	return r.FindByID(ctx, id)
}

// Delete removes a product by id. Relation and image rows cascade in storage.
// Deleting an unknown id is not an error.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("delete product", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		r.logger.Debug("Product deleted",
			zap.String("product_id", id.String()),
			zap.Int64("rows", affected),
		)
	}
	return nil
}
