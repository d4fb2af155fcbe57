package repository

import (
	"context"
	"database/sql"
	"errors"

	"catalog-backend/internal/domain"

	"github.com/google/uuid"
)

const selectProductByID = `
	SELECT id, name, price, description, status, created_at, updated_at
	FROM products
	WHERE id = $1
`

const selectCategoriesForProducts = `
	SELECT pc.product_id, c.id, c.name, c.created_at, c.updated_at
	FROM product_category pc
	JOIN product_categories c ON c.id = pc.category_id
	WHERE pc.product_id = ANY($1::uuid[])
	ORDER BY pc.product_id, pc.position
`

const selectMaterialsForProducts = `
	SELECT pm.product_id, m.id, m.name, m.created_at, m.updated_at
	FROM product_material pm
	JOIN product_materials m ON m.id = pm.material_id
	WHERE pm.product_id = ANY($1::uuid[])
	ORDER BY pm.product_id, pm.position
`

const selectImagesForProducts = `
	SELECT id, product_id, url, created_at, updated_at
	FROM product_images
	WHERE product_id = ANY($1::uuid[])
	ORDER BY product_id, position
`

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, extra ...any) (*domain.Product, error) {
	p := &domain.Product{}
	dest := []any{
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

// listProductRows runs the page query and returns the raw rows together with
// the filtered total read from the first row.
func listProductRows(ctx context.Context, q querier, query domain.PaginationQuery) ([]*domain.Product, uint64, error) {
	lq := buildProductListQuery(query)

	rows, err := q.QueryContext(ctx, lq.SQL, lq.Args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list products", err)
	}
	defer rows.Close()

	var (
		products = []*domain.Product{}
		total    int64
	)
	for rows.Next() {
		var count int64
		product, err := scanProduct(rows, &count)
		if err != nil {
			return nil, 0, domain.NewStorageError("scan product", err)
		}
		if len(products) == 0 {
			total = count
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("iterate products", err)
	}

	return products, uint64(total), nil
}

// findProductRow loads the scalar product row without relations
func findProductRow(ctx context.Context, q querier, id uuid.UUID) (*domain.Product, error) {
	product, err := scanProduct(q.QueryRowContext(ctx, selectProductByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, domain.NewStorageError("find product by ID", err)
	}
	return product, nil
}

// hydrate attaches categories, materials and images to every product using
// one query per relation type regardless of how many products are passed.
func hydrate(ctx context.Context, q querier, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		p.Categories = []domain.ProductCategory{}
		p.ProductMaterials = []domain.ProductMaterial{}
		p.Images = []domain.ProductImage{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	if err := loadCategories(ctx, q, ids, byID); err != nil {
		return err
	}
	if err := loadMaterials(ctx, q, ids, byID); err != nil {
		return err
	}
	if err := loadImages(ctx, q, ids, byID); err != nil {
		return err
	}

	for _, p := range products {
		p.RecomputeIDs()
	}
	return nil
}

func loadCategories(ctx context.Context, q querier, ids []uuid.UUID, byID map[uuid.UUID]*domain.Product) error {
	rows, err := q.QueryContext(ctx, selectCategoriesForProducts, ids)
	if err != nil {
		return domain.NewStorageError("load product categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID uuid.UUID
			c         domain.ProductCategory
		)
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return domain.NewStorageError("scan product category", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}

	if err := rows.Err(); err != nil {
		return domain.NewStorageError("iterate product categories", err)
	}
	return nil
}

func loadMaterials(ctx context.Context, q querier, ids []uuid.UUID, byID map[uuid.UUID]*domain.Product) error {
	rows, err := q.QueryContext(ctx, selectMaterialsForProducts, ids)
	if err != nil {
		return domain.NewStorageError("load product materials", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID uuid.UUID
			m         domain.ProductMaterial
		)
		if err := rows.Scan(&productID, &m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return domain.NewStorageError("scan product material", err)
		}
		if p, ok := byID[productID]; ok {
			p.ProductMaterials = append(p.ProductMaterials, m)
		}
	}

	if err := rows.Err(); err != nil {
		return domain.NewStorageError("iterate product materials", err)
	}
	return nil
}

func loadImages(ctx context.Context, q querier, ids []uuid.UUID, byID map[uuid.UUID]*domain.Product) error {
	rows, err := q.QueryContext(ctx, selectImagesForProducts, ids)
	if err != nil {
		return domain.NewStorageError("load product images", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return domain.NewStorageError("scan product image", err)
		}
		if p, ok := byID[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}

	if err := rows.Err(); err != nil {
		return domain.NewStorageError("iterate product images", err)
	}
	return nil
}
