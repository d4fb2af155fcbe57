package repository

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/domain"

	"github.com/google/uuid"
)

const insertProduct = `
	INSERT INTO products (id, name, price, description, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const updateProduct = `
	UPDATE products
	SET name = $2, price = $3, description = $4, status = $5, updated_at = $6
	WHERE id = $1
`

const insertImages = `
	INSERT INTO product_images (id, product_id, url, position, created_at, updated_at)
	SELECT x.id, $1, x.url, x.ord - 1, x.created_at, x.updated_at
	FROM unnest($2::uuid[], $3::text[], $4::timestamptz[], $5::timestamptz[])
		WITH ORDINALITY AS x(id, url, created_at, updated_at, ord)
`

// linkTable describes a many-to-many join table between products and a
// lookup table. Names are package constants, never caller input.
type linkTable struct {
	table      string
	column     string
	target     string
	missingErr error
}

var (
	categoryLinks = linkTable{
		table:      productCategoryTable,
		column:     "category_id",
		target:     categoriesTable,
		missingErr: ErrCategoriesMissing,
	}
	materialLinks = linkTable{
		table:      productMaterialTable,
		column:     "material_id",
		target:     materialsTable,
		missingErr: ErrMaterialsMissing,
	}
)

// uniqueIDs drops duplicates while keeping first-occurrence order
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// countExisting reports how many of ids exist in table
func countExisting(ctx context.Context, q querier, table string, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ANY($1::uuid[])`, table)

	var count int
	if err := q.QueryRowContext(ctx, query, ids).Scan(&count); err != nil {
		return 0, domain.NewStorageError("count "+table, err)
	}
	return count, nil
}

// ensureExist fails with the link's NotFound error unless every id exists
func (l linkTable) ensureExist(ctx context.Context, q querier, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := countExisting(ctx, q, l.target, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return l.missingErr
	}
	return nil
}

func (l linkTable) deleteAll(ctx context.Context, q querier, productID uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, l.table)
	if _, err := q.ExecContext(ctx, query, productID); err != nil {
		return domain.NewStorageError("delete "+l.table+" rows", err)
	}
	return nil
}

// insertAll writes one relation row per id in a single statement
func (l linkTable) insertAll(ctx context.Context, q querier, productID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (product_id, %s, position)
		SELECT $1, x.id, x.ord - 1
		FROM unnest($2::uuid[]) WITH ORDINALITY AS x(id, ord)
	`, l.table, l.column)

	if _, err := q.ExecContext(ctx, query, productID, ids); err != nil {
		return classifyLinkError("insert "+l.table+" rows", err)
	}
	return nil
}

func deleteImages(ctx context.Context, q querier, productID uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return domain.NewStorageError("delete product images", err)
	}
	return nil
}

// insertProductImages stores images in the given order. Missing ids and
// timestamps are filled in; the parent id always wins over the image's own.
func insertProductImages(ctx context.Context, q querier, productID uuid.UUID, images []domain.ProductImage, now time.Time) error {
	if len(images) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(images))
	urls := make([]string, len(images))
	created := make([]time.Time, len(images))
	updated := make([]time.Time, len(images))

	for i, img := range images {
		ids[i] = img.ID
		if ids[i] == uuid.Nil {
			ids[i] = uuid.New()
		}
		urls[i] = img.URL
		created[i] = img.CreatedAt
		if created[i].IsZero() {
			created[i] = now
		}
		updated[i] = img.UpdatedAt
		if updated[i].IsZero() {
			updated[i] = now
		}
	}

	if _, err := q.ExecContext(ctx, insertImages, productID, ids, urls, created, updated); err != nil {
		return domain.NewStorageError("insert product images", err)
	}
	return nil
}

// writeRelations inserts the category links, material links and images of a
// product. Callers clear previous rows first when replacing.
func writeRelations(ctx context.Context, q querier, productID uuid.UUID, categoryIDs, materialIDs []uuid.UUID, images []domain.ProductImage, now time.Time) error {
	if err := categoryLinks.insertAll(ctx, q, productID, categoryIDs); err != nil {
		return err
	}
	if err := materialLinks.insertAll(ctx, q, productID, materialIDs); err != nil {
		return err
	}
	return insertProductImages(ctx, q, productID, images, now)
}

func clearRelations(ctx context.Context, q querier, productID uuid.UUID) error {
	if err := categoryLinks.deleteAll(ctx, q, productID); err != nil {
		return err
	}
	if err := materialLinks.deleteAll(ctx, q, productID); err != nil {
		return err
	}
	return deleteImages(ctx, q, productID)
}

func timestampOr(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}
