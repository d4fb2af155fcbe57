package repository

import (
	"fmt"
	"strings"

	"catalog-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

const (
	productsTable        = "products"
	productCategoryTable = "product_category"
	productMaterialTable = "product_material"
	productImagesTable   = "product_images"
	categoriesTable      = "product_categories"
	materialsTable       = "product_materials"

	defaultSortField = "created_at"
)

// sortableFields is the whitelist of columns a listing may be ordered by.
// Requests for any other field fall back to defaultSortField.
var sortableFields = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
}

// productListQuery is a parameterized page query over products
type productListQuery struct {
	SQL  string
	Args []any
}

// sortColumn maps a requested sort field to a quoted column reference
func sortColumn(field string) string {
	column, ok := sortableFields[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		column = defaultSortField
	}
	return pgx.Identifier{"p", column}.Sanitize()
}

// escapeLike makes the search term match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildProductListQuery returns one page of product rows, each carrying the
// size of the full filtered set in total_count.
func buildProductListQuery(q domain.PaginationQuery) productListQuery {
	var (
		b    strings.Builder
		args []any
	)

	b.WriteString(`
		SELECT p.id, p.name, p.price, p.description, p.status, p.created_at, p.updated_at,
		       COUNT(*) OVER() AS total_count
		FROM products p`)

	if search, ok := q.GetSearch(); ok {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		fmt.Fprintf(&b, `
		WHERE (
			p.name ILIKE $%[1]d
			OR p.description ILIKE $%[1]d
			OR EXISTS (
				SELECT 1
				FROM product_material pm
				JOIN product_materials m ON m.id = pm.material_id
				WHERE pm.product_id = p.id AND m.name ILIKE $%[1]d
			)
		)`, n)
	}

	order := string(q.GetSortOrder())
	// p.id keeps page boundaries stable when sort values tie
	fmt.Fprintf(&b, `
		ORDER BY %s %s, p.id %s`, sortColumn(q.Sort), order, order)

	args = append(args, q.GetLimit(), q.GetOffset())
	fmt.Fprintf(&b, `
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return productListQuery{SQL: b.String(), Args: args}
}
