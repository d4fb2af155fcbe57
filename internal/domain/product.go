package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product together with its owned relations.
// CategoryIDs and MaterialIDs are derived from Categories and ProductMaterials
// on every read; they are never stored on the product row.
type Product struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	Name             string            `json:"name" db:"name"`
	Price            decimal.Decimal   `json:"price" db:"price"`
	Description      string            `json:"description" db:"description"`
	Status           string            `json:"status" db:"status"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
	CategoryIDs      []uuid.UUID       `json:"category_ids"`
	MaterialIDs      []uuid.UUID       `json:"material_ids"`
	Categories       []ProductCategory `json:"categories"`
	ProductMaterials []ProductMaterial `json:"product_materials"`
	Images           []ProductImage    `json:"images"`
}

// ProductImage is an image owned by a product. Images have no identity
// outside their parent.
type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductCategory represents a product category
type ProductCategory struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductMaterial represents a material a product can be made of
type ProductMaterial struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecomputeIDs rebuilds CategoryIDs and MaterialIDs from the hydrated
// collections.
func (p *Product) RecomputeIDs() {
	p.CategoryIDs = make([]uuid.UUID, 0, len(p.Categories))
	for _, c := range p.Categories {
		p.CategoryIDs = append(p.CategoryIDs, c.ID)
	}

	p.MaterialIDs = make([]uuid.UUID, 0, len(p.ProductMaterials))
	for _, m := range p.ProductMaterials {
		p.MaterialIDs = append(p.MaterialIDs, m.ID)
	}
}

// ImageURLs returns the image urls in their stored order
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
