package transport

import (
	"net/http"

	"catalog-backend/internal/middleware"
	"catalog-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	CategoryIDs []uuid.UUID     `json:"category_ids" validate:"required,min=1,dive,required"`
	MaterialIDs []uuid.UUID     `json:"material_ids" validate:"omitempty,dive,required"`
	Name        string          `json:"name" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" validate:"gt=0,price"`
	Description string          `json:"description"`
	Status      string          `json:"status" validate:"required,max=50"`
	ImageURLs   []string        `json:"image_urls" validate:"omitempty,dive,url"`
}

// UpdateProductRequest represents a partial product update. Absent fields
// keep their stored value; an empty list replaces the stored list.
type UpdateProductRequest struct {
	CategoryIDs []uuid.UUID      `json:"category_ids" validate:"omitempty,min=1,dive,required"`
	MaterialIDs []uuid.UUID      `json:"material_ids" validate:"omitempty,dive,required"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0,price"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" validate:"omitempty,min=1,max=50"`
	ImageURLs   []string         `json:"image_urls" validate:"omitempty,dive,url"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles paginated product listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, fieldErrors := parsePaginationQuery(r)
	if len(fieldErrors) > 0 {
		middleware.RespondWithValidationErrors(w, fieldErrors)
		return
	}

	page, err := h.productService.List(r.Context(), query)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		CategoryIDs: req.CategoryIDs,
		MaterialIDs: req.MaterialIDs,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Status:      req.Status,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, service.UpdateProductInput{
		CategoryIDs: req.CategoryIDs,
		MaterialIDs: req.MaterialIDs,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Status:      req.Status,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, product)
}

// Delete removes a product. Unknown ids succeed.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithData(w, http.StatusOK, nil)
}
