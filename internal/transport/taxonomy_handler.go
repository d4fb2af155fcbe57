package transport

import (
	"context"
	"net/http"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTaxonomyRequest represents the payload for a new category or material
type CreateTaxonomyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateTaxonomyRequest renames a category or material
type UpdateTaxonomyRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
}

// taxonomyService is satisfied by both service.CategoryService and
// service.MaterialService.
type taxonomyService[T any] interface {
	List(ctx context.Context, query domain.PaginationQuery) (domain.Page[T], error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, name string) (T, error)
	Update(ctx context.Context, id uuid.UUID, name *string) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaxonomyHandler serves the named lookup tables products link to
type TaxonomyHandler[T any] struct {
	path    string
	service taxonomyService[T]
	logger  *zap.Logger
}

// NewCategoryHandler serves product categories under /api/product-categories
func NewCategoryHandler(svc taxonomyService[*domain.ProductCategory], logger *zap.Logger) *TaxonomyHandler[*domain.ProductCategory] {
	return &TaxonomyHandler[*domain.ProductCategory]{
		path:    "/api/product-categories",
		service: svc,
		logger:  logger,
	}
}

// NewMaterialHandler serves product materials under /api/product-materials
func NewMaterialHandler(svc taxonomyService[*domain.ProductMaterial], logger *zap.Logger) *TaxonomyHandler[*domain.ProductMaterial] {
	return &TaxonomyHandler[*domain.ProductMaterial]{
		path:    "/api/product-materials",
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the lookup routes
func (h *TaxonomyHandler[T]) RegisterRoutes(r chi.Router) {
	r.Route(h.path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *TaxonomyHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	query, fieldErrors := parsePaginationQuery(r)
	if len(fieldErrors) > 0 {
		middleware.RespondWithValidationErrors(w, fieldErrors)
		return
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *TaxonomyHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, item)
}

func (h *TaxonomyHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaxonomyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Taxonomy validation failed", zap.String("path", h.path), zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	item, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, item)
}

func (h *TaxonomyHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateTaxonomyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Taxonomy validation failed", zap.String("path", h.path), zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, item)
}

// Delete fails with 409 while a product still links to a category
func (h *TaxonomyHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, nil)
}
