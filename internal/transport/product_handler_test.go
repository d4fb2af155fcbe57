package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/repository"
	"catalog-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mock service for testing
type mockProductService struct {
	products map[uuid.UUID]*domain.Product
	err      error

	lastQuery  domain.PaginationQuery
	lastCreate *service.CreateProductInput
	lastUpdate *service.UpdateProductInput
	calls      int
}

func newMockProductService() *mockProductService {
	return &mockProductService{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductService) List(ctx context.Context, query domain.PaginationQuery) (domain.Page[*domain.Product], error) {
	m.calls++
	m.lastQuery = query
	if m.err != nil {
		return domain.Page[*domain.Product]{}, m.err
	}
	var items []*domain.Product
	for _, p := range m.products {
		items = append(items, p)
	}
	return domain.NewPage(items, query, uint64(len(items))), nil
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("failed to get product: %w", repository.ErrProductNotFound)
	}
	return p, nil
}

func (m *mockProductService) Create(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	m.calls++
	m.lastCreate = &input
	if m.err != nil {
		return nil, m.err
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
		CategoryIDs: input.CategoryIDs,
		MaterialIDs: input.MaterialIDs,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, input service.UpdateProductInput) (*domain.Product, error) {
	m.calls++
	m.lastUpdate = &input
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("failed to get product: %w", repository.ErrProductNotFound)
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	return p, nil
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	delete(m.products, id)
	return nil
}

func newProductRouter(svc service.ProductService) http.Handler {
	r := chi.NewRouter()
	NewProductHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func doRequest(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func seedProduct(svc *mockProductService) *domain.Product {
	p := &domain.Product{
		ID:          uuid.New(),
		Name:        "Oak chair",
		Price:       decimal.RequireFromString("49.90"),
		Status:      "active",
		CategoryIDs: []uuid.UUID{uuid.New()},
		MaterialIDs: []uuid.UUID{},
	}
	svc.products[p.ID] = p
	return p
}

func TestCreateProductReturnsCreatedEnvelope(t *testing.T) {
	svc := newMockProductService()
	router := newProductRouter(svc)
	categoryID := uuid.New()

	body := `{"category_ids":["` + categoryID.String() + `"],"material_ids":[],"name":"Oak chair","price":"49.90","description":"Solid oak","status":"active","image_urls":["https://cdn.example.com/products/chair.jpg"]}`
	w := doRequest(router, http.MethodPost, "/api/products", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created domain.Product
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &created); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}
	if created.Name != "Oak chair" || !created.Price.Equal(decimal.RequireFromString("49.90")) {
		t.Errorf("unexpected product: %+v", created)
	}
	if len(svc.lastCreate.CategoryIDs) != 1 || svc.lastCreate.CategoryIDs[0] != categoryID {
		t.Errorf("expected category ids to reach the service, got %v", svc.lastCreate.CategoryIDs)
	}
	if len(svc.lastCreate.ImageURLs) != 1 {
		t.Errorf("expected one image url, got %v", svc.lastCreate.ImageURLs)
	}
}

func TestCreateProductRejectsInvalidPayload(t *testing.T) {
	category := uuid.New().String()

	tests := []struct {
		name  string
		body  string
		want  int
		field string
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest, ""},
		{"bad uuid", `{"category_ids":["nope"],"name":"x","price":"1","status":"active"}`, http.StatusBadRequest, ""},
		{"no categories", `{"category_ids":[],"name":"x","price":"1","status":"active"}`, http.StatusUnprocessableEntity, "category_ids"},
		{"missing name", `{"category_ids":["` + category + `"],"price":"1","status":"active"}`, http.StatusUnprocessableEntity, "name"},
		{"zero price", `{"category_ids":["` + category + `"],"name":"x","price":"0","status":"active"}`, http.StatusUnprocessableEntity, "price"},
		{"sub-cent price", `{"category_ids":["` + category + `"],"name":"x","price":"0.001","status":"active"}`, http.StatusUnprocessableEntity, "price"},
		{"price above column range", `{"category_ids":["` + category + `"],"name":"x","price":100000000000,"status":"active"}`, http.StatusUnprocessableEntity, "price"},
		{"bad image url", `{"category_ids":["` + category + `"],"name":"x","price":"1","status":"active","image_urls":["chair.jpg"]}`, http.StatusUnprocessableEntity, "image_urls[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockProductService()
			w := doRequest(newProductRouter(svc), http.MethodPost, "/api/products", tt.body)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if svc.calls != 0 {
				t.Errorf("service must not be called for an invalid payload")
			}
			if tt.field == "" {
				return
			}
			env := decodeEnvelope(t, w)
			if !strings.Contains(mustJSON(t, env.Error.Details), `"field":"`+tt.field+`"`) {
				t.Errorf("expected error on %s, got %v", tt.field, env.Error.Details)
			}
		})
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestGetProduct(t *testing.T) {
	svc := newMockProductService()
	p := seedProduct(svc)
	router := newProductRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/products/"+p.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/products/"+uuid.New().String(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if msg := decodeEnvelope(t, w).Error.Message; msg != "product not found" {
		t.Errorf("expected inner message, got %q", msg)
	}

	w = doRequest(router, http.MethodGet, "/api/products/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestStorageErrorsAreOpaque(t *testing.T) {
	svc := newMockProductService()
	svc.err = fmt.Errorf("failed to list products: %w", domain.NewStorageError("list products", errors.New("dial tcp 10.0.0.5:5432: connection refused")))

	w := doRequest(newProductRouter(svc), http.MethodGet, "/api/products", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "10.0.0.5") {
		t.Errorf("storage details leaked: %s", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("expected generic message, got %s", body)
	}
}

func TestListProductsParsesQuery(t *testing.T) {
	svc := newMockProductService()
	seedProduct(svc)
	router := newProductRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/products?page=2&limit=5&search=oak&sort=price&sort_order=asc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	want := domain.PaginationQuery{Page: 2, Limit: 5, Search: "oak", Sort: "price", SortOrder: domain.SortOrderAsc}
	if svc.lastQuery != want {
		t.Errorf("expected %+v, got %+v", want, svc.lastQuery)
	}

	var page struct {
		Data      []json.RawMessage `json:"data"`
		Page      int               `json:"page"`
		Limit     int               `json:"limit"`
		TotalData uint64            `json:"total_data"`
		TotalPage uint64            `json:"total_page"`
	}
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Page != 2 || page.Limit != 5 || page.TotalData != 1 || page.TotalPage != 1 {
		t.Errorf("unexpected page metadata: %+v", page)
	}
}

func TestListProductsAcceptsSortOrderInAnyCase(t *testing.T) {
	svc := newMockProductService()
	w := doRequest(newProductRouter(svc), http.MethodGet, "/api/products?sort_order=Desc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastQuery.SortOrder != domain.SortOrderDesc {
		t.Errorf("expected DESC, got %q", svc.lastQuery.SortOrder)
	}
}

func TestListProductsRejectsBadQuery(t *testing.T) {
	for _, q := range []string{"page=abc", "limit=-1", "page=-3", "sort_order=sideways"} {
		svc := newMockProductService()
		w := doRequest(newProductRouter(svc), http.MethodGet, "/api/products?"+q, "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", q, w.Code)
		}
		if svc.calls != 0 {
			t.Errorf("%s: service must not be called", q)
		}
	}
}

// Property: positive page and limit values reach the service unchanged,
// anything below one is rejected
func TestProperty_PageAndLimitBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("page and limit must be at least one when supplied", prop.ForAll(
		func(page, limit int) bool {
			svc := newMockProductService()
			target := "/api/products?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
			w := doRequest(newProductRouter(svc), http.MethodGet, target, "")

			// zero means "not supplied"
			valid := page >= 0 && limit >= 0
			if !valid {
				return w.Code == http.StatusUnprocessableEntity && svc.calls == 0
			}
			return w.Code == http.StatusOK &&
				svc.lastQuery.Page == page &&
				svc.lastQuery.Limit == limit
		},
		gen.IntRange(-5, 50),
		gen.IntRange(-5, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUpdateProductDistinguishesAbsentAndEmptyLists(t *testing.T) {
	svc := newMockProductService()
	p := seedProduct(svc)
	router := newProductRouter(svc)

	w := doRequest(router, http.MethodPut, "/api/products/"+p.ID.String(), `{"name":"Walnut chair","material_ids":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	in := svc.lastUpdate
	if in.Name == nil || *in.Name != "Walnut chair" {
		t.Errorf("expected name to be passed through, got %v", in.Name)
	}
	if in.MaterialIDs == nil || len(in.MaterialIDs) != 0 {
		t.Errorf("expected an empty material list, got %#v", in.MaterialIDs)
	}
	if in.CategoryIDs != nil || in.ImageURLs != nil || in.Price != nil {
		t.Errorf("absent fields must stay nil: %+v", in)
	}
}

func TestUpdateProductValidation(t *testing.T) {
	svc := newMockProductService()
	p := seedProduct(svc)
	router := newProductRouter(svc)

	for _, body := range []string{
		`{"category_ids":[]}`,
		`{"price":"-1"}`,
		`{"name":""}`,
		`{"price":"0.001"}`,
		`{"price":100000000000}`,
	} {
		w := doRequest(router, http.MethodPut, "/api/products/"+p.ID.String(), body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", body, w.Code)
		}
	}
	if svc.calls != 0 {
		t.Errorf("service must not be called for invalid updates")
	}

	w := doRequest(router, http.MethodPut, "/api/products/"+uuid.New().String(), `{"name":"Ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown product, got %d", w.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc := newMockProductService()
	p := seedProduct(svc)
	router := newProductRouter(svc)

	for i := 0; i < 2; i++ {
		w := doRequest(router, http.MethodDelete, "/api/products/"+p.ID.String(), "")
		if w.Code != http.StatusOK {
			t.Fatalf("delete %d: expected 200, got %d", i, w.Code)
		}
		if string(decodeEnvelope(t, w).Data) != "null" {
			t.Errorf("expected null data")
		}
	}
	if _, ok := svc.products[p.ID]; ok {
		t.Errorf("product should be removed")
	}
}

func TestCreateProductMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("failed to create product: %w", repository.ErrCategoriesMissing), http.StatusNotFound},
		{fmt.Errorf("invalid image %q: %w", "x", domain.ErrValidation), http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to create product: %w", repository.ErrInvalidPrice), http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to create product: %w", domain.NewStorageError("insert product", errors.New("boom"))), http.StatusInternalServerError},
	}

	body := `{"category_ids":["` + uuid.New().String() + `"],"name":"Lamp","price":"12.50","status":"active"}`
	for _, tt := range tests {
		svc := newMockProductService()
		svc.err = tt.err
		w := doRequest(newProductRouter(svc), http.MethodPost, "/api/products", body)
		if w.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}
