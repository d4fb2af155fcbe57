package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeDatabase struct {
	status string
	closed bool
}

func (f *fakeDatabase) Health() map[string]string {
	return map[string]string{"status": f.status}
}

func (f *fakeDatabase) DB() *sql.DB { return nil }

func (f *fakeDatabase) Close() error {
	f.closed = true
	return nil
}

func newTestServer(t *testing.T, db *fakeDatabase) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "development"},
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewServer(cfg, zap.NewNop(), db, client), mr
}

func TestHealthReflectsDatabase(t *testing.T) {
	for _, tt := range []struct {
		status string
		want   int
	}{
		{"up", http.StatusOK},
		{"down", http.StatusServiceUnavailable},
	} {
		srv, _ := newTestServer(t, &fakeDatabase{status: tt.status})

		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.status, tt.want, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode health: %v", err)
		}
		if body["status"] != tt.status {
			t.Errorf("expected status %q, got %q", tt.status, body["status"])
		}
	}
}

func TestAPIRoutesAreRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDatabase{status: "up"})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		// rejected by query validation before touching the database
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?page=abc", nil))
		if w.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("request %d: missing rate limit header", i)
		}
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusUnprocessableEntity, http.StatusUnprocessableEntity, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: expected %d, got %d", i, want[i], codes[i])
		}
	}

	// health stays outside the limiter
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected health to stay available, got %d", w.Code)
	}
}

func TestAPIRoutesRequireJSONBodies(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDatabase{status: "up"})

	req := httptest.NewRequest(http.MethodPost, "/api/product-categories", strings.NewReader("name=Chairs"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestMetricsAndRequestIDAreExposed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDatabase{status: "up"})

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on the response")
	}
	srv.Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products?page=abc", nil))

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}

	body := w.Body.String()
	for _, series := range []string{
		`http_requests_total{method="GET",path="/health",status="200"} 1`,
		`http_requests_total{method="GET",path="/api/products",status="422"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, series) {
			t.Errorf("expected %s in exposition", series)
		}
	}
}

func TestCloseReleasesResources(t *testing.T) {
	db := &fakeDatabase{status: "up"}
	srv, _ := newTestServer(t, db)

	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !db.closed {
		t.Errorf("expected database to be closed")
	}
}
