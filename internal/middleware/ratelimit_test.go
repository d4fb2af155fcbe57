package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newLimitedHandler(t *testing.T, limit int, window time.Duration) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            window,
		KeyPrefix:         "test_rate_limit",
	}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, mr
}

func listProducts(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Property: a client gets exactly limit requests per window, with the
// remaining budget counting down and a Retry-After once it is spent
func TestProperty_RateLimitBudgetPerWindow(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("limit requests pass, the rest get 429", prop.ForAll(
		func(limit int, excess int) bool {
			handler, _ := newLimitedHandler(t, limit, time.Minute)

			for i := 1; i <= limit+excess; i++ {
				w := listProducts(handler, "192.168.1.100:5000")
				if w.Header().Get("X-RateLimit-Limit") != strconv.Itoa(limit) {
					return false
				}

				if i <= limit {
					if w.Code != http.StatusOK || w.Header().Get("X-RateLimit-Remaining") != strconv.Itoa(limit-i) {
						return false
					}
					continue
				}

				retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
				if w.Code != http.StatusTooManyRequests || err != nil || retryAfter <= 0 || retryAfter > 60 {
					return false
				}
				if w.Header().Get("X-RateLimit-Remaining") != "0" {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitWindowResets(t *testing.T) {
	handler, mr := newLimitedHandler(t, 1, 30*time.Second)

	if w := listProducts(handler, "192.168.1.101:5000"); w.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}
	if w := listProducts(handler, "192.168.1.101:5000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", w.Code)
	}

	mr.FastForward(31 * time.Second)

	if w := listProducts(handler, "192.168.1.101:5000"); w.Code != http.StatusOK {
		t.Errorf("expected a fresh window after expiry, got %d", w.Code)
	}
}

func TestRateLimitKeysOnClientIP(t *testing.T) {
	handler, mr := newLimitedHandler(t, 2, time.Minute)

	// different source ports share one bucket
	listProducts(handler, "10.0.0.1:40001")
	listProducts(handler, "10.0.0.1:40002")
	if w := listProducts(handler, "10.0.0.1:40003"); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected third request from the same ip to be limited, got %d", w.Code)
	}
	if w := listProducts(handler, "10.0.0.2:40001"); w.Code != http.StatusOK {
		t.Errorf("expected another ip to pass, got %d", w.Code)
	}
	if !mr.Exists("test_rate_limit:10.0.0.1") {
		t.Error("expected counter keyed by bare ip")
	}
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer redisClient.Close()
	mr.Close()

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "test_rate_limit_down",
	}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through, got %d", i, w.Code)
		}
	}
}
