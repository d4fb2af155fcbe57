package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware configures CORS settings. Development servers accept any
// origin.
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	if isDevelopment {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
}

// DefaultMiddlewareStack returns a stack of commonly used middleware
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		EchoRequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Compress(5),
	}
}
