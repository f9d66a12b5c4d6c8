package core

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"slskdrelay/internal/types"
)

// RequestIDHeader carries the correlation ID on requests and responses.
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLength bounds caller-supplied request IDs before they are
// echoed back and logged.
const maxRequestIDLength = 128

const defaultRequestTimeout = 30 * time.Second

// defaultRedactedHeaders lists header names whose values are masked in
// request logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
	"X-Api-Key",
}

// MountRoutes registers the global middleware chain, the health endpoints,
// the JSON fallbacks for unknown routes and every domain registrar.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	// Only the listed method/path pairs exist; any other pair is a 404.
	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleNotFound)

	s.router.Get("/health", s.HandleHealth)
	s.router.Get("/", s.HandleHealth)

	for _, registrar := range s.RouteRegistrars {
		registrar(s.router)
	}
}

// registerGlobalMiddleware applies middleware in strict order.
//
//  1. Recoverer         - outermost so every panic becomes a JSON 500.
//  2. RequestID         - correlation ID for logs and the error envelope.
//  3. SecurityHeaders   - present on every response, errors included.
//  4. RequestLogger     - one structured line per request.
//  5. DecompressRequest - gzip/zstd bodies are inflated before handlers read them.
//  6. ContextTimeout    - bounds the whole relay, Discord call included.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(DecompressRequest)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, types.NewAppError(types.ErrCodeNotFoundRoute, "route not found", nil))
}

// ContextTimeoutMiddleware sets a deadline on the request context. Handlers
// observe it through r.Context(); the response on expiry is up to them.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware reuses the caller's X-Request-Id when it looks sane and
// otherwise generates a UUID. The ID is stored in the context and echoed in
// the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := types.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
