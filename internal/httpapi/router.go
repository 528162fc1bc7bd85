package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

// NewRouter builds the chi router exposing svc's endpoints, following
// the same middleware stack (logger, recoverer, request timeout, CORS)
// the rest of the stack uses.
func NewRouter(svc *Service, requestTimeout time.Duration, allowedOrigins []string) http.Handler {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/route", h.ServeRoute)
		r.Get("/health", h.ServeHealth)
	})

	return r
}

// requestID stamps a uuid onto both the request context (under chi's own
// request-id key, so middleware.Logger's lines carry it) and the
// response header, so a client can hand the same id back for support.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
