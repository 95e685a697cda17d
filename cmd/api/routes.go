package main

import (
	"context"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/cover"
	"bookshelf/internal/httpx"
	"bookshelf/internal/reading"
	"bookshelf/internal/user"

	"go.uber.org/zap"
)

type deps struct {
	cfg        *config.Config
	logger     *zap.Logger
	users      *user.Service
	books      *book.Service
	readings   *reading.Service
	uploader   *cover.Uploader
	coverFiles http.Handler
	ping       func(context.Context) error
}

// newRouter wires every route and the middleware chain. ctx bounds the rate
// limiter's cleanup loop.
func newRouter(ctx context.Context, d deps) http.Handler {
	authHandler := auth.NewHTTPHandler(auth.NewService(d.cfg.JWTSecret, d.cfg.AccessTokenTTL, d.users))
	bookHandler := book.NewHTTPHandler(d.books)
	readingHandler := reading.NewHTTPHandler(d.readings)
	coverHandler := cover.NewHTTPHandler(d.uploader, d.cfg.MaxUploadBytes)

	protected := httpx.AuthMiddleware(d.cfg.JWTSecret)
	limitBody := httpx.RequestSizeLimitMiddleware(d.cfg.MaxBodyBytes)
	api := func(h http.HandlerFunc) http.Handler { return protected(limitBody(h)) }

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Handle("POST /auth/register", limitBody(http.HandlerFunc(authHandler.Register)))
	router.Handle("POST /auth/login", limitBody(http.HandlerFunc(authHandler.Login)))
	router.Handle("GET /me", protected(http.HandlerFunc(authHandler.Me)))

	router.Handle("GET /api/books", api(bookHandler.List))
	router.Handle("POST /api/books", api(bookHandler.Create))
	router.Handle("PUT /api/books/{id}", api(bookHandler.Update))
	router.Handle("PATCH /api/books/{id}", api(bookHandler.Update))
	router.Handle("DELETE /api/books/{id}", api(bookHandler.Delete))

	router.Handle("GET /api/readings", api(readingHandler.List))
	router.Handle("POST /api/readings", api(readingHandler.Create))
	router.Handle("PUT /api/readings/{id}", api(readingHandler.Update))
	router.Handle("PATCH /api/readings/{id}", api(readingHandler.Update))
	router.Handle("DELETE /api/readings/{id}", api(readingHandler.Delete))

	// uploads enforce their own, larger limit
	router.Handle("POST /api/upload", protected(http.HandlerFunc(coverHandler.Upload)))
	router.Handle("DELETE /api/upload", api(coverHandler.Delete))

	if d.coverFiles != nil {
		router.Handle("GET /covers/", http.StripPrefix("/covers/", d.coverFiles))
	}

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, d.cfg.RateLimitRPS, d.cfg.RateLimitBurst)

	var handler http.Handler = router
	handler = rateLimiter.Middleware(handler)
	handler = httpx.CORSMiddleware(d.cfg.AllowedOrigins)(handler)
	handler = httpx.SecurityHeadersMiddleware(handler)
	handler = httpx.RecoveryMiddleware(d.logger)(handler)
	handler = httpx.AccessLogMiddleware(d.logger)(handler)
	handler = httpx.RequestIDMiddleware(handler)
	return handler
}
