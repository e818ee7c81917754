package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/account"
	"github.com/hongminglow/campus-market/internal/category"
	"github.com/hongminglow/campus-market/internal/config"
	"github.com/hongminglow/campus-market/internal/credential"
	"github.com/hongminglow/campus-market/internal/http/handlers"
	"github.com/hongminglow/campus-market/internal/listing"
	"github.com/hongminglow/campus-market/internal/middleware"
	"github.com/hongminglow/campus-market/internal/session"
	"github.com/hongminglow/campus-market/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewHandler builds the services over store and returns the fully wrapped
// route tree.
func NewHandler(cfg config.Config, store storage.Store, sessions *session.Manager, log *zap.Logger) (http.Handler, error) {
	pages, err := handlers.NewPages(log.Named("pages"))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	accounts := account.NewService(store, credential.NewHasher(cfg.BcryptCost), sessions, log)
	categories := category.NewService(store, log)
	listings := listing.NewService(store, store, store, log)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store, log).Register(mux)
	handlers.NewPageHandler(pages, accounts, categories, listings).Register(mux)
	handlers.NewUserHandler(accounts, sessions, pages, log).Register(mux)
	handlers.NewPostHandler(listings).Register(mux)
	handlers.NewCategoryHandler(categories).Register(mux)

	return middleware.Chain(mux,
		middleware.Logging(log.Named("http")),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Session(sessions, log.Named("session")),
	), nil
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, sessions *session.Manager, log *zap.Logger) (*Server, error) {
	handler, err := NewHandler(cfg, store, sessions, log)
	if err != nil {
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
	}
	return &Server{inner: httpServer}, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string { return s.inner.Addr }

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
