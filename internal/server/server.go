// Package server exposes the assistant's retrieval, refresh, activity
// and analytics surfaces over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/db"
	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/pricing"
	"github.com/sportzvillage/svassist/internal/search"
)

// Refresher rebuilds the vector cache from the source tables.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server wires the retrieval engine, refresher, chat log and activity
// store behind a chi router.
type Server struct {
	cfg        Config
	engine     *search.Engine
	refresher  Refresher
	chatLog    *chatlog.Logger
	activity   *db.DB
	tiers      []pricing.Tier
	log        *logging.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies. refresher and activity
// may be nil; their endpoints then report 503.
func New(cfg Config, engine *search.Engine, refresher Refresher, chatLog *chatlog.Logger, activity *db.DB, tiers []pricing.Tier, log *logging.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		refresher: refresher,
		chatLog:   chatLog,
		activity:  activity,
		tiers:     tiers,
		log:       log,
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/context", s.handleContext)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/interactions", s.handleLogInteraction)
		r.Get("/history/{userID}", s.handleHistory)
		r.Get("/analytics", s.handleAnalytics)

		r.Route("/activity", func(r chi.Router) {
			r.Post("/lessons", s.handleLogCompletion)
			r.Get("/lessons", s.handleRecentCompletions)
			r.Post("/props", s.handlePropUpdate)
			r.Get("/props/{propID}", s.handlePropHistory)
		})
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("svassist server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
