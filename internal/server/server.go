package server

import (
	"context"
	"net/http"
	"time"

	"github.com/scythe504/skribblr/internal/database"
	"github.com/scythe504/skribblr/internal/game"
)

// ResultStore is the read side of the finished-game store.
type ResultStore interface {
	Health(ctx context.Context) map[string]string
	RecentResults(ctx context.Context, limit int) ([]database.GameRecord, error)
}

type Server struct {
	engine  *game.Engine
	ws      http.Handler
	results ResultStore
	origins []string
}

// New builds the HTTP surface. results may be nil when no database is
// configured.
func New(engine *game.Engine, ws http.Handler, results ResultStore, allowedOrigins []string) *Server {
	return &Server{
		engine:  engine,
		ws:      ws,
		results: results,
		origins: allowedOrigins,
	}
}

// HTTPServer wraps the routes in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
