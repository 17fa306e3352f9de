// Package apiserver exposes the content stores over a REST API and pushes
// collection changes to websocket subscribers.
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/klubi/folio/internal/content"
	"github.com/klubi/folio/internal/render"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// Server is the Folio REST API server. Handlers reach the stores through the
// content provider attached to each request context.
type Server struct {
	router   *mux.Router
	provider *content.Provider
	renderer *render.Renderer
	hub      *Hub
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a fully-wired Server ready to Start(). The provider's
// stores should already be loaded.
func NewServer(addr string, p *content.Provider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		router:   mux.NewRouter(),
		provider: p,
		renderer: render.New(),
		hub:      NewHub(logger),
		logger:   logger,
	}
	srv.server = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	srv.registerRoutes()
	srv.broadcastChanges()
	return srv
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the websocket change feed.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening and serving HTTP requests. It blocks until the
// server is shut down or encounters a fatal error.
func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests, disconnects websocket
// subscribers and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	return s.server.Shutdown(ctx)
}

// broadcastChanges forwards every load and mutation of either store to the
// websocket hub.
func (s *Server) broadcastChanges() {
	s.provider.Posts.OnChange(func(items []v1alpha1.Post) {
		s.hub.Broadcast(v1alpha1.ChangeEvent{
			Type:  v1alpha1.ChangeChanged,
			Kind:  v1alpha1.KindPost,
			Slot:  s.provider.Posts.Slot(),
			Count: len(items),
			At:    time.Now(),
		})
	})
	s.provider.Projects.OnChange(func(items []v1alpha1.Project) {
		s.hub.Broadcast(v1alpha1.ChangeEvent{
			Type:  v1alpha1.ChangeChanged,
			Kind:  v1alpha1.KindProject,
			Slot:  s.provider.Projects.Slot(),
			Count: len(items),
			At:    time.Now(),
		})
	})
}

// withProvider attaches the content provider to the request context.
func (s *Server) withProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(content.WithProvider(r.Context(), s.provider)))
	})
}

// logRequests logs each request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}
