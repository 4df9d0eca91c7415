package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/actionsum/workwatch/internal/config"
)

type Server struct {
	handler *Handler
	server  *http.Server
}

// NewServer binds the API to cfg.Web.Host and cfg.Web.Port, or customPort when positive.
func NewServer(cfg *config.Config, store Store, engine Engine, customPort int) *Server {
	handler := NewHandler(cfg, store, engine)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  httpServer,
	}
}

// Start blocks serving requests. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	log.Printf("Starting web server on http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}

// Handler returns the routed mux, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
