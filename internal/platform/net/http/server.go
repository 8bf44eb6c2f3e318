package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"redditimport/internal/platform/logger"
)

// shutdownGrace bounds how long in-flight status requests may finish
const shutdownGrace = 5 * time.Second

// Server hosts the status endpoints next to a running import
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server

	mu    sync.Mutex
	bound net.Addr
}

// NewServer builds a server for addr; each opt gets the chi mux to add middleware
func NewServer(addr string, opts ...func(*chi.Mux)) *Server {
	mux := chi.NewRouter()
	for _, opt := range opts {
		opt(mux)
	}
	return &Server{
		addr: addr,
		mux:  mux,
		srv: &stdhttp.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}
}

// Router is the mount surface for modules
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr is the bound address once Run is listening, the configured one before
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil {
		return s.bound.String()
	}
	return s.addr
}

// Run listens and serves until ctx is done or Shutdown is called
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()

	log := logger.Named("http")
	log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")

	stop := context.AfterFunc(ctx, func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("status server shutdown")
		}
	})
	defer stop()

	if err := s.srv.Serve(ln); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops Run gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
