package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"swifthub/internal/platform/logger"
)

const shutdownGrace = 5 * time.Second

// Server is a thin wrapper over a Router and stdlib http.Server
type Server struct {
	addr   string
	router Router
	srv    *stdhttp.Server
}

// NewServer creates a server on addr. opts receive the Router so callers can mount routes and middleware
func NewServer(addr string, opts ...func(Router)) *Server {
	r := NewRouter()
	for _, o := range opts {
		o(r)
	}
	return &Server{
		addr:   addr,
		router: r,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           r.Mux(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the mounted Router
func (s *Server) Router() Router { return s.router }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run listens on Addr and blocks until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Info().Msg("http shutting down")
		if err := s.srv.Shutdown(sctx); err != nil {
			return err
		}
		return nil
	}
}
