package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tdd/todo-app/internal/platform/config"
)

// fallbackDrain bounds Shutdown when neither the config nor the caller set
// a deadline.
const fallbackDrain = 10 * time.Second

// Server is the inbound HTTP listener.
type Server struct {
	srv   *http.Server
	drain time.Duration
	log   *slog.Logger
}

// NewServer applies cfg's address and timeouts. A nil logger discards.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	drain := cfg.ShutdownTimeout
	if drain <= 0 {
		drain = fallbackDrain
	}

	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		drain: drain,
		log:   logger,
	}
}

// Addr is the configured listen address, host:port.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run listens on Addr and serves until ctx is done, then drains in-flight
// requests for up to the shutdown timeout. It returns nil after a clean
// drain.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.RunListener(ctx, ln)
}

// RunListener is Run on an existing listener, which it takes ownership of.
func (s *Server) RunListener(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", ln.Addr().String()))
		served <- s.srv.Serve(ln)
	}()

	select {
	case err := <-served:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("http server draining", slog.Duration("timeout", s.drain), slog.Any("cause", context.Cause(ctx)))

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
	defer cancel()

	shutdownErr := s.srv.Shutdown(drainCtx)
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(fmt.Errorf("serving http: %w", err), shutdownErr)
	}
	if shutdownErr != nil {
		return fmt.Errorf("draining http server: %w", shutdownErr)
	}
	return nil
}
