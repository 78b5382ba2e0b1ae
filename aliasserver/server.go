package aliasserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig holds the HTTP server timeouts.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultServerConfig returns timeouts suitable for a small internal service.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Server wraps http.Server with signal handling and graceful shutdown.
//
//	server := aliasserver.NewServer(
//	    aliasserver.WithAddr(":8080"),
//	    aliasserver.WithHandler(svc),
//	)
//	if err := server.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Server struct {
	httpServer *http.Server
	config     ServerConfig
	handler    http.Handler
	logger     zerolog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	config  ServerConfig
	handler http.Handler
	logger  *zerolog.Logger
}

// WithServerConfig replaces the whole timeout configuration.
func WithServerConfig(cfg ServerConfig) ServerOption {
	return func(sc *serverConfig) {
		sc.config = cfg
	}
}

// WithAddr sets the listen address.
//
// Default: ":8080"
func WithAddr(addr string) ServerOption {
	return func(sc *serverConfig) {
		sc.config.Addr = addr
	}
}

// WithHandler sets the handler to serve. Required.
func WithHandler(h http.Handler) ServerOption {
	return func(sc *serverConfig) {
		sc.handler = h
	}
}

// WithServerLogger sets the lifecycle logger.
func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(sc *serverConfig) {
		sc.logger = &logger
	}
}

// NewServer creates a Server with the provided options.
func NewServer(opts ...ServerOption) *Server {
	sc := &serverConfig{config: DefaultServerConfig()}
	for _, opt := range opts {
		opt(sc)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if sc.logger != nil {
		logger = *sc.logger
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              sc.config.Addr,
			Handler:           sc.handler,
			ReadTimeout:       sc.config.ReadTimeout,
			ReadHeaderTimeout: sc.config.ReadHeaderTimeout,
			WriteTimeout:      sc.config.WriteTimeout,
			IdleTimeout:       sc.config.IdleTimeout,
		},
		config:  sc.config,
		handler: sc.handler,
		logger:  logger,
	}
}

// ListenAndServe starts the server and blocks until the context is cancelled
// or SIGTERM/SIGINT is received, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.handler == nil {
		return errors.New("aliasserver: handler is required (use WithHandler)")
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(shutdownChan)

	serverErrChan := make(chan error, 1)

	go func() {
		s.logger.Info().
			Str("addr", s.httpServer.Addr).
			Msg("alias server starting")

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	select {
	case err := <-serverErrChan:
		if err != nil {
			s.logger.Error().Err(err).Msg("server error")
			return err
		}
	case sig := <-shutdownChan:
		s.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case <-ctx.Done():
		s.logger.Info().Err(ctx.Err()).Msg("context cancelled, shutting down")
	}

	return s.shutdown(ctx)
}

func (s *Server) shutdown(ctx context.Context) error {
	s.logger.Info().
		Dur("timeout", s.config.ShutdownTimeout).
		Msg("starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed, forcing close")
		if closeErr := s.httpServer.Close(); closeErr != nil {
			s.logger.Error().Err(closeErr).Msg("force close failed")
		}
		return err
	}

	s.logger.Info().Msg("server stopped gracefully")
	return nil
}

// Shutdown triggers graceful shutdown programmatically.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
