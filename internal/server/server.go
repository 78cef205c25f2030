// Package server runs the HTTP API and the gRPC health endpoint side by
// side and drains both on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	grpcserver "github.com/vitthalk15/DataDash/pkg/grpc"
	"github.com/vitthalk15/DataDash/pkg/logger"
)

// ShutdownTimeout bounds the graceful drain after the context ends.
const ShutdownTimeout = 10 * time.Second

type Server struct {
	http *http.Server
	grpc *grpcserver.Server
}

// New wraps handler in an http.Server with the API's timeouts. g may be nil.
func New(handler http.Handler, g *grpcserver.Server) *Server {
	return &Server{
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		grpc: g,
	}
}

// ListenAndServe binds httpAddr and, with a gRPC server, grpcAddr, then
// calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, httpAddr, grpcAddr string) error {
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", httpAddr, err)
	}
	var grpcLis net.Listener
	if s.grpc != nil {
		if grpcLis, err = net.Listen("tcp", grpcAddr); err != nil {
			httpLis.Close()
			return fmt.Errorf("server: listen on %s: %w", grpcAddr, err)
		}
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve blocks until ctx is done or a server fails, then shuts both down
// within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	errc := make(chan error, 2)

	go func() {
		logger.Info("server: http listening", "addr", httpLis.Addr().String())
		if err := s.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server: http: %w", err)
			return
		}
		errc <- nil
	}()
	if s.grpc != nil && grpcLis != nil {
		go func() { errc <- s.grpc.ServeListener(ctx, grpcLis) }()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("server: shutting down")
	case serveErr = <-errc:
		if serveErr != nil {
			logger.Error("server: stopped unexpectedly", "error", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if s.grpc != nil {
		stopped := make(chan struct{})
		go func() { s.grpc.Stop(); close(stopped) }()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			logger.Warn("server: grpc drain timed out")
		}
	}
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("server: http shutdown: %w", err))
	}
	logger.Info("server: stopped")
	return serveErr
}
