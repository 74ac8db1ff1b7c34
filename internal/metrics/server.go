package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/stencil/types"
)

// Server serves Prometheus metrics over HTTP.
type Server struct {
	addr     string
	gatherer prometheus.Gatherer
	logger   types.Logger
}

// NewServer creates a metrics server.
//
// Parameters:
//   - addr: Address to listen on (e.g., ":9090")
//   - gatherer: Registry to expose (uses prometheus.DefaultGatherer if nil)
//   - logger: Logger for server lifecycle messages
//
// Returns:
//   - *Server: Initialized server
func NewServer(addr string, gatherer prometheus.Gatherer, logger types.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{addr: addr, gatherer: gatherer, logger: logger}
}

// Handler returns the mux serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler)

	return mux
}

// Serve listens on the server's address until ctx is cancelled, then shuts
// the server down.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Listen or shutdown error
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("metrics server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("metrics server shutting down")

	return srv.Shutdown(shutdownCtx)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK\n")
}
