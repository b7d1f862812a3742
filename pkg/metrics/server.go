package metrics

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes /metrics (Prometheus) and /healthz (process liveness,
// not provider health) on a dedicated port.
type Server struct {
	server *http.Server
	log    *logrus.Logger
}

// NewServer returns a Server bound to ":port".
func NewServer(port string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{Addr: ":" + port, Handler: r},
		log:    log,
	}
}

// StartAsync starts the HTTP server on a background goroutine. Bind or
// serve errors are logged, not returned: the orchestrator keeps running
// without its metrics surface rather than failing the process.
func (s *Server) StartAsync() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("metrics server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts the server down, bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
