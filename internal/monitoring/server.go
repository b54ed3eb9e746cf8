// internal/monitoring/server.go
package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinescrape/internal/utils"
)

// Server exposes the run's metrics and a health endpoint over HTTP.
type Server struct {
	server *http.Server
	log    utils.Logger
}

// NewServer builds the HTTP server for the given instrument set.
func NewServer(listen string, metrics *Metrics) *Server {
	if listen == "" {
		listen = ":9090"
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	return &Server{
		server: &http.Server{
			Addr:         listen,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: utils.NewComponentLogger("metrics"),
	}
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Infof("metrics listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("metrics server: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }
