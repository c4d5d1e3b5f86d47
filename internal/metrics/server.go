package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yildizm/TruthWeaver/internal/logger"
)

// Server exposes /metrics and /healthz over HTTP
type Server struct {
	server *http.Server
	addr   string
	log    *logger.Logger
}

// NewServer creates the endpoint for m on addr
func NewServer(addr string, m *Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr: addr,
		log:  log,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves in a goroutine
func (s *Server) Start() {
	go func() {
		s.log.InfoWithFields("starting metrics server", []logger.Field{logger.F("addr", s.addr)})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Debug("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
