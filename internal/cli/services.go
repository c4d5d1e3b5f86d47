package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/yildizm/TruthWeaver/internal/logger"
	"github.com/yildizm/TruthWeaver/internal/metrics"
	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/submission"
	"github.com/yildizm/TruthWeaver/internal/weaver"
)

// services is everything one command run needs to talk to the service
type services struct {
	client     *weaver.Client
	metrics    *metrics.Metrics
	server     *metrics.Server
	store      *session.Store
	controller *submission.Controller
	log        *logger.Logger
}

// serviceOverrides are per-command flags that beat the configuration
type serviceOverrides struct {
	endpoint string
	timeout  time.Duration
}

func newServices(overrides serviceOverrides) (*services, error) {
	wc := GetGlobalConfig().WeaverConfig()
	if overrides.endpoint != "" {
		wc.BaseURL = overrides.endpoint
	}
	if overrides.timeout > 0 {
		wc.Timeout = overrides.timeout
	}

	client, err := weaver.New(wc)
	if err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}

	log := logger.NewWithCallback("cli", isVerbose)
	m := metrics.New()
	store := session.NewStore()

	s := &services{
		client:  client,
		metrics: m,
		store:   store,
		log:     log,
		controller: submission.New(store, client,
			submission.WithRecorder(m),
			submission.WithLogger(log.WithComponent("submission")),
			submission.WithMaxUploadBytes(wc.MaxUploadBytes),
		),
	}

	if metricsAddr != "" {
		s.server = metrics.NewServer(metricsAddr, m, log.WithComponent("metrics"))
		s.server.Start()
	}

	log.DebugWithFields("service client ready", []logger.Field{
		logger.F("base_url", client.BaseURL()),
		logger.Duration(wc.Timeout),
	})
	return s, nil
}

// Close stops the metrics endpoint, if any
func (s *services) Close() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warn("metrics server shutdown: %v", err)
	}
}
