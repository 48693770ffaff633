// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"headline-agent/internal/common/config"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/models"
	"headline-agent/internal/pipeline"
	normalizeinput "headline-agent/internal/workers/headline/normalize-input"
	"headline-agent/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Server exposes the webhook and the operational endpoints.
type Server struct {
	cfg     *config.Config
	service *pipeline.Service
	checks  map[string]ReadinessCheck
	logger  logger.Logger
	http    *http.Server
}

func New(cfg *config.Config, service *pipeline.Service, log logger.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		checks:  map[string]ReadinessCheck{},
		logger:  log.With(map[string]interface{}{"component": "http"}),
	}
	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s
}

// AddReadinessCheck registers a dependency probed by /ready.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(observe)
	r.Use(middleware.Recoverer)

	r.Post(s.cfg.Server.WebhookPath, s.handleWebhook)
	r.Get("/.well-known/agent.json", s.handleAgentCard)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr":    s.http.Addr,
		"webhook": s.cfg.Server.WebhookPath,
	})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	}

	status, env := s.service.Handle(r.Context(), normalizeinput.FromRequest(r))
	writeJSON(w, status, env)
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agentCard())
}

func (s *Server) agentCard() models.AgentCard {
	return models.AgentCard{
		Name:        s.cfg.Agent.Name,
		Description: s.cfg.Agent.Description,
		URL:         s.cfg.Agent.URL,
		Version:     s.cfg.App.Version,
		Capabilities: models.AgentCapabilities{
			Streaming:              false,
			PushNotifications:      false,
			StateTransitionHistory: false,
		},
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"text/plain", "application/json"},
		Skills:             s.skills(),
	}
}

// skills publishes the skill activities from the embedded registry.
func (s *Server) skills() []models.AgentSkill {
	reg, err := registry.Default()
	if err != nil {
		s.logger.Error("Activity registry unreadable", map[string]interface{}{"error": err.Error()})
		return []models.AgentSkill{}
	}

	activities := reg.ByCategory(registry.CategorySkill)
	out := make([]models.AgentSkill, 0, len(activities))
	for _, a := range activities {
		out = append(out, models.AgentSkill{
			ID:          a.ID,
			Name:        a.DisplayName,
			Description: a.Description,
			Tags:        a.Tags,
			Examples:    a.Examples,
		})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{"status": state, "checks": results})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// ids are echoed verbatim, so "<" must not become "\u003c".
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
