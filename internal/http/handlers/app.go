package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/registry"
	"studio/internal/relay"
	"studio/internal/settings"
)

// GuardChecker approves or rejects a prompt before dispatch.
type GuardChecker interface {
	Check(ctx context.Context, cfg settings.GuardConfig, prompt string) (bool, error)
}

// BackendClient talks to the generation backends.
type BackendClient interface {
	Submit(ctx context.Context, ep settings.Endpoint, job domain.Job) (string, error)
	FetchVideo(ctx context.Context, ep settings.Endpoint, jobID string) (io.ReadCloser, error)
	Health(ctx context.Context, ep settings.Endpoint) error
}

type AppOptions struct {
	Config   *infra.Config
	Log      zerolog.Logger
	Settings *settings.Store
	Registry *registry.Registry
	Guard    GuardChecker
	Safety   relay.SafetyChecker
	Backend  BackendClient
	Metrics  infra.Metrics
}

// App is the handler container; every route hangs off it.
type App struct {
	cfg      *infra.Config
	log      zerolog.Logger
	settings *settings.Store
	registry *registry.Registry
	guard    GuardChecker
	safety   relay.SafetyChecker
	backend  BackendClient
	metrics  infra.Metrics
	upgrader websocket.Upgrader
}

func NewApp(opts AppOptions) *App {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = infra.NoopMetrics{}
	}
	return &App{
		cfg:      opts.Config,
		log:      opts.Log,
		settings: opts.Settings,
		registry: opts.Registry,
		guard:    opts.Guard,
		safety:   opts.Safety,
		backend:  opts.Backend,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			// The GUI is served from its own origin; cross-origin policy is
			// handled by the CORS middleware, not the upgrader.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"message": message})
}
