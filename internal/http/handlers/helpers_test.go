package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/registry"
	"studio/internal/settings"
)

type fakeGuard struct {
	mu       sync.Mutex
	rejected bool
	err      error
	prompts  []string
}

func (f *fakeGuard) Check(ctx context.Context, cfg settings.GuardConfig, prompt string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.rejected, f.err
}

type fakeSafety struct{}

func (fakeSafety) Classify(ctx context.Context, cfg settings.SafetyCheckConfig, image string) (bool, error) {
	return false, nil
}

type fakeBackend struct {
	mu        sync.Mutex
	jobID     string
	submitErr error
	submitted []domain.Job
	video     []byte
	videoErr  error
	healthErr error
	healthed  []string
}

func (f *fakeBackend) Submit(ctx context.Context, ep settings.Endpoint, job domain.Job) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, job)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.jobID, nil
}

func (f *fakeBackend) FetchVideo(ctx context.Context, ep settings.Endpoint, jobID string) (io.ReadCloser, error) {
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return io.NopCloser(bytes.NewReader(f.video)), nil
}

func (f *fakeBackend) Health(ctx context.Context, ep settings.Endpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthed = append(f.healthed, ep.URL)
	return f.healthErr
}

func (f *fakeBackend) submittedJobs() []domain.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Job(nil), f.submitted...)
}

func baseConfig() *infra.Config {
	return &infra.Config{
		AppEnv:                   "test",
		SDXLEndpointURL:          "http://sdxl.example.com",
		SDXLEndpointToken:        "sdxl-tok",
		FluxEndpointURL:          "http://flux.example.com",
		FluxEndpointToken:        "flux-tok",
		WanEndpointURL:           "http://wan.example.com",
		WanEndpointToken:         "wan-tok",
		GuardEndpointURL:         "http://guard.example.com",
		GuardEndpointToken:       "guard-tok",
		GuardModel:               "granite3-guardian-2b",
		GuardTemperature:         0.7,
		GuardPromptPrefix:        "Draw a picture of",
		SafetyCheckEndpointURL:   "http://safety.example.com",
		SafetyCheckEndpointToken: "safety-tok",
		SafetyCheckModel:         "safety-checker",
		JobRegistryMaxEntries:    64,
	}
}

type testApp struct {
	app      *App
	cfg      *infra.Config
	store    *settings.Store
	registry *registry.Registry
	guard    *fakeGuard
	backend  *fakeBackend
}

func newTestApp(t *testing.T, cfg *infra.Config) *testApp {
	t.Helper()
	store := settings.NewStore(cfg)
	reg := registry.New(cfg.JobRegistryMaxEntries)
	g := &fakeGuard{}
	b := &fakeBackend{jobID: "12345"}
	app := NewApp(AppOptions{
		Config:   cfg,
		Log:      zerolog.Nop(),
		Settings: store,
		Registry: reg,
		Guard:    g,
		Safety:   fakeSafety{},
		Backend:  b,
	})
	return &testApp{app: app, cfg: cfg, store: store, registry: reg, guard: g, backend: b}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
