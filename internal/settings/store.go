// Package settings holds the process-wide endpoint and moderation-gate
// configuration. Values are read on every request and mutated only through
// the settings API, so components always see the current state without
// caching copies of their own.
package settings

import (
	"strings"
	"sync"

	"studio/internal/domain"
	"studio/internal/infra"
)

// Endpoint is one backend family's (URL, token) pair.
type Endpoint struct {
	URL   string
	Token string
}

// GuardConfig configures the prompt moderation gate.
type GuardConfig struct {
	URL          string
	Token        string
	Model        string
	Temperature  float64
	PromptPrefix string
}

// SafetyCheckConfig configures the image safety classifier.
type SafetyCheckConfig struct {
	URL   string
	Token string
	Model string
}

// Store is the mutable runtime configuration, seeded from the environment.
type Store struct {
	mu            sync.RWMutex
	endpoints     map[domain.Model]Endpoint
	guard         GuardConfig
	guardEnabled  bool
	safety        SafetyCheckConfig
	safetyEnabled bool
}

// NewStore seeds a settings store from the boot configuration.
func NewStore(cfg *infra.Config) *Store {
	return &Store{
		endpoints: map[domain.Model]Endpoint{
			domain.ModelSDXL: {URL: cfg.SDXLEndpointURL, Token: cfg.SDXLEndpointToken},
			domain.ModelFlux: {URL: cfg.FluxEndpointURL, Token: cfg.FluxEndpointToken},
			domain.ModelWan:  {URL: cfg.WanEndpointURL, Token: cfg.WanEndpointToken},
		},
		guard: GuardConfig{
			URL:          cfg.GuardEndpointURL,
			Token:        cfg.GuardEndpointToken,
			Model:        cfg.GuardModel,
			Temperature:  cfg.GuardTemperature,
			PromptPrefix: cfg.GuardPromptPrefix,
		},
		guardEnabled: cfg.GuardEnabled,
		safety: SafetyCheckConfig{
			URL:   cfg.SafetyCheckEndpointURL,
			Token: cfg.SafetyCheckEndpointToken,
			Model: cfg.SafetyCheckModel,
		},
		safetyEnabled: cfg.SafetyCheckEnabled,
	}
}

// Resolve maps a model selector to its configured endpoint. Unknown models
// are a hard error; the URL is normalized without a trailing slash.
func (s *Store) Resolve(model domain.Model) (Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ep, ok := s.endpoints[model]
	if !ok {
		return Endpoint{}, domain.ErrInvalidModel
	}
	ep.URL = strings.TrimRight(ep.URL, "/")
	return ep, nil
}

// Endpoints returns a copy of all configured backend endpoints.
func (s *Store) Endpoints() map[domain.Model]Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Model]Endpoint, len(s.endpoints))
	for m, ep := range s.endpoints {
		out[m] = ep
	}
	return out
}

// SetEndpoint replaces one backend family's endpoint.
func (s *Store) SetEndpoint(model domain.Model, ep Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints[model] = ep
}

func (s *Store) Guard() GuardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.guard
	g.URL = strings.TrimRight(g.URL, "/")
	return g
}

func (s *Store) SetGuardEndpoint(url, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard.URL = url
	s.guard.Token = token
}

func (s *Store) GuardEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guardEnabled
}

func (s *Store) SetGuardEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guardEnabled = enabled
}

func (s *Store) SafetyCheck() SafetyCheckConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.safety
	c.URL = strings.TrimRight(c.URL, "/")
	return c
}

func (s *Store) SetSafetyCheckEndpoint(url, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safety.URL = url
	s.safety.Token = token
}

func (s *Store) SafetyCheckEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.safetyEnabled
}

func (s *Store) SetSafetyCheckEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safetyEnabled = enabled
}
