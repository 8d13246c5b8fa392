package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/domain"
	"studio/internal/settings"
)

// endpointSettings mirrors the wire shape the GUI settings panel uses.
type endpointSettings struct {
	EndpointURL       string `json:"endpointUrl"`
	EndpointToken     string `json:"endpointToken"`
	FluxEndpointURL   string `json:"fluxEndpointUrl"`
	FluxEndpointToken string `json:"fluxEndpointToken"`
	WanEndpointURL    string `json:"wanEndpointUrl"`
	WanEndpointToken  string `json:"wanEndpointToken"`
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	eps := a.settings.Endpoints()
	out := endpointSettings{
		EndpointURL:       eps[domain.ModelSDXL].URL,
		EndpointToken:     eps[domain.ModelSDXL].Token,
		FluxEndpointURL:   eps[domain.ModelFlux].URL,
		FluxEndpointToken: eps[domain.ModelFlux].Token,
		WanEndpointURL:    eps[domain.ModelWan].URL,
		WanEndpointToken:  eps[domain.ModelWan].Token,
	}
	a.json(w, http.StatusOK, map[string]any{"settings": out})
}

func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req endpointSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	a.settings.SetEndpoint(domain.ModelSDXL, settings.Endpoint{URL: req.EndpointURL, Token: req.EndpointToken})
	a.settings.SetEndpoint(domain.ModelFlux, settings.Endpoint{URL: req.FluxEndpointURL, Token: req.FluxEndpointToken})
	a.settings.SetEndpoint(domain.ModelWan, settings.Endpoint{URL: req.WanEndpointURL, Token: req.WanEndpointToken})
	a.log.Info().Msg("endpoint settings updated")
	a.json(w, http.StatusOK, map[string]string{"message": "Settings updated successfully!"})
}

// SettingsTest probes the health endpoint of each backend named in the
// request body. Families left blank are skipped.
func (a *App) SettingsTest(w http.ResponseWriter, r *http.Request) {
	var req endpointSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	candidates := []settings.Endpoint{
		{URL: req.EndpointURL, Token: req.EndpointToken},
		{URL: req.FluxEndpointURL, Token: req.FluxEndpointToken},
		{URL: req.WanEndpointURL, Token: req.WanEndpointToken},
	}
	for _, ep := range candidates {
		if ep.URL == "" {
			continue
		}
		if err := a.backend.Health(r.Context(), ep); err != nil {
			a.log.Error().Err(err).Str("url", ep.URL).Msg("endpoint connection test failed")
			a.error(w, http.StatusInternalServerError, "Connection failed")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Connection successful"})
}

type gateSettings struct {
	Enabled       bool   `json:"enabled"`
	Model         string `json:"model,omitempty"`
	EndpointURL   string `json:"endpointUrl"`
	EndpointToken string `json:"endpointToken,omitempty"`
}

func (a *App) GuardSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg := a.settings.Guard()
	a.json(w, http.StatusOK, gateSettings{
		Enabled:     a.settings.GuardEnabled(),
		Model:       cfg.Model,
		EndpointURL: cfg.URL,
	})
}

func (a *App) GuardSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req gateSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	a.settings.SetGuardEnabled(req.Enabled)
	if req.EndpointURL != "" || req.EndpointToken != "" {
		a.settings.SetGuardEndpoint(req.EndpointURL, req.EndpointToken)
	}
	a.log.Info().Bool("enabled", req.Enabled).Msg("guard settings updated")
	a.json(w, http.StatusOK, map[string]string{"message": "Settings updated successfully!"})
}

func (a *App) SafetyCheckSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg := a.settings.SafetyCheck()
	a.json(w, http.StatusOK, gateSettings{
		Enabled:     a.settings.SafetyCheckEnabled(),
		Model:       cfg.Model,
		EndpointURL: cfg.URL,
	})
}

func (a *App) SafetyCheckSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req gateSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	a.settings.SetSafetyCheckEnabled(req.Enabled)
	if req.EndpointURL != "" || req.EndpointToken != "" {
		a.settings.SetSafetyCheckEndpoint(req.EndpointURL, req.EndpointToken)
	}
	a.log.Info().Bool("enabled", req.Enabled).Msg("safety check settings updated")
	a.json(w, http.StatusOK, map[string]string{"message": "Settings updated successfully!"})
}
