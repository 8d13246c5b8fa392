package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

type studioConfig struct {
	Disclaimer *disclaimerStatus `json:"disclaimer,omitempty"`
}

type disclaimerStatus struct {
	Status string `json:"status"`
}

// DisclaimerGet reports whether the user has acknowledged the disclaimer.
// A missing or unreadable studio config reads as "unknown".
func (a *App) DisclaimerGet(w http.ResponseWriter, r *http.Request) {
	status := "unknown"
	if data, err := os.ReadFile(a.cfg.StudioConfigPath); err == nil {
		var cfg studioConfig
		if err := json.Unmarshal(data, &cfg); err == nil && cfg.Disclaimer != nil && cfg.Disclaimer.Status != "" {
			status = cfg.Disclaimer.Status
		}
	}
	a.json(w, http.StatusOK, map[string]any{"disclaimer": disclaimerStatus{Status: status}})
}

func (a *App) DisclaimerUpdate(w http.ResponseWriter, r *http.Request) {
	var req disclaimerStatus
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var cfg studioConfig
	data, err := os.ReadFile(a.cfg.StudioConfigPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			cfg = studioConfig{}
		}
	case errors.Is(err, fs.ErrNotExist):
		// First acknowledgment; start from an empty config.
	default:
		a.log.Error().Err(err).Msg("failed to read studio config")
		a.error(w, http.StatusInternalServerError, "Error reading config file")
		return
	}

	cfg.Disclaimer = &disclaimerStatus{Status: req.Status}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Error writing config file")
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.StudioConfigPath), 0o755); err != nil {
		a.log.Error().Err(err).Msg("failed to create studio config dir")
		a.error(w, http.StatusInternalServerError, "Error writing config file")
		return
	}
	if err := os.WriteFile(a.cfg.StudioConfigPath, out, 0o644); err != nil {
		a.log.Error().Err(err).Msg("failed to write studio config")
		a.error(w, http.StatusInternalServerError, "Error writing config file")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Disclaimer status updated"})
}
