package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"studio/internal/domain"
	"studio/internal/relay"
)

// Progress upgrades the client connection and bridges it to the backend's
// progress channel for one job. Model validation happens after the upgrade so
// the error reaches the client as a structured frame, matching the contract
// of the persistent channel.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	client, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Error().Err(err).Str("job_id", jobID).Msg("websocket upgrade failed")
		return
	}

	model, err := domain.ParseModel(r.URL.Query().Get("model"))
	if err != nil {
		_ = client.WriteJSON(map[string]string{"error": "Invalid model"})
		_ = client.Close()
		return
	}
	endpoint, err := a.settings.Resolve(model)
	if err != nil {
		_ = client.WriteJSON(map[string]string{"error": "Invalid model"})
		_ = client.Close()
		return
	}

	upstreamURL := relay.UpstreamURL(endpoint, jobID)
	a.log.Info().Str("job_id", jobID).Str("model", string(model)).Msg("opening upstream progress channel")
	upstream, resp, err := websocket.DefaultDialer.DialContext(r.Context(), upstreamURL, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		a.log.Error().Err(err).Str("job_id", jobID).Msg("upstream dial failed")
		_ = client.WriteJSON(map[string]string{"error": "Error receiving job updates."})
		_ = client.Close()
		return
	}

	rl := relay.New(relay.Options{
		JobID:    jobID,
		Model:    model,
		Settings: a.settings,
		Registry: a.registry,
		Safety:   a.safety,
		Metrics:  a.metrics,
		Log:      a.log,
	})
	rl.Run(r.Context(), client, upstream)
}
