package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

// Video streams a finished video artifact from the backend to the client
// unmodified. Only the video-capable family serves assets.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	model, err := domain.ParseModel(r.URL.Query().Get("model"))
	if err != nil || !model.VideoCapable() {
		a.error(w, http.StatusBadRequest, "Invalid model for video download")
		return
	}
	endpoint, err := a.settings.Resolve(model)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid model for video download")
		return
	}

	body, err := a.backend.FetchVideo(r.Context(), endpoint, jobID)
	if err != nil {
		a.log.Error().Err(err).Str("job_id", jobID).Msg("video fetch failed")
		a.error(w, http.StatusInternalServerError, "Error fetching video")
		return
	}
	defer func() {
		_ = body.Close()
	}()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=video_%s.mp4", jobID))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		a.log.Error().Err(err).Str("job_id", jobID).Msg("video stream interrupted")
	}
}
