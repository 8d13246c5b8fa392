package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"studio/internal/domain"
)

// promptRejectedMessage is fixed on purpose: the client never learns which
// moderation rule matched.
const promptRejectedMessage = "Your query appears to contain inappropriate content. Please rephrase and try again"

type generateRequest struct {
	Prompt             string  `json:"prompt"`
	GuidanceScale      float64 `json:"guidance_scale"`
	NumInferenceSteps  int     `json:"num_inference_steps"`
	CropsCoordsTopLeft [2]int  `json:"crops_coords_top_left"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	Model              string  `json:"model"`
	DenoisingLimit     float64 `json:"denoising_limit"`
	NumFrames          int     `json:"num_frames"`
	FPS                int     `json:"fps"`
}

type generateResponse struct {
	JobID string `json:"job_id"`
	Model string `json:"model"`
}

// Generate validates the request, runs the prompt guard when enabled, and
// dispatches the job to the resolved backend. Gate configuration is checked
// up front, including the safety check only used later by the relay, so a
// client never starts a job it cannot safely stream.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	model, err := domain.ParseModel(req.Model)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid model")
		return
	}
	endpoint, err := a.settings.Resolve(model)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid model")
		return
	}

	job := domain.Job{
		Prompt:             req.Prompt,
		GuidanceScale:      req.GuidanceScale,
		NumInferenceSteps:  req.NumInferenceSteps,
		CropsCoordsTopLeft: req.CropsCoordsTopLeft,
		Width:              req.Width,
		Height:             req.Height,
		DenoisingLimit:     req.DenoisingLimit,
	}
	// Frame count and fps only apply to the video-capable family.
	if model == domain.ModelWan {
		job.NumFrames = req.NumFrames
		job.FPS = req.FPS
	}

	guardCfg := a.settings.Guard()
	if a.settings.GuardEnabled() && (guardCfg.URL == "" || guardCfg.Token == "") {
		a.error(w, http.StatusForbidden, "Guardrails not configured correctly")
		return
	}
	safetyCfg := a.settings.SafetyCheck()
	if a.settings.SafetyCheckEnabled() && (safetyCfg.URL == "" || safetyCfg.Token == "") {
		a.error(w, http.StatusForbidden, "Safety checker not configured correctly")
		return
	}

	if a.settings.GuardEnabled() {
		rejected, err := a.guard.Check(r.Context(), guardCfg, job.Prompt)
		if err != nil {
			a.log.Error().Err(err).Msg("guard check failed")
			a.error(w, http.StatusInternalServerError, "Failed to submit generation job")
			return
		}
		if rejected {
			a.metrics.IncPromptsRejected()
			a.error(w, http.StatusForbidden, promptRejectedMessage)
			return
		}
	}

	jobID, err := a.backend.Submit(r.Context(), endpoint, job)
	if err != nil {
		a.log.Error().Err(err).Str("model", string(model)).Msg("job submission failed")
		if errors.Is(err, domain.ErrDispatchFailed) {
			a.error(w, http.StatusInternalServerError, "No job_id returned from generation endpoint.")
			return
		}
		a.error(w, http.StatusInternalServerError, "Failed to submit generation job")
		return
	}

	a.registry.Create(jobID, model, job)
	a.metrics.IncJobsSubmitted(string(model))
	a.log.Info().Str("job_id", jobID).Str("model", string(model)).Msg("job dispatched")
	a.json(w, http.StatusOK, generateResponse{JobID: jobID, Model: string(model)})
}
