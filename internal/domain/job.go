package domain

// Model enumerates the supported generation backend families.
type Model string

const (
	ModelSDXL Model = "sdxl"
	ModelFlux Model = "flux"
	ModelWan  Model = "wan"
)

// ParseModel validates a client-supplied model selector. Unknown values are a
// hard error, never defaulted.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelSDXL, ModelFlux, ModelWan:
		return Model(s), nil
	}
	return "", ErrInvalidModel
}

// VideoCapable reports whether the model family produces downloadable video
// artifacts.
func (m Model) VideoCapable() bool {
	return m == ModelWan
}

// Job is the generation payload forwarded to a backend, plus the two
// moderation flags tracked while the job streams. Both flags are monotonic:
// once true they never revert for the lifetime of the record.
type Job struct {
	Prompt             string  `json:"prompt"`
	GuidanceScale      float64 `json:"guidance_scale"`
	NumInferenceSteps  int     `json:"num_inference_steps"`
	CropsCoordsTopLeft [2]int  `json:"crops_coords_top_left"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	DenoisingLimit     float64 `json:"denoising_limit"`
	NumFrames          int     `json:"num_frames,omitempty"`
	FPS                int     `json:"fps,omitempty"`
	PastThreshold      bool    `json:"past_threshold"`
	ImageFailedCheck   bool    `json:"image_failed_check"`
}
