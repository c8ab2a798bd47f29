package videogen

import (
	"strings"

	"promoclip/internal/catalog"
)

// RequestFields is the request body submitted to the task-based video
// provider.
type RequestFields struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	DurationSeconds int    `json:"duration_seconds"`
	AspectRatio     string `json:"aspect_ratio"`
	ImageURL        string `json:"image_url,omitempty"`
	Audio           bool   `json:"audio,omitempty"`
}

// BuildRequestFields derives the legal request body for a model. Capability
// flags are authoritative: the image-reference and audio fields appear only
// when the caller asked for them AND the model declares support. Duration is
// snapped onto the model's grid and an unsupported aspect ratio falls back to
// the model default.
func BuildRequestFields(prompt string, cfg VideoConfig, model catalog.VideoModelConfig) RequestFields {
	fields := RequestFields{
		Model:           model.APIModelID,
		Prompt:          prompt,
		DurationSeconds: model.ClampDuration(cfg.Duration),
		AspectRatio:     cfg.AspectRatio,
	}
	if !model.SupportsAspectRatio(fields.AspectRatio) {
		fields.AspectRatio = model.DefaultAspectRatio
	}
	if cfg.UseImageReference && model.SupportsImageReference {
		fields.ImageURL = strings.TrimSpace(cfg.ReferenceImageURL)
	}
	if cfg.EnableSound && model.SupportsSoundGeneration {
		fields.Audio = true
	}
	return fields
}

// referenceImageFor returns the image reference to send through the chat
// flow, or empty when the config does not request one or the model cannot
// accept one.
func referenceImageFor(cfg VideoConfig, model catalog.VideoModelConfig) string {
	if !cfg.UseImageReference || !model.SupportsImageReference {
		return ""
	}
	return strings.TrimSpace(cfg.ReferenceImageURL)
}
