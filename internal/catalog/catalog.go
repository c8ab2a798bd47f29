// Package catalog is the static registry of supported video generation
// models. It is the single source of truth for request-shape legality: a
// request may only carry an image reference or an audio flag when the
// resolved entry declares the capability.
package catalog

import "strings"

// VideoModelConfig describes one supported video model and its capabilities.
type VideoModelConfig struct {
	Name                    string
	DisplayName             string
	MinDuration             int
	MaxDuration             int
	DurationStep            int
	AspectRatios            []string
	DefaultAspectRatio      string
	SupportsImageReference  bool
	SupportsSoundGeneration bool
	Description             string
	// APIModelID is the identifier sent to the task-based provider.
	APIModelID string
	// ChatModelID is the identifier used when the model is invoked through a
	// chat-completions endpoint instead of the task API.
	ChatModelID string
}

// Models lists every model the service can drive. Entries for the task flow
// come first, followed by models only reachable through the chat flow.
var Models = []VideoModelConfig{
	{
		Name:                    "wan-ai/wan2.1-t2v-14b",
		DisplayName:             "Wan 2.1 Text-to-Video",
		MinDuration:             3,
		MaxDuration:             9,
		DurationStep:            1,
		AspectRatios:            []string{"16:9", "9:16", "1:1"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  false,
		SupportsSoundGeneration: false,
		Description:             "High-quality text-to-video generation",
		APIModelID:              "wan-ai/wan2.1-t2v-14b",
		ChatModelID:             "Veo-3",
	},
	{
		Name:                    "wan-ai/wan2.1-i2v-14b-720p",
		DisplayName:             "Wan 2.1 Image-to-Video",
		MinDuration:             3,
		MaxDuration:             9,
		DurationStep:            1,
		AspectRatios:            []string{"16:9", "9:16", "1:1"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: false,
		Description:             "Convert images to animated video",
		APIModelID:              "wan-ai/wan2.1-i2v-14b-720p",
		ChatModelID:             "Veo-3",
	},
	{
		Name:                    "Luma/ray2",
		DisplayName:             "Luma Ray 2",
		MinDuration:             5,
		MaxDuration:             9,
		DurationStep:            4,
		AspectRatios:            []string{"16:9", "9:16", "1:1", "4:3", "3:4", "21:9", "9:21"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: true,
		Description:             "Luma's Ray 2 with audio generation",
		APIModelID:              "Luma/ray2",
		ChatModelID:             "Veo-3",
	},
	{
		Name:                    "Veo-3.1",
		DisplayName:             "Google Veo 3.1",
		MinDuration:             4,
		MaxDuration:             8,
		DurationStep:            2,
		AspectRatios:            []string{"16:9", "9:16"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: true,
		Description:             "Veo 3.1 via chat-completions relay",
		APIModelID:              "Veo-3",
		ChatModelID:             "Veo-3",
	},
	{
		Name:                    "Sora-2",
		DisplayName:             "OpenAI Sora 2",
		MinDuration:             4,
		MaxDuration:             12,
		DurationStep:            4,
		AspectRatios:            []string{"16:9", "9:16", "1:1"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: true,
		Description:             "Sora 2 via chat-completions relay",
		APIModelID:              "Sora-2",
		ChatModelID:             "Sora-2",
	},
	{
		Name:                    "Kling-2.0",
		DisplayName:             "Kling 2.0",
		MinDuration:             5,
		MaxDuration:             10,
		DurationStep:            5,
		AspectRatios:            []string{"16:9", "9:16", "1:1"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: false,
		Description:             "Kling 2.0 via chat-completions relay",
		APIModelID:              "Kling-2",
		ChatModelID:             "Kling-2",
	},
	{
		Name:                    "Runway-Gen3",
		DisplayName:             "Runway Gen-3 Alpha",
		MinDuration:             5,
		MaxDuration:             10,
		DurationStep:            5,
		AspectRatios:            []string{"16:9", "9:16"},
		DefaultAspectRatio:      "16:9",
		SupportsImageReference:  true,
		SupportsSoundGeneration: false,
		Description:             "Runway Gen-3 Alpha via chat-completions relay",
		APIModelID:              "Runway-Gen3-Alpha",
		ChatModelID:             "Runway-Gen3-Alpha",
	},
}

// Resolve finds the catalog entry for a model name. Names are matched
// case-sensitively first, then case-insensitively as a convenience for
// hand-edited configs.
func Resolve(name string) (VideoModelConfig, bool) {
	for _, m := range Models {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range Models {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return VideoModelConfig{}, false
}

// ValidDuration reports whether d lands on the model's duration grid.
func (m VideoModelConfig) ValidDuration(d int) bool {
	if d < m.MinDuration || d > m.MaxDuration {
		return false
	}
	if m.DurationStep <= 1 {
		return true
	}
	return (d-m.MinDuration)%m.DurationStep == 0
}

// SupportsAspectRatio reports whether the model accepts the given ratio.
func (m VideoModelConfig) SupportsAspectRatio(ratio string) bool {
	for _, r := range m.AspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// ClampDuration snaps d into the model's valid range, rounding down to the
// nearest step.
func (m VideoModelConfig) ClampDuration(d int) int {
	if d < m.MinDuration {
		return m.MinDuration
	}
	if d > m.MaxDuration {
		d = m.MaxDuration
	}
	if m.DurationStep > 1 {
		d = m.MinDuration + ((d-m.MinDuration)/m.DurationStep)*m.DurationStep
	}
	return d
}
