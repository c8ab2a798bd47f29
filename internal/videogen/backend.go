package videogen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"promoclip/internal/infra"
)

// Backend renders a prompt into a video. Two implementations exist: the
// task-based provider flow (submit then poll) and the chat-relayed flow
// (one multimodal call, never pending).
//
// Both methods return a Result that is always safe to display alongside an
// optional error; callers treat the error as a warning banner, not as a
// signal to discard the result.
type Backend interface {
	Submit(ctx context.Context, prompt string, cfg VideoConfig, settings Settings) (Result, error)
	Poll(ctx context.Context, taskID string, settings Settings) (Result, error)
}

// BackendOptions configures a backend's injected dependencies.
type BackendOptions struct {
	HTTPClient *http.Client
	Logger     *infra.Logger
}

const (
	msgTextKeyMissing     = "Text API Key not configured"
	msgVideoKeyMissing    = "Video API Key not configured"
	msgEmptyPrompt        = "Failed to generate video prompt"
	msgGenericTaskFailure = "Video generation failed"
)

// taskResponse is the provider response for both submission and status
// queries. Providers disagree on where the finished video URL lives, hence
// the three candidate locations.
type taskResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output struct {
		VideoURL string `json:"video_url"`
		URL      string `json:"url"`
	} `json:"output"`
	Result struct {
		URL string `json:"url"`
	} `json:"result"`
	Error   flexibleMessage `json:"error"`
	Message string          `json:"message"`
}

// firstVideoURL walks the known response locations in priority order and
// returns the first non-empty URL. Keep this list here and nowhere else.
func (t taskResponse) firstVideoURL() string {
	for _, candidate := range []string{t.Output.VideoURL, t.Output.URL, t.Result.URL} {
		if url := strings.TrimSpace(candidate); url != "" {
			return url
		}
	}
	return ""
}

// flexibleMessage tolerates providers that report errors either as a plain
// string or as an object with a message field.
type flexibleMessage struct {
	Message string
}

func (m *flexibleMessage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Message = s
		return nil
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		m.Message = obj.Message
	}
	return nil
}

// taskErrorMessage extracts a human-readable message from a non-2xx body,
// preferring the nested error message, then a top-level message, then the
// HTTP status.
func taskErrorMessage(raw []byte, statusCode int) string {
	var decoded taskResponse
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if msg := strings.TrimSpace(decoded.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(decoded.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("API Error: %d", statusCode)
}

// stateFromTaskStatus maps a provider-reported status onto the result state.
// A reported "completed" without a discoverable URL is treated as still
// processing rather than done.
func stateFromTaskStatus(status string) State {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "processing", "running", "in_progress":
		return StateProcessing
	case "completed":
		return StateProcessing
	default:
		return StatePending
	}
}
