// Package videogen drives the two-stage video generation workflow: prompt
// synthesis through a chat-completions model, then video rendering through
// either a task-based provider (submit and poll) or a chat-relayed video
// model. Every stage returns a displayable Result even on failure; the
// generated prompt is preserved as fallback content so the user's effort is
// never lost.
package videogen

import "encoding/json"

// State is the single lifecycle tag of a generation result. Completed always
// carries a video URL, Failed carries a message and optional fallback text;
// the other two carry a task id for further polling.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Kind is the wire-level result discriminator derived from State.
type Kind string

const (
	KindVideo   Kind = "video"
	KindText    Kind = "text"
	KindPending Kind = "pending"
)

// Result is produced once per workflow invocation or poll call and never
// mutated afterwards.
type Result struct {
	State        State
	Content      string
	VideoURL     string
	Duration     int
	Prompt       string
	TaskID       string
	Progress     int
	ErrorMessage string
}

// Kind derives the wire discriminator. Deriving instead of storing makes
// combinations like a failed video result unrepresentable.
func (r Result) Kind() Kind {
	switch r.State {
	case StateCompleted:
		return KindVideo
	case StateFailed:
		return KindText
	default:
		return KindPending
	}
}

// Terminal reports whether polling should stop.
func (r Result) Terminal() bool {
	return r.State == StateCompleted || r.State == StateFailed
}

// MarshalJSON renders the shape the extension UI consumes: a type/status
// pair plus the optional payload fields.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Status   string `json:"status"`
		Content  string `json:"content,omitempty"`
		VideoURL string `json:"video_url,omitempty"`
		Duration int    `json:"duration,omitempty"`
		Prompt   string `json:"prompt,omitempty"`
		TaskID   string `json:"task_id,omitempty"`
		Progress int    `json:"progress"`
		Error    string `json:"error,omitempty"`
	}{
		Type:     string(r.Kind()),
		Status:   string(r.State),
		Content:  r.Content,
		VideoURL: r.VideoURL,
		Duration: r.Duration,
		Prompt:   r.Prompt,
		TaskID:   r.TaskID,
		Progress: r.Progress,
		Error:    r.ErrorMessage,
	})
}

// failedResult builds the degraded-success shape: no video, but the stage-1
// prompt preserved as both content and prompt so the caller can still show it.
func failedResult(fallbackPrompt, message string) Result {
	return Result{
		State:        StateFailed,
		Content:      fallbackPrompt,
		Prompt:       fallbackPrompt,
		ErrorMessage: message,
	}
}
