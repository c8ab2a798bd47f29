// Package session holds the per-client presentation state behind the
// extension popup: what is loading, the last error, the last answer, and the
// last video result. Handlers mutate it through the two send operations so a
// reloaded popup can re-fetch exactly what it was looking at.
package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"promoclip/internal/infra"
	"promoclip/internal/providers/chat"
	"promoclip/internal/videogen"
)

// RelayRequest is one plain content-to-AI call.
type RelayRequest struct {
	System    string
	Content   string
	ImageURL  string
	Effort    string
	WebSearch bool
}

// Snapshot is the immutable view handed to the presentation layer.
type Snapshot struct {
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	Content     string           `json:"content,omitempty"`
	VideoResult *videogen.Result `json:"video_result,omitempty"`
}

// Options configures a session.
type Options struct {
	Workflow   *videogen.Workflow
	ChatClient *chat.Client
	Settings   videogen.Settings
	Logger     *infra.Logger
}

// Session serializes the two send operations and retains their outcome.
type Session struct {
	mu          sync.Mutex
	workflow    *videogen.Workflow
	chatClient  *chat.Client
	settings    videogen.Settings
	logger      *infra.Logger
	loading     bool
	errMsg      string
	content     string
	videoResult *videogen.Result
}

// New constructs a session around the shared workflow and chat client.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Session{
		workflow:   opts.Workflow,
		chatClient: opts.ChatClient,
		settings:   opts.Settings,
		logger:     logger,
	}
}

// SendPrompt relays page content to the chat model and records the answer.
// The previous result is cleared up front so the UI never shows a stale
// answer next to a new error.
func (s *Session) SendPrompt(ctx context.Context, req RelayRequest) (string, error) {
	s.begin()

	out, err := s.chatClient.Complete(ctx, chat.Request{
		System:      req.System,
		User:        req.Content,
		ImageURL:    req.ImageURL,
		Temperature: chat.TemperatureForEffort(req.Effort),
		WebSearch:   req.WebSearch,
	})
	content := strings.TrimSpace(out.Content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		return "", err
	}
	s.content = content
	return content, nil
}

// SendVideoRequest runs the full video workflow. A failed run still records
// the result when it carries fallback content, so the generated prompt
// survives a rendering failure.
func (s *Session) SendVideoRequest(ctx context.Context, productDescription, videoSystemPrompt string, cfg videogen.VideoConfig) (videogen.Result, error) {
	s.begin()

	res, err := s.workflow.Run(ctx, productDescription, videoSystemPrompt, cfg, s.settings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		if res.Content != "" || res.VideoURL != "" {
			s.videoResult = &res
		}
		return res, err
	}
	s.videoResult = &res
	return res, nil
}

// PollVideo performs one poll tick through the workflow's backend and
// records whatever state was observed. Transient failures surface as the
// error while the stored result keeps the task alive.
func (s *Session) PollVideo(ctx context.Context, taskID string) (videogen.Result, error) {
	res, err := s.workflow.Backend().Poll(ctx, taskID, s.settings)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoResult = &res
	if err != nil {
		s.errMsg = err.Error()
	}
	return res, err
}

// ObserveResult overwrites the stored video result, used when an external
// poll advances a pending task.
func (s *Session) ObserveResult(res videogen.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoResult = &res
}

// ClearResult drops the stored answer, video result and error.
func (s *Session) ClearResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = ""
	s.videoResult = nil
	s.errMsg = ""
}

// Snapshot returns the current presentation state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Loading: s.loading,
		Error:   s.errMsg,
		Content: s.content,
	}
	if s.videoResult != nil {
		res := *s.videoResult
		snap.VideoResult = &res
	}
	return snap
}

func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
	s.content = ""
	s.videoResult = nil
}
