package videogen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promoclip/internal/catalog"
	"promoclip/internal/infra"
	"promoclip/internal/providers/chat"
)

// videoURLPattern recognizes a direct video link inside generated text.
var videoURLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+\.(?:mp4|webm|mov|avi)`)

// ChatBackend renders video through a chat-completions relay that fronts
// multimodal video models. The provider answers within the request, so this
// backend never produces a pending result and has nothing to poll.
type ChatBackend struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// NewChatBackend constructs the chat-relayed backend.
func NewChatBackend(opts BackendOptions) *ChatBackend {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &ChatBackend{httpClient: httpClient, logger: logger}
}

// Submit issues one multimodal completion against the video model. The
// finished video URL is recovered from the first attachment when present,
// otherwise from a direct link in the message text; anything else degrades
// to a text result carrying the prompt.
func (b *ChatBackend) Submit(ctx context.Context, prompt string, cfg VideoConfig, settings Settings) (Result, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return failedResult(prompt, chat.ErrMissingAPIKey.Error()), chat.ErrMissingAPIKey
	}
	model, ok := catalog.Resolve(cfg.Model)
	if !ok {
		msg := fmt.Sprintf("Unsupported video model: %s", cfg.Model)
		return failedResult(prompt, msg), errors.New(msg)
	}

	client := chat.NewClient(chat.Options{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		HTTPClient: b.httpClient,
		Logger:     b.logger,
	})
	out, err := client.Complete(ctx, chat.Request{
		Model:    model.ChatModelID,
		User:     prompt,
		ImageURL: referenceImageFor(cfg, model),
	})
	if err != nil {
		msg := fmt.Sprintf("Video generation failed: %s. Showing generated prompt instead.", upstreamDetail(err))
		b.logger.Warn().Str("model", model.ChatModelID).Str("reason", msg).Msg("videogen: chat video call failed")
		return failedResult(prompt, msg), errors.New(msg)
	}

	content := strings.TrimSpace(out.Content)
	videoURL := out.AttachmentURL
	if videoURL == "" {
		videoURL = videoURLPattern.FindString(content)
	}
	if videoURL != "" {
		b.logger.Info().Str("model", model.ChatModelID).Msg("videogen: chat video completed")
		return Result{
			State:    StateCompleted,
			VideoURL: videoURL,
			Content:  content,
			Duration: model.ClampDuration(cfg.Duration),
			Prompt:   prompt,
			Progress: 100,
		}, nil
	}

	// No video URL anywhere: degraded success, show whatever the model said
	// or fall back to the prompt itself.
	if content == "" {
		content = prompt
	}
	return Result{
		State:   StateFailed,
		Content: content,
		Prompt:  prompt,
	}, nil
}

// Poll is unsupported: the chat flow completes within Submit, so there is no
// task to observe.
func (b *ChatBackend) Poll(ctx context.Context, taskID string, settings Settings) (Result, error) {
	msg := fmt.Sprintf("no such task: %s", taskID)
	res := failedResult("", msg)
	res.TaskID = taskID
	return res, errors.New(msg)
}

// upstreamDetail mirrors the relay's error wording: the upstream message
// when one exists, the bare status code otherwise.
func upstreamDetail(err error) string {
	var apiErr *chat.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return strconv.Itoa(apiErr.StatusCode)
	}
	return err.Error()
}

var _ Backend = (*ChatBackend)(nil)
