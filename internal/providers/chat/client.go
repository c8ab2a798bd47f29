// Package chat implements a minimal client for OpenAI-compatible
// chat-completions endpoints. It backs both the plain relay requests and the
// prompt-synthesis stage of the video workflow.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promoclip/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without
// credentials. The message is surfaced verbatim to end users.
var ErrMissingAPIKey = errors.New("API Key not configured")

// APIError carries a non-2xx upstream response. Message is empty when the
// body had no parseable error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

// Options configures the chat client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to a chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Request captures one completion call. When ImageURL is set the user message
// is sent as a multimodal content array instead of a plain string.
type Request struct {
	Model       string
	System      string
	User        string
	ImageURL    string
	Temperature float64
	WebSearch   bool
}

// Completion is the normalized result of a completion call.
type Completion struct {
	Content       string
	AttachmentURL string
}

type completionPayload struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	WebSearch   bool      `json:"web_search,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content     string `json:"content"`
			Attachments []struct {
				URL string `json:"url"`
			} `json:"attachments"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

const defaultTimeout = 60 * time.Second

// NewClient constructs a client with sane defaults and injected dependencies.
// A missing API key is not an error here: Complete reports ErrMissingAPIKey
// without touching the network, so callers can surface a friendly message.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.poe.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      strings.TrimSpace(opts.Model),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured default model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// TemperatureForEffort maps a reasoning-effort hint to a sampling
// temperature. Unknown hints fall back to the medium setting.
func TemperatureForEffort(effort string) float64 {
	switch strings.ToLower(strings.TrimSpace(effort)) {
	case "low":
		return 0.3
	case "high":
		return 1.0
	default:
		return 0.7
	}
}

// Complete issues one chat-completions call and returns the generated text.
// An empty Content with a nil error is a legal outcome; callers decide
// whether that counts as failure.
func (c *Client) Complete(ctx context.Context, req Request) (Completion, error) {
	if !c.HasCredentials() {
		return Completion{}, ErrMissingAPIKey
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	payload := completionPayload{
		Model:       model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
		WebSearch:   req.WebSearch,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("chat: encode request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("chat: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("chat: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("chat: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return Completion{}, &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(raw)}
	}

	var decoded completionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Completion{}, fmt.Errorf("chat: decode response: %w", err)
	}
	out := Completion{}
	if len(decoded.Choices) > 0 {
		out.Content = decoded.Choices[0].Message.Content
		if len(decoded.Choices[0].Message.Attachments) > 0 {
			out.AttachmentURL = strings.TrimSpace(decoded.Choices[0].Message.Attachments[0].URL)
		}
	}
	c.logger.Debug().
		Str("model", model).
		Int("content_len", len(out.Content)).
		Msg("chat: completion received")
	return out, nil
}

func buildMessages(req Request) []message {
	var msgs []message
	if req.System != "" {
		msgs = append(msgs, message{Role: "system", Content: req.System})
	}
	if req.ImageURL != "" {
		msgs = append(msgs, message{Role: "user", Content: []contentPart{
			{Type: "text", Text: req.User},
			{Type: "image_url", ImageURL: &imageURLPart{URL: req.ImageURL}},
		}})
		return msgs
	}
	return append(msgs, message{Role: "user", Content: req.User})
}

// extractErrorMessage pulls a human-readable message out of an error body,
// preferring the nested error.message field, then a top-level message.
func extractErrorMessage(raw []byte) string {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(detail.Error.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(detail.Message)
}
