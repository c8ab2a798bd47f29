package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"promoclip/internal/providers/chat"
	"promoclip/internal/videogen"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	}
}

func testSettings() videogen.Settings {
	return videogen.Settings{
		APIKey:       "text-key",
		BaseURL:      "https://text.example/v1",
		Model:        "GPT-5.1",
		VideoAPIKey:  "video-key",
		VideoBaseURL: "https://video.example/v1",
	}
}

func newSession(transport roundTripFunc) *Session {
	httpClient := &http.Client{Transport: transport}
	settings := testSettings()
	return New(Options{
		Workflow: videogen.NewWorkflow(videogen.WorkflowOptions{HTTPClient: httpClient}),
		ChatClient: chat.NewClient(chat.Options{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			HTTPClient: httpClient,
		}),
		Settings: settings,
	})
}

func TestSendPromptStoresAnswer(t *testing.T) {
	t.Parallel()
	sess := newSession(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, chatCompletion("Summary of the page.")), nil
	})
	content, err := sess.SendPrompt(context.Background(), RelayRequest{Content: "page text"})
	if err != nil {
		t.Fatalf("SendPrompt returned error: %v", err)
	}
	if content != "Summary of the page." {
		t.Fatalf("content = %q", content)
	}
	snap := sess.Snapshot()
	if snap.Loading || snap.Error != "" || snap.Content != "Summary of the page." {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSendPromptMissingKey(t *testing.T) {
	t.Parallel()
	sess := New(Options{
		ChatClient: chat.NewClient(chat.Options{}),
		Settings:   testSettings(),
	})
	_, err := sess.SendPrompt(context.Background(), RelayRequest{Content: "x"})
	if err == nil || err.Error() != "API Key not configured" {
		t.Fatalf("err = %v", err)
	}
	snap := sess.Snapshot()
	if snap.Error != "API Key not configured" || snap.Content != "" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSendVideoRequestKeepsFallbackResultOnError(t *testing.T) {
	t.Parallel()
	sess := newSession(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Host {
		case "text.example":
			return jsonResponse(http.StatusOK, chatCompletion("the generated prompt")), nil
		case "video.example":
			return jsonResponse(http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "capacity exhausted"},
			}), nil
		default:
			return nil, errors.New("unexpected host")
		}
	})
	res, err := sess.SendVideoRequest(context.Background(), "desc", "", videogen.VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	})
	if err == nil {
		t.Fatal("expected workflow error")
	}
	if res.Content != "the generated prompt" {
		t.Fatalf("res = %+v", res)
	}
	snap := sess.Snapshot()
	if snap.Error != "capacity exhausted" {
		t.Fatalf("snapshot error = %q", snap.Error)
	}
	if snap.VideoResult == nil || snap.VideoResult.Content != "the generated prompt" {
		t.Fatalf("fallback result not retained: %+v", snap.VideoResult)
	}
}

func TestSendVideoRequestDropsEmptyFailure(t *testing.T) {
	t.Parallel()
	sess := newSession(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		}), nil
	})
	_, err := sess.SendVideoRequest(context.Background(), "desc", "", videogen.VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	})
	if err == nil {
		t.Fatal("expected prompt-stage error")
	}
	snap := sess.Snapshot()
	if snap.VideoResult != nil {
		t.Fatalf("no fallback content, result must be dropped: %+v", snap.VideoResult)
	}
	if snap.Error == "" {
		t.Fatal("error must be recorded")
	}
}

func TestClearResult(t *testing.T) {
	t.Parallel()
	sess := newSession(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, chatCompletion("answer")), nil
	})
	if _, err := sess.SendPrompt(context.Background(), RelayRequest{Content: "x"}); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	sess.ObserveResult(videogen.Result{State: videogen.StateCompleted, VideoURL: "https://x/v.mp4"})
	sess.ClearResult()
	snap := sess.Snapshot()
	if snap.Content != "" || snap.VideoResult != nil || snap.Error != "" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestNewRequestClearsPreviousState(t *testing.T) {
	t.Parallel()
	fail := true
	sess := newSession(func(r *http.Request) (*http.Response, error) {
		if fail {
			return jsonResponse(http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "boom"},
			}), nil
		}
		return jsonResponse(http.StatusOK, chatCompletion("fresh answer")), nil
	})
	if _, err := sess.SendPrompt(context.Background(), RelayRequest{Content: "x"}); err == nil {
		t.Fatal("expected first call to fail")
	}
	fail = false
	if _, err := sess.SendPrompt(context.Background(), RelayRequest{Content: "x"}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Error != "" {
		t.Fatalf("stale error survived: %q", snap.Error)
	}
	if snap.Content != "fresh answer" {
		t.Fatalf("content = %q", snap.Content)
	}
}
