package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestTaskSubmitMissingAPIKey(t *testing.T) {
	t.Parallel()
	called := false
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unreachable")
		}),
	}})
	settings := testSettings()
	settings.VideoAPIKey = ""
	res, err := backend.Submit(context.Background(), "a prompt", VideoConfig{Model: "Luma/ray2"}, settings)
	if err == nil || err.Error() != "Video API Key not configured" {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatal("no network call expected without credentials")
	}
	if res.State != StateFailed || res.Content != "a prompt" || res.Prompt != "a prompt" {
		t.Fatalf("res = %+v", res)
	}
}

func TestTaskSubmitUnknownModelNoNetwork(t *testing.T) {
	t.Parallel()
	called := false
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unreachable")
		}),
	}})
	res, err := backend.Submit(context.Background(), "a prompt", VideoConfig{Model: "not/a-model"}, testSettings())
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if called {
		t.Fatal("catalog rejection must happen before any network call")
	}
	if res.State != StateFailed || res.Kind() != KindText {
		t.Fatalf("res = %+v", res)
	}
	if res.Content != "a prompt" {
		t.Fatalf("fallback content = %q", res.Content)
	}
}

func TestTaskSubmitUpstreamRejection(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "capacity exhausted"},
			}), nil
		}),
	}})
	res, err := backend.Submit(context.Background(), "A red sports car on a highway", VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	}, testSettings())
	if err == nil || err.Error() != "capacity exhausted" {
		t.Fatalf("err = %v", err)
	}
	if res.State != StateFailed {
		t.Fatalf("state = %s", res.State)
	}
	if res.Prompt != "A red sports car on a highway" || res.Content != "A red sports car on a highway" {
		t.Fatalf("fallback not preserved: %+v", res)
	}
}

func TestTaskSubmitRejectionFallsBackToStatusCode(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return textResponse(http.StatusBadGateway, "<html>oops</html>"), nil
		}),
	}})
	_, err := backend.Submit(context.Background(), "p", VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	}, testSettings())
	if err == nil || err.Error() != "API Error: 502" {
		t.Fatalf("err = %v", err)
	}
}

func TestTaskSubmitSynchronousCompletion(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/video/generations" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer video-key" {
				t.Errorf("authorization = %q", auth)
			}
			return jsonResponse(http.StatusOK, map[string]any{
				"id":     "task-1",
				"status": "completed",
				"output": map[string]any{"video_url": "https://x/video.mp4"},
			}), nil
		}),
	}})
	res, err := backend.Submit(context.Background(), "p", VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	}, testSettings())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.State != StateCompleted || res.Kind() != KindVideo {
		t.Fatalf("res = %+v", res)
	}
	if res.VideoURL != "https://x/video.mp4" {
		t.Fatalf("video url = %q", res.VideoURL)
	}
	if res.Progress != 100 || res.TaskID != "task-1" || res.Duration != 5 {
		t.Fatalf("res = %+v", res)
	}
}

func TestTaskSubmitPendingTask(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"id": "task-2", "status": "queued"}), nil
		}),
	}})
	res, err := backend.Submit(context.Background(), "p", VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	}, testSettings())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.State != StatePending || res.Kind() != KindPending {
		t.Fatalf("res = %+v", res)
	}
	if res.TaskID != "task-2" || res.Progress != 0 {
		t.Fatalf("res = %+v", res)
	}
}

func TestTaskSubmitCompletedWithoutURLKeepsPolling(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"id": "task-3", "status": "completed"}), nil
		}),
	}})
	res, err := backend.Submit(context.Background(), "p", VideoConfig{
		Model: "wan-ai/wan2.1-t2v-14b", Duration: 5, AspectRatio: "16:9",
	}, testSettings())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.Kind() != KindPending {
		t.Fatalf("completed without a URL must stay pollable, got %+v", res)
	}
	if res.TaskID != "task-3" {
		t.Fatalf("task id = %q", res.TaskID)
	}
}

func TestVideoURLLocationPriority(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "primary_wins",
			payload: `{"output":{"video_url":"https://a/1.mp4","url":"https://a/2.mp4"},"result":{"url":"https://a/3.mp4"}}`,
			want:    "https://a/1.mp4",
		},
		{
			name:    "alternate_output",
			payload: `{"output":{"url":"https://a/2.mp4"},"result":{"url":"https://a/3.mp4"}}`,
			want:    "https://a/2.mp4",
		},
		{
			name:    "alternate_result",
			payload: `{"result":{"url":"https://a/3.mp4"}}`,
			want:    "https://a/3.mp4",
		},
		{
			name:    "none",
			payload: `{"output":{}}`,
			want:    "",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var decoded taskResponse
			if err := json.Unmarshal([]byte(tc.payload), &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := decoded.firstVideoURL(); got != tc.want {
				t.Fatalf("firstVideoURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPollMissingAPIKey(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{})
	settings := testSettings()
	settings.VideoAPIKey = ""
	res, err := backend.Poll(context.Background(), "task-1", settings)
	if err == nil || err.Error() != "Video API Key not configured" {
		t.Fatalf("err = %v", err)
	}
	if res.State != StateFailed || res.TaskID != "task-1" {
		t.Fatalf("res = %+v", res)
	}
}

func TestPollProcessing(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodGet || r.URL.Path != "/v1/video/generations/task-9" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			return jsonResponse(http.StatusOK, map[string]any{"id": "task-9", "status": "processing"}), nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "task-9", testSettings())
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if res.State != StateProcessing || res.Progress != 50 {
		t.Fatalf("res = %+v", res)
	}
	if res.TaskID != "task-9" {
		t.Fatalf("task id = %q", res.TaskID)
	}
}

func TestPollQueuedUsesLowProgress(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"id": "t", "status": "queued"}), nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "t", testSettings())
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if res.State != StatePending || res.Progress != 10 {
		t.Fatalf("res = %+v", res)
	}
}

func TestPollCompleted(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{
				"id":     "t",
				"status": "completed",
				"result": map[string]any{"url": "https://x/final.mp4"},
			}), nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "t", testSettings())
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if res.State != StateCompleted || res.VideoURL != "https://x/final.mp4" || res.Progress != 100 {
		t.Fatalf("res = %+v", res)
	}
}

func TestPollProviderFailureTerminates(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{
				"id":     "t",
				"status": "failed",
				"error":  "content policy violation",
			}), nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "t", testSettings())
	if err == nil || err.Error() != "content policy violation" {
		t.Fatalf("err = %v", err)
	}
	if res.State != StateFailed || res.Kind() != KindText {
		t.Fatalf("res = %+v", res)
	}
	if res.ErrorMessage != "content policy violation" {
		t.Fatalf("error message = %q", res.ErrorMessage)
	}
	if !res.Terminal() {
		t.Fatal("failed poll result must be terminal")
	}
}

func TestPollProviderFailureObjectError(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{
				"id":     "t",
				"status": "failed",
				"error":  map[string]any{"message": "nsfw filter"},
			}), nil
		}),
	}})
	_, err := backend.Poll(context.Background(), "t", testSettings())
	if err == nil || err.Error() != "nsfw filter" {
		t.Fatalf("err = %v", err)
	}
}

func TestPollProviderFailureGenericFallback(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"id": "t", "status": "failed"}), nil
		}),
	}})
	_, err := backend.Poll(context.Background(), "t", testSettings())
	if err == nil || err.Error() != "Video generation failed" {
		t.Fatalf("err = %v", err)
	}
}

func TestPollTransientFetchFailureKeepsGoing(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return textResponse(http.StatusServiceUnavailable, "try later"), nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "t", testSettings())
	if err == nil {
		t.Fatal("expected warning error on transient failure")
	}
	if res.State != StateProcessing {
		t.Fatalf("transient failure must keep polling, state = %s", res.State)
	}
	if res.Terminal() {
		t.Fatal("transient failure must not be terminal")
	}
	if res.TaskID != "t" {
		t.Fatalf("task id = %q", res.TaskID)
	}
}

func TestPollIdempotentForUnchangedStatus(t *testing.T) {
	t.Parallel()
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"id": "t", "status": "processing"}), nil
	})
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{Transport: transport}})
	first, err1 := backend.Poll(context.Background(), "t", testSettings())
	second, err2 := backend.Poll(context.Background(), "t", testSettings())
	if err1 != nil || err2 != nil {
		t.Fatalf("poll errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Fatalf("polls diverged: %+v vs %+v", first, second)
	}
}

func TestPollReadBodyFailure(t *testing.T) {
	t.Parallel()
	backend := NewTaskBackend(BackendOptions{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(errReader{}),
			}, nil
		}),
	}})
	res, err := backend.Poll(context.Background(), "t", testSettings())
	if err == nil {
		t.Fatal("expected error")
	}
	if res.State != StateProcessing {
		t.Fatalf("state = %s", res.State)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }
