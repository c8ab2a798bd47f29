package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promoclip/internal/catalog"
	"promoclip/internal/infra"
)

// TaskBackend drives an asynchronous video provider: one POST creates a
// rendering task, repeated GETs observe it until a terminal state. The
// backend owns no timer; polling cadence belongs to the caller.
type TaskBackend struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// NewTaskBackend constructs the task-based backend with injected
// dependencies.
func NewTaskBackend(opts BackendOptions) *TaskBackend {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &TaskBackend{httpClient: httpClient, logger: logger}
}

// Submit creates a rendering task. Missing credentials and unknown models
// are terminal before any network call; upstream failures come back as a
// failed result that still carries the prompt as fallback content.
func (b *TaskBackend) Submit(ctx context.Context, prompt string, cfg VideoConfig, settings Settings) (Result, error) {
	if strings.TrimSpace(settings.VideoAPIKey) == "" {
		return failedResult(prompt, msgVideoKeyMissing), errors.New(msgVideoKeyMissing)
	}
	model, ok := catalog.Resolve(cfg.Model)
	if !ok {
		msg := fmt.Sprintf("Unsupported video model: %s", cfg.Model)
		return failedResult(prompt, msg), errors.New(msg)
	}

	fields := BuildRequestFields(prompt, cfg, model)
	body, err := json.Marshal(fields)
	if err != nil {
		msg := fmt.Sprintf("encode video request: %v", err)
		return failedResult(prompt, msg), errors.New(msg)
	}
	endpoint := strings.TrimRight(settings.VideoBaseURL, "/") + "/video/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		msg := fmt.Sprintf("build video request: %v", err)
		return failedResult(prompt, msg), errors.New(msg)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+settings.VideoAPIKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		msg := err.Error()
		return failedResult(prompt, msg), errors.New(msg)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		msg := err.Error()
		return failedResult(prompt, msg), errors.New(msg)
	}
	if resp.StatusCode >= 300 {
		msg := taskErrorMessage(raw, resp.StatusCode)
		b.logger.Warn().Int("status", resp.StatusCode).Str("model", model.APIModelID).Msg("videogen: task submission rejected")
		return failedResult(prompt, msg), errors.New(msg)
	}

	var decoded taskResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		msg := fmt.Sprintf("decode video response: %v", err)
		return failedResult(prompt, msg), errors.New(msg)
	}

	if strings.EqualFold(decoded.Status, "completed") {
		if videoURL := decoded.firstVideoURL(); videoURL != "" {
			b.logger.Info().Str("task_id", decoded.ID).Msg("videogen: task completed synchronously")
			return Result{
				State:    StateCompleted,
				VideoURL: videoURL,
				Content:  videoURL,
				Duration: fields.DurationSeconds,
				Prompt:   prompt,
				TaskID:   decoded.ID,
				Progress: 100,
			}, nil
		}
	}
	b.logger.Debug().Str("task_id", decoded.ID).Str("status", decoded.Status).Msg("videogen: task accepted, polling required")
	return Result{
		State:    stateFromTaskStatus(decoded.Status),
		Prompt:   prompt,
		TaskID:   decoded.ID,
		Progress: 0,
	}, nil
}

// Poll queries task status once. Transient fetch failures keep the task in a
// processing state together with a warning error; only a provider-reported
// failure terminates the workflow without fallback content.
func (b *TaskBackend) Poll(ctx context.Context, taskID string, settings Settings) (Result, error) {
	if strings.TrimSpace(settings.VideoAPIKey) == "" {
		res := failedResult("", msgVideoKeyMissing)
		res.TaskID = taskID
		return res, errors.New(msgVideoKeyMissing)
	}

	endpoint := strings.TrimRight(settings.VideoBaseURL, "/") + "/video/generations/" + url.PathEscape(taskID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return b.transientPollFailure(taskID, err.Error())
	}
	httpReq.Header.Set("Authorization", "Bearer "+settings.VideoAPIKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return b.transientPollFailure(taskID, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return b.transientPollFailure(taskID, err.Error())
	}
	if resp.StatusCode >= 300 {
		return b.transientPollFailure(taskID, taskErrorMessage(raw, resp.StatusCode))
	}

	var decoded taskResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return b.transientPollFailure(taskID, fmt.Sprintf("decode status response: %v", err))
	}

	status := strings.ToLower(strings.TrimSpace(decoded.Status))
	if status == "completed" {
		if videoURL := decoded.firstVideoURL(); videoURL != "" {
			return Result{
				State:    StateCompleted,
				VideoURL: videoURL,
				Content:  videoURL,
				TaskID:   taskID,
				Progress: 100,
			}, nil
		}
	}
	if status == "failed" {
		msg := strings.TrimSpace(decoded.Error.Message)
		if msg == "" {
			msg = strings.TrimSpace(decoded.Message)
		}
		if msg == "" {
			msg = msgGenericTaskFailure
		}
		b.logger.Warn().Str("task_id", taskID).Str("reason", msg).Msg("videogen: task failed")
		return Result{
			State:        StateFailed,
			TaskID:       taskID,
			ErrorMessage: msg,
		}, errors.New(msg)
	}

	progress := 10
	state := stateFromTaskStatus(decoded.Status)
	if status == "processing" {
		progress = 50
	}
	return Result{
		State:    state,
		TaskID:   taskID,
		Progress: progress,
	}, nil
}

// transientPollFailure keeps the task alive: the result says processing so an
// external scheduler keeps polling, while the error carries the warning.
func (b *TaskBackend) transientPollFailure(taskID, msg string) (Result, error) {
	b.logger.Debug().Str("task_id", taskID).Str("reason", msg).Msg("videogen: poll attempt failed, will retry")
	return Result{
		State:        StateProcessing,
		TaskID:       taskID,
		Progress:     50,
		ErrorMessage: msg,
	}, errors.New(msg)
}

var _ Backend = (*TaskBackend)(nil)
