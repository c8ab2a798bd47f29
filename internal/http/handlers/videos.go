package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promoclip/internal/domain"
	"promoclip/internal/middleware"
	"promoclip/internal/videogen"
)

type videoRequest struct {
	ProductDescription string `json:"product_description"`
	SystemPrompt       string `json:"system_prompt"`
	Model              string `json:"model"`
	Duration           int    `json:"duration"`
	AspectRatio        string `json:"aspect_ratio"`
	UseImageReference  bool   `json:"use_image_reference"`
	ReferenceImageURL  string `json:"reference_image_url"`
	EnableSound        bool   `json:"enable_sound"`
	BrandName          string `json:"brand_name"`
	BrandURL           string `json:"brand_url"`
	TargetLanguage     string `json:"target_language"`
	VideoStyle         string `json:"video_style"`
}

// VideoGenerate runs the full workflow once. The response is always the
// displayable result; failures travel inside it rather than as a bare HTTP
// error, because even a failed run can carry the generated prompt.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.ProductDescription) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "product_description required")
		return
	}
	cfg := videogen.VideoConfig{
		Model:             req.Model,
		Duration:          req.Duration,
		AspectRatio:       req.AspectRatio,
		UseImageReference: req.UseImageReference,
		ReferenceImageURL: req.ReferenceImageURL,
		EnableSound:       req.EnableSound,
		BrandName:         req.BrandName,
		BrandURL:          req.BrandURL,
		TargetLanguage:    req.TargetLanguage,
		VideoStyle:        req.VideoStyle,
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = middleware.TargetLanguageFromContext(r.Context())
	}

	res, err := a.Session.SendVideoRequest(r.Context(), req.ProductDescription, req.SystemPrompt, cfg)
	if err != nil {
		a.Logger.Warn().Err(err).Str("model", cfg.Model).Msg("video generation degraded")
	}
	a.persistSubmission(r.Context(), cfg, res)
	a.json(w, http.StatusOK, res)
}

// VideoStatus performs one poll tick for a task and reconciles the stored
// record.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task_id required")
		return
	}

	res, err := a.Session.PollVideo(r.Context(), taskID)
	if err != nil && res.Terminal() {
		a.Logger.Warn().Err(err).Str("task_id", taskID).Msg("video task failed")
	}
	a.persistPoll(r.Context(), taskID, res)
	a.json(w, http.StatusOK, res)
}

func (a *App) persistSubmission(ctx context.Context, cfg videogen.VideoConfig, res videogen.Result) {
	if a.Repo == nil {
		return
	}
	gen := &domain.Generation{
		ID:             uuid.NewString(),
		State:          string(res.State),
		Model:          cfg.Model,
		Prompt:         res.Prompt,
		AspectRatio:    cfg.AspectRatio,
		Duration:       cfg.Duration,
		TargetLanguage: cfg.TargetLanguage,
		Backend:        a.Backend,
		TaskID:         res.TaskID,
		VideoURL:       res.VideoURL,
		Content:        res.Content,
		ErrorMessage:   res.ErrorMessage,
	}
	if err := a.Repo.Create(ctx, gen); err != nil {
		a.Logger.Error().Err(err).Msg("persist generation record")
	}
}

func (a *App) persistPoll(ctx context.Context, taskID string, res videogen.Result) {
	if a.Repo == nil {
		return
	}
	gen, err := a.Repo.GetByTaskID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.Logger.Error().Err(err).Str("task_id", taskID).Msg("load generation record")
		}
		return
	}
	if err := a.Repo.UpdateState(ctx, gen.ID, string(res.State), taskID, res.VideoURL, res.Content, res.ErrorMessage); err != nil {
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("update generation record")
	}
}
