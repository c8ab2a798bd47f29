package videogen

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"promoclip/internal/infra"
)

// Workflow composes the prompt generator with a video backend. One Run per
// user action; the two stages are strictly sequential because stage two
// consumes stage one's text.
type Workflow struct {
	prompts *PromptGenerator
	backend Backend
	logger  *infra.Logger
}

// WorkflowOptions configures a workflow.
type WorkflowOptions struct {
	Backend    Backend
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// NewWorkflow constructs a workflow around the given backend. A nil backend
// defaults to the task-based flow.
func NewWorkflow(opts WorkflowOptions) *Workflow {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	backend := opts.Backend
	if backend == nil {
		backend = NewTaskBackend(BackendOptions{HTTPClient: opts.HTTPClient, Logger: logger})
	}
	return &Workflow{
		prompts: NewPromptGenerator(PromptGeneratorOptions{HTTPClient: opts.HTTPClient, Logger: logger}),
		backend: backend,
		logger:  logger,
	}
}

// Backend exposes the workflow's backend so callers can poll tasks through
// the same implementation that submitted them.
func (w *Workflow) Backend() Backend {
	return w.backend
}

// Run executes prompt synthesis and video submission. A failed first stage
// returns immediately without touching the video provider. Whatever the
// backend reports, the returned result always carries the stage-1 prompt so
// the caller can recover it even on total failure of stage two.
func (w *Workflow) Run(ctx context.Context, productDescription, videoSystemPrompt string, cfg VideoConfig, settings Settings) (Result, error) {
	prompt, err := w.prompts.Generate(ctx, productDescription, videoSystemPrompt, cfg, settings)
	if err != nil {
		w.logger.Warn().Err(err).Msg("videogen: prompt stage failed, skipping submission")
		return Result{State: StateFailed, ErrorMessage: err.Error()}, err
	}

	res, err := w.backend.Submit(ctx, prompt, cfg, settings)
	res.Prompt = prompt
	if res.State == StateFailed && res.Content == "" {
		res.Content = prompt
	}
	return res, err
}
