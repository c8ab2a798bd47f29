// Command pollworker reconciles unfinished generation records against the
// video provider. The API never blocks on task completion; this process is
// the only place that drives pending tasks to a terminal state server-side.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"promoclip/internal/adapter/repo"
	"promoclip/internal/domain"
	"promoclip/internal/infra"
	"promoclip/internal/videogen"
)

const claimBatchSize = 20

type pollWorker struct {
	ctx      context.Context
	repo     domain.GenerationRepository
	backend  videogen.Backend
	settings videogen.Settings
	logger   infra.Logger
	interval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("pollworker: db connection failed")
	}
	defer pool.Close()

	if cfg.VideoBackend == "chat" {
		// Chat-relayed generations finish inside the submit call, so there is
		// nothing to reconcile.
		logger.Info().Msg("pollworker: chat backend has no tasks, exiting")
		return
	}

	worker := &pollWorker{
		ctx:  ctx,
		repo: repo.NewGenerationRepository(pool),
		backend: videogen.NewTaskBackend(videogen.BackendOptions{
			HTTPClient: &http.Client{Timeout: 60 * time.Second},
			Logger:     &logger,
		}),
		settings: videogen.Settings{
			VideoAPIKey:  cfg.VideoAPIKey,
			VideoBaseURL: cfg.VideoBaseURL,
		},
		logger:   logger,
		interval: cfg.PollInterval,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("pollworker: stopped with error")
	}
	logger.Info().Msg("pollworker: stopped")
}

func (w *pollWorker) Run() error {
	w.logger.Info().Dur("interval", w.interval).Msg("pollworker: started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
		w.tick()
	}
}

func (w *pollWorker) tick() {
	gens, err := w.repo.ListUnfinished(w.ctx, claimBatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("pollworker: list unfinished")
		return
	}
	for _, gen := range gens {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		w.reconcile(gen)
	}
}

// reconcile polls one task and writes back the observed state. Transient poll
// failures leave the record as-is apart from the warning message; only
// provider-reported outcomes change the state.
func (w *pollWorker) reconcile(gen domain.Generation) {
	res, err := w.backend.Poll(w.ctx, gen.TaskID, w.settings)
	if err != nil && !res.Terminal() {
		w.logger.Debug().Err(err).Str("task_id", gen.TaskID).Msg("pollworker: transient poll failure")
		return
	}
	if err := w.repo.UpdateState(w.ctx, gen.ID, string(res.State), gen.TaskID, res.VideoURL, res.Content, res.ErrorMessage); err != nil {
		w.logger.Error().Err(err).Str("task_id", gen.TaskID).Msg("pollworker: update record")
		return
	}
	if res.Terminal() {
		w.logger.Info().
			Str("task_id", gen.TaskID).
			Str("state", string(res.State)).
			Msg("pollworker: task finished")
	}
}
