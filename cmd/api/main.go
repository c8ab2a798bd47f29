package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"promoclip/internal/adapter/repo"
	"promoclip/internal/http/handlers"
	"promoclip/internal/http/httpapi"
	"promoclip/internal/infra"
	"promoclip/internal/infra/geoip"
	"promoclip/internal/middleware"
	"promoclip/internal/providers/chat"
	"promoclip/internal/session"
	"promoclip/internal/videogen"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	if resolver != nil {
		defer resolver.Close()
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	settings := videogen.Settings{
		APIKey:       cfg.TextAPIKey,
		BaseURL:      cfg.TextBaseURL,
		Model:        cfg.TextModel,
		VideoAPIKey:  cfg.VideoAPIKey,
		VideoBaseURL: cfg.VideoBaseURL,
	}
	httpClient := &http.Client{Timeout: 120 * time.Second}
	var backend videogen.Backend
	if cfg.VideoBackend == "chat" {
		backend = videogen.NewChatBackend(videogen.BackendOptions{HTTPClient: httpClient, Logger: &logger})
	}
	workflow := videogen.NewWorkflow(videogen.WorkflowOptions{
		Backend:    backend,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	sess := session.New(session.Options{
		Workflow: workflow,
		ChatClient: chat.NewClient(chat.Options{
			APIKey:     cfg.TextAPIKey,
			BaseURL:    cfg.TextBaseURL,
			Model:      cfg.TextModel,
			HTTPClient: httpClient,
			Logger:     &logger,
		}),
		Settings: settings,
		Logger:   &logger,
	})

	app := handlers.NewApp(&logger, sess, repo.NewGenerationRepository(dbpool), cfg.VideoBackend)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
