// Command studio-web serves the generation form on a local port.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"veostudio/internal/domain"
	"veostudio/internal/form"
	httpapi "veostudio/internal/http"
	"veostudio/internal/http/handlers"
	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/providers/genai"
	"veostudio/internal/storage"
	"veostudio/internal/studio"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("studio-web: output directory")
	}
	creds := credentials.NewStore(cfg.CredentialsFile)

	client, err := genai.NewClient(genai.Options{
		APIKey:    cfg.GeminiAPIKey,
		KeySource: creds.GeminiAPIKey,
		BaseURL:   cfg.GeminiBaseURL,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("studio-web: gemini client")
	}
	orch, err := studio.NewOrchestrator(studio.Options{
		Service:         client,
		Model:           cfg.GeminiModel,
		NumberOfVideos:  cfg.NumberOfVideos,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
		Timeout:         cfg.GenerationTimeout,
		Logger:          &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("studio-web: orchestrator")
	}

	inputs := form.NewCollector(form.Options{
		DurationSeconds: cfg.DefaultDuration,
		AspectRatio:     domain.AspectRatio(cfg.DefaultAspect),
		ImageMIMEType:   cfg.SourceImageMIME,
	})
	host := handlers.NewWebHost(store)
	session := studio.NewSession(inputs, orch, host, &logger)

	genCtx, cancelGenerations := context.WithCancel(context.Background())
	defer cancelGenerations()

	app, err := handlers.NewApp(genCtx, handlers.AppOptions{
		Inputs:      inputs,
		Session:     session,
		Host:        host,
		Store:       store,
		Credentials: creds,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("studio-web: app")
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
		TrustProxy:      cfg.TrustProxyHeaders,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("output_dir", store.BasePath()).Msg("studio-web: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("studio-web: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("studio-web: shutdown")
	}
	cancelGenerations()
	app.Wait()
	logger.Info().Msg("studio-web: stopped")
}
