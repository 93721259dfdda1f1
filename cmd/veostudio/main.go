// Command veostudio generates a video from the command line: flags fill the
// form, status lines go to stdout and the videos are written under -out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"veostudio/internal/domain"
	"veostudio/internal/form"
	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/providers/genai"
	"veostudio/internal/storage"
	"veostudio/internal/studio"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	var (
		promptFlag   string
		imageFlag    string
		durationFlag string
		aspectFlag   string
		outFlag      string
	)
	flag.StringVar(&promptFlag, "prompt", "", "Text prompt describing the video")
	flag.StringVar(&imageFlag, "image", "", "Optional source image file")
	flag.StringVar(&durationFlag, "duration", "", "Duration in seconds (default from DEFAULT_DURATION_SECONDS)")
	flag.StringVar(&aspectFlag, "aspect-ratio", "", "Aspect ratio: 1:1, 16:9 or 9:16")
	flag.StringVar(&outFlag, "out", cfg.OutputDir, "Directory downloads are written to")
	flag.Parse()

	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "veostudio").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewFileStore(outFlag)
	if err != nil {
		logger.Error().Err(err).Msg("veostudio: output directory")
		return 1
	}
	creds := credentials.NewStore(cfg.CredentialsFile)

	client, err := genai.NewClient(genai.Options{
		APIKey:    cfg.GeminiAPIKey,
		KeySource: creds.GeminiAPIKey,
		BaseURL:   cfg.GeminiBaseURL,
		Logger:    &logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("veostudio: gemini client")
		return 1
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
		logger.Error().Err(err).Msg("veostudio: orchestrator")
		return 1
	}

	inputs := form.NewCollector(form.Options{
		DurationSeconds: cfg.DefaultDuration,
		AspectRatio:     domain.AspectRatio(cfg.DefaultAspect),
		ImageMIMEType:   cfg.SourceImageMIME,
	})
	if err := applyFlags(inputs, promptFlag, imageFlag, durationFlag, aspectFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	host := newConsoleHost(store, os.Stdout, os.Stderr)
	session := studio.NewSession(inputs, orch, host, &logger)
	if err := session.Trigger(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cancelled")
		}
		return 1
	}
	return 0
}

// applyFlags delivers each set flag as a change event, the way a form
// delivers edits.
func applyFlags(inputs *form.Collector, prompt, imagePath, duration, aspect string) error {
	inputs.SetPrompt(prompt)
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		if len(data) == 0 {
			return fmt.Errorf("read image: %s is empty", imagePath)
		}
		inputs.SetImage(data)
	}
	if strings.TrimSpace(duration) != "" {
		inputs.SetDurationText(duration)
	}
	if aspect != "" {
		inputs.SetAspectRatio(aspect)
	}
	return nil
}
