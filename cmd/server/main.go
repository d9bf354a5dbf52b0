package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alkime/practicum/internal/audio"
	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/config"
	"github.com/alkime/practicum/internal/feedback"
	"github.com/alkime/practicum/internal/logger"
	"github.com/alkime/practicum/internal/registry"
	"github.com/alkime/practicum/internal/server"
	"github.com/alkime/practicum/internal/workflow"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	lg := logger.SetupLogger(cfg)

	// Log startup information
	lg.Info("Starting Practicum server",
		"env", cfg.Env,
		"port", cfg.Port,
		"sample_rate", cfg.SampleRate,
		"feedback_delay", cfg.FeedbackDelay,
	)

	if err := run(cfg, lg); err != nil {
		lg.Error("Server exited with error", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	gen, err := feedback.NewCanned(cat, cfg.FeedbackDelay, lg)
	if err != nil {
		return fmt.Errorf("failed to create feedback generator: %w", err)
	}

	mic, err := audio.NewMicrophone(audio.DefaultDeviceConfig(cfg.SampleRate))
	if err != nil {
		return fmt.Errorf("failed to configure microphone: %w", err)
	}

	enc, err := audio.NewMP3Encoder(audio.EncoderConfig{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.CaptureChannels,
	}.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	reg := registry.New(cfg.SessionTTL, cfg.SessionSweep, lg)

	srv, err := server.New(cfg, lg, server.Deps{
		Catalog:  cat,
		Registry: reg,
		Feedback: gen,
		NewRecorder: func() (workflow.Recorder, error) {
			session, err := capture.NewSession(mic, enc, capture.Options{
				SampleRate: cfg.SampleRate,
				MaxBytes:   cfg.MaxRecordingBytes,
				Logger:     lg,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create capture session: %w", err)
			}
			return session, nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	g.Go(func() error {
		reportInstances(ctx, reg, cfg.SessionSweep, lg)
		return nil
	})

	return g.Wait()
}

// reportInstances logs the number of live phase instances every interval.
func reportInstances(ctx context.Context, reg *registry.Registry, interval time.Duration, lg *slog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lg.Debug("live phase instances", "count", reg.Len())
		}
	}
}
