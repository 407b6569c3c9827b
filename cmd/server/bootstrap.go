package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"chartlens/internal/analyzer"
	"chartlens/internal/analyzer/analyzerobs"
	"chartlens/internal/capture"
	"chartlens/internal/classifier"
	"chartlens/internal/classifier/classifierobs"
	"chartlens/internal/digest"
	"chartlens/internal/digest/digestobs"
	"chartlens/internal/display"
	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/orchestrator"
	"chartlens/internal/orchestrator/orchestratorobs"
	"chartlens/internal/recorder"
	"chartlens/internal/scheduler"
	"chartlens/internal/store"
	"chartlens/internal/trace"

	"github.com/joho/godotenv"
)

// historyCacheTTL bounds how stale /api/history may be between recorded cycles
const historyCacheTTL = 30 * time.Second

// initializeSystem loads .env and sets up logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeDevice picks the camera backing live capture
func initializeDevice(ctx context.Context, cfg *store.Config, rnd interfaces.RandomSource) interfaces.CameraDevice {
	switch cfg.Camera.Device {
	case store.CameraFile:
		logger.Info(ctx, "Using still image as camera", "path", cfg.Camera.FramePath)
		return capture.NewFileDevice(cfg.Camera.FramePath, capture.Limits{
			MaxBytes:  cfg.Upload.MaxBytes,
			MaxPixels: cfg.Upload.MaxPixels,
		})
	case store.CameraUnavailable:
		logger.Warn(ctx, "Camera disabled - live capture will report the device as unavailable")
		return capture.NewUnavailableDevice()
	default:
		logger.Info(ctx, "Using synthetic camera")
		return capture.NewSyntheticDevice(rnd)
	}
}

// initializeRecorder opens the SQLite audit trail, or a noop recorder when none is configured
func initializeRecorder(ctx context.Context, cfg *store.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		logger.Info(ctx, "No sqlite path configured - cycle history disabled")
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		logger.Warn(ctx, "Failed to open sqlite recorder - cycle history disabled", "error", err)
		return recorder.NewNoopRecorder()
	}
	return recorder.NewCachedRecorder(rec, historyCacheTTL)
}

// initializeOrchestrator wires capture, classifier, analyzer and board, each with observability
func initializeOrchestrator(
	ctx context.Context,
	cfg *store.Config,
	rnd interfaces.RandomSource,
	renderer interfaces.Renderer,
	sinks ...interfaces.OutcomeSink,
) (interfaces.Orchestrator, error) {
	src := capture.NewSource(initializeDevice(ctx, cfg, rnd), cfg.Upload.MaxBytes,
		capture.WithStreamDefaults(cfg.StreamDefaults()),
		capture.WithMaxResolution(cfg.Camera.MaxWidth, cfg.Camera.MaxHeight),
		capture.WithMaxPixels(cfg.Upload.MaxPixels),
	)

	cls := classifierobs.Wrap(classifier.New(rnd,
		classifier.WithLatency(classifier.Latency{Min: cfg.MinLatency(), Max: cfg.MaxLatency()}),
	))
	ana := analyzerobs.Wrap(analyzer.New(rnd))

	board := display.NewBoard(
		display.Seed(rnd, cfg.Series.SeedPoints),
		renderer,
		display.WithMaxPoints(cfg.Series.MaxPoints),
	)
	if err := board.Draw(ctx); err != nil {
		return nil, fmt.Errorf("initial chart draw: %w", err)
	}

	return orchestratorobs.Wrap(orchestrator.New(src, cls, ana, board, sinks...)), nil
}

// initializeScheduler registers the journal housekeeping task
func initializeScheduler(ctx context.Context, cfg *store.Config) (*scheduler.Scheduler, error) {
	dw := digestobs.Wrap(digest.NewSummarizer(cfg.Journal.Dir))
	s := scheduler.New(dw, cfg.Journal.Dir, cfg.Journal.RetentionDays)
	if err := s.Register(cfg.Journal.DigestCron); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Journal housekeeping scheduled", "cron", cfg.Journal.DigestCron, "retention_days", cfg.Journal.RetentionDays)
	return s, nil
}
