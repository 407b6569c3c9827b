package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chartlens/internal/display"
	"chartlens/internal/feed"
	"chartlens/internal/journal"
	"chartlens/internal/logger"
	"chartlens/internal/randsrc"
	"chartlens/internal/server"
	"chartlens/internal/trace"

	"github.com/gin-gonic/gin"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	must(err)
	gin.SetMode(cfg.Server.Mode)

	rnd := randsrc.New(cfg.RandomSeed)

	jrn := journal.New(cfg.Journal.Dir)
	defer jrn.Close()
	rec := initializeRecorder(ctx, cfg)
	defer rec.Close()

	hub := feed.NewHub(feed.DefaultBuffer)
	chart := display.NewChartJSRenderer()
	orch, err := initializeOrchestrator(ctx, cfg, rnd, chart, jrn, rec, hub)
	must(err)

	sched, err := initializeScheduler(ctx, cfg)
	must(err)
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.SetupRouter(server.Deps{
			Orchestrator:   orch,
			Chart:          chart,
			History:        rec,
			Feed:           hub,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			CORSOrigins:    cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server starting", "addr", cfg.Server.Addr, "camera", cfg.Camera.Device)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		logger.ErrorWithErr(ctx, "Server failed", err)
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	}

	// release a camera left open by the client
	orch.StopCamera(ctx)
	// hijacked feed connections are not closed by Shutdown
	hub.Close()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Graceful shutdown failed", err)
	}
}
