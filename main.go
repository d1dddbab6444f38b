package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohitgusain8671/VoiceNote/app"
	"github.com/mohitgusain8671/VoiceNote/config"
	"github.com/mohitgusain8671/VoiceNote/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.Setup(cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewRouter(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to start", zap.Error(err))
	}
	defer a.Close(context.Background())

	if cfg.Sweep {
		n, err := a.Deps.Maintenance.SweepOrphans(ctx)
		if err != nil {
			log.Fatal("Orphan sweep failed", zap.Error(err))
		}

		log.Info("Orphan sweep finished", zap.Int("deleted", n))
		return
	}

	if err := a.StartJobs(); err != nil {
		log.Fatal("Failed to schedule maintenance jobs", zap.Error(err))
	}

	if err := a.Serve(ctx); err != nil {
		log.Error("Server stopped", zap.Error(err))
		return
	}

	log.Info("Server stopped")
}
