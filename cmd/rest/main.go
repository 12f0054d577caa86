package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"language-mirror-be/internal/bootstrap"
	"language-mirror-be/internal/config"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	zapLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer zapLogger.Sync()

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	container, err := bootstrap.NewContainer(cfg, zapLogger, nil)
	if err != nil {
		zapLogger.Error("main", "failed to build application container", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Stats.Start(context.Background()); err != nil {
		zapLogger.Error("main", "failed to start stats consumer", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := container.Sweeper.Start(); err != nil {
		zapLogger.Error("main", "failed to start expiry sweeper", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	color.Cyan("Language Mirror backend")
	color.Green("Backend: %s | Port: %s | Env: %s", cfg.App.Backend, cfg.App.Port, cfg.App.Environment)

	go func() {
		if err := container.Server.Start(); err != nil {
			zapLogger.Error("main", "http server stopped", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("main", "shutting down", nil)
	_ = container.Server.Shutdown()
}
