// Package main serves the globe to browsers over WebGL2 and websockets.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/server"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := app.InitLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	globe, err := app.Build(cfg)
	if err != nil {
		logger.Error("failed to build globe", zap.Error(err))
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		TickRate:      cfg.Server.TickRate,
		MaxSessions:   cfg.Server.MaxSessions,
		WriteTimeout:  cfg.Server.WriteTimeout,
		AllowedOrigin: cfg.Server.AllowedOrigin,
	}, globe)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.PublishTextures(ctx, 250*time.Millisecond)

	logger.Info("=== Midgard Globe server ===", zap.String("url", "http://"+cfg.Server.Addr+"/"))
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
