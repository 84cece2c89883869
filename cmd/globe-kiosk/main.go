// Package main runs the globe full-window with keyboard controls.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/kiosk"
	"github.com/Faultbox/midgard-globe/internal/logger"
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

	logger.Info("=== Midgard Globe (kiosk) ===")

	globe, err := app.Build(cfg)
	if err != nil {
		logger.Error("failed to build globe", zap.Error(err))
		os.Exit(1)
	}

	k, err := kiosk.New(globe)
	if err != nil {
		logger.Error("failed to create kiosk", zap.Error(err))
		os.Exit(1)
	}
	defer k.Close()

	if err := k.Run(); err != nil {
		logger.Error("kiosk error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("kiosk closed normally")
}
