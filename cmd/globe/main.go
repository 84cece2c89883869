// Globe is the desktop viewer: the globe in a resizable panel next to its
// controls.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

func main() {
	runtime.LockOSThread()

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

	logger.Info("=== Midgard Globe ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	globe, err := app.Build(cfg)
	if err != nil {
		fatal("building globe", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := NewApp(ctx, globe)
	if err != nil {
		fatal("starting viewer", err)
	}
	defer a.Close()

	a.Run()
	logger.Info("viewer closed normally")
}

// fatal logs err and shows it in a message box, since the viewer is
// usually started without a terminal.
func fatal(what string, err error) {
	logger.Error(what, zap.Error(err))
	dialog.Message("%s: %v", what, err).Title("Midgard Globe").Error()
	logger.Sync()
	os.Exit(1)
}
