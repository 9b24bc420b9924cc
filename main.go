package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/duel-vision-go/app"
	"github.com/soocke/duel-vision-go/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the JSON configuration file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime diagnostics")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	level := slog.LevelInfo
	if *debugFlag {
		cfg.Debug = true
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		// Load falls back to defaults; keep running on them.
		logger.Warn("config.load", "path", *cfgPath, "error", err)
	}

	application, err := app.NewApp("Duel Vision", 1100, 820, cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("app.init", "error", err)
		os.Exit(1)
	}
	application.Start()
}
