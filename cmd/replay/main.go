// Command replay runs the perception pipeline over saved screenshots and
// prints one JSON snapshot per frame.
//
//	replay -config config.json shots/ extra.png
//
// Directories are expanded to their .png files in name order. Frames are
// spaced by the configured analysis interval so staleness timers behave as
// they would live.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/capture"
	"github.com/soocke/duel-vision-go/domain/pipeline"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the JSON configuration file")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	verbose := flag.Bool("v", false, "log pipeline decisions to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*cfgPath, flag.Args(), *pretty, logger); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, args []string, pretty bool, logger *slog.Logger) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config.load", "path", cfgPath, "error", err)
	}
	files, err := collect(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no png files given")
	}

	pipe, err := pipeline.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer pipe.Close()

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	start := time.Now()
	for i, path := range files {
		img, err := imaging.Open(path)
		if err != nil {
			logger.Error("replay.open", "path", path, "error", err)
			continue
		}
		frame := capture.Normalize(img, cfg.ReferenceWidth, cfg.ReferenceHeight, cfg.AllowUpscale)
		now := start.Add(time.Duration(i) * cfg.AnalysisInterval())
		snap := pipe.Analyzer.Process(frame, uint64(i+1), now)
		if err := enc.Encode(struct {
			File     string `json:"file"`
			Snapshot any    `json:"snapshot"`
		}{path, snap}); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return nil
}

// collect expands directories to their png files and keeps explicit files.
func collect(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		var dir []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
				dir = append(dir, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(dir)
		out = append(out, dir...)
	}
	return out, nil
}
