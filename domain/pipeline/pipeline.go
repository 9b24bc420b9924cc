// Package pipeline assembles the perception components from configuration.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/debug"
	"github.com/soocke/duel-vision-go/domain/battle"
	"github.com/soocke/duel-vision-go/domain/names"
	"github.com/soocke/duel-vision-go/domain/ocr"
	"github.com/soocke/duel-vision-go/domain/participants"
	"github.com/soocke/duel-vision-go/domain/vision"
)

// Pipeline is the perception stack without any UI.
type Pipeline struct {
	Banks      *vision.BankCache
	Classifier *vision.Classifier
	Recognizer *ocr.Recognizer
	Resolver   *names.Resolver
	Dumper     *debug.Dumper
	Extractor  *participants.Extractor
	Analyzer   *battle.Analyzer
}

// Build loads nothing eagerly except the OCR backend, whose absence
// is reported here as ocr.ErrBackendUnavailable.
func Build(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	p := &Pipeline{}
	p.Banks = vision.NewBankCache(cfg.AssetsDir, logger)
	p.Classifier = vision.NewClassifier(p.Banks, vision.Options{
		Stride:      cfg.Stride,
		Refine:      cfg.Refine,
		StopOnScore: cfg.StopOnScore,
	}, logger)

	backend, err := ocr.NewTesseract(cfg.OCRLanguage, cfg.TessdataPrefix)
	if err != nil {
		return nil, fmt.Errorf("text recognizer: %w", err)
	}
	if logger != nil {
		logger.Info("ocr.ready", "version", backend.Version(), "language", cfg.OCRLanguage)
	}
	p.Recognizer = ocr.NewRecognizer(backend, ocr.Config{
		Scale:           cfg.OCRScale,
		NameWhitelist:   cfg.NameWhitelist,
		NameBlacklist:   cfg.NameBlacklist,
		HealthWhitelist: cfg.HealthWhitelist,
		DigitsWhitelist: cfg.DigitsWhitelist,
	}, logger)

	store := names.NewStore(map[names.Kind]string{
		names.Wizard:  cfg.WizardsPath,
		names.Monster: cfg.MonstersPath,
		names.Minion:  cfg.MinionsPath,
	}, logger)
	p.Resolver, err = names.NewResolver(store, names.Options{
		MaxDistance:            cfg.MaxDistance,
		MinRatio:               cfg.MinRatio,
		PrefixMinRatio:         cfg.PrefixMinRatio,
		PrefixMinChars:         cfg.PrefixMinChars,
		MaxConfusionCandidates: cfg.MaxConfusionCandidates,
		CacheSize:              cfg.ResolveCacheSize,
	}, logger)
	if err != nil {
		_ = p.Recognizer.Close()
		return nil, fmt.Errorf("name resolver: %w", err)
	}

	// Interfaces stay nil unless dumps are on, so a nil *Dumper never leaks in.
	var dumper participants.Dumper
	var clearer battle.Clearer
	if cfg.DumpEnabled {
		p.Dumper = debug.NewDumper(cfg.DumpDir, cfg.DumpLimit, logger)
		dumper, clearer = p.Dumper, p.Dumper
	}
	p.Extractor = participants.NewExtractor(cfg, p.Classifier, p.Recognizer, p.Resolver, dumper, logger)
	p.Analyzer = battle.NewAnalyzer(cfg, p.Classifier, p.Recognizer, p.Extractor, clearer, logger)
	return p, nil
}

// Close releases the OCR backend.
func (p *Pipeline) Close() error {
	if p == nil || p.Recognizer == nil {
		return nil
	}
	return p.Recognizer.Close()
}
