package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.ReferenceWidth != 1280 || cfg.ReferenceHeight != 720 {
		t.Fatalf("expected 1280x720 reference, got %dx%d", cfg.ReferenceWidth, cfg.ReferenceHeight)
	}
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SigilThreshold = 3
	cfg.PipPresenceThreshold = 0.9
	cfg.PipMatchThreshold = 0.7
	cfg.MatchMode = "raid"
	cfg.OCRScale = 40
	cfg.ModeConfirmFrames = 0
	_ = cfg.Validate()
	if cfg.SigilThreshold != 0.70 {
		t.Fatalf("expected sigil threshold reset to 0.70, got %v", cfg.SigilThreshold)
	}
	if cfg.PipPresenceThreshold != cfg.PipMatchThreshold {
		t.Fatalf("expected presence threshold capped at match threshold, got %v", cfg.PipPresenceThreshold)
	}
	if cfg.MatchMode != "pve" {
		t.Fatalf("expected match mode pve, got %q", cfg.MatchMode)
	}
	if cfg.OCRScale != 6 {
		t.Fatalf("expected ocr scale 6, got %d", cfg.OCRScale)
	}
	if cfg.ModeConfirmFrames != 1 {
		t.Fatalf("expected confirm frames 1, got %d", cfg.ModeConfirmFrames)
	}
}

func TestSaveLoad_PreservesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.WindowTitle = "Duel"
	cfg.OCRBatch = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.WindowTitle != "Duel" || !got.OCRBatch {
		t.Fatalf("expected overrides to survive, got title=%q batch=%v", got.WindowTitle, got.OCRBatch)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.MinRatio != 0.75 {
		t.Fatalf("expected defaults alongside error")
	}
}

func TestRegion(t *testing.T) {
	c := DefaultConfig()
	if _, ok := c.Region(); ok {
		t.Fatalf("expected no region by default")
	}
	c.RegionX, c.RegionY, c.RegionW, c.RegionH = 10, 20, 300, 200
	r, ok := c.Region()
	if !ok || r.Min.X != 10 || r.Max.Y != 220 {
		t.Fatalf("expected region (10,20)-(310,220), got %v %v", r, ok)
	}
}
