package config

import (
	"encoding/json"
	"image"
	"os"
	"time"
)

// Config holds runtime configuration for capture, perception and debug output.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Capture and frame normalization
	WindowTitle        string `json:"window_title"`
	RegionX            int    `json:"region_x"`
	RegionY            int    `json:"region_y"`
	RegionW            int    `json:"region_w"`
	RegionH            int    `json:"region_h"`
	ReferenceWidth     int    `json:"reference_width"`
	ReferenceHeight    int    `json:"reference_height"`
	AllowUpscale       bool   `json:"allow_upscale"`
	AnalysisIntervalMs int    `json:"analysis_interval_ms"`
	StopTimeoutMs      int    `json:"stop_timeout_ms"`

	// Template banks
	AssetsDir   string  `json:"assets_dir"`
	Stride      int     `json:"stride"`
	Refine      bool    `json:"refine"`
	StopOnScore float64 `json:"stop_on_score"`

	// Acceptance thresholds per classifier domain
	ButtonThreshold      float64 `json:"button_threshold"`
	SigilThreshold       float64 `json:"sigil_threshold"`
	SchoolThreshold      float64 `json:"school_threshold"`
	PipPresenceThreshold float64 `json:"pip_presence_threshold"`
	PipMatchThreshold    float64 `json:"pip_match_threshold"`
	HandThreshold        float64 `json:"hand_threshold"`
	HandMaxDistPx        float64 `json:"hand_max_dist_px"`
	InitiativeMinScore   float64 `json:"initiative_min_score"`
	InitiativeMinDelta   float64 `json:"initiative_min_delta"`

	// Staleness and locking
	SigilRecheckMs    int  `json:"sigil_recheck_ms"`
	PipRefreshMs      int  `json:"pip_refresh_ms"`
	LockResolvedNames bool `json:"lock_resolved_names"`
	NameLockStreak    int  `json:"name_lock_streak"`
	HealthForcedOnly  bool `json:"health_forced_only"`
	PlayerLockStreak  int  `json:"player_lock_streak"`
	ModeConfirmFrames int  `json:"mode_confirm_frames"`

	// Text recognition
	OCRLanguage     string `json:"ocr_language"`
	OCRScale        int    `json:"ocr_scale"`
	OCRBatch        bool   `json:"ocr_batch"`
	NameWhitelist   string `json:"name_whitelist"`
	NameBlacklist   string `json:"name_blacklist"`
	HealthWhitelist string `json:"health_whitelist"`
	DigitsWhitelist string `json:"digits_whitelist"`
	TessdataPrefix  string `json:"tessdata_prefix"`

	// Name dictionaries and fuzzy matching
	MatchMode              string  `json:"match_mode"` // "pve" or "pvp"
	WizardsPath            string  `json:"wizards_path"`
	MonstersPath           string  `json:"monsters_path"`
	MinionsPath            string  `json:"minions_path"`
	MaxDistance            int     `json:"max_distance"`
	MinRatio               float64 `json:"min_ratio"`
	PrefixMinRatio         float64 `json:"prefix_min_ratio"`
	PrefixMinChars         int     `json:"prefix_min_chars"`
	MaxConfusionCandidates int     `json:"max_confusion_candidates"`
	ResolveCacheSize       int     `json:"resolve_cache_size"`

	// Debug dumps
	DumpEnabled bool   `json:"dump_enabled"`
	DumpDir     string `json:"dump_dir"`
	DumpLimit   int    `json:"dump_limit"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		WindowTitle:        "Wizard101",
		ReferenceWidth:     1280,
		ReferenceHeight:    720,
		AllowUpscale:       true,
		AnalysisIntervalMs: 50,
		StopTimeoutMs:      1000,

		AssetsDir:   "assets",
		Stride:      1,
		Refine:      true,
		StopOnScore: 0.98,

		ButtonThreshold:      0.78,
		SigilThreshold:       0.70,
		SchoolThreshold:      0.70,
		PipPresenceThreshold: 0.45,
		PipMatchThreshold:    0.70,
		HandThreshold:        0.72,
		HandMaxDistPx:        90,
		InitiativeMinScore:   0.05,
		InitiativeMinDelta:   0.02,

		SigilRecheckMs:    500,
		PipRefreshMs:      1000,
		LockResolvedNames: true,
		NameLockStreak:    2,
		HealthForcedOnly:  false,
		PlayerLockStreak:  3,
		ModeConfirmFrames: 2,

		OCRLanguage:     "eng",
		OCRScale:        3,
		OCRBatch:        false,
		NameWhitelist:   "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz '-",
		NameBlacklist:   "0123456789$/\\|_",
		HealthWhitelist: "0123456789/,",
		DigitsWhitelist: "0123456789",

		MatchMode:              "pve",
		WizardsPath:            "assets/ocr/wizards.txt",
		MonstersPath:           "assets/ocr/monsters.txt",
		MinionsPath:            "assets/ocr/minions.txt",
		MaxDistance:            2,
		MinRatio:               0.75,
		PrefixMinRatio:         0.6,
		PrefixMinChars:         4,
		MaxConfusionCandidates: 64,
		ResolveCacheSize:       512,

		DumpEnabled: false,
		DumpDir:     "debug/ocr",
		DumpLimit:   200,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.ReferenceWidth <= 0 || c.ReferenceHeight <= 0 {
		c.ReferenceWidth, c.ReferenceHeight = d.ReferenceWidth, d.ReferenceHeight
	}
	if c.AnalysisIntervalMs <= 0 {
		c.AnalysisIntervalMs = d.AnalysisIntervalMs
	}
	if c.StopTimeoutMs <= 0 {
		c.StopTimeoutMs = d.StopTimeoutMs
	}
	if c.Stride <= 0 {
		c.Stride = 1
	}
	if c.StopOnScore < 0 || c.StopOnScore > 1 {
		c.StopOnScore = d.StopOnScore
	}
	clampUnit(&c.ButtonThreshold, d.ButtonThreshold)
	clampUnit(&c.SigilThreshold, d.SigilThreshold)
	clampUnit(&c.SchoolThreshold, d.SchoolThreshold)
	clampUnit(&c.PipPresenceThreshold, d.PipPresenceThreshold)
	clampUnit(&c.PipMatchThreshold, d.PipMatchThreshold)
	clampUnit(&c.HandThreshold, d.HandThreshold)
	if c.PipPresenceThreshold > c.PipMatchThreshold {
		c.PipPresenceThreshold = c.PipMatchThreshold
	}
	if c.HandMaxDistPx < 0 {
		c.HandMaxDistPx = d.HandMaxDistPx
	}
	if c.InitiativeMinScore < 0 || c.InitiativeMinScore > 1 {
		c.InitiativeMinScore = d.InitiativeMinScore
	}
	if c.InitiativeMinDelta < 0 || c.InitiativeMinDelta > 1 {
		c.InitiativeMinDelta = d.InitiativeMinDelta
	}
	if c.SigilRecheckMs < 0 {
		c.SigilRecheckMs = d.SigilRecheckMs
	}
	if c.PipRefreshMs < 0 {
		c.PipRefreshMs = d.PipRefreshMs
	}
	if c.NameLockStreak <= 0 {
		c.NameLockStreak = 1
	}
	if c.PlayerLockStreak <= 0 {
		c.PlayerLockStreak = 1
	}
	if c.ModeConfirmFrames <= 0 {
		c.ModeConfirmFrames = 1
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = d.OCRLanguage
	}
	if c.OCRScale <= 0 {
		c.OCRScale = 1
	} else if c.OCRScale > 6 {
		c.OCRScale = 6
	}
	if c.MatchMode != "pve" && c.MatchMode != "pvp" {
		c.MatchMode = d.MatchMode
	}
	if c.MaxDistance < 0 {
		c.MaxDistance = d.MaxDistance
	}
	clampUnit(&c.MinRatio, d.MinRatio)
	clampUnit(&c.PrefixMinRatio, d.PrefixMinRatio)
	if c.PrefixMinChars <= 0 {
		c.PrefixMinChars = d.PrefixMinChars
	}
	if c.MaxConfusionCandidates <= 0 {
		c.MaxConfusionCandidates = d.MaxConfusionCandidates
	}
	if c.ResolveCacheSize <= 0 {
		c.ResolveCacheSize = d.ResolveCacheSize
	}
	if c.DumpDir == "" {
		c.DumpDir = d.DumpDir
	}
	if c.DumpLimit < 0 {
		c.DumpLimit = 0
	}
	return nil
}

func clampUnit(v *float64, def float64) {
	if *v <= 0 || *v > 1 {
		*v = def
	}
}

// AnalysisInterval is the polling period of the analysis consumer.
func (c *Config) AnalysisInterval() time.Duration {
	return time.Duration(c.AnalysisIntervalMs) * time.Millisecond
}

// StopTimeout bounds how long Stop waits for background loops to exit.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMs) * time.Millisecond
}

// SigilRecheck is the occupancy re-verification cadence.
func (c *Config) SigilRecheck() time.Duration {
	return time.Duration(c.SigilRecheckMs) * time.Millisecond
}

// PipRefresh is the pip inventory refresh timer.
func (c *Config) PipRefresh() time.Duration {
	return time.Duration(c.PipRefreshMs) * time.Millisecond
}

// Region returns the manual capture region, if one is set.
func (c *Config) Region() (image.Rectangle, bool) {
	if c.RegionW <= 0 || c.RegionH <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(c.RegionX, c.RegionY, c.RegionX+c.RegionW, c.RegionY+c.RegionH), true
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
