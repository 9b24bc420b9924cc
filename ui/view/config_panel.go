package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/duel-vision-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges()
}

type field struct {
	id, label string
	get       func(c *config.Config) string
	set       func(c *config.Config, s string)
}

func floatField(id, label string, p func(c *config.Config) *float64) field {
	return field{id: id, label: label,
		get: func(c *config.Config) string { return fmt.Sprintf("%.3f", *p(c)) },
		set: func(c *config.Config, s string) {
			if f, ok := parseFloatField(s); ok {
				*p(c) = f
			}
		}}
}

func intField(id, label string, p func(c *config.Config) *int) field {
	return field{id: id, label: label,
		get: func(c *config.Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *config.Config, s string) {
			if i, ok := parseIntField(s); ok {
				*p(c) = i
			}
		}}
}

func boolField(id, label string, p func(c *config.Config) *bool) field {
	return field{id: id, label: label,
		get: func(c *config.Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *config.Config, s string) {
			if b, ok := parseBoolLoose(s); ok {
				*p(c) = b
			}
		}}
}

func stringField(id, label string, p func(c *config.Config) *string) field {
	return field{id: id, label: label,
		get: func(c *config.Config) string { return *p(c) },
		set: func(c *config.Config, s string) {
			if s != "" {
				*p(c) = s
			}
		}}
}

var fields = []field{
	stringField("windowTitle", "Window Title", func(c *config.Config) *string { return &c.WindowTitle }),
	intField("analysisIntervalMs", "Analysis Interval Ms", func(c *config.Config) *int { return &c.AnalysisIntervalMs }),
	floatField("buttonThreshold", "Button Threshold", func(c *config.Config) *float64 { return &c.ButtonThreshold }),
	floatField("sigilThreshold", "Sigil Threshold", func(c *config.Config) *float64 { return &c.SigilThreshold }),
	floatField("schoolThreshold", "School Threshold", func(c *config.Config) *float64 { return &c.SchoolThreshold }),
	floatField("pipPresence", "Pip Presence Threshold", func(c *config.Config) *float64 { return &c.PipPresenceThreshold }),
	floatField("pipMatch", "Pip Match Threshold", func(c *config.Config) *float64 { return &c.PipMatchThreshold }),
	floatField("handThreshold", "Hand Threshold", func(c *config.Config) *float64 { return &c.HandThreshold }),
	stringField("matchMode", "Match Mode (pve/pvp)", func(c *config.Config) *string { return &c.MatchMode }),
	boolField("lockNames", "Lock Resolved Names (true/false)", func(c *config.Config) *bool { return &c.LockResolvedNames }),
	boolField("healthForcedOnly", "Health On Entry Only (true/false)", func(c *config.Config) *bool { return &c.HealthForcedOnly }),
	boolField("ocrBatch", "Batch OCR (true/false)", func(c *config.Config) *bool { return &c.OCRBatch }),
	boolField("dumpEnabled", "Dump Crops (true/false)", func(c *config.Config) *bool { return &c.DumpEnabled }),
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	for _, f := range fields {
		lbl := Label(Txt(f.label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", f.get(v.cfg))
		v.widgets[f.id] = w
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

// ApplyChanges parses every field into a copy of the config, validates it and
// persists it. Fields that fail to parse keep their previous value.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg
	for _, f := range fields {
		if w := v.widgets[f.id]; w != nil {
			f.set(&cfg, v.text(w))
		}
	}
	if err := cfg.Validate(); err != nil {
		if v.logger != nil {
			v.logger.Warn("ui.config.invalid", "error", err)
		}
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("ui.config.save", "error", err)
		}
		return
	}
	if v.logger != nil {
		v.logger.Info("ui.config.saved", "path", v.cfgPath)
	}
}

func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
