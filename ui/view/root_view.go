package view

import (
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/screen"
	"github.com/soocke/duel-vision-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions wired by the application.
type Handlers struct {
	ToggleCapture func()
	Region        func()
	ClearDumps    func()
	ToggleTheme   func()
	Exit          func()
	Inspect       func(id combat.SlotID, ok bool)
	WindowChanged func(title string)
}

// RootView composes the top-level layout. It owns the subviews and exposes
// the methods presenters update.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	Stats       BattleStats
	ConfigPanel ConfigPanel
	CapturePrev CapturePreview

	StateLabel  *TLabelWidget
	WindowLabel *LabelWidget
	Summary     *TextWidget
	Slots       *TextWidget
	Inspect     *TComboboxWidget
	WindowSel   *TComboboxWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// inspectChoices lists "none" followed by every slot in position order.
func inspectChoices() []string {
	out := []string{"none"}
	for pos := 0; pos < combat.SlotCount; pos++ {
		out = append(out, combat.SlotAt(pos).String())
	}
	return out
}

// Build constructs the layout. titles feeds the game window selector.
func (rv *RootView) Build(titles []string, h Handlers) {
	if rv == nil {
		return
	}
	rv.Stats = NewBattleStats(0, 0)
	rv.StateLabel = TLabel(Txt("Mode: loading"), Style(theme.ModeStyle(screen.Loading)))
	Grid(rv.StateLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		cmd   func()
		style string
	}{
		{"Toggle Capture", h.ToggleCapture, theme.StylePrimaryButton},
		{"Capture Region", h.Region, ""},
		{"Clear Dumps", h.ClearDumps, ""},
		{"Dark/Light", h.ToggleTheme, ""},
		{"Exit", h.Exit, theme.StyleDangerButton},
	}
	for i, b := range buttons {
		if b.cmd == nil {
			continue
		}
		opts := []Opt{Txt(b.text), Command(b.cmd)}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(TButton(opts...), In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	choices := inspectChoices()
	rv.Inspect = TCombobox(Values(choices), Width(12))
	Grid(rv.Inspect, In(btnFrame), Row(len(buttons)), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.Inspect.Current(0)
	Bind(rv.Inspect, "<<ComboboxSelected>>", Command(func() {
		if h.Inspect == nil {
			return
		}
		idx, err := strconv.Atoi(rv.Inspect.Current(nil))
		if err != nil || idx < 0 || idx >= len(choices) {
			if rv.logger != nil {
				rv.logger.Error("ui.inspect.parse", "error", err)
			}
			return
		}
		if idx == 0 {
			h.Inspect(combat.SlotID{}, false)
			return
		}
		h.Inspect(combat.SlotAt(idx-1), true)
	}))

	rv.buildWindowSelect(btnFrame, len(buttons)+1, titles, h.WindowChanged)

	rv.WindowLabel = Label(Txt("Window: <not searched>"), Anchor("w"))
	Grid(rv.WindowLabel, Row(1), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"))

	rv.Summary = Text(Height(4), Width(70))
	Grid(rv.Summary, Row(2), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	rv.Slots = Text(Height(combat.SlotCount), Width(70))
	Grid(rv.Slots, Row(3), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	end := rv.ConfigPanel.Build(4)
	rv.CapturePrev = NewCapturePreview(end)
}

func (rv *RootView) buildWindowSelect(parent *FrameWidget, row int, titles []string, onChange func(string)) {
	if len(titles) == 0 {
		titles = []string{"<none>"}
	}
	rv.WindowSel = TCombobox(Values(titles), Width(26))
	Grid(rv.WindowSel, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	current := 0
	for i, t := range titles {
		if rv.cfg != nil && t == rv.cfg.WindowTitle {
			current = i
		}
	}
	rv.WindowSel.Current(current)
	Bind(rv.WindowSel, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.WindowSel.Current(nil))
		if err != nil || idx < 0 || idx >= len(titles) {
			if rv.logger != nil {
				rv.logger.Error("ui.window.parse", "error", err)
			}
			return
		}
		if onChange != nil {
			onChange(titles[idx])
		}
	}))
}

func setText(w *TextWidget, lines []string) {
	if w == nil {
		return
	}
	w.Delete("1.0", END)
	w.Insert("1.0", strings.Join(lines, "\n"))
}

// SetStateLabel updates the mode label and its color.
func (rv *RootView) SetStateLabel(text string) {
	if rv == nil || rv.StateLabel == nil {
		return
	}
	mode := screen.Loading
	for _, m := range []screen.Mode{screen.Idle, screen.Battle, screen.CardSelect, screen.RoundAnimation} {
		if strings.HasSuffix(text, m.String()) {
			mode = m
		}
	}
	rv.StateLabel.Configure(Txt(text), Style(theme.ModeStyle(mode)))
}

// SetWindowState shows whether the game window was found.
func (rv *RootView) SetWindowState(found bool, r image.Rectangle) {
	if rv == nil || rv.WindowLabel == nil {
		return
	}
	text := "Window: not found, using region or full screen"
	if found {
		text = "Window: " + r.String()
	}
	rv.WindowLabel.Configure(Txt(text))
}

func (rv *RootView) SetSummary(lines []string)      { setText(rv.Summary, lines) }
func (rv *RootView) SetParticipants(lines []string) { setText(rv.Slots, lines) }

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// ConfigEditable satisfies the capture presenter view.
func (rv *RootView) ConfigEditable(b bool) { rv.SetConfigEditable(b) }

func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

func (rv *RootView) UpdateDetection(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateDetection(img)
	}
}

// PreviewReset clears the preview and text panels.
func (rv *RootView) PreviewReset() {
	if rv == nil {
		return
	}
	if rv.CapturePrev != nil {
		rv.CapturePrev.Reset()
	}
	setText(rv.Summary, nil)
	setText(rv.Slots, nil)
}

// SetBattle forwards battle timing to the stats labels.
func (rv *RootView) SetBattle(current, total time.Duration, count int) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.SetBattle(current, total, count)
	}
}
