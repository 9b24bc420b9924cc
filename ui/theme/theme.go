// Package theme holds the palette and ttk styles for the snapshot viewer,
// including one state-label style per screen mode.
package theme

import (
	"github.com/soocke/duel-vision-go/domain/screen"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb"
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorWarn      = "#d97706"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Warn      string
	Text      string
	TextMuted string
}

var light = PaletteSnapshot{
	AppBg: ColorBg, Surface: ColorSurface, Border: ColorBorder, Primary: ColorPrimary,
	Danger: ColorDanger, Accent: ColorAccent, Warn: ColorWarn, Text: ColorText, TextMuted: ColorTextMuted,
}

var dark = PaletteSnapshot{
	AppBg: "#0f172a", Surface: "#1e293b", Border: "#334155", Primary: "#3b82f6",
	Danger: "#ef4444", Accent: "#10b981", Warn: "#f59e0b", Text: "#f1f5f9", TextMuted: "#94a3b8",
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return dark
	}
	return light
}

// Style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
)

// ModeStyle returns the state-label style for a screen mode.
func ModeStyle(m screen.Mode) string {
	return "mode_" + m.String() + ".TLabel"
}

// modeColor picks the state-label background for m.
func modeColor(p PaletteSnapshot, m screen.Mode) string {
	switch m {
	case screen.Battle:
		return p.Primary
	case screen.CardSelect:
		return p.Accent
	case screen.RoundAnimation:
		return p.Warn
	case screen.Idle:
		return p.TextMuted
	default:
		return p.Border
	}
}

var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetDark toggles dark mode and reapplies styles. Returns new mode value.
func SetDark(d bool) bool {
	darkMode = d
	applyStyles(CurrentPalette())
	return darkMode
}

// ToggleDark flips dark mode and reapplies styles.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))
	StyleConfigure(StylePrimaryButton, Background(p.Primary), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleDangerButton, Background(p.Danger), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleAccentLabel, Foreground(p.Primary), Background(p.Surface), Padding("2p 1p"))
	for _, m := range []screen.Mode{screen.Loading, screen.Idle, screen.Battle, screen.CardSelect, screen.RoundAnimation} {
		StyleConfigure(ModeStyle(m), Foreground("white"), Background(modeColor(p, m)), Padding("4p 2p"), Borderwidth(1), Relief("groove"))
	}
}
