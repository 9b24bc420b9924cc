package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/soocke/duel-vision-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay is a transparent, resizable window the user drags over the
// game to set a manual capture region. The region is used when the game
// window cannot be located by title.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	Region() (image.Rectangle, bool)
}

type selectionOverlay struct {
	logger    *slog.Logger
	cfg       *config.Config
	cfgPath   string
	selection atomic.Value // image.Rectangle
	win       *ToplevelWidget
}

const transparentKey = "#008080"

// NewSelectionOverlay restores any region saved in cfg.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger) SelectionOverlay {
	v := &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath}
	v.selection.Store(image.Rectangle{})
	if cfg != nil {
		if r, ok := cfg.Region(); ok {
			v.selection.Store(r)
		}
	}
	return v
}

func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background(transparentKey))
	win.WmTitle("Capture Region")
	v.win = win
	geom := "1280x720+100+100"
	if r, ok := v.Region(); ok {
		geom = fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	}
	WmGeometry(win.Window, geom)
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-toolwindow", true)
	WmAttributes(win.Window, "-transparentcolor", transparentKey)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 1, Weight(1))
	for col, bg := range []string{"#FFFFFF", transparentKey, "#FFFFFF"} {
		w := 4
		if col == 1 {
			w = 0
		}
		f := win.Frame(Width(w), Background(bg))
		Grid(f, Row(0), Column(col), Sticky("nsew"))
	}
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	buttons := []struct {
		text string
		cmd  func()
	}{
		{"Confirm [Enter]", v.confirm},
		{"Cancel [Esc]", v.destroy},
		{"Clear", v.Clear},
	}
	for i, b := range buttons {
		Grid(win.Button(Txt(b.text), Command(b.cmd)), In(controls), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

// Clear drops the manual region and persists the change.
func (v *selectionOverlay) Clear() {
	v.selection.Store(image.Rectangle{})
	v.persist(image.Rectangle{})
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := parseGeometry(WmGeometry(v.win.Window)); ok {
		v.selection.Store(rect)
		v.persist(rect)
	}
	v.destroy()
}

func (v *selectionOverlay) persist(r image.Rectangle) {
	if v.cfg == nil {
		return
	}
	v.cfg.RegionX, v.cfg.RegionY = r.Min.X, r.Min.Y
	v.cfg.RegionW, v.cfg.RegionH = r.Dx(), r.Dy()
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("ui.region.save", "error", err)
	}
}

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// Region returns the confirmed region. Safe to call from the capture goroutine.
func (v *selectionOverlay) Region() (image.Rectangle, bool) {
	r, _ := v.selection.Load().(image.Rectangle)
	return r, !r.Empty()
}

// geomRe matches Tk geometry strings "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
