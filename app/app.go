package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/debug"
	"github.com/soocke/duel-vision-go/domain/capture"
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/ui/presenter"
	"github.com/soocke/duel-vision-go/ui/theme"
	"github.com/soocke/duel-vision-go/ui/view"
)

const (
	tick          = 100 * time.Millisecond
	debugInterval = 10 * time.Second
)

// Application is the live debug viewer.
type Application struct {
	c       *AppContainer
	afterID string
	ctx     context.Context
	cancel  context.CancelFunc
	shown   presenter.WindowState
}

// NewApp builds the container and configures the Tk root window. It fails
// when the OCR backend is unavailable.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*Application, error) {
	c, err := BuildContainer(cfg, logger, cfgPath)
	if err != nil {
		return nil, err
	}
	a := &Application{c: c}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	theme.InitStyles()
	return a, nil
}

// Start builds the layout, starts the UI loop and blocks until the window
// closes.
func (a *Application) Start() {
	c := a.c
	titles, err := capture.WindowTitles()
	if err != nil && c.Logger != nil {
		c.Logger.Warn("ui.windows", "error", err)
	}
	c.RootView.Build(titles, view.Handlers{
		ToggleCapture: a.toggleCapture,
		Region:        c.Selection.OpenOrFocus,
		ClearDumps:    a.clearDumps,
		ToggleTheme:   func() { theme.ToggleDark() },
		Exit:          a.exitHandler,
		Inspect:       a.inspect,
		WindowChanged: a.windowChanged,
	})
	c.wirePresenters(a.ctx, a.scheduleUpdate)

	if c.Config.Debug {
		debug.StartGoroutineLogger(a.ctx, debugInterval, c.Logger)
		debug.StartMemLogger(a.ctx, debugInterval, c.Logger)
	}
	if c.Logger != nil {
		c.Logger.Info("app.start", "window_title", c.Config.WindowTitle, "windows", len(titles))
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *Application) update() {
	defer func() {
		if r := recover(); r != nil {
			if a.c.Logger != nil {
				a.c.Logger.Error("ui.update.panic", "panic", r)
			}
			a.scheduleUpdate()
		}
	}()
	a.refreshWindow()
	a.c.Loop.Tick()
}

// refreshWindow shows the watcher's latest view of the game window.
func (a *Application) refreshWindow() {
	if !a.c.Capture.Enabled() {
		return
	}
	st := a.c.Watcher.State()
	if st == a.shown {
		return
	}
	a.shown = st
	a.c.RootView.SetWindowState(st.Found, st.Rect)
}

func (a *Application) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.update)
}

func (a *Application) toggleCapture() {
	c := a.c
	c.CapturePresenter.Toggle()
	enabled := c.Capture.Enabled()
	c.Watcher.SetActive(enabled)
	if !enabled {
		c.SnapshotPresenter.Reset()
		a.shown = presenter.WindowState{}
	}
}

func (a *Application) clearDumps() {
	d := a.c.Pipeline.Dumper
	if d == nil {
		return
	}
	if err := d.Clear(); err != nil && a.c.Logger != nil {
		a.c.Logger.Error("debug.dumps.clear", "error", err)
	}
}

func (a *Application) inspect(id combat.SlotID, ok bool) {
	if ok {
		a.c.Inspect.Select(id)
	} else {
		a.c.Inspect.Clear()
	}
	a.c.SnapshotPresenter.Reset()
}

func (a *Application) windowChanged(title string) {
	c := a.c
	c.SetWindowTitle(title)
	if err := c.Config.Save(c.CfgPath); err != nil && c.Logger != nil {
		c.Logger.Error("config.save", "path", c.CfgPath, "error", err)
	}
	if c.Logger != nil {
		c.Logger.Info("capture.window.select", "title", title)
	}
}

func (a *Application) exitHandler() {
	c := a.c
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	c.CapturePresenter.Disable()
	c.Watcher.SetActive(false)
	a.cancel()
	if err := c.Pipeline.Close(); err != nil && c.Logger != nil {
		c.Logger.Error("ocr.close", "error", err)
	}
	Destroy(App)
}
