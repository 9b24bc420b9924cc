package app

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/battle"
	"github.com/soocke/duel-vision-go/domain/capture"
	"github.com/soocke/duel-vision-go/domain/pipeline"
	"github.com/soocke/duel-vision-go/ui/model"
	"github.com/soocke/duel-vision-go/ui/presenter"
	"github.com/soocke/duel-vision-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	CfgPath string
	Logger  *slog.Logger

	Pipeline   *pipeline.Pipeline
	CaptureSvc *capture.Service
	Engine     *battle.Engine
	Selection  view.SelectionOverlay

	Capture *model.CaptureModel
	Battle  *model.BattleModel
	Inspect *model.InspectModel

	RootView *view.RootView

	ModePresenter     *presenter.ModePresenter
	BattlePresenter   *presenter.BattlePresenter
	SnapshotPresenter *presenter.SnapshotPresenter
	CapturePresenter  *presenter.CapturePresenter
	Watcher           *presenter.WindowWatcher
	Loop              *presenter.Loop

	title atomic.Pointer[string]
}

// BuildContainer constructs all components. Presenters that need the built
// view are attached by wirePresenters once the layout exists.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) (*AppContainer, error) {
	pipe, err := pipeline.Build(cfg, logger)
	if err != nil {
		return nil, err
	}
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger, Pipeline: pipe}
	c.SetWindowTitle(cfg.WindowTitle)
	c.Capture = &model.CaptureModel{}
	c.Battle = model.NewBattleModel()
	c.Inspect = model.NewInspectModel()

	c.Selection = view.NewSelectionOverlay(cfg, cfgPath, logger)
	rect := capture.FirstRect(c.windowRect, c.Selection.Region)
	c.CaptureSvc = capture.NewService(logger, rect, capture.ScreenGrab, cfg.AnalysisInterval(), cfg.StopTimeout())
	c.Engine = battle.NewEngine(cfg, c.CaptureSvc, pipe.Analyzer, nil, logger)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.ModePresenter = presenter.NewModePresenter(c.RootView)
	pipe.Analyzer.Machine().AddListener(c.ModePresenter.OnMode)
	// The watcher logs changes itself; the view reads State on the UI tick.
	c.Watcher = presenter.NewWindowWatcher(c.windowRect, nil, logger, 0)
	return c, nil
}

// SetWindowTitle changes the window searched for by capture and the watcher.
func (c *AppContainer) SetWindowTitle(title string) {
	c.title.Store(&title)
	c.Config.WindowTitle = title
}

func (c *AppContainer) windowRect() (image.Rectangle, bool) {
	return capture.WindowRect(*c.title.Load())()
}

// wirePresenters attaches presenters to the built view.
func (c *AppContainer) wirePresenters(ctx context.Context, schedule func()) {
	inBattle := func() bool { return c.Pipeline.Analyzer.Machine().Current().InBattle() }
	c.BattlePresenter = presenter.NewBattlePresenter(c.Battle, inBattle, c.RootView)
	c.SnapshotPresenter = presenter.NewSnapshotPresenter(c.Capture.Enabled, c.CaptureSvc, c.Engine.Mailbox(), c.Inspect, c.RootView, c.Logger)
	c.CapturePresenter = presenter.NewCapturePresenter(ctx, c.Capture, c.CaptureSvc, c.Engine, c.Pipeline.Analyzer, c.RootView, c.Logger)
	c.Loop = presenter.NewLoop(c.BattlePresenter, c.ModePresenter, c.SnapshotPresenter, schedule)
}
