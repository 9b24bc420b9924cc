package presenter

import (
	"context"
	"log/slog"
)

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// CaptureService is the frame grabber lifecycle.
type CaptureService interface {
	Start()
	Stop() error
}

// AnalysisEngine is the analysis loop lifecycle. Stopping it also stops the
// capture service it reads from.
type AnalysisEngine interface {
	Start(ctx context.Context)
	Stop() error
}

// Resetter drops perception history so the next run starts from Loading.
type Resetter interface {
	Reset()
}

// CaptureView updates UI elements affected by capture toggling.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for toggling capture and analysis.
type CapturePresenter struct {
	ctx      context.Context
	model    CaptureModel
	service  CaptureService
	engine   AnalysisEngine
	analyzer Resetter
	view     CaptureView
	logger   *slog.Logger
}

func NewCapturePresenter(ctx context.Context, model CaptureModel, service CaptureService, engine AnalysisEngine, analyzer Resetter, view CaptureView, logger *slog.Logger) *CapturePresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CapturePresenter{ctx: ctx, model: model, service: service, engine: engine, analyzer: analyzer, view: view, logger: logger}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.engine != nil && c.view != nil
}

// Enable starts capture then analysis and locks the config panel. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.service.Start()
	c.engine.Start(c.ctx)
	c.model.SetEnabled(true)
	c.view.ConfigEditable(false)
}

// Disable stops analysis (and with it capture), forgets perception history
// and resets the preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	err := c.engine.Stop()
	switch {
	case err != nil && c.logger != nil:
		// The loop may still be running; leave its state alone.
		c.logger.Warn("ui.capture.stop", "error", err)
	case err == nil && c.analyzer != nil:
		c.analyzer.Reset()
	}
	c.model.SetEnabled(false)
	c.view.PreviewReset()
	c.view.ConfigEditable(true)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
