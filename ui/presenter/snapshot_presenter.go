package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/duel-vision-go/domain/battle"
	"github.com/soocke/duel-vision-go/domain/capture"
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/layout"
	"github.com/soocke/duel-vision-go/ui/images"
)

// FrameSource supplies the most recent frame captured from the game window.
type FrameSource interface {
	Running() bool
	LatestFrame() capture.FrameSnapshot
}

// SnapshotSource supplies the most recent published snapshot.
type SnapshotSource interface {
	Latest() (battle.Snapshot, bool)
}

// SlotSelection reports the slot chosen for the zoomed preview.
type SlotSelection interface {
	Slot() (combat.SlotID, bool)
}

// SnapshotView describes the UI surface updated by the presenter.
type SnapshotView interface {
	UpdateCapture(img image.Image)
	UpdateDetection(img image.Image)
	SetSummary(lines []string)
	SetParticipants(lines []string)
}

type renderTask struct {
	frame     capture.FrameSnapshot
	snap      battle.Snapshot
	inspect   combat.SlotID
	inspectOK bool
}

type renderResult struct {
	sequence uint64
	overlay  image.Image
	zoom     image.Image
	duration time.Duration
}

// SnapshotPresenter shows the latest snapshot as text and as an overlay on
// the latest frame. Overlay rendering runs on a worker goroutine so the UI
// thread only encodes finished images.
type SnapshotPresenter struct {
	Enabled   func() bool
	Frames    FrameSource
	Snapshots SnapshotSource
	Selection SlotSelection
	View      SnapshotView
	PreviewW  int
	PreviewH  int
	logger    *slog.Logger

	workerOnce sync.Once
	workCh     chan renderTask
	resultCh   chan renderResult

	lastFrameSeq uint64
	lastSnapSeq  uint64
	lastUpdated  time.Time
}

// NewSnapshotPresenter constructs the presenter. selection may be nil.
func NewSnapshotPresenter(enabled func() bool, frames FrameSource, snaps SnapshotSource, selection SlotSelection, view SnapshotView, logger *slog.Logger) *SnapshotPresenter {
	return &SnapshotPresenter{
		Enabled:   enabled,
		Frames:    frames,
		Snapshots: snaps,
		Selection: selection,
		View:      view,
		PreviewW:  640,
		PreviewH:  360,
		logger:    logger,
		workCh:    make(chan renderTask, 1),
		resultCh:  make(chan renderResult, 1),
	}
}

// ProcessFrame drains finished renders, refreshes the text panels when a new
// snapshot was published and schedules an overlay render for a new frame.
func (p *SnapshotPresenter) ProcessFrame() {
	if p == nil || p.Enabled == nil || p.Frames == nil || p.Snapshots == nil || p.View == nil {
		return
	}
	p.ensureWorker()

	for drained := false; !drained; {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			drained = true
		}
	}

	if !p.Enabled() {
		return
	}
	snap, ok := p.Snapshots.Latest()
	if !ok {
		snap = battle.NewSnapshot()
	}
	if ok && (snap.FrameSequence != p.lastSnapSeq || !snap.UpdatedAt.Equal(p.lastUpdated)) {
		p.lastSnapSeq, p.lastUpdated = snap.FrameSequence, snap.UpdatedAt
		p.View.SetSummary(SummaryLines(snap))
		p.View.SetParticipants(ParticipantLines(snap))
	}

	if !p.Frames.Running() {
		return
	}
	frame := p.Frames.LatestFrame()
	if frame.Empty() || frame.Sequence == p.lastFrameSeq {
		return
	}
	p.lastFrameSeq = frame.Sequence
	task := renderTask{frame: frame, snap: snap}
	if p.Selection != nil {
		task.inspect, task.inspectOK = p.Selection.Slot()
	}
	p.dispatch(task)
}

// Reset forgets the last shown sequences so the next tick repaints.
func (p *SnapshotPresenter) Reset() {
	if p == nil {
		return
	}
	p.lastFrameSeq, p.lastSnapSeq, p.lastUpdated = 0, 0, time.Time{}
}

func (p *SnapshotPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *SnapshotPresenter) runWorker() {
	for task := range p.workCh {
		res := p.render(task)
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

// dispatch replaces any queued task with task.
func (p *SnapshotPresenter) dispatch(task renderTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *SnapshotPresenter) render(task renderTask) renderResult {
	start := time.Now()
	res := renderResult{sequence: task.frame.Sequence}
	preview := images.ScaleToFit(task.frame.Image, p.PreviewW, p.PreviewH)
	res.overlay = images.Annotate(preview, Annotations(task.snap), SummaryLines(task.snap))
	if task.inspectOK {
		b := task.frame.Image.Bounds()
		box := layout.For(task.snap.Bucket).SlotBox(task.inspect).Pixels(b)
		if !box.Empty() {
			c := image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
			if zoom, _, err := images.ExtractROI(task.frame.Image, c, max(box.Dx(), box.Dy())); err == nil {
				res.zoom = zoom
			}
		}
	}
	res.duration = time.Since(start)
	return res
}

func (p *SnapshotPresenter) handleResult(res renderResult) {
	if res.overlay != nil {
		p.View.UpdateCapture(res.overlay)
	}
	if res.zoom != nil {
		p.View.UpdateDetection(res.zoom)
	}
	if p.logger != nil {
		p.logger.Debug("ui.render", "seq", res.sequence, "elapsed", res.duration)
	}
}
