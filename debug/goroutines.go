package debug

// Goroutine and stack logger, started only in debug mode. It exists to rule
// out goroutine or stack growth when RSS climbs over a long session.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// StartGoroutineLogger logs goroutine count and stack memory every interval
// until ctx is done.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("debug.goroutines",
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.String("stack_inuse", humanize.IBytes(ms.StackInuse)),
				slog.String("stack_sys", humanize.IBytes(ms.StackSys)),
				slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
			)
		}
	}()
}
