package tailor

import (
	"log/slog"
	"time"
)

// debugStats holds per-tick metrics. Only populated when debug mode is on.
type debugStats struct {
	tickTime  time.Duration
	layers    int
	completed int
	removed   int
	drawCalls int
}

// SetDebugMode enables per-tick stats, logged at debug level through
// Logger.
func (p *Painter) SetDebugMode(on bool) {
	p.mu.Lock()
	p.debug = on
	p.mu.Unlock()
}

// debugLog writes one tick's stats. p.mu must be held.
func (p *Painter) debugLog(stats debugStats) {
	Logger().Debug("tailor: tick",
		slog.Uint64("tick", p.ticks),
		slog.Duration("time", stats.tickTime),
		slog.Int("layers", stats.layers),
		slog.Int("completed", stats.completed),
		slog.Int("removed", stats.removed),
		slog.Int("drawCalls", stats.drawCalls),
	)
}
