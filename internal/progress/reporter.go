// Package progress provides real-time progress reporting during scans.
// It renders periodic count snapshots on a single terminal line; reporting
// cadence is rate limited so hot traversal loops are never slowed down by
// terminal writes.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/filoma/filoma/internal/walker"
)

// DefaultInterval is the default minimum time between rendered updates.
const DefaultInterval = 200 * time.Millisecond

// Reporter renders scan progress. It is wired as the walker.Config.OnProgress
// callback: walkers invoke it on every directory completion and the internal
// limiter decides which invocations actually render. Rendering uses \r to
// overwrite the previous line in place.
//
// The callback may be invoked from multiple goroutines (parallel backend);
// rate.Limiter.Allow is safe for that, and a dropped or interleaved frame on
// the terminal is harmless.
type Reporter struct {
	out     io.Writer
	limiter *rate.Limiter
}

// NewReporter creates a Reporter writing to out, rendering at most one update
// per interval. A non-positive interval uses DefaultInterval.
func NewReporter(out io.Writer, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		out:     out,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Update renders a progress snapshot if the cadence limiter allows it.
func (r *Reporter) Update(p walker.Progress) {
	if !r.limiter.Allow() {
		return
	}

	rateStr := "-"
	if secs := p.Elapsed.Seconds(); secs > 0 {
		rateStr = humanize.Comma(int64(float64(p.Files) / secs))
	}

	fmt.Fprintf(r.out, "\rScanning: %s files, %s folders | %s files/sec | elapsed %s",
		humanize.Comma(p.Files),
		humanize.Comma(p.Folders),
		rateStr,
		formatElapsed(p.Elapsed),
	)
}

// Finish terminates the progress line so subsequent output starts clean.
func (r *Reporter) Finish() {
	fmt.Fprintln(r.out)
}

// formatElapsed renders a duration as "Xh Ym Zs", dropping leading zero units.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		return "0s"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
