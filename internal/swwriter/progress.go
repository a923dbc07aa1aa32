package swwriter

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// progressBar renders an in-place terminal progress bar for one level's
// write pass. Adapted from the teacher's tile.progressBar
// (internal/tile/progress.go); the writer is single-pass and
// single-goroutine so the atomic counter and ticker goroutine are dropped
// in favor of a direct counter updated from Increment.
type progressBar struct {
	total     int64
	processed int64
	label     string
	barWidth  int
	start     time.Time
	lastDraw  time.Time
}

func newProgressBar(label string, total int64) *progressBar {
	return &progressBar{
		total:    total,
		label:    label,
		barWidth: 30,
		start:    time.Now(),
	}
}

// Increment marks n more items as processed and redraws at most every
// 100ms, the same refresh cadence as the teacher's ticker-driven bar.
func (pb *progressBar) Increment(n int64) {
	pb.processed += n
	if time.Since(pb.lastDraw) >= 100*time.Millisecond {
		pb.draw()
	}
}

// Finish prints the final bar state with a trailing newline.
func (pb *progressBar) Finish() {
	pb.draw()
	fmt.Fprint(os.Stderr, "\n")
}

func (pb *progressBar) draw() {
	pb.lastDraw = time.Now()

	var frac float64
	if pb.total > 0 {
		frac = float64(pb.processed) / float64(pb.total)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(pb.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.barWidth-filled)

	elapsed := time.Since(pb.start)
	rate := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(pb.processed) / secs
	}

	fmt.Fprintf(os.Stderr, "\r%s [%s] %3.0f%%  %d/%d tiles  %.0f/s  %s\033[K",
		pb.label, bar, frac*100, pb.processed, pb.total, rate, formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
