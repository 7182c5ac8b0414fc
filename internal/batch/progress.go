package batch

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// progressBar renders an in-place terminal progress bar. It refreshes at a
// fixed interval and supports concurrent Done calls from workers.
type progressBar struct {
	w         io.Writer
	total     int64
	processed atomic.Int64
	failed    atomic.Int64
	label     string
	barWidth  int
	start     time.Time
	done      chan struct{}
	stopped   chan struct{}
	mu        sync.Mutex
}

func newProgressBar(w io.Writer, label string, total int64) *progressBar {
	pb := &progressBar{
		w:        w,
		total:    total,
		label:    label,
		barWidth: 30,
		start:    time.Now(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go pb.run()
	return pb
}

// Done marks one more point as processed. Safe for concurrent use.
func (pb *progressBar) Done(failed bool) {
	if failed {
		pb.failed.Add(1)
	}
	pb.processed.Add(1)
}

// Finish stops the refresh loop and prints the final bar state with a newline.
func (pb *progressBar) Finish() {
	close(pb.done)
	<-pb.stopped
	pb.draw()
	fmt.Fprint(pb.w, "\n")
}

func (pb *progressBar) run() {
	defer close(pb.stopped)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-pb.done:
			return
		case <-ticker.C:
			pb.draw()
		}
	}
}

func (pb *progressBar) draw() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	processed := pb.processed.Load()
	total := pb.total

	var frac float64
	if total > 0 {
		frac = float64(processed) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(pb.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.barWidth-filled)

	elapsed := time.Since(pb.start)
	rate := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(processed) / secs
	}
	eta := "--"
	if rate > 0 && processed < total {
		eta = formatDuration(time.Duration(float64(total-processed) / rate * float64(time.Second)))
	}

	failed := ""
	if n := pb.failed.Load(); n > 0 {
		failed = fmt.Sprintf("  %d failed", n)
	}

	fmt.Fprintf(pb.w, "\r%s [%s] %3.0f%%  %d/%d points%s  %.0f/s  %s elapsed  eta %s\033[K",
		pb.label, bar, frac*100, processed, total, failed, rate, formatDuration(elapsed), eta)
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
