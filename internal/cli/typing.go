package cli

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

const typingTick = 120 * time.Millisecond

// typingIndicator shows a spinner while backend requests are in flight.
// Overlapping requests share one spinner.
type typingIndicator struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	stop    chan struct{}
	active  int
	enabled bool
	mu      sync.Mutex
}

func newTypingIndicator(out io.Writer, enabled bool) *typingIndicator {
	return &typingIndicator{out: out, enabled: enabled}
}

func (t *typingIndicator) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active++
	if !t.enabled || t.active > 1 {
		return
	}

	t.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]FinMate is typing...[reset]"),
		progressbar.OptionClearOnFinish(),
	)
	t.stop = make(chan struct{})

	go func(bar *progressbar.ProgressBar, stop <-chan struct{}) {
		ticker := time.NewTicker(typingTick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(t.bar, t.stop)
}

func (t *typingIndicator) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == 0 {
		return
	}
	t.active--
	if t.active > 0 || t.bar == nil {
		return
	}

	close(t.stop)
	_ = t.bar.Finish()
	t.bar = nil
}

// Clear erases the spinner line so a reply can be printed in its place.
func (t *typingIndicator) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Clear()
	}
}
