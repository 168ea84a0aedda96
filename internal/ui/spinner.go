package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line while a blocking call runs. Stop
// replaces the line with the outcome and the elapsed time.
type Spinner struct {
	out     io.Writer
	mu      sync.Mutex
	message string
	frame   int
	started time.Time
	done    chan struct{}
	stopped bool
}

// NewSpinner writes to stdout
func NewSpinner(message string) *Spinner {
	return NewSpinnerTo(os.Stdout, message)
}

func NewSpinnerTo(out io.Writer, message string) *Spinner {
	return &Spinner{out: out, message: message, done: make(chan struct{})}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Spinner) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	fmt.Fprintf(s.out, "\r\033[K%s %s", ColorProgress(spinnerFrames[s.frame]), s.message)
	s.frame = (s.frame + 1) % len(spinnerFrames)
}

// UpdateMessage changes the text shown next to the animation
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop is idempotent; only the first call prints.
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)

	mark := ColorSuccess("✓")
	if !success {
		mark = ColorError("✗")
	}
	elapsed := ""
	if !s.started.IsZero() {
		elapsed = " " + ColorDim("("+formatDuration(time.Since(s.started))+")")
	}
	fmt.Fprintf(s.out, "\r\033[K%s %s%s\n", mark, message, elapsed)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
