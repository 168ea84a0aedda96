package observability

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step statuses
const (
	StepStart    = "START"
	StepComplete = "COMPLETE"
	StepFailed   = "FAILED"
	StepWarning  = "WARNING"
)

const separator = "================================================================================"

// StepLogger logs pipeline steps with a uniform layout
type StepLogger struct {
	log *zap.Logger
	now func() time.Time
}

// NewStepLogger wraps log
func NewStepLogger(log *zap.Logger) *StepLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &StepLogger{log: log, now: time.Now}
}

// Logger returns the underlying logger
func (s *StepLogger) Logger() *zap.Logger {
	return s.log
}

// Step logs a status line for name
func (s *StepLogger) Step(name, status string) {
	switch status {
	case StepStart:
		s.log.Info(separator)
		s.log.Info("▶ "+name+" - "+status, zap.String("step", name), zap.String("status", status))
		s.log.Info(separator)
	case StepComplete:
		s.log.Info("✓ "+name+" - "+status, zap.String("step", name), zap.String("status", status))
	case StepFailed:
		s.log.Error("✗ "+name+" - "+status, zap.String("step", name), zap.String("status", status))
	default:
		s.log.Warn("⚠ "+name+" - "+status, zap.String("step", name), zap.String("status", status))
	}
}

// Run times fn as a step. The error from fn is returned unchanged.
func (s *StepLogger) Run(name string, fn func() error) (time.Duration, error) {
	s.Step(name, StepStart)
	start := s.now()
	err := fn()
	elapsed := s.now().Sub(start)

	if err != nil {
		s.Step(name, StepFailed)
		s.log.Error("step error", zap.String("step", name), zap.Error(err), zap.Duration("duration", elapsed))
		return elapsed, err
	}
	s.Step(name, StepComplete)
	s.log.Info("step duration", zap.String("step", name), zap.String("duration", formatSeconds(elapsed)))
	return elapsed, nil
}

// Metrics logs each metric on its own line, sorted by name
func (s *StepLogger) Metrics(m *Metrics) {
	if m == nil {
		return
	}
	snap := m.Snapshot()
	s.log.Info("metrics")
	for _, name := range m.Names() {
		s.log.Info("   "+name, zap.Float64("value", snap[name]))
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
