package saga

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hwetherall/innovera-ama/internal/logging"
	"github.com/hwetherall/innovera-ama/internal/services"
)

// Saga tracks completed steps of a multi-write operation so they can be
// compensated in reverse order when a later step fails. Compensations are
// best-effort: a failed compensation is reported alongside the original
// failure, never in place of it.
type Saga struct {
	logger *slog.Logger
	steps  []step
}

type step struct {
	name       string
	compensate func(context.Context) error
}

// New returns an empty saga. A nil logger suppresses compensation logging.
func New(logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Saga{logger: logger}
}

// Record registers a completed step and the action that undoes it.
func (s *Saga) Record(name string, compensate func(context.Context) error) {
	s.steps = append(s.steps, step{name: name, compensate: compensate})
}

// Commit discards the recorded steps; the operation succeeded and nothing
// needs undoing.
func (s *Saga) Commit() {
	s.steps = nil
}

// Compensate undoes the recorded steps newest-first and returns cause,
// annotated with any compensation failures. The returned error always
// satisfies errors.Is for cause's markers.
func (s *Saga) Compensate(ctx context.Context, cause error) error {
	var failed []string
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := st.compensate(ctx); err != nil {
			s.logger.Error("compensation failed",
				slog.String("step", st.name),
				logging.Error(err))
			failed = append(failed, fmt.Sprintf("%s: %v", st.name, err))
			continue
		}
		s.logger.Info("compensated step", slog.String("step", st.name))
	}
	s.steps = nil
	if len(failed) > 0 {
		return fmt.Errorf("%w (%w: %v)", cause, services.ErrCompensation, failed)
	}
	return cause
}
