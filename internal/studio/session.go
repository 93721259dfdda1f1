package studio

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/infra"
	"veostudio/internal/metrics"
)

const (
	StatusGenerating = "Generating..."
	StatusDone       = "Done."
)

// State is the position of a Session in its Idle -> Generating ->
// Done|Failed cycle. Done and Failed accept a new trigger like Idle.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Host is the form that owns the inputs and displays the outcome.
type Host interface {
	Output
	SetControlsEnabled(enabled bool)
	SetStatus(text string)
	HideVideo()
	SetQuotaNoticeVisible(visible bool)
}

// Inputs supplies the form snapshot read at trigger time.
type Inputs interface {
	Snapshot() domain.Inputs
}

// Generator runs one generation. *Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, in domain.Inputs, out Output) (*Result, error)
}

// Session serializes generations for one form and keeps the host in sync
// with the state machine.
type Session struct {
	inputs    Inputs
	generator Generator
	host      Host
	logger    *infra.Logger

	busy atomic.Bool

	mu         sync.RWMutex
	state      State
	last       *Result
	classified domain.ClassifiedError
}

func NewSession(inputs Inputs, generator Generator, host Host, logger *infra.Logger) *Session {
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Session{
		inputs:    inputs,
		generator: generator,
		host:      host,
		logger:    logger,
		state:     StateIdle,
	}
}

// Trigger runs a generation with the inputs current at call time. It returns
// domain.ErrBusy without touching the host while another generation is in
// flight, and otherwise the generation error after the host has shown it.
func (s *Session) Trigger(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer s.busy.Store(false)
	return s.run(ctx)
}

// Start is Trigger for hosts that cannot block: the busy flag is claimed
// before Start returns and the generation continues in its own goroutine.
// The returned channel yields the generation error once the session is
// ready for the next trigger.
func (s *Session) Start(ctx context.Context) (<-chan error, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	done := make(chan error, 1)
	go func() {
		err := s.run(ctx)
		s.busy.Store(false)
		done <- err
	}()
	return done, nil
}

func (s *Session) run(ctx context.Context) error {
	s.setState(StateGenerating, nil, domain.ClassifiedError{})
	s.host.SetStatus(StatusGenerating)
	s.host.HideVideo()
	s.host.SetControlsEnabled(false)
	s.host.SetQuotaNoticeVisible(false)
	defer s.host.SetControlsEnabled(true)

	started := time.Now()
	res, err := s.generator.Generate(ctx, s.inputs.Snapshot(), s.host)
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		classified := Classify(err)
		s.logger.Error().Err(err).
			Bool("quota_or_auth", classified.IsQuotaOrAuthError).
			Msg("studio: generation failed")
		metrics.GenerationsTotal.WithLabelValues(outcomeLabel(classified)).Inc()
		s.setState(StateFailed, nil, classified)
		s.host.SetStatus(classified.DisplayMessage)
		if classified.IsQuotaOrAuthError {
			s.host.SetQuotaNoticeVisible(true)
		}
		return err
	}

	metrics.GenerationsTotal.WithLabelValues("succeeded").Inc()
	s.setState(StateDone, res, domain.ClassifiedError{})
	s.host.SetStatus(StatusDone)
	return nil
}

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastResult returns the result of the most recent successful generation.
func (s *Session) LastResult() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// LastError returns the classification of the most recent failure.
func (s *Session) LastError() domain.ClassifiedError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classified
}

func (s *Session) setState(state State, res *Result, classified domain.ClassifiedError) {
	s.mu.Lock()
	s.state = state
	if res != nil {
		s.last = res
	}
	s.classified = classified
	s.mu.Unlock()
}

func outcomeLabel(c domain.ClassifiedError) string {
	if c.IsQuotaOrAuthError {
		return "quota_or_auth"
	}
	return "failed"
}
