// Package reveal runs the draft order reveal: intro, then each pick from last
// to first with its announcement and a countdown.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"draftreveal/pkg/audio"
	"draftreveal/pkg/cache"
	"draftreveal/pkg/draft"
)

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("reveal already ran")

// Presenter renders the reveal. Calls are made from one goroutine at a time.
type Presenter interface {
	Display
	Welcome()
	Reveal(pick int, label, entrant string)
	Complete(order draft.Order)
}

// Clips resolves announcement clips.
type Clips interface {
	Ensure(ctx context.Context, k cache.Key, text string) (string, error)
	Path(k cache.Key) string
}

// Config controls pacing.
type Config struct {
	League string
	// Delay is the per-pick pause in seconds. The countdown shows
	// max(1, floor(Delay)) values.
	Delay  float64
	Tick   time.Duration
	Settle time.Duration
	// FinalCountdown runs a countdown after the 1st pick as well.
	FinalCountdown bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock replaces the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Sequencer) { s.clock = c }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(s *Sequencer) { s.observe = fn }
}

// Sequencer drives one reveal. It is single use.
type Sequencer struct {
	cfg       Config
	clips     Clips
	player    audio.Service
	presenter Presenter
	clock     clockwork.Clock
	observe   func(State)

	mu    sync.Mutex
	state State
	ran   bool

	// per-run scratch, touched only by Run's goroutine
	order    draft.Order
	clipPath string
	logger   *slog.Logger
}

// New creates a Sequencer.
func New(cfg Config, clips Clips, player audio.Service, presenter Presenter, opts ...Option) *Sequencer {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	s := &Sequencer{
		cfg:       cfg,
		clips:     clips,
		player:    player,
		presenter: presenter,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current protocol state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run reveals order, blocking until Complete or until ctx is cancelled.
// Synthesis and playback failures are logged and leave that clip silent;
// only cancellation ends a run early.
func (s *Sequencer) Run(ctx context.Context, order draft.Order) error {
	if !(s.cfg.Delay > 0) || math.IsInf(s.cfg.Delay, 1) {
		return fmt.Errorf("%w: delay %v must be positive", draft.ErrInvalidInput, s.cfg.Delay)
	}
	if order.Len() == 0 {
		return fmt.Errorf("%w: empty draft order", draft.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return ErrAlreadyRun
	}
	s.ran = true
	s.mu.Unlock()

	s.order = order
	s.logger = slog.With("run_id", uuid.NewString())
	s.logger.Info("Reveal: starting", "picks", order.Len(), "delay", s.cfg.Delay)

	st := State{Phase: PhaseAnnouncingIntro}
	for st.Phase != PhaseComplete {
		s.transition(st)
		next, err := s.step(ctx, st)
		if err != nil {
			s.logger.Warn("Reveal: aborted", "phase", st.Phase.String(), "pick", st.Pick, "error", err)
			return fmt.Errorf("reveal aborted at %s: %w", st.Phase, err)
		}
		st = next
	}

	s.transition(st)
	s.presenter.Complete(order)
	s.logger.Info("Reveal: complete")
	return nil
}

func (s *Sequencer) transition(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.Debug("Reveal: phase", "phase", st.Phase.String(), "pick", st.Pick)
	if s.observe != nil {
		s.observe(st)
	}
}

func (s *Sequencer) step(ctx context.Context, st State) (State, error) {
	switch st.Phase {
	case PhaseAnnouncingIntro:
		return s.announceIntro(ctx)
	case PhasePreparingClip:
		return s.prepareClip(ctx, st.Pick)
	case PhasePlayingInterlude:
		return s.playInterlude(ctx, st.Pick)
	case PhasePlayingPick:
		return s.playPick(ctx, st.Pick)
	case PhaseCountingDown:
		return s.countDown(ctx, st.Pick)
	}
	return State{}, fmt.Errorf("unexpected phase %s", st.Phase)
}

func (s *Sequencer) announceIntro(ctx context.Context) (State, error) {
	s.presenter.Welcome()

	path, err := s.clips.Ensure(ctx, cache.KeyIntro, IntroText(s.cfg.League))
	if err := s.degrade(ctx, "intro", err); err != nil {
		return State{}, err
	}
	if err == nil {
		if err := s.play(ctx, path); err != nil {
			return State{}, err
		}
	}
	return State{Pick: s.order.Len(), Phase: PhasePreparingClip}, nil
}

func (s *Sequencer) prepareClip(ctx context.Context, pick int) (State, error) {
	label := draft.Ordinal(pick)
	entrant, _ := s.order.At(pick)
	s.presenter.Reveal(pick, label, entrant)

	path, err := s.clips.Ensure(ctx, cache.PickKey(pick), PickText(label, entrant))
	if err := s.degrade(ctx, string(cache.PickKey(pick)), err); err != nil {
		return State{}, err
	}
	s.clipPath = path
	return State{Pick: pick, Phase: PhasePlayingInterlude}, nil
}

func (s *Sequencer) playInterlude(ctx context.Context, pick int) (State, error) {
	if err := s.play(ctx, s.clips.Path(cache.KeyInterlude)); err != nil {
		return State{}, err
	}
	return State{Pick: pick, Phase: PhasePlayingPick}, nil
}

func (s *Sequencer) playPick(ctx context.Context, pick int) (State, error) {
	if s.clipPath != "" {
		if err := s.play(ctx, s.clipPath); err != nil {
			return State{}, err
		}
	}
	s.clipPath = ""

	if pick <= 1 && !s.cfg.FinalCountdown {
		return State{Phase: PhaseComplete}, nil
	}
	return State{Pick: pick, Phase: PhaseCountingDown}, nil
}

func (s *Sequencer) countDown(ctx context.Context, pick int) (State, error) {
	cd := NewCountdown(s.clock, s.presenter, s.countdownSteps(), s.cfg.Tick)
	cd.Start(ctx)
	defer cd.Stop()

	select {
	case <-cd.Done():
	case <-ctx.Done():
		<-cd.Done()
		return State{}, ctx.Err()
	}
	if err := cd.Err(); err != nil {
		return State{}, err
	}

	if err := sleep(ctx, s.clock, s.cfg.Settle); err != nil {
		return State{}, err
	}

	if pick <= 1 {
		return State{Phase: PhaseComplete}, nil
	}
	return State{Pick: pick - 1, Phase: PhasePreparingClip}, nil
}

func (s *Sequencer) countdownSteps() int {
	n := int(math.Floor(s.cfg.Delay))
	if n < 1 {
		return 1
	}
	return n
}

// play blocks on one clip. Playback failures are logged; only a cancelled
// context is returned.
func (s *Sequencer) play(ctx context.Context, path string) error {
	err := s.player.Play(ctx, path)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var pe *audio.PlaybackError
	if errors.As(err, &pe) {
		s.logger.Warn("Reveal: playback failed, skipping clip", "path", path, "error", err)
		return nil
	}
	if err != nil {
		s.logger.Warn("Reveal: playback error", "path", path, "error", err)
	}
	return nil
}

// degrade turns a clip failure into a warning so the step continues
// silently. Cancellation is passed through.
func (s *Sequencer) degrade(ctx context.Context, what string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.logger.Warn("Reveal: clip unavailable, continuing silently", "clip", what, "error", err)
	return nil
}
