package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// OutcomeStatus is the terminal result of a Play call.
type OutcomeStatus string

const (
	OutcomePlaying           OutcomeStatus = "playing"
	OutcomeSelectionRequired OutcomeStatus = "selection_required"
	OutcomeExhausted         OutcomeStatus = "exhausted"
	OutcomeCanceled          OutcomeStatus = "canceled"
)

// Outcome describes how a Play call ended. Attempts counts load attempts
// made, including the primary.
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	URL      string        `json:"url,omitempty"`
	Attempts int           `json:"attempts"`
	Err      error         `json:"-"`
}

// ExhaustedError reports that the primary URL and every alternative failed.
type ExhaustedError struct {
	Attempts int
}

// Error implements error.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("playback: exhausted after %d attempts", e.Attempts)
}

// Session is an observable snapshot of the active playback session.
// AttemptIndex counts failed alternative attempts and never exceeds
// AttemptTotal.
type Session struct {
	State        State  `json:"state"`
	CurrentURL   string `json:"current_url,omitempty"`
	AttemptIndex int    `json:"attempt_index"`
	AttemptTotal int    `json:"attempt_total"`
	LastError    string `json:"last_error,omitempty"`
}

// ControllerConfig tunes the retry cascade.
type ControllerConfig struct {
	// BackoffBase is the delay before the first alternative attempt.
	BackoffBase time.Duration
	// BackoffStep is added per subsequent attempt.
	BackoffStep time.Duration
	// BackoffCap bounds the delay.
	BackoffCap time.Duration
}

// DefaultControllerConfig matches the tuned production cascade: 3s plus 1s
// per attempt, capped at 8s. Slow enough to spare a struggling upstream,
// fast enough not to stall the user.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		BackoffBase: 3 * time.Second,
		BackoffStep: 1 * time.Second,
		BackoffCap:  8 * time.Second,
	}
}

// backoff returns the delay before alternative attempt i.
func (c ControllerConfig) backoff(attemptIndex int) time.Duration {
	delay := c.BackoffBase + time.Duration(attemptIndex)*c.BackoffStep
	if delay > c.BackoffCap {
		delay = c.BackoffCap
	}
	return delay
}

// loader is the engine surface the controller drives.
type loader interface {
	Load(ctx context.Context, url string) error
	Dispose()
}

// Controller drives the playback fallback cascade against a single engine.
// Load attempts are strictly sequential; a new Play or a Cancel invalidates
// the running session via a generation counter, so late completions from an
// abandoned session never mutate current state.
type Controller struct {
	engine loader
	sink   EventSink
	cfg    ControllerConfig

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	session    Session
}

// NewController creates a controller for the given engine. A nil sink
// discards events.
func NewController(engine loader, sink EventSink, cfg ControllerConfig) *Controller {
	if sink == nil {
		sink = NopSink{}
	}
	return &Controller{
		engine:  engine,
		sink:    sink,
		cfg:     cfg,
		session: Session{State: StateIdle},
	}
}

// Play classifies the item, resolves its URLs, and runs the fallback
// cascade until a URL loads, the alternatives are exhausted, or the session
// is canceled. Series items without a season/episode position short-circuit
// to OutcomeSelectionRequired without any load attempt.
//
// The returned error is non-nil only for invalid input; expected conditions
// (selection required, exhaustion, cancellation) are Outcome statuses.
func (c *Controller) Play(ctx context.Context, item CatalogItem, creds Credentials, hint ContentKind) (Outcome, error) {
	kind := Classify(item, hint)

	if NeedsEpisodeSelection(item, kind) {
		c.sink.Emit(ctx, Event{Type: EventSelectionRequired})
		return Outcome{Status: OutcomeSelectionRequired}, nil
	}

	primary, err := ResolvePrimary(item, kind, creds)
	if err != nil {
		return Outcome{}, err
	}
	alternatives, err := ResolveAlternatives(item, kind, creds, primary)
	if err != nil {
		return Outcome{}, err
	}

	gen, playCtx := c.beginSession(ctx, len(alternatives))
	total := len(alternatives) + 1

	c.sink.Emit(playCtx, Event{Type: EventAttemptStarted, URL: primary, Attempt: 1, Total: total})
	c.updateSession(gen, func(s *Session) {
		s.State = StateLoading
		s.CurrentURL = primary
	})

	loadErr := c.engine.Load(playCtx, primary)
	if !c.isCurrent(gen) {
		return c.canceledOutcome(ctx, 1), nil
	}
	if loadErr == nil {
		return c.playingOutcome(playCtx, gen, primary, 1), nil
	}
	c.recordFailure(playCtx, gen, primary, 1, total, loadErr)

	// Walk the precomputed alternatives. The index advances by exactly one
	// per failed attempt and the loop never revisits a URL.
	for index := 0; index < len(alternatives); index++ {
		c.engine.Dispose()

		select {
		case <-playCtx.Done():
			return c.canceledOutcome(ctx, index+1), nil
		case <-time.After(c.cfg.backoff(index)):
		}

		url := alternatives[index]
		attempt := index + 2

		c.sink.Emit(playCtx, Event{Type: EventAttemptStarted, URL: url, Attempt: attempt, Total: total})
		c.updateSession(gen, func(s *Session) {
			s.State = StateLoading
			s.CurrentURL = url
			s.AttemptIndex = index
		})

		loadErr = c.engine.Load(playCtx, url)
		if !c.isCurrent(gen) {
			return c.canceledOutcome(ctx, attempt), nil
		}
		if loadErr == nil {
			return c.playingOutcome(playCtx, gen, url, attempt), nil
		}
		c.recordFailure(playCtx, gen, url, attempt, total, loadErr)
		c.updateSession(gen, func(s *Session) {
			s.AttemptIndex = index + 1
		})
	}

	c.engine.Dispose()
	c.sink.Emit(playCtx, Event{Type: EventExhausted, Attempt: total, Total: total})
	c.updateSession(gen, func(s *Session) {
		s.State = StateFailed
	})

	exhausted := &ExhaustedError{Attempts: total}
	return Outcome{Status: OutcomeExhausted, Attempts: total, Err: exhausted}, nil
}

// Cancel invalidates the active session: any pending backoff timer fires
// into a dead context, late load completions are discarded, and the engine
// is disposed synchronously.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.session = Session{State: StateIdle}
	c.mu.Unlock()

	c.engine.Dispose()
	c.sink.Emit(context.Background(), Event{Type: EventCanceled})
}

// Dispose releases the controller and its engine. Idempotent.
func (c *Controller) Dispose() {
	c.Cancel()
}

// Session returns a snapshot of the active session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// beginSession atomically supersedes any previous session: the old context
// is canceled and the engine disposed before the new session may load.
func (c *Controller) beginSession(ctx context.Context, alternatives int) (uint64, context.Context) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	playCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.session = Session{
		State:        StateIdle,
		AttemptTotal: alternatives + 1,
	}
	c.mu.Unlock()

	c.engine.Dispose()
	return gen, playCtx
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

// updateSession mutates the snapshot only when the session is still
// current.
func (c *Controller) updateSession(gen uint64, fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return
	}
	fn(&c.session)
}

func (c *Controller) playingOutcome(ctx context.Context, gen uint64, url string, attempt int) Outcome {
	c.sink.Emit(ctx, Event{Type: EventPlaying, URL: url, Attempt: attempt})
	c.updateSession(gen, func(s *Session) {
		s.State = StateReady
		s.CurrentURL = url
		s.LastError = ""
	})
	return Outcome{Status: OutcomePlaying, URL: url, Attempts: attempt}
}

func (c *Controller) canceledOutcome(ctx context.Context, attempts int) Outcome {
	c.sink.Emit(ctx, Event{Type: EventCanceled, Attempt: attempts})
	return Outcome{Status: OutcomeCanceled, Attempts: attempts}
}

func (c *Controller) recordFailure(ctx context.Context, gen uint64, url string, attempt, total int, err error) {
	c.sink.Emit(ctx, Event{
		Type:    EventAttemptFailed,
		URL:     url,
		Attempt: attempt,
		Total:   total,
		Reason:  ReasonOf(err),
		Err:     err,
	})
	c.updateSession(gen, func(s *Session) {
		s.State = StateFailed
		s.LastError = err.Error()
	})
}
