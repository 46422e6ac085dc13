package frontdoor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Defaults of Config
const (
	DefaultPollInterval         = 2 * time.Second
	DefaultPollFailureThreshold = 5
	DefaultInactivityTimeout    = 2 * time.Minute
	DefaultMaxReconnects        = 3
	DefaultReconnectDelay       = 500 * time.Millisecond
)

// Config holds watcher settings. Zero values select the defaults.
type Config struct {
	PollInterval         time.Duration
	PollFailureThreshold int
	// InactivityTimeout forces a reconnection when nothing was applied for
	// this long
	InactivityTimeout time.Duration
	MaxReconnects     int
	ReconnectDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollFailureThreshold <= 0 {
		c.PollFailureThreshold = DefaultPollFailureThreshold
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = DefaultInactivityTimeout
	}
	if c.MaxReconnects <= 0 {
		c.MaxReconnects = DefaultMaxReconnects
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	return c
}

// Outcome is what a finished watch surfaces to the observer
type Outcome struct {
	// Event is the terminal event
	Event domain.ProgressEvent
	// Result is set when the watch ended through a direct result fetch
	Result *domain.Result
}

// Watcher delivers the progress of one session to one observer
type Watcher struct {
	transport Transport
	cfg       Config
	logger    *zap.Logger
	sessionID string

	view    *View
	machine *Machine
	reconn  *backoff.ExponentialBackOff
	onEvent func(domain.ProgressEvent)
	onMode  func(Mode, error)

	// lastActivity is the watchdog reference: the last applied event or
	// the last switch to a fresh delivery path
	lastActivity time.Time
}

// NewWatcher creates a new watcher
func NewWatcher(transport Transport, cfg Config, logger *zap.Logger) *Watcher {
	cfg = cfg.withDefaults()

	reconn := backoff.NewExponentialBackOff()
	reconn.InitialInterval = cfg.ReconnectDelay
	reconn.MaxInterval = 10 * cfg.ReconnectDelay
	reconn.MaxElapsedTime = 0

	return &Watcher{
		transport: transport,
		cfg:       cfg,
		logger:    logger,
		view:      NewView(logger),
		machine:   NewMachine(cfg.MaxReconnects, cfg.PollFailureThreshold),
		reconn:    reconn,
		onEvent:   func(domain.ProgressEvent) {},
		onMode:    func(Mode, error) {},
	}
}

// OnEvent registers the callback receiving every applied event
func (w *Watcher) OnEvent(fn func(domain.ProgressEvent)) {
	w.onEvent = fn
}

// OnMode registers the callback receiving mode changes. err explains
// why delivery left streaming; it is domain.ErrDeliveryDegraded once
// degraded.
func (w *Watcher) OnMode(fn func(Mode, error)) {
	w.onMode = fn
}

// View returns the observer view
func (w *Watcher) View() *View {
	return w.view
}

// Mode returns the current delivery mode
func (w *Watcher) Mode() Mode {
	return w.machine.Mode()
}

// Watch follows sessionID until a terminal event is applied. It returns
// domain.ErrSessionNotFound at once for unknown sessions and ctx's error when
// the observer gives up. Transport failures are never returned.
func (w *Watcher) Watch(ctx context.Context, sessionID string) (*Outcome, error) {
	w.sessionID = sessionID
	w.lastActivity = time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			outcome *Outcome
			err     error
		)
		switch w.machine.Mode() {
		case ModeStreaming, ModeReconnecting:
			err = w.stream(ctx)
		case ModePolling, ModeDegraded:
			outcome, err = w.poll(ctx)
		}
		if err != nil {
			return nil, err
		}
		if outcome != nil {
			return outcome, nil
		}

		if w.machine.Mode() == ModeTerminal {
			last, _ := w.view.Last()
			return &Outcome{Event: last}, nil
		}
	}
}

func (w *Watcher) fire(trigger Trigger, cause error) {
	from := w.machine.Mode()
	to := w.machine.Fire(trigger)
	if from == to {
		return
	}
	if to == ModePolling && from == ModeReconnecting {
		w.lastActivity = time.Now()
	}

	w.logger.Info("delivery mode changed",
		zap.String("session_id", w.sessionID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("trigger", trigger.String()),
		zap.Error(cause))

	if to == ModeDegraded {
		cause = fmt.Errorf("%w: %d consecutive poll failures: %v",
			domain.ErrDeliveryDegraded, w.machine.PollFailures(), cause)
	}
	w.onMode(to, cause)
}

// apply reports whether event advanced the view
func (w *Watcher) apply(event domain.ProgressEvent) bool {
	if !w.view.Apply(event) {
		return false
	}
	w.lastActivity = time.Now()
	w.onEvent(event)
	if event.Terminal() {
		w.fire(TerminalApplied, nil)
	}
	return true
}

type streamRead struct {
	event domain.ProgressEvent
	err   error
}

// stream opens a subscription and reads it until it fails, stalls or
// delivers the terminal event
func (w *Watcher) stream(ctx context.Context) error {
	if w.machine.Mode() == ModeReconnecting {
		if err := sleep(ctx, w.reconn.NextBackOff()); err != nil {
			return err
		}
	}

	s, err := w.transport.Subscribe(ctx, w.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		w.fire(StreamFailed, err)
		return nil
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = s.Close() }()

	w.fire(StreamOpened, nil)

	reads := make(chan streamRead)
	go func() {
		for {
			event, err := s.Next(streamCtx)
			select {
			case reads <- streamRead{event: event, err: err}:
			case <-streamCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	// A fresh connection gets a full inactivity window
	w.lastActivity = time.Now()
	watchdog := time.NewTimer(w.cfg.InactivityTimeout)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r := <-reads:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					r.err = fmt.Errorf("%w: stream closed before completion", domain.ErrTransport)
				}
				w.fire(StreamFailed, r.err)
				return nil
			}
			if w.apply(r.event) {
				if w.machine.Mode() == ModeTerminal {
					return nil
				}
				// Only a stream that delivers something new proves the
				// path healthy
				w.reconn.Reset()
				w.fire(StreamDelivered, nil)
			}
			resetTimer(watchdog, w.cfg.InactivityTimeout-time.Since(w.lastActivity))

		case <-watchdog.C:
			if idle := time.Since(w.lastActivity); idle < w.cfg.InactivityTimeout {
				watchdog.Reset(w.cfg.InactivityTimeout - idle)
				continue
			}
			w.logger.Warn("progress stream stalled, reconnecting",
				zap.String("session_id", w.sessionID),
				zap.Duration("inactivity", w.cfg.InactivityTimeout))
			w.fire(Stalled, domain.ErrStalled)
			return nil
		}
	}
}

// poll issues one poll after the poll interval. While degraded it also
// tries to fetch the result directly.
func (w *Watcher) poll(ctx context.Context) (*Outcome, error) {
	if time.Since(w.lastActivity) >= w.cfg.InactivityTimeout {
		w.fire(Stalled, domain.ErrStalled)
		return nil, nil
	}

	if err := sleep(ctx, w.cfg.PollInterval); err != nil {
		return nil, err
	}

	event, err := w.transport.Poll(ctx, w.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.logger.Warn("progress poll failed",
			zap.String("session_id", w.sessionID),
			zap.Int("consecutive_failures", w.machine.PollFailures()+1),
			zap.Error(err))
		w.fire(PollFailed, err)

		if w.machine.Mode() == ModeDegraded {
			return w.fetchResult(ctx), nil
		}
		return nil, nil
	}

	w.fire(PollSucceeded, nil)
	w.apply(event)
	return nil, nil
}

// fetchResult is the secondary access path used while degraded. It returns
// nil while the result is unavailable.
func (w *Watcher) fetchResult(ctx context.Context) *Outcome {
	result, err := w.transport.Result(ctx, w.sessionID)
	if err != nil {
		w.logger.Debug("direct result fetch failed",
			zap.String("session_id", w.sessionID),
			zap.Error(err))
		return nil
	}

	last, _ := w.view.Last()
	event := domain.ProgressEvent{
		SessionID: w.sessionID,
		StepIndex: max(last.StepIndex, 0),
		Status:    domain.StepNameCompleted,
		Progress:  100,
		Message:   "Result fetched directly",
		Completed: true,
	}
	if result.Outcome == domain.OutcomeFailed {
		msg := result.Error
		event.Error = &msg
		event.Progress = last.Progress
		if result.FailedStep != "" {
			event.Status = result.FailedStep
			event.StepIndex = max(result.FailedStepIndex, event.StepIndex)
		}
	}

	w.apply(event)
	final, _ := w.view.Last()
	return &Outcome{Event: final, Result: result}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(max(d, 0))
}
