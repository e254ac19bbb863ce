package retry

import (
	"context"
	"time"

	"github.com/adriankumpf/night-watch/internal/hass"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// Policy retries transient hub failures with delays of 1s, 2s, 4s ... capped
// at Max, giving up once Budget has elapsed. A zero Budget retries forever.
type Policy struct {
	Min    time.Duration
	Max    time.Duration
	Budget time.Duration

	logger *log.Logger
	// nil means real timers and the system clock
	timer backoff.Timer
	clock backoff.Clock
	// classifies errors, defaults to hass.IsTransient
	transient func(error) bool
}

type Option func(*Policy)

func WithTimer(t backoff.Timer) Option {
	return func(p *Policy) { p.timer = t }
}

func WithClock(c backoff.Clock) Option {
	return func(p *Policy) { p.clock = c }
}

func WithClassifier(transient func(error) bool) Option {
	return func(p *Policy) { p.transient = transient }
}

func NewPolicy(logger *log.Logger, minDelay, maxDelay, budget time.Duration, opts ...Option) *Policy {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	p := &Policy{Min: minDelay, Max: maxDelay, Budget: budget, logger: logger, transient: hass.IsTransient}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.Min
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = p.Max
	bo.MaxElapsedTime = p.Budget
	if p.clock != nil {
		bo.Clock = p.clock
	}
	bo.Reset()
	return backoff.WithContext(bo, ctx)
}

// Do runs op until it succeeds, fails permanently or the budget runs out.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err != nil && !p.transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		p.logger.Warn("Hub is not available, retrying", "attempt", attempt, "in", next, "err", err)
	}

	return backoff.RetryNotifyWithTimer(operation, p.newBackOff(ctx), notify, p.timer)
}

// DoValue is Do for operations returning a value.
func DoValue[T any](ctx context.Context, p *Policy, op func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func() error {
		var err error
		result, err = op()
		return err
	})
	return result, err
}

// WaitForHub blocks until probe succeeds, retrying transient failures without
// a budget. Non-transient failures (e.g. a bad token) are returned at once.
func WaitForHub(ctx context.Context, logger *log.Logger, minDelay, maxDelay time.Duration, probe func(ctx context.Context) error, opts ...Option) error {
	p := NewPolicy(logger, minDelay, maxDelay, 0, opts...)
	err := p.Do(ctx, func() error { return probe(ctx) })
	if err == nil {
		logger.Info("Hub is available")
	}
	return err
}
