package cloud

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxRetries bounds how often a throttled or transient failure is
	// retried before it is surfaced to the owning resource type.
	DefaultMaxRetries = 5

	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
)

// LimiterOptions configures the shared call limiter.
type LimiterOptions struct {
	// MaxInFlight bounds concurrent outbound calls across all handlers.
	// Matches the discovery worker budget.
	MaxInFlight int

	// MaxRetries caps retries per call for throttling/transient failures.
	MaxRetries uint64

	// InitialDelay seeds the exponential backoff. Zero selects the default.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff interval.
	MaxDelay time.Duration

	// RequestsPerSecond throttles the steady-state call rate. Zero disables
	// rate limiting and leaves only the concurrency bound.
	RequestsPerSecond float64
}

// LimiterStats is a snapshot of the limiter's observability counters.
type LimiterStats struct {
	Calls     int64
	Retries   int64
	Throttles int64
}

// Limiter wraps every outbound control-plane call with a global concurrency
// semaphore, a request rate limiter, and exponential backoff with jitter on
// retryable failures. Permanent failures propagate immediately.
type Limiter struct {
	sem  *semaphore.Weighted
	rl   *rate.Limiter
	opts LimiterOptions
	log  zerolog.Logger

	calls     atomic.Int64
	retries   atomic.Int64
	throttles atomic.Int64
}

// NewLimiter builds a limiter. A non-positive MaxInFlight falls back to 1.
func NewLimiter(opts LimiterOptions, log zerolog.Logger) *Limiter {
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = 1
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	var rl *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		rl = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.MaxInFlight)
	}
	return &Limiter{
		sem:  semaphore.NewWeighted(int64(opts.MaxInFlight)),
		rl:   rl,
		opts: opts,
		log:  log.With().Str("component", "limiter").Logger(),
	}
}

// Do executes fn under the semaphore, classifying and retrying failures.
// The returned error is always one of the taxonomy types (or a context
// error); retry exhaustion surfaces the last classified failure.
func (l *Limiter) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.opts.InitialDelay
	bo.MaxInterval = l.opts.MaxDelay
	bo.MaxElapsedTime = 0 // bounded by MaxRetries, not wall clock

	attempt := func() error {
		if l.rl != nil {
			if err := l.rl.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		l.calls.Add(1)
		err := Classify(op, fn(ctx))
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, delay time.Duration) {
		l.retries.Add(1)
		var throttle *ThrottlingError
		if errors.As(err, &throttle) {
			l.throttles.Add(1)
		}
		l.log.Debug().
			Str("op", op).
			Dur("delay", delay).
			Err(err).
			Msg("retrying call")
	}

	return backoff.RetryNotify(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, l.opts.MaxRetries), ctx), notify)
}

// Stats returns the current counter snapshot.
func (l *Limiter) Stats() LimiterStats {
	return LimiterStats{
		Calls:     l.calls.Load(),
		Retries:   l.retries.Load(),
		Throttles: l.throttles.Load(),
	}
}
