// Package resilience provides retry with exponential backoff and a
// sliding-window rate limiter keyed by caller-supplied context names.
// External integrations (lead source, sheets export, CRM, messaging) each
// construct an Executor from their preset and funnel calls through it.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Config controls retry and rate-limit behavior for one Executor.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt, so an
	// operation runs at most MaxRetries+1 times.
	MaxRetries int
	// InitialDelay seeds the backoff sequence.
	InitialDelay time.Duration
	// MaxDelay caps the backoff regardless of attempt count.
	MaxDelay time.Duration
	// Multiplier grows the delay between consecutive attempts.
	Multiplier float64
	// ShouldRetry, when set, filters which errors are retried. Nil retries
	// every error.
	ShouldRetry func(error) bool
}

// DefaultConfig is the general-purpose preset for external calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   5,
		InitialDelay: 5 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
}

// SheetsConfig tunes backoff for the spreadsheet export quota, which
// throttles hard but recovers quickly.
func SheetsConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 7 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   1.5,
	}
}

// AnalyticsConfig tunes backoff for the analytics warehouse.
func AnalyticsConfig() Config {
	return Config{
		MaxRetries:   5,
		InitialDelay: 3 * time.Second,
		MaxDelay:     45 * time.Second,
		Multiplier:   2.0,
	}
}

// MessagingConfig tunes backoff for the WhatsApp gateway, which enforces
// strict per-minute message quotas.
func MessagingConfig() Config {
	return Config{
		MaxRetries:   4,
		InitialDelay: 2 * time.Second,
		MaxDelay:     20 * time.Second,
		Multiplier:   1.8,
	}
}

// maxTrackedContexts bounds the per-context state map. Least recently used
// entries are evicted once the cap is hit, so a caller generating unbounded
// context names cannot grow memory without limit.
const maxTrackedContexts = 128

// jitterFraction spreads concurrent retries by up to ±20% of the computed
// delay.
const jitterFraction = 0.2

// contextState tracks one named context's current rate-limit window and
// consecutive-failure count.
type contextState struct {
	requestCount int
	windowStart  time.Time
	failures     int
	lastUsed     time.Time
}

// Executor runs operations with retry, backoff, and rate limiting. State
// is tracked per context name. Safe for concurrent use.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	contexts map[string]*contextState

	// Injection points for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	randF func() float64
}

// NewExecutor creates an Executor with the given configuration.
func NewExecutor(cfg Config) *Executor {
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2.0
	}
	return &Executor{
		cfg:      cfg,
		contexts: make(map[string]*contextState),
		now:      time.Now,
		sleep:    sleepCtx,
		randF:    rand.Float64,
	}
}

// Execute runs op, retrying failures with exponential backoff. The name
// labels errors and keys failure tracking. A nil return resets the
// context's failure count; exhausting every attempt returns a
// *RetryExhaustedError wrapping the last error.
func (e *Executor) Execute(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := ExecuteVal(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// ExecuteVal is Execute for operations that return a value. It is a free
// function because methods cannot be generic.
func ExecuteVal[T any](ctx context.Context, e *Executor, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := e.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		val, err := op(ctx)
		if err == nil {
			e.recordSuccess(name)
			return val, nil
		}
		lastErr = err
		e.recordFailure(name)

		if e.cfg.ShouldRetry != nil && !e.cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		if err := e.sleep(ctx, e.delayFor(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, &RetryExhaustedError{Context: name, Attempts: attempts, Err: lastErr}
}

// CheckRateLimit admits one request for the named context within a
// maxRequests-per-window budget. When the window is exhausted it blocks
// (ctx-aware) until the window elapses, then starts a fresh one. A
// non-positive maxRequests admits everything.
func (e *Executor) CheckRateLimit(ctx context.Context, name string, maxRequests int, window time.Duration) error {
	if maxRequests <= 0 {
		return nil
	}

	e.mu.Lock()
	now := e.now()
	st := e.state(name, now)

	if now.Sub(st.windowStart) >= window {
		st.windowStart = now
		st.requestCount = 0
	}

	if st.requestCount < maxRequests {
		st.requestCount++
		e.mu.Unlock()
		return nil
	}

	wait := window - now.Sub(st.windowStart)
	e.mu.Unlock()

	if err := e.sleep(ctx, wait); err != nil {
		return err
	}

	e.mu.Lock()
	now = e.now()
	st = e.state(name, now)
	st.windowStart = now
	st.requestCount = 1
	e.mu.Unlock()
	return nil
}

// Failures returns the consecutive-failure count for the named context.
func (e *Executor) Failures(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.contexts[name]; ok {
		return st.failures
	}
	return 0
}

// delayFor computes the jittered backoff for a zero-based attempt index.
func (e *Executor) delayFor(attempt int) time.Duration {
	base := float64(e.cfg.InitialDelay) * math.Pow(e.cfg.Multiplier, float64(attempt))
	if max := float64(e.cfg.MaxDelay); e.cfg.MaxDelay > 0 && base > max {
		base = max
	}
	jitter := base * jitterFraction * (2*e.randF() - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

func (e *Executor) recordSuccess(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state(name, e.now()).failures = 0
}

func (e *Executor) recordFailure(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state(name, e.now()).failures++
}

// state fetches or creates the tracked state for name, evicting the least
// recently used entry when the map is full. Callers must hold e.mu.
func (e *Executor) state(name string, now time.Time) *contextState {
	if st, ok := e.contexts[name]; ok {
		st.lastUsed = now
		return st
	}

	if len(e.contexts) >= maxTrackedContexts {
		var oldestName string
		var oldest time.Time
		for n, st := range e.contexts {
			if oldestName == "" || st.lastUsed.Before(oldest) {
				oldestName = n
				oldest = st.lastUsed
			}
		}
		delete(e.contexts, oldestName)
	}

	st := &contextState{lastUsed: now}
	e.contexts[name] = st
	return st
}

// sleepCtx blocks for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
