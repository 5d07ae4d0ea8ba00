package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// newTestExecutor returns an executor that never actually sleeps and uses
// a deterministic midpoint jitter.
func newTestExecutor(cfg Config) (*Executor, *[]time.Duration) {
	e := NewExecutor(cfg)
	slept := &[]time.Duration{}
	e.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	e.randF = func() float64 { return 0.5 } // zero jitter
	return e, slept
}

func TestExecuteSucceedsFirstTry(t *testing.T) {
	e, slept := newTestExecutor(DefaultConfig())

	calls := 0
	err := e.Execute(context.Background(), "crm", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %d times, want 0", len(*slept))
	}
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	e, slept := newTestExecutor(Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 2.0})

	calls := 0
	err := e.Execute(context.Background(), "crm", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(*slept))
	}
	if (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Errorf("delays = %v, want [1s 2s]", *slept)
	}
	if e.Failures("crm") != 0 {
		t.Errorf("failures = %d, want 0 after success", e.Failures("crm"))
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	e, _ := newTestExecutor(Config{MaxRetries: 2, InitialDelay: time.Millisecond, Multiplier: 2.0})

	calls := 0
	err := e.Execute(context.Background(), "sheets-export", func(context.Context) error {
		calls++
		return errors.New("quota exceeded")
	})
	// maxRetries=2 means exactly 3 invocations.
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	var re *RetryExhaustedError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RetryExhaustedError", err)
	}
	want := "max retries exceeded for sheets-export: quota exceeded"
	if re.Error() != want {
		t.Errorf("message = %q, want %q", re.Error(), want)
	}
	if re.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", re.Attempts)
	}
	if e.Failures("sheets-export") != 3 {
		t.Errorf("failures = %d, want 3", e.Failures("sheets-export"))
	}
}

func TestExecuteShouldRetryStopsEarly(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: time.Millisecond, Multiplier: 2.0}
	cfg.ShouldRetry = IsTransient
	e, _ := newTestExecutor(cfg)

	calls := 0
	permanent := errors.New("invalid payload")
	err := e.Execute(context.Background(), "api", func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("error = %v, want the permanent error unwrapped", err)
	}
	if IsRetryExhausted(err) {
		t.Error("permanent error must not be reported as retry exhaustion")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecuteValReturnsValue(t *testing.T) {
	e, _ := newTestExecutor(Config{MaxRetries: 3, InitialDelay: time.Millisecond, Multiplier: 2.0})

	calls := 0
	got, err := ExecuteVal(context.Background(), e, "fetch", func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("value = %d, want 42", got)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	e := NewExecutor(Config{MaxRetries: 5, InitialDelay: time.Hour, Multiplier: 2.0})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- e.Execute(ctx, "slow", func(context.Context) error {
			calls++
			return errors.New("fail")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 before cancellation", calls)
	}
}

func TestDelayJitterBounds(t *testing.T) {
	e := NewExecutor(Config{MaxRetries: 1, InitialDelay: 10 * time.Second, MaxDelay: time.Minute, Multiplier: 2.0})

	for i := 0; i < 200; i++ {
		d := e.delayFor(0)
		if d < 8*time.Second || d > 12*time.Second {
			t.Fatalf("delay %v outside ±20%% of 10s", d)
		}
	}
}

func TestDelayCappedAtMax(t *testing.T) {
	e := NewExecutor(Config{InitialDelay: 5 * time.Second, MaxDelay: 60 * time.Second, Multiplier: 2.0})
	e.randF = func() float64 { return 0.5 }

	// 5s * 2^10 far exceeds the cap.
	if d := e.delayFor(10); d != 60*time.Second {
		t.Errorf("delay = %v, want 60s cap", d)
	}
}

func TestCheckRateLimitWindow(t *testing.T) {
	e, slept := newTestExecutor(DefaultConfig())
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := e.CheckRateLimit(ctx, "messaging", 3, time.Minute); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if len(*slept) != 0 {
		t.Fatalf("slept during free slots: %v", *slept)
	}

	// Fourth request exhausts the window and waits the remainder.
	now = now.Add(10 * time.Second)
	if err := e.CheckRateLimit(ctx, "messaging", 3, time.Minute); err != nil {
		t.Fatalf("blocked request: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 50*time.Second {
		t.Errorf("slept = %v, want [50s]", *slept)
	}

	// The wait opened a fresh window with one slot consumed.
	if err := e.CheckRateLimit(ctx, "messaging", 3, time.Minute); err != nil {
		t.Errorf("post-window request: %v", err)
	}
	if len(*slept) != 1 {
		t.Errorf("slept %d times, want 1", len(*slept))
	}
}

func TestCheckRateLimitExpiredWindowResets(t *testing.T) {
	e, slept := newTestExecutor(DefaultConfig())
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := e.CheckRateLimit(ctx, "sheets", 2, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	now = now.Add(2 * time.Minute)
	if err := e.CheckRateLimit(ctx, "sheets", 2, time.Minute); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 0 {
		t.Errorf("slept on expired window: %v", *slept)
	}
}

func TestCheckRateLimitPerContext(t *testing.T) {
	e, slept := newTestExecutor(DefaultConfig())
	ctx := context.Background()

	if err := e.CheckRateLimit(ctx, "a", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := e.CheckRateLimit(ctx, "b", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 0 {
		t.Errorf("independent contexts shared a window: %v", *slept)
	}

	if err := e.CheckRateLimit(ctx, "a", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 1 {
		t.Errorf("second request on a full window must wait, slept = %v", *slept)
	}
}

func TestCheckRateLimitCancellation(t *testing.T) {
	e := NewExecutor(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.CheckRateLimit(ctx, "x", 1, time.Hour); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := e.CheckRateLimit(ctx, "x", 1, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestContextMapBounded(t *testing.T) {
	e, _ := newTestExecutor(DefaultConfig())

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tick := 0
	e.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	ctx := context.Background()

	for i := 0; i < maxTrackedContexts*2; i++ {
		if err := e.CheckRateLimit(ctx, fmt.Sprintf("ctx-%d", i), 10, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	e.mu.Lock()
	n := len(e.contexts)
	e.mu.Unlock()
	if n > maxTrackedContexts {
		t.Errorf("tracked contexts = %d, want <= %d", n, maxTrackedContexts)
	}
}

func TestPresets(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		tries int
		init  time.Duration
		max   time.Duration
		mult  float64
	}{
		{"default", DefaultConfig(), 5, 5 * time.Second, 60 * time.Second, 2.0},
		{"sheets", SheetsConfig(), 3, 7 * time.Second, 30 * time.Second, 1.5},
		{"analytics", AnalyticsConfig(), 5, 3 * time.Second, 45 * time.Second, 2.0},
		{"messaging", MessagingConfig(), 4, 2 * time.Second, 20 * time.Second, 1.8},
	}
	for _, tc := range cases {
		if tc.cfg.MaxRetries != tc.tries || tc.cfg.InitialDelay != tc.init ||
			tc.cfg.MaxDelay != tc.max || tc.cfg.Multiplier != tc.mult {
			t.Errorf("%s preset = %+v", tc.name, tc.cfg)
		}
	}
}
