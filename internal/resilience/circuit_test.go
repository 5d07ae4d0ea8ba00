package resilience

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("leadsource", 3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := cb.Allow(); err != nil {
			t.Fatalf("request %d rejected while closed: %v", i+1, err)
		}
		cb.Failure()
	}

	if cb.State() != CircuitOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}

	err := cb.Allow()
	var open *ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if open.Name != "leadsource" {
		t.Errorf("name = %q, want leadsource", open.Name)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("crm", 1, time.Minute)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Fatal("breaker must open after one failure with threshold 1")
	}

	// Probe before cooldown is rejected.
	if err := cb.Allow(); err == nil {
		t.Fatal("probe admitted before cooldown")
	}

	now = now.Add(61 * time.Second)
	if err := cb.Allow(); err != nil {
		t.Fatalf("probe rejected after cooldown: %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("state = %s, want half-open", cb.State())
	}

	// Only one concurrent probe.
	if err := cb.Allow(); err == nil {
		t.Error("second probe admitted while first in flight")
	}

	cb.Success()
	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want closed after successful probe", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("crm", 1, time.Minute)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.Failure()
	now = now.Add(2 * time.Minute)
	if err := cb.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Errorf("state = %s, want open after failed probe", cb.State())
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("invalid payload"), false},
		{NewTransientError(errors.New("rate limited"), 429), true},
		{fmt.Errorf("wrap: %w", NewTransientError(errors.New("down"), 503)), true},
		{&net.DNSError{IsTimeout: true}, true},
		{errors.New("read tcp: connection reset by peer"), true},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("status %d not transient", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("status %d reported transient", code)
		}
	}
}
