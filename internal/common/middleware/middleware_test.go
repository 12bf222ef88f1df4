package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	tb := NewTokenBucket(2, 1000)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected third request rejected")
	}

	time.Sleep(5 * time.Millisecond)
	if !tb.Allow(ctx) {
		t.Fatalf("expected request allowed after refill")
	}
}

func TestSlidingWindowLimit(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !sw.Allow(ctx) {
			t.Fatalf("request %d unexpectedly rejected", i)
		}
	}
	if sw.Allow(ctx) {
		t.Fatalf("expected request over the window limit rejected")
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 20*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected breaker open after max failures")
	}
	if err := cb.Call(ctx, func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	// first probe after the reset timeout goes through and closes the breaker
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected probe to succeed, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected breaker closed after successful probe")
	}
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	_ = cb.Call(ctx, func() error { return boom })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected breaker open")
	}

	time.Sleep(15 * time.Millisecond)
	_ = cb.Call(ctx, func() error { return boom })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected breaker re-opened after failed probe")
	}
}
