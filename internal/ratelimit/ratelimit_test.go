package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNew_Burst(t *testing.T) {
	tests := []struct {
		rpm       int
		wantBurst int
	}{
		{rpm: 120, wantBurst: 12},
		{rpm: 5, wantBurst: 1},
		{rpm: 600, wantBurst: 60},
	}
	for _, tt := range tests {
		if got := New(tt.rpm).Burst(); got != tt.wantBurst {
			t.Errorf("New(%d).Burst() = %d, want %d", tt.rpm, got, tt.wantBurst)
		}
	}
}

func TestLimiter_BlocksAfterBurst(t *testing.T) {
	l := New(60) // 1 rps, burst 6
	for i := 0; i < 6; i++ {
		if !l.Allow() {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst should be rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("Wait should fail when the deadline is shorter than the refill")
	}
}

func TestNew_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatal("unlimited limiter rejected a request")
		}
	}
}
