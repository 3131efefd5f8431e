package cache

import (
	"context"
	"testing"
	"time"
)

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](50*time.Millisecond)
	defer c.Close()

	c.Set(ctx, "kalshi", 1)
	if v, ok := c.Get(ctx, "kalshi"); !ok || v != 1 {
		t.Fatalf("Get = %d, %v; want 1, true", v, ok)
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok := c.Get(ctx, "kalshi"); ok {
		t.Fatal("entry should have expired after the TTL")
	}
}

func TestCache_NoExpiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](0)

	c.Set(ctx, "k", 7)
	time.Sleep(10 * time.Millisecond)

	if v, ok := c.Get(ctx, "k"); !ok || v != 7 {
		t.Errorf("Get = %d, %v; want 7, true", v, ok)
	}
}

func TestCache_SizeBound(t *testing.T) {
	ctx := context.Background()
	c := New[int, int](time.Minute, WithSize(2))

	c.Set(ctx, 1, 1)
	c.Set(ctx, 2, 2)
	c.Set(ctx, 3, 3)

	if _, ok := c.Get(ctx, 1); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Delete(ctx, 2)
	if _, ok := c.Get(ctx, 2); ok {
		t.Error("deleted entry still present")
	}

	c.Close()
	if c.Len() != 0 {
		t.Errorf("Len after Close = %d, want 0", c.Len())
	}
}
