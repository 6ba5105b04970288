package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("test:", time.Minute)

	if _, err := c.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("Get de key inexistente: err = %v, esperaba ErrNotFound", err)
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Fatalf("Get = %q, esperaba %q", got, "v")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("Get tras Delete: err = %v, esperaba ErrNotFound", err)
	}
}

func TestMemoryTTLExpira(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)

	if err := c.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("Get tras TTL: err = %v, esperaba ErrNotFound", err)
	}
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(Config{Kind: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
