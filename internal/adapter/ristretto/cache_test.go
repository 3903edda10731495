package ristretto

import (
	"context"
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "token", []byte("tok-1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := c.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(val) != "tok-1" {
		t.Fatalf("got %q, ok=%v", val, ok)
	}

	if err := c.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "token"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestGetMiss(t *testing.T) {
	c, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if _, ok, _ := c.Get(context.Background(), "absent"); ok {
		t.Fatal("expected miss")
	}
}
