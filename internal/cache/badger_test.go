package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBadgerCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "zr:snapshot:room", []byte(`{"state":"in_meeting"}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "zr:snapshot:room")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"state":"in_meeting"}` {
		t.Errorf("Unexpected value %q", got)
	}

	m := c.GetMetrics()
	if m.Hits != 1 || m.Misses != 1 || m.Sets != 1 || m.Keys != 1 {
		t.Errorf("Unexpected metrics %+v", m)
	}
}

func TestBadgerCacheTTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// badger TTLs have one-second resolution
	if err := c.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected expired entry, got %v", err)
	}
}

func TestBadgerCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	kg := NewKeyGenerator("")

	c.Set(ctx, kg.SnapshotKey("Room-1"), []byte("a"), 0)
	c.Set(ctx, kg.SnapshotKey("room-2"), []byte("b"), 0)
	c.Set(ctx, "other", []byte("c"), 0)

	if err := c.Delete(ctx, kg.SnapshotKey("room-2")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, kg.SnapshotKey("room-2")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted key to be gone, got %v", err)
	}

	if err := c.DeleteByPrefix(ctx, "zr:snapshot:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, err := c.Get(ctx, kg.SnapshotKey("room-1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected prefix delete, got %v", err)
	}
	if _, err := c.Get(ctx, "other"); err != nil {
		t.Errorf("Unrelated key removed: %v", err)
	}
}

func TestKeyGenerator(t *testing.T) {
	kg := NewKeyGenerator("")
	if got := kg.SnapshotKey(" Room.Local "); got != "zr:snapshot:room.local" {
		t.Errorf("Unexpected key %q", got)
	}
	if got := NewKeyGenerator("test").SnapshotKey("a"); got != "test:snapshot:a" {
		t.Errorf("Unexpected key %q", got)
	}
}
