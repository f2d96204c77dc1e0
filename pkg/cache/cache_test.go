package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || data != nil {
		t.Error("null cache stored data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, ok, _ := c.Get(ctx, "absent"); ok {
		t.Error("absent key reported as hit")
	}

	if err := c.Set(ctx, "graph:abc", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "graph:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(data) != "payload" {
		t.Errorf("Get = %q, %v, want payload hit", data, ok)
	}

	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "graph:abc"); ok {
		t.Error("deleted key still present")
	}
	// Deleting again is fine.
	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired entry reported as hit")
	}
}

func TestKeys(t *testing.T) {
	type loadOpts struct {
		Source int
		Target int
	}

	a := SourceKey("hash1", loadOpts{0, 1})
	b := SourceKey("hash1", loadOpts{0, 1})
	if a != b {
		t.Error("identical inputs produced different keys")
	}
	if a == SourceKey("hash2", loadOpts{0, 1}) {
		t.Error("different source hash produced same key")
	}
	if a == SourceKey("hash1", loadOpts{0, 2}) {
		t.Error("different options produced same key")
	}

	if ArtifactKey(a, "svg") == ArtifactKey(a, "png") {
		t.Error("different formats produced same artifact key")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if len(h) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
}

// TestRedisCache exercises the Redis backend against a live instance.
// Set GRAPHWEAVE_REDIS_ADDR (e.g. "localhost:6379") to run it.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("GRAPHWEAVE_REDIS_ADDR")
	if addr == "" {
		t.Skip("GRAPHWEAVE_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "graphweave-test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(data) != "payload" {
		t.Errorf("Get = %q, %v, want payload hit", data, ok)
	}
}
