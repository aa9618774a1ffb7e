package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func newFileCache(t *testing.T, ttl time.Duration, clock *fakeClock) (*FileCache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := NewFileCache(dir, Options{TTL: ttl, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	return c, dir
}

func TestFileCacheHitBeforeExpiry(t *testing.T) {
	clock := newClock()
	c, _ := newFileCache(t, time.Hour, clock)
	ctx := context.Background()

	if err := c.Set(ctx, "abc", `{"a":1}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.Advance(time.Hour - time.Second)

	got, ok := c.Get(ctx, "abc")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got != `{"a":1}` {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestFileCacheExpiresAtTTLAndRemovesEntry(t *testing.T) {
	clock := newClock()
	c, dir := newFileCache(t, time.Hour, clock)
	ctx := context.Background()

	if err := c.Set(ctx, "abc", "payload"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.Advance(time.Hour)

	if _, ok := c.Get(ctx, "abc"); ok {
		t.Fatalf("expected miss once age reaches ttl")
	}
	if _, err := os.Stat(filepath.Join(dir, "abc.json")); !os.IsNotExist(err) {
		t.Fatalf("expected expired entry to be removed, stat err = %v", err)
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	clock := newClock()
	c, _ := newFileCache(t, 0, clock)
	ctx := context.Background()

	if err := c.Set(ctx, "abc", "payload"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.Advance(365 * 24 * time.Hour)

	if _, ok := c.Get(ctx, "abc"); !ok {
		t.Fatalf("expected hit with expiry disabled")
	}
}

func TestFileCacheMalformedEntryIsMissAndRemoved(t *testing.T) {
	clock := newClock()
	c, dir := newFileCache(t, time.Hour, clock)
	path := filepath.Join(dir, "bad.json")

	cases := []string{
		"not json",
		`{"value":"x"}`,
		`{"timestamp":1700000000}`,
	}
	for _, raw := range cases {
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, ok := c.Get(context.Background(), "bad"); ok {
			t.Fatalf("expected miss for %q", raw)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected malformed entry %q to be removed", raw)
		}
	}
}

func TestFileCacheReadsEnvelopeWrittenByOtherProcess(t *testing.T) {
	clock := newClock()
	c, dir := newFileCache(t, time.Hour, clock)
	raw := `{"timestamp": 1699999990.5, "value": "{\"k\":\"v\"}"}`
	if err := os.WriteFile(filepath.Join(dir, "ext.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, ok := c.Get(context.Background(), "ext")
	if !ok || got != `{"k":"v"}` {
		t.Fatalf("expected envelope payload, got %q ok=%v", got, ok)
	}
}

func TestFileCacheRejectsPathLikeKeys(t *testing.T) {
	c, _ := newFileCache(t, time.Hour, newClock())
	if err := c.Set(context.Background(), "../escape", "x"); err == nil {
		t.Fatalf("expected error for path-like key")
	}
	if _, ok := c.Get(context.Background(), "../escape"); ok {
		t.Fatalf("expected miss for path-like key")
	}
}

func TestFileCachePruneRemovesOnlyExpired(t *testing.T) {
	clock := newClock()
	c, dir := newFileCache(t, time.Hour, clock)
	ctx := context.Background()

	if err := c.Set(ctx, "old", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.Advance(30 * time.Minute)
	if err := c.Set(ctx, "fresh", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	clock.Advance(30 * time.Minute)

	if err := c.Prune(ctx); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	for name, want := range map[string]bool{"old.json": false, "junk.json": false, "fresh.json": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Fatalf("%s exists=%v, want %v", name, exists, want)
		}
	}
}

func TestFileCacheClearRemovesEverything(t *testing.T) {
	c, dir := newFileCache(t, time.Hour, newClock())
	ctx := context.Background()
	for _, k := range []string{"a", "b"} {
		if err := c.Set(ctx, k, k); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "a.123.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestDisabledCacheNeverHits(t *testing.T) {
	var c Disabled
	ctx := context.Background()
	if err := c.Set(ctx, "a", "b"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected disabled cache to miss")
	}
}
