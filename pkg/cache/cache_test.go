package cache

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "elements:abc", []byte(`[1,2,3]`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "elements:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `[1,2,3]` {
		t.Errorf("Get = %q, want [1,2,3]", data)
	}

	if err := c.Delete(ctx, "elements:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "elements:abc"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "elements:abc"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as hit")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		mutate func(raw []byte) []byte
	}{
		{"not json", func([]byte) []byte { return []byte("{not json") }},
		{"truncated", func(raw []byte) []byte { return raw[:len(raw)/2] }},
		{"checksum", func(raw []byte) []byte {
			return []byte(strings.Replace(string(raw), `"sum":"`, `"sum":"00`, 1))
		}},
		{"other key", func(raw []byte) []byte {
			return []byte(strings.Replace(string(raw), `"key":"k"`, `"key":"j"`, 1))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFileCache(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			if err := c.Set(ctx, "k", []byte(`[{"position":{"x":1}}]`), 0); err != nil {
				t.Fatal(err)
			}
			raw, err := os.ReadFile(c.path("k"))
			if err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(c.path("k"), tt.mutate(raw), 0o644); err != nil {
				t.Fatal(err)
			}

			data, hit, err := c.Get(ctx, "k")
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Get() err = %v, want ErrCorrupt", err)
			}
			if hit || data != nil {
				t.Errorf("Get() = %q, hit %v; want miss", data, hit)
			}
			if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
				t.Errorf("corrupt entry not removed: %v", err)
			}
			if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
				t.Errorf("second Get() = hit %v, err %v; want clean miss", hit, err)
			}
		})
	}
}

func TestFileCacheLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(filepath.Dir(c.path("k")))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entry dir has %d files, want 1", len(entries))
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("cache dir missing after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

type keyConfig struct {
	Seed   uint32
	Cutoff float32
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := ElementsKeyOpts{Version: 1, Config: keyConfig{Seed: 1, Cutoff: 0.01}}
	key := k.ElementsKey(base)
	if !strings.HasPrefix(key, "elements:") {
		t.Errorf("ElementsKey missing prefix: %s", key)
	}
	if key != k.ElementsKey(base) {
		t.Error("ElementsKey should be deterministic")
	}

	tests := []struct {
		name string
		opts ElementsKeyOpts
	}{
		{"version", ElementsKeyOpts{Version: 2, Config: base.Config}},
		{"seed", ElementsKeyOpts{Version: 1, Config: keyConfig{Seed: 2, Cutoff: 0.01}}},
		{"cutoff", ElementsKeyOpts{Version: 1, Config: keyConfig{Seed: 1, Cutoff: 0.02}}},
		{"infinite cutoff", ElementsKeyOpts{Version: 1, Config: keyConfig{Seed: 1, Cutoff: float32(math.Inf(1))}}},
	}
	seen := map[string]string{key: "base"}
	for _, tt := range tests {
		got := k.ElementsKey(tt.opts)
		if prev, ok := seen[got]; ok {
			t.Errorf("%s key collides with %s", tt.name, prev)
		}
		seen[got] = tt.name
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "scene:harbor:")
	opts := ElementsKeyOpts{Version: 1, Config: keyConfig{Seed: 7}}

	got := scoped.ElementsKey(opts)
	if got != "scene:harbor:"+inner.ElementsKey(opts) {
		t.Errorf("ScopedKeyer ElementsKey unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	opts := ElementsKeyOpts{Version: 1}
	if got, want := scoped.ElementsKey(opts), "prefix:"+NewDefaultKeyer().ElementsKey(opts); got != want {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrCorrupt) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrCorrupt
	})
	if err != ErrCorrupt {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted retries: err %v after %d calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
