package speakerid

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/voicekit/pkg/storage"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	cache := NewCache()
	ctx := context.Background()

	if _, ok := cache.Get(ctx, store, "alice.wav"); ok {
		t.Fatal("Get before Put should miss")
	}

	vec := []float32{0.1, 0.2, 0.3}
	if err := cache.Put(ctx, store, "alice.wav", vec); err != nil {
		t.Fatal(err)
	}

	got, ok := cache.Get(ctx, store, "alice.wav")
	if !ok {
		t.Fatal("Get after Put should hit")
	}
	if len(got) != 3 || got[0] != 0.1 || got[2] != 0.3 {
		t.Errorf("got = %v, want %v", got, vec)
	}

	// Keyed by path only: a different path misses even with identical
	// audio content elsewhere.
	if _, ok := cache.Get(ctx, store, "bob.wav"); ok {
		t.Error("different path must miss")
	}
}

func TestCacheCorruptSidecarIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	side := filepath.Join(dir, "alice.embedding")
	if err := os.WriteFile(side, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := NewCache().Get(context.Background(), store, "alice.wav"); ok {
		t.Error("corrupt sidecar must read as a miss")
	}
}
