package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/voicekit/pkg/voicekitcfg"
)

func TestResolverAbsolutePathWithMediaRoot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sample := filepath.Join(dir, "alice1.wav")
	if err := os.WriteFile(sample, []byte("pcm"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := voicekitcfg.Default()
	cfg.MediaRoot = t.TempDir()
	r, err := newResolver(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// An absolute locator must not resolve under media_root.
	store, path, err := r.Resolve(sample)
	if err != nil {
		t.Fatal(err)
	}
	rc, err := store.Read(ctx, path)
	if err != nil {
		t.Fatalf("read %s: %v", sample, err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pcm" {
		t.Errorf("content = %q, want %q", got, "pcm")
	}
}

func TestResolverMediaSourceUsesMediaRoot(t *testing.T) {
	ctx := context.Background()
	cfg := voicekitcfg.Default()
	cfg.MediaRoot = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.MediaRoot, "bob.wav"), []byte("pcm"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := newResolver(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	store, path, err := r.Resolve("media-source://media_source/local/bob.wav")
	if err != nil {
		t.Fatal(err)
	}
	rc, err := store.Read(ctx, path)
	if err != nil {
		t.Fatalf("read via media root: %v", err)
	}
	rc.Close()
}

func TestResolverSupportsS3Locators(t *testing.T) {
	cfg := voicekitcfg.Default()
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://127.0.0.1:9000"
	r, err := newResolver(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, key, err := r.Resolve("s3://samples/alice2.wav")
	if err != nil {
		t.Fatalf("s3 locator not resolved: %v", err)
	}
	if key != "alice2.wav" {
		t.Errorf("key = %q, want %q", key, "alice2.wav")
	}
}
