package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalWriteRead(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	w, err := s.Write(ctx, "samples/alice.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("RIFFdata")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := s.Read(ctx, "samples/alice.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "RIFFdata" {
		t.Errorf("data = %q", data)
	}
}

// Until the writer is closed, the target path must not exist; sidecar
// readers never observe a partial write.
func TestLocalWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	w, err := s.Write(ctx, "alice.embedding")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}

	if ok, _ := s.Exists(ctx, "alice.embedding"); ok {
		t.Fatal("target must not exist before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "alice.embedding"); !ok {
		t.Fatal("target must exist after Close")
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".embedding.") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestLocalWriteOverwrites(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		w, err := s.Write(ctx, "alice.embedding")
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(w, content)
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	r, err := s.Read(ctx, "alice.embedding")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "second" {
		t.Errorf("data = %q, want second", data)
	}
}

func TestLocalReadMissing(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Read(context.Background(), "nope.wav")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLocalDeleteIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	w, err := s.Write(ctx, "alice.wav")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()

	if err := s.Delete(ctx, "alice.wav"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "alice.wav"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, "alice.wav"); ok {
		t.Error("file should be gone")
	}
}

func TestLocalResolvesUnderRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Write(context.Background(), "a/b/c.wav")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if _, err := os.Stat(filepath.Join(dir, "a", "b", "c.wav")); err != nil {
		t.Errorf("file not under root: %v", err)
	}
}
