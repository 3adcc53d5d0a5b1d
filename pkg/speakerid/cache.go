package speakerid

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/voicekit/pkg/storage"
)

// CacheSuffix is the extension of embedding sidecar files, stored next to
// their source audio file ("alice.wav" → "alice.embedding").
const CacheSuffix = ".embedding"

// cachedEmbedding is the serialized sidecar payload.
type cachedEmbedding struct {
	Dimension int       `msgpack:"dimension"`
	Vector    []float32 `msgpack:"vector"`
}

// Cache persists one embedding per enrollment sample next to its source
// file, keyed solely by path. A changed source file with an unchanged path
// serves a stale cached vector; there is no content or mtime check.
// Entries are created lazily on first enrollment and never deleted
// automatically.
type Cache struct {
	suffix string
}

// NewCache creates a Cache using [CacheSuffix] for sidecar names.
func NewCache() *Cache {
	return &Cache{suffix: CacheSuffix}
}

// Get loads the cached embedding for the sample at path within store.
// Returns false if no valid cached artifact exists; the caller must then
// compute the embedding and Put it. Unreadable or corrupt sidecars are
// treated as absent.
func (c *Cache) Get(ctx context.Context, store storage.FileStore, path string) ([]float32, bool) {
	side := storage.SidecarPath(path, c.suffix)
	r, err := store.Read(ctx, side)
	if err != nil {
		return nil, false
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		slog.Debug("speakerid: read cached embedding", "path", side, "error", err)
		return nil, false
	}
	var entry cachedEmbedding
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		slog.Debug("speakerid: decode cached embedding", "path", side, "error", err)
		return nil, false
	}
	if len(entry.Vector) == 0 || len(entry.Vector) != entry.Dimension {
		return nil, false
	}
	return entry.Vector, true
}

// Put stores vec as the cached embedding for the sample at path.
func (c *Cache) Put(ctx context.Context, store storage.FileStore, path string, vec []float32) error {
	data, err := msgpack.Marshal(cachedEmbedding{Dimension: len(vec), Vector: vec})
	if err != nil {
		return fmt.Errorf("speakerid: encode embedding: %w", err)
	}
	side := storage.SidecarPath(path, c.suffix)
	w, err := store.Write(ctx, side)
	if err != nil {
		return fmt.Errorf("speakerid: open sidecar %s: %w", side, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("speakerid: write sidecar %s: %w", side, err)
	}
	return w.Close()
}
