package speakerid

import "context"

// Backend is the embedding capability behind the engine. The two adapters
// ([LocalBackend], [RemoteBackend]) are selected at construction time and
// used through this one interface.
//
// Implementations must be safe for concurrent use, and must reject empty
// or malformed audio with a KindBackend [Error] rather than panicking.
type Backend interface {
	// Embed converts raw PCM16 signed little-endian mono audio at the
	// given sample rate into a fixed-length embedding vector.
	Embed(ctx context.Context, audio []byte, sampleRate int) ([]float32, error)

	// Train installs the reference set used by Recognize and returns the
	// number of references installed. The local adapter holds the set in
	// process; the remote adapter uploads it to the scoring service.
	Train(ctx context.Context, refs *ReferenceSet) (int, error)

	// Recognize scores audio against the trained references and returns
	// the best owner with the full score map.
	Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error)

	// Dimension returns the embedding dimensionality.
	Dimension() int

	// Close releases resources held by the backend.
	Close() error
}
