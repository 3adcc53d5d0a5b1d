// Package wav provides a minimal RIFF/WAVE reader for PCM16 audio,
// sufficient for loading enrollment voice samples.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
)

// maxChunkSize bounds how much a single chunk may claim. Enrollment
// samples are seconds of speech; a declared size beyond this is a
// corrupt or hostile header, not real audio.
const maxChunkSize = 64 << 20

// Audio is decoded WAVE audio: PCM16 signed little-endian mono samples.
type Audio struct {
	// Data is the raw PCM16LE mono audio.
	Data []byte

	// SampleRate is the sample rate in Hz.
	SampleRate int
}

// Decode reads a RIFF/WAVE stream and returns its PCM16 mono audio.
// Stereo input is downmixed to mono by averaging channels. Only
// uncompressed 16-bit PCM (format tag 1) is supported.
func Decode(r io.Reader) (*Audio, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	var (
		sampleRate int
		channels   int
		haveFmt    bool
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("wav: missing data chunk")
			}
			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])
		if size > maxChunkSize {
			return nil, fmt.Errorf("wav: %q chunk claims %d bytes (limit %d)", id, size, maxChunkSize)
		}

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			if len(body) < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 {
				return nil, fmt.Errorf("wav: unsupported format tag %d (want PCM)", format)
			}
			if bits != 16 {
				return nil, fmt.Errorf("wav: unsupported bit depth %d (want 16)", bits)
			}
			if channels != 1 && channels != 2 {
				return nil, fmt.Errorf("wav: unsupported channel count %d", channels)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			if channels == 2 {
				data = downmix(data)
			}
			return &Audio{Data: data, SampleRate: sampleRate}, nil

		default:
			// Skip unknown chunks (LIST, fact, ...). Chunks are word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("wav: skip %q chunk: %w", id, err)
			}
		}
	}
}

// downmix averages interleaved stereo PCM16LE frames into mono.
func downmix(b []byte) []byte {
	samples := pcm.DecodeInt16(b)
	frames := len(samples) / 2
	mono := make([]int16, frames)
	for i := range frames {
		mono[i] = int16((int32(samples[i*2]) + int32(samples[i*2+1])) / 2)
	}
	return pcm.EncodeInt16(mono)
}
