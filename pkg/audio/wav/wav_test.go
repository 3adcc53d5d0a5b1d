package wav

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
)

// encode builds a minimal WAVE file around the given PCM16LE data.
func encode(data []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodeMono(t *testing.T) {
	data := pcm.EncodeInt16([]int16{100, -200, 300})
	a, err := Decode(bytes.NewReader(encode(data, 16000, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if a.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", a.SampleRate)
	}
	if !bytes.Equal(a.Data, data) {
		t.Errorf("Data = %v, want %v", a.Data, data)
	}
}

func TestDecodeStereoDownmix(t *testing.T) {
	// Two frames: (100, 300) and (-200, -400).
	data := pcm.EncodeInt16([]int16{100, 300, -200, -400})
	a, err := Decode(bytes.NewReader(encode(data, 44100, 2)))
	if err != nil {
		t.Fatal(err)
	}
	got := pcm.DecodeInt16(a.Data)
	want := []int16{200, -300}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	data := pcm.EncodeInt16([]int16{1})
	raw := encode(data, 8000, 1)
	// Insert a LIST chunk between fmt and data.
	list := append([]byte("LIST"), 0x04, 0, 0, 0, 'I', 'N', 'F', 'O')
	raw = append(raw[:36], append(list, raw[36:]...)...)
	a, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if a.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", a.SampleRate)
	}
}

func TestDecodeRejectsOversizedChunk(t *testing.T) {
	raw := encode(nil, 16000, 1)
	// Claim a ~4GB data chunk; Decode must fail before allocating it.
	binary.LittleEndian.PutUint32(raw[40:44], 0xfffffff0)
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Error("expected error for oversized chunk claim")
	}
}

func TestDecodeNotWave(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not a wave file at all"))); err == nil {
		t.Error("expected error for non-WAVE input")
	}
}

func TestDecodeRejectsNonPCM(t *testing.T) {
	raw := encode(nil, 16000, 1)
	raw[20] = 3 // format tag: IEEE float
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Error("expected error for non-PCM format tag")
	}
}
