package pcm

// DecodeInt16 converts raw PCM16 signed little-endian bytes to int16 samples.
// A trailing odd byte, if any, is discarded.
func DecodeInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := range n {
		out[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return out
}

// EncodeInt16 converts int16 samples to raw PCM16 signed little-endian bytes.
func EncodeInt16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// ToFloat32 converts raw PCM16 signed little-endian bytes to float32 samples
// normalized to [-1, 1).
func ToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := range n {
		s := int16(b[i*2]) | int16(b[i*2+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// FromFloat32 converts normalized float32 samples to raw PCM16 signed
// little-endian bytes, clamping values outside [-1, 1].
func FromFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(s * 32767.0)
		if s > 1.0 {
			v = 32767
		} else if s < -1.0 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// TrimSilence removes leading and trailing samples whose absolute amplitude
// is below threshold (raw int16 scale, e.g. 300 ≈ -40dB). The middle of the
// signal is left untouched. Returns the input slice if nothing is trimmed.
func TrimSilence(samples []int16, threshold int16) []int16 {
	limit := int32(threshold)
	start := 0
	for start < len(samples) && abs16(samples[start]) < limit {
		start++
	}
	end := len(samples)
	for end > start && abs16(samples[end-1]) < limit {
		end--
	}
	return samples[start:end]
}

// TrimSilenceBytes is TrimSilence operating directly on PCM16LE bytes.
func TrimSilenceBytes(b []byte, threshold int16) []byte {
	samples := DecodeInt16(b)
	trimmed := TrimSilence(samples, threshold)
	if len(trimmed) == len(samples) {
		return b[:len(samples)*2]
	}
	return EncodeInt16(trimmed)
}

// abs16 widens before negating so math.MinInt16 does not wrap.
func abs16(v int16) int32 {
	if v < 0 {
		return -int32(v)
	}
	return int32(v)
}
