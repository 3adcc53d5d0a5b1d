// Package resampler provides sample rate conversion for 16-bit signed
// mono PCM audio, using a pure Go resampler (no CGO/FFI dependencies).
package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts mono PCM16 signed little-endian audio from srcRate to
// dstRate and returns the converted bytes. If the rates are equal the input
// is returned unchanged.
func Resample(audio []byte, srcRate, dstRate int) ([]byte, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		return audio, nil
	}

	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}

	numSamples := len(audio) / 2
	input := make([]float64, numSamples)
	for i := range numSamples {
		s := int16(audio[i*2]) | int16(audio[i*2+1])<<8
		input[i] = float64(s) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		v := int16(s * 32767.0)
		if s > 1.0 {
			v = 32767
		} else if s < -1.0 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out, nil
}
