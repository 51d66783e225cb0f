package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// ErrMalformedPCM reports a PCM payload whose length is not a whole number
// of 16-bit samples. Callers are expected to drop the offending payload.
var ErrMalformedPCM = fmt.Errorf("malformed pcm payload: not a whole number of 16-bit samples")

// FloatsToPCM16 converts samples in [-1, 1] to 16-bit signed little-endian
// mono PCM. Each sample is scaled by 32768 and truncated.
func FloatsToPCM16(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample*32768)))
	}
	return pcm
}

// PCM16ToFloats converts 16-bit signed little-endian PCM to samples scaled
// by 1/32768, de-interleaving channels into a single sequence in frame
// order.
func PCM16ToFloats(pcm []byte, channels int) ([]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if len(pcm)%2 != 0 {
		return nil, ErrMalformedPCM
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}
	return samples, nil
}

// EncodeBytes converts a byte sequence to the binary-safe text form used on
// the transport.
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBytes is the inverse of EncodeBytes.
func DecodeBytes(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transport payload: %w", err)
	}
	return data, nil
}
