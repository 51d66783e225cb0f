package audio

import (
	"errors"
	"testing"
	"time"
)

func TestPCMRoundTripStaysWithinQuantizationError(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.25, -0.99, 0.99, 1.0 / 32768.0}

	decoded, err := PCM16ToFloats(FloatsToPCM16(samples), 1)
	if err != nil {
		t.Fatalf("expected round-trip to succeed, got error: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples after round-trip, got %d", len(samples), len(decoded))
	}

	for i, sample := range samples {
		diff := decoded[i] - sample
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/32768.0 {
			t.Fatalf("sample %d drifted by %f, more than one quantization step", i, diff)
		}
	}
}

func TestPCM16ToFloatsRejectsOddLengthPayload(t *testing.T) {
	if _, err := PCM16ToFloats([]byte{0x00, 0x01, 0x02}, 1); !errors.Is(err, ErrMalformedPCM) {
		t.Fatalf("expected ErrMalformedPCM for odd-length payload, got %v", err)
	}
}

func TestEncodeBytesRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0xff, 0x10, 0x80, 0x7f}

	decoded, err := DecodeBytes(EncodeBytes(payload))
	if err != nil {
		t.Fatalf("expected text round-trip to succeed, got error: %v", err)
	}
	if string(decoded) != string(payload) {
		t.Fatalf("expected %v after text round-trip, got %v", payload, decoded)
	}
}

func TestDecodeBytesRejectsInvalidText(t *testing.T) {
	if _, err := DecodeBytes("not base64!!"); err == nil {
		t.Fatal("expected an error for invalid transport text")
	}
}

func TestEncodingInfoDuration(t *testing.T) {
	info := GetPlaybackEncodingInfo()

	if got := info.Duration(48000); got != time.Second {
		t.Fatalf("expected 48000 bytes at 24kHz linear16 to last 1s, got %v", got)
	}
	if got := info.BytesInDuration(500 * time.Millisecond); got != 24000 {
		t.Fatalf("expected 500ms at 24kHz linear16 to be 24000 bytes, got %d", got)
	}
}
