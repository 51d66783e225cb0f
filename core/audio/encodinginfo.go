package audio

import "time"

const (
	// CaptureRate is the fixed microphone sample rate sent to the service.
	CaptureRate = 16000
	// PlaybackRate is the fixed sample rate of synthesized audio received
	// from the service.
	PlaybackRate = 24000

	// CaptureFrameSamples is the fixed number of samples per outbound frame.
	CaptureFrameSamples = 4096

	DefaultFormat = "linear16"
)

// CaptureMIMEType tags outbound chunks on the transport.
const CaptureMIMEType = "audio/pcm;rate=16000"

func GetCaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureRate, Format: EncodingLinear16}
}

func GetPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// Duration returns the playback time covered by a byte count in this
// encoding, mono.
func (e EncodingInfo) Duration(bytes int) time.Duration {
	samples := bytes / e.Format.ByteSize()
	return time.Duration(samples) * time.Second / time.Duration(e.SampleRate)
}

// BytesInDuration returns the byte count covering a duration in this
// encoding, mono.
func (e EncodingInfo) BytesInDuration(d time.Duration) int {
	samples := int(time.Duration(e.SampleRate) * d / time.Second)
	return samples * e.Format.ByteSize()
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingLinear16 encodingFormat = "linear16"
)
