// Package transport describes the boundary with the remote conversational
// service: a bidirectional message channel carrying outbound text and audio
// chunks and inbound tagged events.
package transport

import "context"

// ServerMessage is one inbound `message` event. Any combination of fields
// may be set on a single message.
type ServerMessage struct {
	// AudioData holds synthesized audio as binary-safe text encoded PCM at
	// the playback rate. Empty when the message carries no audio.
	AudioData string
	// AudioMIMEType tags the audio payload, e.g. "audio/pcm;rate=24000".
	AudioMIMEType string

	// UserTranscript is an incremental speech-to-text delta of the user's
	// speech.
	UserTranscript string
	// ModelTranscript is an incremental speech-to-text delta of the model's
	// speech.
	ModelTranscript string

	// TurnComplete marks the end of the current exchange.
	TurnComplete bool
	// Interrupted signals that the in-progress model utterance was cut off
	// and all queued playback for it must be discarded.
	Interrupted bool
}

// HasAudio reports whether the message carries an audio payload.
func (m ServerMessage) HasAudio() bool { return m.AudioData != "" }

// Client is a bidirectional connection to the remote conversational
// service.
//
// Connect dials the service and returns once the channel is negotiated;
// inbound events are delivered through the connect option callbacks in
// strict arrival order. SendText and SendAudio are safe for concurrent use.
// Close is idempotent.
type Client interface {
	Connect(ctx context.Context, opts ...ConnectOption) error
	SendText(text string) error
	SendAudio(mimeType string, data []byte) error
	Close() error
}
