package session

import (
	"context"

	"github.com/meeshareey/voice-core/core/transport"
)

type SessionOption func(*Session)

// AudioInput is an exclusive-access microphone device delivering fixed-size
// frames of float samples at the capture rate.
type AudioInput interface {
	// OpenCapture acquires the device; failure is surfaced as a
	// permission/device error.
	OpenCapture(ctx context.Context) error
	// StartCapture begins delivering frames of CaptureFrameSamples samples
	// in strict temporal order.
	StartCapture(ctx context.Context, onFrame func(frame []float32)) error
	StopCapture() error
	// CloseCapture releases the device. Safe to call when not open.
	CloseCapture() error
}

// AudioOutput is an output device context at the playback rate that pulls
// 16-bit mono frames through the render callback.
type AudioOutput interface {
	OpenPlayback(ctx context.Context, render func(out []byte)) error
	// ClosePlayback stops pulling and releases the device. Safe to call
	// when not open.
	ClosePlayback() error
}

func WithTransport(client transport.Client) SessionOption {
	return func(s *Session) { s.transport = client }
}

func WithAudioInput(client AudioInput) SessionOption {
	return func(s *Session) { s.input = client }
}

func WithAudioOutput(client AudioOutput) SessionOption {
	return func(s *Session) { s.output = client }
}

func WithVoice(voice string) SessionOption {
	return func(s *Session) { s.voice = voice }
}

func WithModel(model string) SessionOption {
	return func(s *Session) { s.model = model }
}

func WithSystemInstruction(instruction string) SessionOption {
	return func(s *Session) { s.systemInstruction = instruction }
}

// WithPrimingMessage sets the text sent once on transport open to elicit
// the remote party's greeting.
func WithPrimingMessage(message string) SessionOption {
	return func(s *Session) { s.primingMessage = message }
}

// WithTurnStartedCallback registers the publisher for newly created turns,
// invoked immediately on the first fragment so the application can render a
// live-updating turn.
func WithTurnStartedCallback(callback func(turn Turn)) SessionOption {
	return func(s *Session) { s.onTurnStarted = callback }
}

// WithTurnUpdatedCallback registers the publisher for appended and
// finalised turns.
func WithTurnUpdatedCallback(callback func(turn Turn)) SessionOption {
	return func(s *Session) { s.onTurnUpdated = callback }
}

// WithErrorCallback registers the surface for user-visible session errors.
func WithErrorCallback(callback func(err error)) SessionOption {
	return func(s *Session) { s.onError = callback }
}
