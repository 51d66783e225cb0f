package session

import (
	"context"
	"sync/atomic"

	"github.com/meeshareey/voice-core/core/audio"
)

// capturePipeline bridges the microphone frame stream into the fixed-size
// chunk protocol expected by the transport.
//
// It holds no buffering beyond the frame being processed: every frame is
// encoded synchronously and handed to the outbound sink fire-and-forget, in
// strict device order.
type capturePipeline struct {
	input AudioInput

	// capturing gates frame delivery so teardown stops consumption
	// immediately even if the device delivers one more callback.
	capturing atomic.Bool

	// sink receives encoded outbound chunks tagged with the capture media
	// type.
	sink func(mimeType string, pcm []byte)
}

func newCapturePipeline(input AudioInput, sink func(mimeType string, pcm []byte)) *capturePipeline {
	if sink == nil {
		sink = func(string, []byte) {}
	}
	return &capturePipeline{input: input, sink: sink}
}

func (p *capturePipeline) Start(ctx context.Context) error {
	if p.input == nil {
		return ErrNoAudioDevice
	}
	if !p.capturing.CompareAndSwap(false, true) {
		return nil
	}

	if err := p.input.StartCapture(ctx, p.onFrame); err != nil {
		p.capturing.Store(false)
		return err
	}
	return nil
}

func (p *capturePipeline) onFrame(frame []float32) {
	if !p.capturing.Load() {
		return
	}

	p.sink(audio.CaptureMIMEType, audio.FloatsToPCM16(frame))
}

func (p *capturePipeline) Stop() error {
	if !p.capturing.CompareAndSwap(true, false) {
		return nil
	}
	return p.input.StopCapture()
}
