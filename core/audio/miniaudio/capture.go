package miniaudio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/meeshareey/voice-core/core/audio"
)

type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	// dataMu guards the accumulator state shared with the device thread.
	// The device lifecycle stays on mu, so stopping the device never
	// contends with an in-flight data callback.
	dataMu sync.Mutex
	// frame accumulates device samples until a full fixed-size frame can be
	// emitted, preserving device order with no further batching.
	frame   []float32
	onFrame func(frame []float32)

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.CaptureRate)
	channels := 1
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = sampleRate
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	c.audioContext = audioContext
	c.dataMu.Lock()
	c.frame = make([]float32, 0, audio.CaptureFrameSamples)
	c.dataMu.Unlock()

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.appendSamples(pInput[:n])
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

// appendSamples converts raw device bytes to float samples and emits them
// in fixed frames of CaptureFrameSamples. Runs on the device thread; the
// callback is invoked outside the lock.
func (c *captureClient) appendSamples(raw []byte) {
	var emitted [][]float32

	c.dataMu.Lock()
	for i := 0; i+4 <= len(raw); i += 4 {
		c.frame = append(c.frame, math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
		if len(c.frame) == audio.CaptureFrameSamples {
			frame := make([]float32, audio.CaptureFrameSamples)
			copy(frame, c.frame)
			c.frame = c.frame[:0]
			emitted = append(emitted, frame)
		}
	}
	onFrame := c.onFrame
	c.dataMu.Unlock()

	if onFrame == nil {
		return
	}
	for _, frame := range emitted {
		onFrame(frame)
	}
}

func (c *captureClient) Start(onFrame func(frame []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.device.IsStarted() {
		return nil
	}

	c.dataMu.Lock()
	c.onFrame = onFrame
	c.dataMu.Unlock()

	if err := c.device.Start(); err != nil {
		c.dataMu.Lock()
		c.onFrame = nil
		c.dataMu.Unlock()
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	c.dataMu.Lock()
	c.onFrame = nil
	c.frame = c.frame[:0]
	c.dataMu.Unlock()
	return nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.dataMu.Lock()
	c.onFrame = nil
	c.dataMu.Unlock()
	return nil
}
