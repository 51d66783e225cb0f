//go:build cgo

// Package portaudio provides a PortAudio-backed alternative to the
// miniaudio device clients, using blocking stream loops.
package portaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/meeshareey/voice-core/core/audio"
)

type Client struct {
	mu sync.Mutex

	captureStream *portaudio.Stream
	in            []float32
	captureCancel context.CancelFunc

	playbackStream *portaudio.Stream
	out            []int16
	playbackCancel context.CancelFunc
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Client{}, nil
}

func (c *Client) OpenCapture(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureStream != nil {
		return nil
	}

	c.in = make([]float32, audio.CaptureFrameSamples)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(audio.CaptureRate), audio.CaptureFrameSamples, c.in)
	if err != nil {
		return fmt.Errorf("failed to open capture stream: %w", err)
	}
	c.captureStream = stream
	return nil
}

func (c *Client) StartCapture(ctx context.Context, onFrame func(frame []float32)) error {
	c.mu.Lock()
	stream := c.captureStream
	if stream == nil {
		c.mu.Unlock()
		return fmt.Errorf("capture stream not open")
	}
	ctx, c.captureCancel = context.WithCancel(ctx)
	c.mu.Unlock()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	log.Println("Starting microphone capture")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := stream.Read(); err != nil {
					log.Printf("Failed to read capture stream: %v", err)
					return
				}
				frame := make([]float32, len(c.in))
				copy(frame, c.in)
				onFrame(frame)
			}
		}
	}()
	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureCancel != nil {
		c.captureCancel()
		c.captureCancel = nil
	}
	if c.captureStream == nil {
		return nil
	}
	if err := c.captureStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *Client) CloseCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureCancel != nil {
		c.captureCancel()
		c.captureCancel = nil
	}
	if c.captureStream == nil {
		return nil
	}
	err := c.captureStream.Close()
	c.captureStream = nil
	if err != nil {
		return fmt.Errorf("failed to close capture stream: %w", err)
	}
	return nil
}

func (c *Client) OpenPlayback(ctx context.Context, render func(out []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playbackStream != nil {
		return nil
	}

	// ~100ms of output per write keeps the render loop comfortably ahead
	// of the device.
	frames := audio.PlaybackRate / 10
	c.out = make([]int16, frames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(audio.PlaybackRate), frames, c.out)
	if err != nil {
		return fmt.Errorf("failed to open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start playback stream: %w", err)
	}
	c.playbackStream = stream

	ctx, c.playbackCancel = context.WithCancel(ctx)
	buf := make([]byte, frames*2)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				render(buf)
				for i := range c.out {
					c.out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
				}
				if err := stream.Write(); err != nil {
					// Underflow is routine when scheduling gaps leave the
					// buffer silent; keep going.
					continue
				}
			}
		}
	}()
	return nil
}

func (c *Client) ClosePlayback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playbackCancel != nil {
		c.playbackCancel()
		c.playbackCancel = nil
	}
	if c.playbackStream == nil {
		return nil
	}
	_ = c.playbackStream.Stop()
	err := c.playbackStream.Close()
	c.playbackStream = nil
	if err != nil {
		return fmt.Errorf("failed to close playback stream: %w", err)
	}
	return nil
}

// Close releases the PortAudio runtime.
func (c *Client) Close() {
	_ = c.CloseCapture()
	_ = c.ClosePlayback()
	_ = portaudio.Terminate()
}
