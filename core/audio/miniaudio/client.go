// Package miniaudio provides malgo-backed audio device clients: an
// exclusive capture device at the fixed 16kHz capture rate and an output
// context at the fixed 24kHz playback rate.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
)

// Client owns one shared miniaudio context and the capture and playback
// devices opened against it. It satisfies both device interfaces of the
// session package.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	return &Client{audioContext: audioCtx}, nil
}

// OpenCapture acquires the microphone device. Devices can be reopened
// after CloseCapture for a fresh session.
func (c *Client) OpenCapture(_ context.Context) error {
	return c.captureClient.Init(c.audioContext)
}

func (c *Client) StartCapture(_ context.Context, onFrame func(frame []float32)) error {
	return c.captureClient.Start(onFrame)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) CloseCapture() error {
	return c.captureClient.Uninit()
}

// OpenPlayback opens the output context and immediately begins pulling
// frames through render, which fills silence until audio is scheduled.
func (c *Client) OpenPlayback(_ context.Context, render func(out []byte)) error {
	if err := c.playbackClient.Init(c.audioContext, render); err != nil {
		return err
	}
	if err := c.playbackClient.Start(); err != nil {
		_ = c.playbackClient.Uninit()
		return err
	}
	return nil
}

func (c *Client) ClosePlayback() error {
	if c.playbackClient.device != nil {
		_ = c.playbackClient.Stop()
	}
	return c.playbackClient.Uninit()
}

// Close releases both devices and the shared context.
func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
