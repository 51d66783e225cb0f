package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/meeshareey/voice-core/core/audio"
	"github.com/meeshareey/voice-core/core/transport"
)

const (
	liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	defaultModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	defaultVoice = "Puck"
)

var _ transport.Client = (*LiveClient)(nil)

// LiveClient is a bidirectional websocket connection to the live
// conversational service.
type LiveClient struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	closed atomic.Bool
}

// NewLiveClient validates credentials without opening a connection, so a
// missing key fails fast before any device is touched.
func NewLiveClient() (*LiveClient, error) {
	if _, ok := os.LookupEnv("GEMINI_API_KEY"); !ok {
		return nil, fmt.Errorf("gemini api key not found")
	}
	return &LiveClient{}, nil
}

// Connect dials the live endpoint, negotiates the session and starts the
// read loop. It returns after the service acknowledges the setup frame;
// the open callback fires just before inbound dispatch begins.
func (c *LiveClient) Connect(ctx context.Context, opts ...transport.ConnectOption) error {
	options := &transport.ConnectOptions{
		Model: defaultModel,
		Voice: defaultVoice,
	}
	for _, opt := range opts {
		opt(options)
	}

	apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok {
		return fmt.Errorf("gemini api key not found")
	}

	// A fresh connection attempt supersedes any earlier close, so the same
	// client can carry another session after a stop.
	c.closed.Store(false)

	liveURL, _ := url.Parse(liveEndpoint)
	queryParams := liveURL.Query()
	queryParams.Set("key", apiKey)
	liveURL.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, liveURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to open socket connection to live service: %w", err)
	}

	if err := conn.WriteJSON(newSetupFrame(*options)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send session setup: %w", err)
	}

	// The first inbound frame acknowledges setup; anything else means the
	// negotiation failed.
	var ack serverFrame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read session setup acknowledgment: %w", err)
	}
	if ack.SetupComplete == nil {
		conn.Close()
		return fmt.Errorf("live service rejected session setup")
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if options.OpenCallback != nil {
		options.OpenCallback()
	}

	go c.readAndProcessMessages(conn, *options)

	return nil
}

func newSetupFrame(options transport.ConnectOptions) setupFrame {
	frame := setupFrame{
		Setup: setupPayload{
			Model: "models/" + options.Model,
			GenerationConfig: &generationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &speechConfig{
					VoiceConfig: &voiceConfig{
						PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: options.Voice},
					},
				},
			},
			InputAudioTranscription:  &struct{}{},
			OutputAudioTranscription: &struct{}{},
		},
	}
	if options.SystemInstruction != "" {
		frame.Setup.SystemInstruction = &content{Parts: []part{{Text: options.SystemInstruction}}}
	}
	return frame
}

// SendText sends a plain text realtime input, used to prime the remote
// party at session start.
func (c *LiveClient) SendText(text string) error {
	return c.writeFrame(realtimeInputFrame{RealtimeInput: realtimeInput{Text: text}})
}

// SendAudio sends one outbound audio chunk. Raw PCM is converted to the
// transport's binary-safe text form here, at the wire edge.
func (c *LiveClient) SendAudio(mimeType string, data []byte) error {
	return c.writeFrame(realtimeInputFrame{RealtimeInput: realtimeInput{
		MediaChunks: []inlineData{{MIMEType: mimeType, Data: audio.EncodeBytes(data)}},
	}})
}

func (c *LiveClient) writeFrame(frame any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("live connection not open")
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to write to live service: %w", err)
	}
	return nil
}

// Close tears the connection down. Safe to call multiple times, safe to
// call while the read loop is blocked on the socket, and closes whatever
// connection is installed at the time of the call, so a connection attempt
// completing after an earlier Close is still released by the next one.
func (c *LiveClient) Close() error {
	c.closed.Store(true)

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close live connection: %w", err)
	}
	return nil
}

func (c *LiveClient) readAndProcessMessages(conn *websocket.Conn, options transport.ConnectOptions) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()

			if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if options.CloseCallback != nil {
					options.CloseCallback(nil)
				}
				return
			}

			if options.ErrorCallback != nil {
				options.ErrorCallback(fmt.Errorf("live connection dropped: %w", err))
			}
			return
		}

		c.processMessage(msg, options)
	}
}

// processMessage translates one wire frame into a transport event.
// Inbound frames are dispatched synchronously so delivery order is
// preserved end to end.
func (c *LiveClient) processMessage(msg []byte, options transport.ConnectOptions) {
	var frame serverFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		log.Println("Failed to unmarshal live service message", "error", err)
		return
	}

	if frame.ServerContent == nil {
		return
	}

	if options.MessageCallback != nil {
		options.MessageCallback(frame.ServerContent.toServerMessage())
	}
}
