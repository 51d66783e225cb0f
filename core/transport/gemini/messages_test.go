package gemini

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/meeshareey/voice-core/core/transport"
)

func TestNewSetupFrameCarriesSessionConfiguration(t *testing.T) {
	frame := newSetupFrame(transport.ConnectOptions{
		Model:             "test-model",
		Voice:             "Puck",
		SystemInstruction: "Be terse.",
	})

	encoded, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("expected setup frame to marshal, got error: %v", err)
	}

	for _, expected := range []string{
		`"model":"models/test-model"`,
		`"responseModalities":["AUDIO"]`,
		`"voiceName":"Puck"`,
		`"inputAudioTranscription":{}`,
		`"outputAudioTranscription":{}`,
		`"text":"Be terse."`,
	} {
		if !strings.Contains(string(encoded), expected) {
			t.Fatalf("expected setup frame to contain %s, got %s", expected, encoded)
		}
	}
}

func TestNewSetupFrameOmitsEmptySystemInstruction(t *testing.T) {
	frame := newSetupFrame(transport.ConnectOptions{Model: "test-model", Voice: "Puck"})

	encoded, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("expected setup frame to marshal, got error: %v", err)
	}
	if strings.Contains(string(encoded), "systemInstruction") {
		t.Fatalf("expected no system instruction in setup frame, got %s", encoded)
	}
}

func TestServerContentToServerMessageFlattensCombinedFrame(t *testing.T) {
	raw := `{
		"serverContent": {
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "AAAA"}}]},
			"inputTranscription": {"text": "hello"},
			"outputTranscription": {"text": "hi there"},
			"turnComplete": true
		}
	}`

	var frame serverFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("expected server frame to unmarshal, got error: %v", err)
	}
	if frame.ServerContent == nil {
		t.Fatal("expected server content to be present")
	}

	message := frame.ServerContent.toServerMessage()
	if message.AudioData != "AAAA" {
		t.Fatalf("expected audio data AAAA, got %q", message.AudioData)
	}
	if message.AudioMIMEType != "audio/pcm;rate=24000" {
		t.Fatalf("expected playback mime type, got %q", message.AudioMIMEType)
	}
	if message.UserTranscript != "hello" {
		t.Fatalf("expected user transcript delta, got %q", message.UserTranscript)
	}
	if message.ModelTranscript != "hi there" {
		t.Fatalf("expected model transcript delta, got %q", message.ModelTranscript)
	}
	if !message.TurnComplete {
		t.Fatal("expected turn complete to be set")
	}
	if message.Interrupted {
		t.Fatal("expected interrupted to be unset")
	}
}

func TestServerContentToServerMessageInterruption(t *testing.T) {
	frame := serverContent{Interrupted: true}

	message := frame.toServerMessage()
	if !message.Interrupted {
		t.Fatal("expected interrupted to be set")
	}
	if message.HasAudio() {
		t.Fatal("expected no audio payload")
	}
}
