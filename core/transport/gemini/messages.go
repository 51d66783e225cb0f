package gemini

import "github.com/meeshareey/voice-core/core/transport"

// Wire frames for the bidirectional generate-content websocket. Only the
// fields this client negotiates or reads are modeled; unknown fields are
// ignored on decode.

type setupFrame struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string            `json:"model"`
	GenerationConfig         *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *content          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInputFrame struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	Text        string       `json:"text,omitempty"`
	MediaChunks []inlineData `json:"mediaChunks,omitempty"`
}

type serverFrame struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	ModelTurn           *content       `json:"modelTurn,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

// toServerMessage flattens a serverContent frame into the transport-level
// event. Audio is taken from the first inline-data part of the model turn,
// matching how the service interleaves one chunk per message.
func (c serverContent) toServerMessage() transport.ServerMessage {
	message := transport.ServerMessage{
		TurnComplete: c.TurnComplete,
		Interrupted:  c.Interrupted,
	}

	if c.InputTranscription != nil {
		message.UserTranscript = c.InputTranscription.Text
	}
	if c.OutputTranscription != nil {
		message.ModelTranscript = c.OutputTranscription.Text
	}

	if c.ModelTurn != nil {
		for _, part := range c.ModelTurn.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				message.AudioData = part.InlineData.Data
				message.AudioMIMEType = part.InlineData.MIMEType
				break
			}
		}
	}

	return message
}
