// Package gemini provides the plain request/response collaborators around
// the live session: a history-carrying text chat with tool-call detection
// and one-shot image generation.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const (
	defaultChatModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"

	generateImageToolName = "generateImage"
)

// Attachment is an inline binary part of a user message, e.g. an image to
// analyze.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Reply is the model's answer to one exchange. ImageRequests carries the
// descriptions of any generateImage tool calls the model issued instead of
// (or alongside) text.
type Reply struct {
	Text          string
	ImageRequests []string
}

// ChatClient is a stateful text chat. Safe for sequential use; one
// exchange at a time.
type ChatClient struct {
	client *genai.Client

	chatModel         string
	imageModel        string
	systemInstruction string

	mu      sync.Mutex
	history []*genai.Content
}

type ChatOption func(*ChatClient)

func WithChatModel(model string) ChatOption {
	return func(c *ChatClient) { c.chatModel = model }
}

func WithImageModel(model string) ChatOption {
	return func(c *ChatClient) { c.imageModel = model }
}

func WithSystemInstruction(instruction string) ChatOption {
	return func(c *ChatClient) { c.systemInstruction = instruction }
}

func NewChatClient(ctx context.Context, opts ...ChatOption) (*ChatClient, error) {
	apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok {
		return nil, fmt.Errorf("gemini api key not found")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	chatClient := &ChatClient{
		client:     client,
		chatModel:  defaultChatModel,
		imageModel: defaultImageModel,
	}
	for _, opt := range opts {
		opt(chatClient)
	}
	return chatClient, nil
}

// Send submits one user message (text and/or attachments) and returns the
// model's reply. The exchange is appended to the conversation history.
func (c *ChatClient) Send(ctx context.Context, message string, attachments ...Attachment) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "send chat message")
	defer span.End()

	parts := []*genai.Part{}
	if message != "" {
		parts = append(parts, genai.NewPartFromText(message))
	}
	for _, attachment := range attachments {
		parts = append(parts, genai.NewPartFromBytes(attachment.Data, attachment.MIMEType))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty message")
	}

	userContent := &genai.Content{Role: "user", Parts: parts}

	c.mu.Lock()
	contents := append(append([]*genai.Content{}, c.history...), userContent)
	c.mu.Unlock()

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{generateImageDeclaration()}}},
	}
	if c.systemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(c.systemInstruction)}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, contents, config)
	if err != nil {
		recordedErr := fmt.Errorf("chat generation failed: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}

	reply := &Reply{}
	var modelContent *genai.Content
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		modelContent = resp.Candidates[0].Content
		for _, part := range modelContent.Parts {
			if part.Text != "" {
				reply.Text += part.Text
			}
			if part.FunctionCall != nil && part.FunctionCall.Name == generateImageToolName {
				if description, ok := part.FunctionCall.Args["description"].(string); ok {
					reply.ImageRequests = append(reply.ImageRequests, description)
				}
			}
		}
	}

	c.mu.Lock()
	c.history = append(c.history, userContent)
	if modelContent != nil {
		c.history = append(c.history, modelContent)
	}
	c.mu.Unlock()

	return reply, nil
}

// GenerateImage renders a description into PNG bytes.
func (c *ChatClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "generate image")
	defer span.End()

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(prompt)}},
	}, config)
	if err != nil {
		recordedErr := fmt.Errorf("image generation failed: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	logger.Warn("image generation returned no image data", "prompt", prompt)
	return nil, fmt.Errorf("no image data found in response")
}

func generateImageDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        generateImageToolName,
		Description: "Generates an image based on a user-provided description.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": {
					Type:        genai.TypeString,
					Description: "A detailed description of the image to generate.",
				},
			},
			Required: []string{"description"},
		},
	}
}
