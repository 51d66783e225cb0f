package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meeshareey/voice-core/core/llms/gemini"
)

var chatAttachments []string

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Send a one-shot text message",
	Long: `Send a one-shot text message.

Prints the reply; if the model decides to generate an image, the image is
written to the working directory as a PNG file.

Examples:
  meeshareey chat how do I spot a phishing email
  meeshareey chat --attach screenshot.png is this email legitimate`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		opts := []gemini.ChatOption{gemini.WithSystemInstruction(config.SystemPrompt)}
		if config.ChatModel != "" {
			opts = append(opts, gemini.WithChatModel(config.ChatModel))
		}
		client, err := gemini.NewChatClient(cmd.Context(), opts...)
		if err != nil {
			return err
		}

		attachments := make([]gemini.Attachment, 0, len(chatAttachments))
		for _, path := range chatAttachments {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read attachment: %w", err)
			}
			attachments = append(attachments, gemini.Attachment{MIMEType: attachmentMIMEType(path), Data: data})
		}

		reply, err := client.Send(cmd.Context(), strings.Join(args, " "), attachments...)
		if err != nil {
			return err
		}

		if reply.Text != "" {
			fmt.Println(reply.Text)
		}

		for i, description := range reply.ImageRequests {
			fmt.Printf("Generating an image of: %q\n", description)
			image, err := client.GenerateImage(cmd.Context(), description)
			if err != nil {
				fmt.Printf("Image generation failed: %v\n", err)
				continue
			}
			name := fmt.Sprintf("meeshareey-image-%d.png", i+1)
			if err := os.WriteFile(name, image, 0o644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}
			fmt.Println("Wrote", name)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringArrayVar(&chatAttachments, "attach", nil, "image file to attach (repeatable)")
}

func attachmentMIMEType(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
