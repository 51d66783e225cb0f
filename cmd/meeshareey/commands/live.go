package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	session "github.com/meeshareey/voice-core/core"
	"github.com/meeshareey/voice-core/core/audio/miniaudio"
	"github.com/meeshareey/voice-core/core/transport/gemini"
)

var (
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	modelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Start a live microphone conversation",
	Long: `Start a live microphone conversation.

Captures microphone audio, streams it to the conversational service and
plays the synthesized replies. Transcripts of both sides are printed as
turns complete. Press Ctrl-C to hang up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		liveClient, err := gemini.NewLiveClient()
		if err != nil {
			return err
		}

		devices, err := miniaudio.NewClient()
		if err != nil {
			return err
		}
		defer devices.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := []session.SessionOption{
			session.WithTransport(liveClient),
			session.WithAudioInput(devices),
			session.WithAudioOutput(devices),
			session.WithVoice(config.Voice),
			session.WithSystemInstruction(config.SystemPrompt),
			session.WithPrimingMessage(config.PrimingMessage),
			session.WithTurnStartedCallback(func(turn session.Turn) {
				fmt.Println(dimStyle.Render(string(turn.Speaker) + " is speaking..."))
			}),
			session.WithTurnUpdatedCallback(func(turn session.Turn) {
				if !turn.Final {
					return
				}
				label := userStyle.Render("You: ")
				if turn.Speaker == session.SpeakerModel {
					label = modelStyle.Render("Meeshareey: ")
				}
				fmt.Println(label + turn.Text)
			}),
			session.WithErrorCallback(func(err error) {
				fmt.Println(dimStyle.Render("session error: " + err.Error()))
				stop()
			}),
		}
		if config.Model != "" {
			opts = append(opts, session.WithModel(config.Model))
		}

		liveSession := session.NewSession(opts...)
		if err := liveSession.Start(ctx); err != nil {
			return err
		}
		defer liveSession.Stop()

		fmt.Println(dimStyle.Render("Live chat is active. Press Ctrl-C to hang up."))
		<-ctx.Done()
		return nil
	},
}
