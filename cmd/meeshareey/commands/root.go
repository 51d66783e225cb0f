package commands

import "github.com/spf13/cobra"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "meeshareey",
	Short: "Voice and text conversations with the Meeshareey analyst",
	Long: `Voice and text conversations with the Meeshareey analyst.

The live command captures microphone audio, streams it to the
conversational service and plays the synthesized replies while printing
both sides' transcripts. The chat command is a plain one-shot text
exchange.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default <user config dir>/meeshareey/config.yaml)")
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(chatCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
