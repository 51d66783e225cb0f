// Package main provides the meeshareey CLI.
//
// Usage:
//
//	meeshareey [flags] <command> [args]
//
// Commands:
//
//	live     - Start a live microphone conversation
//	chat     - Send a one-shot text message
//
// Configuration:
//
//	Voice, model and persona settings are read from
//	<user config dir>/meeshareey/config.yaml; the GEMINI_API_KEY
//	environment variable must be set.
package main

import (
	"fmt"
	"os"

	"github.com/meeshareey/voice-core/cmd/meeshareey/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
