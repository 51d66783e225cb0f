package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const defaultSystemPrompt = `You are Meeshareey, a highly advanced AI cybersecurity analyst with a powerful mathematical brain.
Your purpose is to provide expert analysis on cyber threats, online safety, and digital security best practices.
You can also analyze images related to cybersecurity (e.g., screenshots of phishing emails).
Your responses must be concise, precise, and directly address the user's query. Avoid conversational fluff.
Use markdown for clarity.
If the user asks you to generate an image, you must use the generateImage tool.`

const defaultPrimingMessage = "State your name and function, and ask how you can assist."

// Config holds the CLI's session settings.
type Config struct {
	Voice          string `yaml:"voice"`
	Model          string `yaml:"model"`
	ChatModel      string `yaml:"chat_model"`
	SystemPrompt   string `yaml:"system_prompt"`
	PrimingMessage string `yaml:"priming_message"`
}

func defaultConfig() Config {
	return Config{
		Voice:          "Puck",
		SystemPrompt:   defaultSystemPrompt,
		PrimingMessage: defaultPrimingMessage,
	}
}

// loadConfig reads the YAML config file, falling back to defaults when no
// file exists. Fields left empty in the file keep their defaults.
func loadConfig() (Config, error) {
	path := configPath
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine config directory: %w", err)
		}
		path = filepath.Join(base, "meeshareey", "config.yaml")
	}

	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && configPath == "" {
			return config, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := defaultConfig()
	if config.Voice == "" {
		config.Voice = defaults.Voice
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaults.SystemPrompt
	}
	if config.PrimingMessage == "" {
		config.PrimingMessage = defaults.PrimingMessage
	}

	return config, nil
}
