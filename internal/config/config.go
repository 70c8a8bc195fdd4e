// Package config loads chatorg settings from a YAML file and
// environment variables.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	OpenAI OpenAIConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string // optional; empty disables bearer auth
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the YAML file at
// $XDG_CONFIG_HOME/chatorg/config.yaml, then applies CHATORG_* environment
// variables on top. A .env file in the working directory is loaded first,
// so it can supply those variables during development.
//
// Secrets (the OpenAI API key and the server API token) are environment-only
// and never read from or written to the config file.
func Load() (Config, error) {
	godotenv.Load()
	return loadWith(newFileStore(configFilePath()))
}

func loadWith(fs *fileStore) (Config, error) {
	cfg := defaults()

	if err := applyFile(&cfg, fs); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. " +
			"Set it via environment variable CHATORG_OPENAI_API_KEY or a .env file")
	}

	return cfg, nil
}
