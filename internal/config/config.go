package config

import (
	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Ollama OllamaConfig
	Agent  AgentConfig
	Store  StoreConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type AgentConfig struct {
	MaxToolRounds int
	TurnTimeout   string
}

type StoreConfig struct {
	DataDir  string
	ReadOnly bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4400,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Agent: AgentConfig{
			MaxToolRounds: 5,
			TurnTimeout:   "2m",
		},
		Store: StoreConfig{
			DataDir:  ":memory:",
			ReadOnly: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a .env file when present, the JSON file
// backend at $XDG_CONFIG_HOME/llamasql/config.json, and LLAMASQL_*
// environment variables in that order of increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
