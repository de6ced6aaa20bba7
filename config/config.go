package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Database struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"database"`
	Vector struct {
		ConnectionString string `yaml:"connection_string"`
		Dimension        int    `yaml:"dimension"`
	} `yaml:"vector"`
	Ollama struct {
		BaseURL   string `yaml:"base_url"`
		ChatModel string `yaml:"chat_model"`
	} `yaml:"ollama"`
	Embeddings struct {
		TextModel string `yaml:"text_model"`
	} `yaml:"embeddings"`
	Processing struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
		TopK         int `yaml:"top_k"`
	} `yaml:"processing"`
	Watcher struct {
		DebounceSeconds int `yaml:"debounce_seconds"`
	} `yaml:"watcher"`
	Chat struct {
		SystemPrompt string `yaml:"system_prompt"`
		HistoryLimit int    `yaml:"history_limit"`
	} `yaml:"chat"`
	Paths struct {
		DocumentsDir string `yaml:"documents_dir"`
	} `yaml:"paths"`
}

// Load loads configuration from file or returns defaults.
// Environment variables DATABASE_URL, OLLAMA_BASE_URL and SYSTEM_PROMPT
// override the corresponding file values when set.
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(os.Getenv("HOME"), ".kbot", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".kbot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Database.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"
	cfg.Vector.Dimension = 768
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.ChatModel = "llama3.2"
	cfg.Embeddings.TextModel = "nomic-embed-text"
	cfg.Processing.ChunkSize = 1000
	cfg.Processing.ChunkOverlap = 150
	cfg.Processing.TopK = 5
	cfg.Watcher.DebounceSeconds = 5
	cfg.Chat.SystemPrompt = "You are a helpful assistant answering questions from a private knowledge base."
	cfg.Chat.HistoryLimit = 10

	homeDir := os.Getenv("HOME")
	cfg.Paths.DocumentsDir = filepath.Join(homeDir, "documents")

	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.ConnectionString = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("SYSTEM_PROMPT"); v != "" {
		cfg.Chat.SystemPrompt = v
	}
	// The chunk collection lives in the same database by default, but always
	// behind its own connection pool.
	if cfg.Vector.ConnectionString == "" {
		cfg.Vector.ConnectionString = cfg.Database.ConnectionString
	}
}
