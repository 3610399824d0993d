package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the user's persistent configuration preferences.
type Config struct {
	Provider     string `json:"provider,omitempty"`      // openai, anthropic, ollama, deepseek
	APIKey       string `json:"api_key,omitempty"`       // The API key for the selected provider
	Model        string `json:"model,omitempty"`         // Default model name
	BaseURL      string `json:"base_url,omitempty"`      // Optional override for API base URL
	Storage      string `json:"storage,omitempty"`       // Session store backend: file or sqlite
	DataDir      string `json:"data_dir,omitempty"`      // Directory holding the storefront fixtures
	HistoryLimit int    `json:"history_limit,omitempty"` // Conversation turns kept per session
}

// Manager handles loading and saving the configuration.
type Manager struct {
	configDir string
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}
	return &Manager{configDir: filepath.Join(configDir, "concierge")}, nil
}

// Path returns the absolute path to the config.json file.
func (m *Manager) Path() string {
	return filepath.Join(m.configDir, "config.json")
}

// Load reads the configuration from disk.
// If the file does not exist, it returns an empty Config and no error.
func (m *Manager) Load() (*Config, error) {
	path := m.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config json: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to disk with restricted permissions (0600).
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists checks if the configuration file has been created.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.Path())
	return !os.IsNotExist(err)
}

// ApplyEnv exports saved settings as provider environment variables. Values
// saved through the setup flow win over whatever is already in the shell so
// a stale exported key cannot shadow a fresh config.
func (c *Config) ApplyEnv() {
	if c.Provider != "" {
		os.Setenv("LLM_PROVIDER", c.Provider)
	}
	if c.APIKey == "" {
		return
	}
	switch c.Provider {
	case "openai":
		os.Setenv("OPENAI_API_KEY", c.APIKey)
		if c.Model != "" {
			os.Setenv("OPENAI_MODEL", c.Model)
		}
		if c.BaseURL != "" {
			os.Setenv("OPENAI_BASE_URL", c.BaseURL)
		}
	case "anthropic":
		os.Setenv("ANTHROPIC_API_KEY", c.APIKey)
		if c.Model != "" {
			os.Setenv("ANTHROPIC_MODEL", c.Model)
		}
	case "deepseek":
		os.Setenv("DEEPSEEK_API_KEY", c.APIKey)
		if c.Model != "" {
			os.Setenv("DEEPSEEK_MODEL", c.Model)
		}
	}
}
