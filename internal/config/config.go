package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// ProviderConfig stores the configuration for a single LLM provider.
type ProviderConfig struct {
	APIEndpoint string `json:"api_endpoint,omitempty"`
	Model       string `json:"model"`
	APIKeyEnv   string `json:"api_key_env"` // Environment variable holding the credential; empty means none is needed
	MaxTokens   int    `json:"max_tokens,omitempty"`

	// APIKey is resolved from APIKeyEnv at startup and never persisted.
	APIKey string `json:"-"`
}

// LoggingConfig defines logging configuration options.
type LoggingConfig struct {
	Level      string `json:"level"`       // trace, debug, info, warn, error
	Format     string `json:"format"`      // json, text
	Output     string `json:"output"`      // file, console, both
	LogFile    string `json:"log_file"`    // Log file path, defaults to ~/.config/aishell/logs/aishell.log
	MaxSize    int    `json:"max_size"`    // MB before rotation
	MaxBackups int    `json:"max_backups"` // Rotated files kept
	MaxAge     int    `json:"max_age"`     // Days rotated files are kept
}

// UserPreferences stores user-specific settings.
type UserPreferences struct {
	Language    string        `json:"language"`
	PostAction  string        `json:"post_action"` // none, ask, run, copy
	Clipboard   string        `json:"clipboard"`   // auto, system, osc52, off
	WrapperName string        `json:"wrapper_name"`
	ShowDiff    bool          `json:"show_diff"` // Highlight changes between successive suggestions
	Logging     LoggingConfig `json:"logging"`
}

// Config is the main configuration structure for the application.
type Config struct {
	DefaultProvider string                    `json:"default_provider"`
	Providers       map[string]ProviderConfig `json:"providers"`
	UserPreferences UserPreferences           `json:"user_preferences"`
}

// GetConfigDir returns the directory holding config.json, prompts.json and the handoff file.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvAishellConfig); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFileName), nil
}

func defaultProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderClaude: {APIEndpoint: ClaudeAPIEndpoint, Model: DefaultClaudeModel, APIKeyEnv: EnvAnthropicAPIKey, MaxTokens: DefaultMaxTokens},
		ProviderOpenAI: {APIEndpoint: OpenAIAPIEndpoint, Model: DefaultOpenAIModel, APIKeyEnv: EnvOpenAIAPIKey, MaxTokens: DefaultMaxTokens},
		// 留空時由 Ollama 客戶端讀取 OLLAMA_HOST
		ProviderOllama: {Model: DefaultOllamaModel},
	}
}

// NewDefaultConfig returns the configuration used when no file exists.
func NewDefaultConfig() *Config {
	return &Config{
		DefaultProvider: ProviderClaude,
		Providers:       defaultProviders(),
		UserPreferences: UserPreferences{
			Language:    "en",
			PostAction:  PostActionAsk,
			Clipboard:   ClipboardAuto,
			WrapperName: DefaultWrapperName,
			ShowDiff:    true,
			Logging: LoggingConfig{
				Level:      LogLevelWarn,
				Format:     LogFormatText,
				Output:     LogOutputConsole,
				MaxSize:    MaxLogFileSize,
				MaxBackups: DefaultMaxBackups,
				MaxAge:     DefaultMaxAgeDays,
			},
		},
	}
}

// Load reads the configuration from the default path. A missing file yields
// the defaults and nothing is written back.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, aerrors.ErrConfigLoadFailed("", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path, layering it over the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.fillDefaults(nil)
		return cfg, nil
	}
	if err != nil {
		return nil, aerrors.ErrConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, aerrors.ErrConfigLoadFailed(path, err)
	}
	var stored struct {
		Providers map[string]map[string]json.RawMessage `json:"providers"`
	}
	_ = json.Unmarshal(data, &stored)
	cfg.fillDefaults(stored.Providers)

	if _, err := cfg.ValidateAndFix(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores per-provider fields that a partial config file left
// empty. An api_key_env the file states explicitly, even as "", is kept.
func (c *Config) fillDefaults(stored map[string]map[string]json.RawMessage) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, def := range defaultProviders() {
		pc, ok := c.Providers[name]
		if !ok {
			c.Providers[name] = def
			continue
		}
		if pc.APIEndpoint == "" {
			pc.APIEndpoint = def.APIEndpoint
		}
		if pc.Model == "" {
			pc.Model = def.Model
		}
		if _, explicit := stored[name]["api_key_env"]; !explicit && pc.APIKeyEnv == "" {
			pc.APIKeyEnv = def.APIKeyEnv
		}
		if pc.MaxTokens == 0 {
			pc.MaxTokens = def.MaxTokens
		}
		c.Providers[name] = pc
	}

	if c.UserPreferences.Logging.LogFile == "" {
		if dir, err := GetConfigDir(); err == nil {
			c.UserPreferences.Logging.LogFile = filepath.Join(dir, DefaultLogDir, DefaultLogFileName)
		}
	}
}

// Provider returns the named provider configuration.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	pc, ok := c.Providers[name]
	return pc, ok
}

// Save writes the current configuration to the default path.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return aerrors.ErrConfigSaveFailed("", err)
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as indented JSON.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return aerrors.ErrConfigSaveFailed(path, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return aerrors.ErrConfigSaveFailed(path, err)
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return aerrors.ErrConfigSaveFailed(path, err)
	}
	return nil
}
