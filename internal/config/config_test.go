package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvAishellConfig, "")
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("Failed to get config path: %v", err)
	}

	if !strings.HasSuffix(path, filepath.Join(DefaultConfigDir, DefaultConfigFileName)) {
		t.Errorf("Config path should end with %s/%s, got %s", DefaultConfigDir, DefaultConfigFileName, path)
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	t.Setenv(EnvAishellConfig, "/tmp/custom-aishell.json")
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("Failed to get config path: %v", err)
	}
	if path != "/tmp/custom-aishell.json" {
		t.Errorf("Expected override path, got %s", path)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.DefaultProvider != ProviderClaude {
		t.Errorf("Expected default provider %s, got %s", ProviderClaude, config.DefaultProvider)
	}

	for _, provider := range GetSupportedProviders() {
		if _, exists := config.Providers[provider]; !exists {
			t.Errorf("Expected provider %s to exist in default config", provider)
		}
	}

	claude := config.Providers[ProviderClaude]
	if claude.Model != DefaultClaudeModel {
		t.Errorf("Expected Claude model %s, got %s", DefaultClaudeModel, claude.Model)
	}
	if claude.APIKeyEnv != EnvAnthropicAPIKey {
		t.Errorf("Expected Claude credential variable %s, got %s", EnvAnthropicAPIKey, claude.APIKeyEnv)
	}
	if claude.MaxTokens != DefaultMaxTokens {
		t.Errorf("Expected max tokens %d, got %d", DefaultMaxTokens, claude.MaxTokens)
	}

	if config.Providers[ProviderOllama].APIKeyEnv != "" {
		t.Error("Ollama should not require a credential")
	}

	prefs := config.UserPreferences
	if prefs.PostAction != PostActionAsk {
		t.Errorf("Expected post action %s, got %s", PostActionAsk, prefs.PostAction)
	}
	if prefs.Logging.Output != LogOutputConsole || prefs.Logging.Level != LogLevelWarn {
		t.Errorf("Expected console/warn logging, got %s/%s", prefs.Logging.Output, prefs.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromMissingFileDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.DefaultProvider != ProviderClaude {
		t.Errorf("Expected default provider, got %s", cfg.DefaultProvider)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Loading a missing config must not create the file")
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := NewDefaultConfig()
	cfg.DefaultProvider = ProviderOllama
	cfg.UserPreferences.Language = "zh-TW"
	cfg.UserPreferences.PostAction = PostActionCopy
	pc := cfg.Providers[ProviderOllama]
	pc.Model = "qwen2.5-coder"
	pc.APIKey = "never-persisted"
	cfg.Providers[ProviderOllama] = pc

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(data), "never-persisted") {
		t.Error("Resolved API keys must not be written to disk")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.DefaultProvider != ProviderOllama {
		t.Errorf("Expected DefaultProvider %s, got %s", ProviderOllama, loaded.DefaultProvider)
	}
	if loaded.Providers[ProviderOllama].Model != "qwen2.5-coder" {
		t.Errorf("Expected model qwen2.5-coder, got %s", loaded.Providers[ProviderOllama].Model)
	}
	if loaded.UserPreferences.Language != "zh-TW" {
		t.Errorf("Expected Language 'zh-TW', got %s", loaded.UserPreferences.Language)
	}
	if loaded.UserPreferences.PostAction != PostActionCopy {
		t.Errorf("Expected post action copy, got %s", loaded.UserPreferences.PostAction)
	}
}

func TestLoadPartialFileKeepsProviderDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"default_provider":"openai","providers":{"openai":{"model":"gpt-4o"}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	openai := cfg.Providers[ProviderOpenAI]
	if openai.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", openai.Model)
	}
	if openai.APIKeyEnv != EnvOpenAIAPIKey {
		t.Errorf("Expected credential variable to be filled in, got %q", openai.APIKeyEnv)
	}
	if _, ok := cfg.Providers[ProviderClaude]; !ok {
		t.Error("Providers missing from the file should keep their defaults")
	}
}

func TestLoadKeepsExplicitEmptyCredentialVariable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"default_provider":"openai","providers":{"openai":{"api_endpoint":"http://localhost:8080/v1","model":"local","api_key_env":""}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	openai := cfg.Providers[ProviderOpenAI]
	if openai.APIKeyEnv != "" {
		t.Fatalf("Expected the empty credential variable to be kept, got %q", openai.APIKeyEnv)
	}
	noEnv := func(string) (string, bool) { return "", false }
	if _, err := ResolveCredential(openai, noEnv); err != nil {
		t.Errorf("Endpoint without credential should resolve, got %v", err)
	}

	// survives a save and reload
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	reloaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Providers[ProviderOpenAI].APIKeyEnv; got != "" {
		t.Errorf("Expected empty credential variable after reload, got %q", got)
	}
}

func TestOllamaEndpointDefaultsToEnvironment(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if ep := cfg.Providers[ProviderOllama].APIEndpoint; ep != "" {
		t.Errorf("Ollama endpoint should be left to %s, got %q", EnvOllamaHost, ep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if !aerrors.HasCode(err, aerrors.ErrConfigLoad) {
		t.Errorf("Expected CONFIG_LOAD error, got %v", err)
	}
}

func TestResolveCredential(t *testing.T) {
	env := map[string]string{EnvAnthropicAPIKey: "  sk-ant-test  "}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := NewDefaultConfig()
	pc, err := ResolveCredential(cfg.Providers[ProviderClaude], lookup)
	if err != nil {
		t.Fatalf("ResolveCredential failed: %v", err)
	}
	if pc.APIKey != "sk-ant-test" {
		t.Errorf("Expected trimmed key, got %q", pc.APIKey)
	}

	_, err = ResolveCredential(cfg.Providers[ProviderOpenAI], lookup)
	if !aerrors.HasCode(err, aerrors.ErrMissingCredential) {
		t.Errorf("Expected MISSING_CREDENTIAL, got %v", err)
	}

	if _, err := ResolveCredential(cfg.Providers[ProviderOllama], lookup); err != nil {
		t.Errorf("Ollama needs no credential, got %v", err)
	}
}

func TestIsTruthy(t *testing.T) {
	tests := map[string]bool{
		"1": true, "true": true, "TRUE": true, "yes": true, " on ": true,
		"": false, "0": false, "false": false, "no": false, "debug": false,
	}
	for in, want := range tests {
		if got := IsTruthy(in); got != want {
			t.Errorf("IsTruthy(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvAishellProvider: "ollama", EnvAishellModel: "mistral"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := NewDefaultConfig()
	cfg.ApplyEnv(lookup)

	if cfg.DefaultProvider != ProviderOllama {
		t.Errorf("Expected provider override, got %s", cfg.DefaultProvider)
	}
	if cfg.Providers[ProviderOllama].Model != "mistral" {
		t.Errorf("Expected model override, got %s", cfg.Providers[ProviderOllama].Model)
	}
	if cfg.Providers[ProviderClaude].Model != DefaultClaudeModel {
		t.Error("Model override must only touch the selected provider")
	}
}

func TestStateDir(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvAishellStateDir {
			return "/tmp/aishell-state", true
		}
		return "", false
	}
	dir, err := StateDir(lookup)
	if err != nil || dir != "/tmp/aishell-state" {
		t.Errorf("Expected override state dir, got %q (%v)", dir, err)
	}
}
