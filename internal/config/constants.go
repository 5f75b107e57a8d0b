package config

// Application constants
const (
	// Application metadata
	AppName        = "aishell"
	AppDescription = "Generates shell commands from natural language descriptions."

	// Directory and file paths
	DefaultConfigDir       = ".config/aishell"
	DefaultLogDir          = "logs"
	DefaultConfigFileName  = "config.json"
	DefaultPromptsFileName = "prompts.json"
	DefaultLogFileName     = "aishell.log"
	HandoffFileName        = "last_command"

	// Log rotation defaults
	MaxLogFileSize    = 10 // MB
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28

	// Request defaults
	DefaultMaxTokens = 1000

	// API endpoints
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1"
	OpenAIAPIEndpoint = "https://api.openai.com/v1"
	OllamaAPIEndpoint = "http://localhost:11434"
	EnvOllamaHost     = "OLLAMA_HOST"

	// Default models
	DefaultClaudeModel = "claude-3-7-sonnet-20250219"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaModel = "llama3.2"

	// Credential variables
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"

	// Log levels
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// Log formats
	LogFormatJSON = "json"
	LogFormatText = "text"

	// Log outputs
	LogOutputFile    = "file"
	LogOutputConsole = "console"
	LogOutputBoth    = "both"

	// Post-acceptance actions
	PostActionNone = "none"
	PostActionAsk  = "ask"
	PostActionRun  = "run"
	PostActionCopy = "copy"

	// Clipboard backends
	ClipboardAuto   = "auto"
	ClipboardSystem = "system"
	ClipboardOSC52  = "osc52"
	ClipboardOff    = "off"

	// Shell wrapper markers
	WrapperStartMarker = "# aishell wrapper - start"
	WrapperEndMarker   = "# aishell wrapper - end"
	DefaultWrapperName = "ai"

	// Environment variables
	EnvAishellDebug    = "AISHELL_DEBUG"
	EnvAishellProvider = "AISHELL_PROVIDER"
	EnvAishellModel    = "AISHELL_MODEL"
	EnvAishellStateDir = "AISHELL_STATE_DIR"
	EnvAishellConfig   = "AISHELL_CONFIG"

	// Provider names
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	// File permissions
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
	PrivateFilePermissions = 0600

	// Validation limits
	MaxModelNameLength = 100
)

// GetValidLogLevels returns all valid log levels
func GetValidLogLevels() []string {
	return []string{
		LogLevelTrace,
		LogLevelDebug,
		LogLevelInfo,
		LogLevelWarn,
		LogLevelError,
	}
}

// GetValidLogFormats returns all valid log formats
func GetValidLogFormats() []string {
	return []string{LogFormatJSON, LogFormatText}
}

// GetValidLogOutputs returns all valid log outputs
func GetValidLogOutputs() []string {
	return []string{LogOutputFile, LogOutputConsole, LogOutputBoth}
}

// GetValidPostActions returns the accepted user_preferences.post_action values
func GetValidPostActions() []string {
	return []string{PostActionNone, PostActionAsk, PostActionRun, PostActionCopy}
}

// GetValidClipboardBackends returns the accepted user_preferences.clipboard values
func GetValidClipboardBackends() []string {
	return []string{ClipboardAuto, ClipboardSystem, ClipboardOSC52, ClipboardOff}
}

// GetSupportedLanguages returns the prompt languages shipped with aishell
func GetSupportedLanguages() []string {
	return []string{"en", "zh-TW"}
}

// GetSupportedProviders returns all supported LLM providers
func GetSupportedProviders() []string {
	return []string{ProviderClaude, ProviderOpenAI, ProviderOllama}
}

// IsValidLogLevel checks if a log level is valid
func IsValidLogLevel(level string) bool {
	return contains(GetValidLogLevels(), level)
}

// IsValidProvider checks if a provider is supported
func IsValidProvider(provider string) bool {
	return contains(GetSupportedProviders(), provider)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
