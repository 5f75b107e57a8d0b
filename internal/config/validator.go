package config

import (
	"fmt"
	"net/url"
	"strings"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// ValidationError represents a configuration validation error with user guidance
type ValidationError struct {
	Field       string   `json:"field"`
	Value       string   `json:"value,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Severity    string   `json:"severity"` // "error", "warning"
}

func (e ValidationError) Error() string {
	severity := "ERROR"
	if e.Severity == "warning" {
		severity = "WARNING"
	}

	var result string
	if e.Value != "" {
		result = fmt.Sprintf("%s: config field '%s' value '%s' is invalid: %s", severity, e.Field, e.Value, e.Message)
	} else {
		result = fmt.Sprintf("%s: config field '%s' is invalid: %s", severity, e.Field, e.Message)
	}

	for _, suggestion := range e.Suggestions {
		result += "\n  - " + suggestion
	}
	return result
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("found %d configuration errors:\n- %s", len(e), strings.Join(messages, "\n- "))
}

// Validator configuration validator
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// AddError adds a validation error
func (v *Validator) AddError(field, value, message string, suggestions ...string) {
	v.add(field, value, message, suggestions, "error")
}

// AddWarning adds a validation warning
func (v *Validator) AddWarning(field, value, message string, suggestions ...string) {
	v.add(field, value, message, suggestions, "warning")
}

func (v *Validator) add(field, value, message string, suggestions []string, severity string) {
	v.errors = append(v.errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     message,
		Suggestions: suggestions,
		Severity:    severity,
	})
}

// HasErrors reports whether any entry has error severity
func (v *Validator) HasErrors() bool {
	for _, e := range v.errors {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// GetErrors returns every collected entry
func (v *Validator) GetErrors() ValidationErrors {
	return ValidationErrors(v.errors)
}

// Validate validates configuration
func (c *Config) Validate() error {
	validator := NewValidator()
	validator.validateBasicConfig(c)
	validator.validateProviders(c)
	validator.validateUserPreferences(c)

	if validator.HasErrors() {
		return aerrors.WrapError(validator.GetErrors(), aerrors.ErrConfigValidation, "configuration validation failed")
	}
	return nil
}

func (v *Validator) validateBasicConfig(c *Config) {
	if c.DefaultProvider == "" {
		v.AddError("default_provider", "", "default provider cannot be empty",
			"aishell config set default_provider claude",
			"Available providers: "+strings.Join(GetSupportedProviders(), ", "))
		return
	}
	if _, exists := c.Providers[c.DefaultProvider]; !exists {
		v.AddError("default_provider", c.DefaultProvider, "default provider is not configured",
			"Available providers: "+strings.Join(GetSupportedProviders(), ", "),
			"Run 'aishell config show' to inspect the current configuration")
	}
}

func (v *Validator) validateProviders(c *Config) {
	for name, provider := range c.Providers {
		fieldPrefix := "providers." + name

		if !IsValidProvider(name) {
			v.AddError(fieldPrefix, name, "unsupported provider type")
			continue
		}

		if provider.APIEndpoint != "" {
			if err := v.validateURL(provider.APIEndpoint); err != nil {
				v.AddError(fieldPrefix+".api_endpoint", provider.APIEndpoint, err.Error())
			}
		}

		if provider.Model == "" {
			v.AddError(fieldPrefix+".model", "", "model name cannot be empty",
				fmt.Sprintf("aishell config set %s.model <model>", fieldPrefix))
		} else if len(provider.Model) > MaxModelNameLength {
			v.AddError(fieldPrefix+".model", provider.Model, "model name is too long")
		}

		if provider.MaxTokens < 0 {
			v.AddError(fieldPrefix+".max_tokens", fmt.Sprintf("%d", provider.MaxTokens), "max_tokens cannot be negative")
		}

		if name != ProviderOllama && provider.APIKeyEnv == "" {
			v.AddWarning(fieldPrefix+".api_key_env", "", "no credential variable configured; requests will be unauthenticated")
		}
	}
}

func (v *Validator) validateUserPreferences(c *Config) {
	prefs := c.UserPreferences

	if prefs.Language != "" && !contains(GetSupportedLanguages(), prefs.Language) {
		v.AddWarning("user_preferences.language", prefs.Language, "unsupported language, falling back to English",
			"Supported languages: "+strings.Join(GetSupportedLanguages(), ", "))
	}

	if prefs.PostAction != "" && !contains(GetValidPostActions(), prefs.PostAction) {
		v.AddError("user_preferences.post_action", prefs.PostAction, "invalid post action",
			"Valid values: "+strings.Join(GetValidPostActions(), ", "))
	}

	if prefs.Clipboard != "" && !contains(GetValidClipboardBackends(), prefs.Clipboard) {
		v.AddError("user_preferences.clipboard", prefs.Clipboard, "invalid clipboard backend",
			"Valid values: "+strings.Join(GetValidClipboardBackends(), ", "))
	}

	if strings.ContainsAny(prefs.WrapperName, " \t\n;|&$`'\"()") {
		v.AddError("user_preferences.wrapper_name", prefs.WrapperName, "wrapper name must be a plain shell identifier")
	}

	v.validateLoggingConfig("user_preferences.logging", prefs.Logging)
}

func (v *Validator) validateLoggingConfig(fieldPrefix string, logging LoggingConfig) {
	if logging.Level != "" && !IsValidLogLevel(logging.Level) {
		v.AddError(fieldPrefix+".level", logging.Level, "invalid log level")
	}
	if logging.Format != "" && !contains(GetValidLogFormats(), logging.Format) {
		v.AddError(fieldPrefix+".format", logging.Format, "invalid log format")
	}
	if logging.Output != "" && !contains(GetValidLogOutputs(), logging.Output) {
		v.AddError(fieldPrefix+".output", logging.Output, "invalid log output")
	}
	if (logging.Output == LogOutputFile || logging.Output == LogOutputBoth) && logging.LogFile == "" {
		v.AddError(fieldPrefix+".log_file", "", "log file path cannot be empty when logging to a file")
	}
	if logging.MaxSize < 0 || logging.MaxSize > 1000 {
		v.AddError(fieldPrefix+".max_size", fmt.Sprintf("%d", logging.MaxSize), "max size must be between 0 and 1000 MB")
	}
	if logging.MaxBackups < 0 || logging.MaxBackups > 100 {
		v.AddError(fieldPrefix+".max_backups", fmt.Sprintf("%d", logging.MaxBackups), "max backups must be between 0 and 100")
	}
	if logging.MaxAge < 0 {
		v.AddError(fieldPrefix+".max_age", fmt.Sprintf("%d", logging.MaxAge), "max age cannot be negative")
	}
}

// validateURL 驗證 URL 格式
func (v *Validator) validateURL(urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %s", err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

// ValidateAndFix resets recoverable fields to their defaults in memory and
// returns a description of each fix. The file on disk is left untouched.
func (c *Config) ValidateAndFix() ([]string, error) {
	var fixes []string
	defaults := NewDefaultConfig()
	prefs := &c.UserPreferences

	if c.DefaultProvider == "" {
		c.DefaultProvider = defaults.DefaultProvider
		fixes = append(fixes, "default_provider was empty, using "+c.DefaultProvider)
	}
	if prefs.Language == "" || !contains(GetSupportedLanguages(), prefs.Language) {
		if prefs.Language != "en" {
			fixes = append(fixes, fmt.Sprintf("language %q replaced with en", prefs.Language))
		}
		prefs.Language = "en"
	}
	if prefs.PostAction == "" {
		prefs.PostAction = defaults.UserPreferences.PostAction
		fixes = append(fixes, "post_action was empty, using "+prefs.PostAction)
	}
	if prefs.Clipboard == "" {
		prefs.Clipboard = defaults.UserPreferences.Clipboard
		fixes = append(fixes, "clipboard was empty, using "+prefs.Clipboard)
	}
	if prefs.WrapperName == "" {
		prefs.WrapperName = DefaultWrapperName
		fixes = append(fixes, "wrapper_name was empty, using "+DefaultWrapperName)
	}

	logging := &prefs.Logging
	if !IsValidLogLevel(logging.Level) {
		fixes = append(fixes, fmt.Sprintf("log level %q replaced with %s", logging.Level, LogLevelWarn))
		logging.Level = LogLevelWarn
	}
	if !contains(GetValidLogFormats(), logging.Format) {
		fixes = append(fixes, fmt.Sprintf("log format %q replaced with %s", logging.Format, LogFormatText))
		logging.Format = LogFormatText
	}
	if !contains(GetValidLogOutputs(), logging.Output) {
		fixes = append(fixes, fmt.Sprintf("log output %q replaced with %s", logging.Output, LogOutputConsole))
		logging.Output = LogOutputConsole
	}
	if logging.MaxSize <= 0 {
		logging.MaxSize = MaxLogFileSize
		fixes = append(fixes, "log max_size reset to default")
	}

	return fixes, c.Validate()
}
