package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
	"github.com/TonnyWong1052/aishell/internal/llm"
	"github.com/TonnyWong1052/aishell/internal/shell"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return a.runGenerate(cmd.Context(), append([]string{cmd.Name()}, args...))
			}
			return a.showConfig(cmd)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.showConfig(cmd)
			},
		},
		&cobra.Command{
			Use:   "get [key]",
			Short: "Get a configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := a.loadConfigFile()
				if err != nil {
					return err
				}
				value, err := getConfigValue(cfg, args[0])
				if err != nil {
					return err
				}
				cmd.Println(value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set [key] [value]",
			Short: "Set a configuration value",
			Long: `Set a configuration value and save the file.

Keys: default_provider, language, post_action, clipboard, wrapper_name,
show_diff, logging.level, logging.format, logging.output, logging.log_file,
providers.<name>.api_endpoint, providers.<name>.model,
providers.<name>.api_key_env, providers.<name>.max_tokens`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, path, err := a.loadConfigFile()
				if err != nil {
					return err
				}
				if err := setConfigValue(cfg, args[0], args[1]); err != nil {
					return err
				}
				// 驗證失敗時不寫回檔案
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := cfg.SaveTo(path); err != nil {
					return err
				}
				pterm.Success.WithWriter(a.stderr).Printfln("Set %s = %s", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify [provider]",
			Short: "Check that a provider is reachable and list its models",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				return a.verifyProvider(cmd.Context(), name)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := a.resolveConfigPath()
				if err != nil {
					return aerrors.ErrConfigLoadFailed("", err)
				}
				cmd.Println(path)
				return nil
			},
		},
	)
	return configCmd
}

func (a *app) resolveConfigPath() (string, error) {
	if v, ok := a.lookup(config.EnvAishellConfig); ok && v != "" {
		return v, nil
	}
	return a.configPath()
}

// loadConfigFile reads the file only. Environment overrides are not applied
// so that set writes back what the user stored.
func (a *app) loadConfigFile() (*config.Config, string, error) {
	path, err := a.resolveConfigPath()
	if err != nil {
		return nil, "", aerrors.ErrConfigLoadFailed("", err)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func (a *app) showConfig(cmd *cobra.Command) error {
	cfg, path, err := a.loadConfigFile()
	if err != nil {
		return err
	}

	pterm.DefaultSection.WithWriter(a.stderr).Println("Current Configuration")
	prefs := cfg.UserPreferences
	items := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Config file: %s", path)},
		{Level: 0, Text: fmt.Sprintf("Default Provider: %s", cfg.DefaultProvider)},
	}

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := cfg.Providers[name]
		items = append(items,
			pterm.BulletListItem{Level: 0, Text: "Provider " + name},
			pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("API Host: %s", endpointLabel(a, name, pc))},
			pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("Model: %s", pc.Model)},
			pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("Credential variable: %s (%s)", orNone(pc.APIKeyEnv), credentialState(a, pc))},
			pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("Max tokens: %d", pc.MaxTokens)},
		)
	}
	items = append(items,
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Language: %s", prefs.Language)},
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Post action: %s", prefs.PostAction)},
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Clipboard: %s", prefs.Clipboard)},
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Wrapper name: %s", prefs.WrapperName)},
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Show diff: %t", prefs.ShowDiff)},
		pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Log level: %s (%s)", prefs.Logging.Level, prefs.Logging.Output)},
		pterm.BulletListItem{Level: 0, Text: "Shell wrapper: " + a.wrapperState()},
	)
	return pterm.DefaultBulletList.WithWriter(a.stderr).WithItems(items).Render()
}

func (a *app) wrapperState() string {
	home, err := a.home()
	if err != nil {
		return "unknown"
	}
	files := shell.InstalledIn(home)
	if len(files) == 0 {
		return "not installed (run 'aishell init')"
	}
	return "installed in " + strings.Join(files, ", ")
}

// endpointLabel shows where requests go when no endpoint is stored
func endpointLabel(a *app, name string, pc config.ProviderConfig) string {
	if pc.APIEndpoint != "" || name != config.ProviderOllama {
		return orNone(pc.APIEndpoint)
	}
	if v, ok := a.lookup(config.EnvOllamaHost); ok && strings.TrimSpace(v) != "" {
		return fmt.Sprintf("%s (from %s)", strings.TrimSpace(v), config.EnvOllamaHost)
	}
	return config.OllamaAPIEndpoint + " (default)"
}

// verifyProvider makes one call to the provider and lists the models it reports.
func (a *app) verifyProvider(ctx context.Context, name string) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.DefaultProvider
	}
	pc, ok := cfg.Provider(name)
	if !ok {
		return aerrors.ErrProviderNotFoundError(name, llm.RegisteredProviders())
	}
	pc, err = config.ResolveCredential(pc, a.lookup)
	if err != nil {
		return err
	}
	provider, err := a.newProvider(name, pc)
	if err != nil {
		return err
	}

	pterm.Info.WithWriter(a.stderr).Printfln("Checking %s (%s)", name, endpointLabel(a, name, pc))
	models, err := provider.VerifyConnection(ctx)
	if len(models) > 0 {
		items := make([]pterm.BulletListItem, 0, len(models))
		for _, m := range models {
			items = append(items, pterm.BulletListItem{Level: 0, Text: m})
		}
		pterm.DefaultSection.WithWriter(a.stderr).Println("Available models")
		if rerr := pterm.DefaultBulletList.WithWriter(a.stderr).WithItems(items).Render(); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return aerrors.ErrUserCancelled()
		}
		return aerrors.ErrTransportFailed(name, err)
	}
	pterm.Success.WithWriter(a.stderr).Printfln("%s is reachable, model %s", name, pc.Model)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// credentialState never prints the secret itself
func credentialState(a *app, pc config.ProviderConfig) string {
	if pc.APIKeyEnv == "" {
		return "not required"
	}
	if v, ok := a.lookup(pc.APIKeyEnv); ok && strings.TrimSpace(v) != "" {
		return "set"
	}
	return "not set"
}

func unknownKey(key string) error {
	return aerrors.ErrConfigValidationFailed(key, "unsupported key").
		WithHint("Run 'aishell config set --help' to list the supported keys")
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	prefs := cfg.UserPreferences
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "user_preferences.")) {
	case "default_provider":
		return cfg.DefaultProvider, nil
	case "language":
		return prefs.Language, nil
	case "post_action":
		return prefs.PostAction, nil
	case "clipboard":
		return prefs.Clipboard, nil
	case "wrapper_name":
		return prefs.WrapperName, nil
	case "show_diff":
		return strconv.FormatBool(prefs.ShowDiff), nil
	case "logging.level":
		return prefs.Logging.Level, nil
	case "logging.format":
		return prefs.Logging.Format, nil
	case "logging.output":
		return prefs.Logging.Output, nil
	case "logging.log_file":
		return prefs.Logging.LogFile, nil
	}

	name, field, ok := providerKey(key)
	if !ok {
		return "", unknownKey(key)
	}
	pc, exists := cfg.Providers[name]
	if !exists {
		return "", aerrors.ErrProviderNotFoundError(name, llm.RegisteredProviders())
	}
	switch field {
	case "api_endpoint":
		return pc.APIEndpoint, nil
	case "model":
		return pc.Model, nil
	case "api_key_env":
		return pc.APIKeyEnv, nil
	case "max_tokens":
		return strconv.Itoa(pc.MaxTokens), nil
	}
	return "", unknownKey(key)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	value = strings.TrimSpace(value)
	prefs := &cfg.UserPreferences
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "user_preferences.")) {
	case "default_provider":
		cfg.DefaultProvider = value
		return nil
	case "language":
		prefs.Language = value
		return nil
	case "post_action":
		prefs.PostAction = value
		return nil
	case "clipboard":
		prefs.Clipboard = value
		return nil
	case "wrapper_name":
		prefs.WrapperName = value
		return nil
	case "show_diff":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return aerrors.ErrConfigValidationFailed(key, "expected true or false")
		}
		prefs.ShowDiff = b
		return nil
	case "logging.level":
		prefs.Logging.Level = value
		return nil
	case "logging.format":
		prefs.Logging.Format = value
		return nil
	case "logging.output":
		prefs.Logging.Output = value
		return nil
	case "logging.log_file":
		prefs.Logging.LogFile = value
		return nil
	}

	name, field, ok := providerKey(key)
	if !ok {
		return unknownKey(key)
	}
	if !config.IsValidProvider(name) {
		return aerrors.ErrProviderNotFoundError(name, llm.RegisteredProviders())
	}
	pc := cfg.Providers[name]
	switch field {
	case "api_endpoint":
		pc.APIEndpoint = value
	case "model":
		pc.Model = value
	case "api_key_env":
		pc.APIKeyEnv = value
	case "max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return aerrors.ErrConfigValidationFailed(key, "expected an integer")
		}
		pc.MaxTokens = n
	default:
		return unknownKey(key)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	cfg.Providers[name] = pc
	return nil
}

// providerKey splits providers.<name>.<field>
func providerKey(key string) (name, field string, ok bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(key)), ".")
	if len(parts) != 3 || parts[0] != "providers" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
