package config

import (
	"os"
	"strings"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// LookupFunc matches os.LookupEnv so tests can supply a fixed environment.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the process environment.
var OSLookup LookupFunc = os.LookupEnv

// IsTruthy reports whether v is one of 1, true, yes, on (case-insensitive).
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// DebugEnabled reports whether AISHELL_DEBUG is set to a truthy value.
func DebugEnabled(lookup LookupFunc) bool {
	v, _ := lookup(EnvAishellDebug)
	return IsTruthy(v)
}

// ApplyEnv layers AISHELL_PROVIDER and AISHELL_MODEL over the loaded file.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if v, ok := lookup(EnvAishellProvider); ok && strings.TrimSpace(v) != "" {
		c.DefaultProvider = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAishellModel); ok && strings.TrimSpace(v) != "" {
		if pc, exists := c.Providers[c.DefaultProvider]; exists {
			pc.Model = strings.TrimSpace(v)
			c.Providers[c.DefaultProvider] = pc
		}
	}
}

// ResolveCredential fills pc.APIKey from the environment variable named by
// pc.APIKeyEnv. Providers without an APIKeyEnv need no credential.
func ResolveCredential(pc ProviderConfig, lookup LookupFunc) (ProviderConfig, error) {
	if pc.APIKeyEnv == "" {
		return pc, nil
	}
	v, _ := lookup(pc.APIKeyEnv)
	if strings.TrimSpace(v) == "" {
		return pc, aerrors.ErrMissingCredentialFor(pc.APIKeyEnv)
	}
	pc.APIKey = strings.TrimSpace(v)
	return pc, nil
}

// StateDir returns the directory of the handoff file.
func StateDir(lookup LookupFunc) (string, error) {
	if v, ok := lookup(EnvAishellStateDir); ok && v != "" {
		return v, nil
	}
	return GetConfigDir()
}
