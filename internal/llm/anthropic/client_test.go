package anthropic

import (
	"testing"

	"github.com/TonnyWong1052/aishell/internal/config"
)

func TestQualifiedModel(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"", "anthropic/" + config.DefaultClaudeModel},
		{"claude-3-5-haiku-20241022", "anthropic/claude-3-5-haiku-20241022"},
		{"anthropic/claude-3-opus-20240229", "anthropic/claude-3-opus-20240229"},
	}
	for _, tc := range testCases {
		if got := QualifiedModel(tc.in); got != tc.want {
			t.Errorf("QualifiedModel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(config.ProviderConfig{Model: config.DefaultClaudeModel}); err == nil {
		t.Error("Expected an error without an API key")
	}
}
