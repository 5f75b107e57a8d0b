package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// MockProvider implements Provider interface for testing
type MockProvider struct {
	name          string
	responses     []*Response
	completeErr   error
	models        []string
	connectionErr error

	requests []*Request
}

func (m *MockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *MockProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	m.requests = append(m.requests, req)
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	if len(m.responses) == 0 {
		return &Response{}, nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *MockProvider) VerifyConnection(ctx context.Context) ([]string, error) {
	return m.models, m.connectionErr
}

func textResponse(text string) *Response {
	return &Response{Blocks: []Block{{Kind: BlockText, Text: text}}}
}

func TestProvider(t *testing.T) {
	mockProvider := &MockProvider{
		responses: []*Response{textResponse("ls -la")},
		models:    []string{"model1", "model2"},
	}

	ctx := context.Background()

	resp, err := mockProvider.Complete(ctx, &Request{Model: "m"})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if resp.Blocks[0].Text != "ls -la" {
		t.Errorf("Expected 'ls -la', got '%s'", resp.Blocks[0].Text)
	}

	models, err := mockProvider.VerifyConnection(ctx)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(models) != 2 {
		t.Errorf("Expected 2 models, got %d", len(models))
	}
}

func TestProviderRegistry(t *testing.T) {
	testFactoryName := "test-provider"
	var seen config.ProviderConfig
	RegisterProvider(testFactoryName, func(cfg config.ProviderConfig) (Provider, error) {
		seen = cfg
		return &MockProvider{name: testFactoryName}, nil
	})

	provider, err := GetProvider(testFactoryName, config.ProviderConfig{Model: "m1"})
	if err != nil {
		t.Errorf("Expected no error getting registered provider, got %v", err)
	}
	if provider == nil || provider.Name() != testFactoryName {
		t.Errorf("Expected provider %s, got %v", testFactoryName, provider)
	}
	if seen.Model != "m1" {
		t.Errorf("Factory should receive the provider config, got %+v", seen)
	}

	found := false
	for _, name := range RegisteredProviders() {
		if name == testFactoryName {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s in registered providers", testFactoryName)
	}
}

func TestGetProviderErrors(t *testing.T) {
	_, err := GetProvider("non-existent-provider", config.ProviderConfig{})
	if !aerrors.HasCode(err, aerrors.ErrProviderNotFound) {
		t.Errorf("Expected PROVIDER_NOT_FOUND, got %v", err)
	}
	var aerr *aerrors.AishellError
	if !errors.As(err, &aerr) || len(aerr.Hints) != 1 ||
		!strings.Contains(aerr.Hints[0], strings.Join(RegisteredProviders(), ", ")) {
		t.Errorf("Expected the registered providers in the hint, got %+v", aerr)
	}

	RegisterProvider("broken-provider", func(cfg config.ProviderConfig) (Provider, error) {
		return nil, errors.New("no endpoint")
	})
	_, err = GetProvider("broken-provider", config.ProviderConfig{})
	if !aerrors.HasCode(err, aerrors.ErrProviderInit) {
		t.Errorf("Expected PROVIDER_INIT, got %v", err)
	}
}
