package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/TonnyWong1052/aishell/internal/config"
	"github.com/TonnyWong1052/aishell/internal/llm"
	"github.com/firebase/genkit/go/genkit"
	anthropicPlugin "github.com/firebase/genkit/go/plugins/compat_oai/anthropic"
	"github.com/openai/openai-go/option"
)

// ClaudeProvider implements the llm.Provider interface using Genkit.
type ClaudeProvider struct {
	cfg     config.ProviderConfig
	genkit  *genkit.Genkit
	adapter *llm.GenkitAdapter
}

// NewProvider creates a new ClaudeProvider using Genkit.
func NewProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is missing for Claude")
	}

	ctx := context.Background()

	// 失敗的請求不重試，一次呼叫就是一次請求
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimRight(cfg.APIEndpoint, "/"); base != "" && base != config.ClaudeAPIEndpoint {
		opts = append(opts, option.WithBaseURL(base+"/"))
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&anthropicPlugin.Anthropic{Opts: opts}),
	)

	return &ClaudeProvider{
		cfg:     cfg,
		genkit:  g,
		adapter: llm.NewGenkitAdapter(g, QualifiedModel(cfg.Model)),
	}, nil
}

func init() {
	llm.RegisterProvider(config.ProviderClaude, NewProvider)
}

// QualifiedModel adds the "anthropic/" prefix Genkit expects unless the user
// already gave a fully qualified name such as "anthropic/claude-3-5-haiku".
func QualifiedModel(model string) string {
	if model == "" {
		model = config.DefaultClaudeModel
	}
	if strings.Contains(model, "/") {
		return model
	}
	return "anthropic/" + model
}

// Name implements the llm.Provider interface.
func (p *ClaudeProvider) Name() string {
	return config.ProviderClaude
}

// Complete implements the llm.Provider interface.
func (p *ClaudeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	resp, err := p.adapter.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Claude generation failed: %w", err)
	}
	return resp, nil
}

// VerifyConnection implements the llm.Provider interface.
func (p *ClaudeProvider) VerifyConnection(ctx context.Context) ([]string, error) {
	if err := p.adapter.TestGeneration(ctx); err != nil {
		return nil, fmt.Errorf("Claude connection verification failed: %w", err)
	}

	return []string{
		config.DefaultClaudeModel,
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
	}, nil
}
