package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/TonnyWong1052/aishell/internal/config"
	"github.com/TonnyWong1052/aishell/internal/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/pagination"
)

// completionsAPI is the part of the chat completions service the provider uses
type completionsAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// modelsAPI lists the models available to the key
type modelsAPI interface {
	List(ctx context.Context, opts ...option.RequestOption) (*pagination.Page[openai.Model], error)
}

// OpenAIProvider implements the llm.Provider interface for OpenAI.
type OpenAIProvider struct {
	cfg         config.ProviderConfig
	completions completionsAPI
	models      modelsAPI
}

// NewProvider creates a new OpenAIProvider.
func NewProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	base := strings.TrimRight(cfg.APIEndpoint, "/")
	// 自架的相容端點可以不帶金鑰
	if cfg.APIKey == "" && (base == "" || base == config.OpenAIAPIEndpoint) {
		return nil, fmt.Errorf("API key is missing for OpenAI")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base+"/"))
	}

	client := openai.NewClient(opts...)
	return newProvider(cfg, &client.Chat.Completions, &client.Models), nil
}

func newProvider(cfg config.ProviderConfig, completions completionsAPI, models modelsAPI) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = config.DefaultOpenAIModel
	}
	return &OpenAIProvider{cfg: cfg, completions: completions, models: models}
}

func init() {
	llm.RegisterProvider(config.ProviderOpenAI, NewProvider)
}

// Name implements the llm.Provider interface.
func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

// Complete implements the llm.Provider interface.
func (p *OpenAIProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	resp, err := p.completions.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, classifyAPIError(err)
	}
	return convertResponse(resp), nil
}

func (p *OpenAIProvider) buildParams(req *llm.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == llm.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Text))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Text))
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

// convertResponse keeps the order of the first choice's content. Anything
// that is not assistant text becomes a non-text block.
func convertResponse(resp *openai.ChatCompletion) *llm.Response {
	out := &llm.Response{}
	if resp == nil {
		return out
	}
	out.Model = resp.Model
	if len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.FinishReason = string(choice.FinishReason)
	msg := choice.Message

	if msg.Refusal != "" {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockOther, Text: msg.Refusal})
	}
	for _, call := range msg.ToolCalls {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockToolUse, Text: call.Function.Name})
	}
	if msg.Audio.ID != "" {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockMedia})
	}
	if msg.Content != "" {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockText, Text: msg.Content})
	}
	return out
}

func classifyAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if classified := llm.ClassifyStatus(apiErr.StatusCode, err); classified != nil {
			return classified
		}
	}
	return err
}

// VerifyConnection implements the llm.Provider interface.
func (p *OpenAIProvider) VerifyConnection(ctx context.Context) ([]string, error) {
	page, err := p.models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenAI connection verification failed: %w", classifyAPIError(err))
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		if isChatModel(m.ID) {
			models = append(models, m.ID)
		}
	}
	sort.Strings(models)
	return models, nil
}

func isChatModel(id string) bool {
	if strings.HasPrefix(id, "gpt-") {
		return true
	}
	return len(id) > 1 && id[0] == 'o' && id[1] >= '1' && id[1] <= '9'
}
