package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/TonnyWong1052/aishell/internal/config"
	"github.com/TonnyWong1052/aishell/internal/llm"
)

// chatClient is the subset of the Ollama API client the provider needs
type chatClient interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
	List(ctx context.Context) (*ollama.ListResponse, error)
}

// OllamaProvider implements the llm.Provider interface for a local Ollama server.
type OllamaProvider struct {
	cfg    config.ProviderConfig
	client chatClient
}

// NewProvider creates a new OllamaProvider.
func NewProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	var (
		client *ollama.Client
		err    error
	)
	if cfg.APIEndpoint != "" {
		u, perr := url.Parse(cfg.APIEndpoint)
		if perr != nil {
			return nil, fmt.Errorf("invalid Ollama endpoint %q: %w", cfg.APIEndpoint, perr)
		}
		client = ollama.NewClient(u, http.DefaultClient)
	} else {
		client, err = ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
	}
	return newProvider(cfg, client), nil
}

func newProvider(cfg config.ProviderConfig, client chatClient) *OllamaProvider {
	// 允許 "ollama/llama3.2" 這種帶前綴的寫法
	cfg.Model = strings.TrimPrefix(cfg.Model, "ollama/")
	if cfg.Model == "" {
		cfg.Model = config.DefaultOllamaModel
	}
	return &OllamaProvider{cfg: cfg, client: client}
}

func init() {
	llm.RegisterProvider(config.ProviderOllama, NewProvider)
}

// Name implements the llm.Provider interface.
func (p *OllamaProvider) Name() string {
	return config.ProviderOllama
}

// Complete implements the llm.Provider interface.
func (p *OllamaProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	model := strings.TrimPrefix(req.Model, "ollama/")
	if model == "" {
		model = p.cfg.Model
	}

	messages := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, ollama.Message{Role: string(m.Role), Content: m.Text})
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
	}
	if req.MaxTokens > 0 {
		chatReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	var final *ollama.ChatResponse
	var content strings.Builder
	err := p.client.Chat(ctx, chatReq, func(res ollama.ChatResponse) error {
		content.WriteString(res.Message.Content)
		r := res
		if final == nil {
			final = &r
		} else {
			final.Message.ToolCalls = append(final.Message.ToolCalls, res.Message.ToolCalls...)
			final.Message.Images = append(final.Message.Images, res.Message.Images...)
			final.Done = res.Done
			final.DoneReason = res.DoneReason
		}
		return nil
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}
	if final == nil {
		return &llm.Response{Model: model}, nil
	}
	final.Message.Content = content.String()
	return convertResponse(final), nil
}

func convertResponse(res *ollama.ChatResponse) *llm.Response {
	out := &llm.Response{Model: res.Model, FinishReason: res.DoneReason}
	for _, call := range res.Message.ToolCalls {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockToolUse, Text: call.Function.Name})
	}
	for range res.Message.Images {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockMedia})
	}
	if res.Message.Content != "" {
		out.Blocks = append(out.Blocks, llm.Block{Kind: llm.BlockText, Text: res.Message.Content})
	}
	return out
}

func classifyAPIError(err error) error {
	var statusErr ollama.StatusError
	if errors.As(err, &statusErr) {
		if classified := llm.ClassifyStatus(statusErr.StatusCode, err); classified != nil {
			return classified
		}
	}
	return err
}

// VerifyConnection implements the llm.Provider interface.
func (p *OllamaProvider) VerifyConnection(ctx context.Context) ([]string, error) {
	listResp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local models: %w", err)
	}

	models := make([]string, 0, len(listResp.Models))
	found := false
	for _, m := range listResp.Models {
		models = append(models, m.Name)
		if m.Name == p.cfg.Model || strings.TrimSuffix(m.Name, ":latest") == p.cfg.Model {
			found = true
		}
	}
	if !found {
		return models, fmt.Errorf("model %s not found locally. Available models: %v", p.cfg.Model, models)
	}
	return models, nil
}
