package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/openai/openai-go"
)

// GenkitAdapter 封裝 Genkit 生成邏輯，提供統一介面給 providers 使用
type GenkitAdapter struct {
	g         *genkit.Genkit
	modelName string
}

// NewGenkitAdapter 建立新的 Genkit adapter 實例
func NewGenkitAdapter(g *genkit.Genkit, modelName string) *GenkitAdapter {
	return &GenkitAdapter{
		g:         g,
		modelName: modelName,
	}
}

// ModelName returns the fully qualified Genkit model name
func (a *GenkitAdapter) ModelName() string {
	return a.modelName
}

// Complete 將整段對話送出並保留回應的內容區塊順序
func (a *GenkitAdapter) Complete(ctx context.Context, req *Request) (*Response, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(a.modelName),
		ai.WithMessages(ToGenkitMessages(req.Messages)...),
		// 工具呼叫原樣回傳，由 ExtractCommand 判定為格式錯誤
		ai.WithReturnToolRequests(true),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, ai.WithConfig(&openai.ChatCompletionNewParams{
			MaxTokens: openai.Int(int64(req.MaxTokens)),
		}))
	}

	resp, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("genkit generate failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("genkit returned nil response")
	}

	out := FromGenkitResponse(resp)
	out.Model = a.modelName
	return out, nil
}

// TestGeneration 測試生成功能，用於驗證連線
func (a *GenkitAdapter) TestGeneration(ctx context.Context) error {
	_, err := a.Complete(ctx, &Request{
		Messages: []Message{{Role: RoleUser, Text: "Reply with the single word: ok"}},
	})
	return err
}

// ToGenkitMessages converts chat messages to Genkit messages
func ToGenkitMessages(msgs []Message) []*ai.Message {
	out := make([]*ai.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleAssistant {
			out = append(out, ai.NewModelTextMessage(m.Text))
			continue
		}
		out = append(out, ai.NewUserTextMessage(m.Text))
	}
	return out
}

// FromGenkitResponse maps Genkit parts onto ordered blocks
func FromGenkitResponse(resp *ai.ModelResponse) *Response {
	out := &Response{FinishReason: string(resp.FinishReason)}
	if resp.Message == nil {
		return out
	}
	for _, part := range resp.Message.Content {
		if part == nil {
			continue
		}
		switch {
		case part.IsText():
			out.Blocks = append(out.Blocks, Block{Kind: BlockText, Text: part.Text})
		case part.IsToolRequest():
			name := ""
			if part.ToolRequest != nil {
				name = part.ToolRequest.Name
			}
			out.Blocks = append(out.Blocks, Block{Kind: BlockToolUse, Text: name})
		case part.IsMedia():
			out.Blocks = append(out.Blocks, Block{Kind: BlockMedia})
		default:
			out.Blocks = append(out.Blocks, Block{Kind: BlockOther})
		}
	}
	return out
}
