package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
	"github.com/TonnyWong1052/aishell/internal/logging"
	"github.com/TonnyWong1052/aishell/internal/prompt"
)

// Generator turns a turn history into one shell command through a Provider.
type Generator struct {
	provider  Provider
	prompts   *prompt.Manager
	model     string
	maxTokens int
	lang      string
	shell     string
	goos      string
	trace     io.Writer
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithLanguage selects the prompt language
func WithLanguage(lang string) GeneratorOption {
	return func(g *Generator) { g.lang = lang }
}

// WithShell adds the target shell and OS to the system prompt
func WithShell(shell, goos string) GeneratorOption {
	return func(g *Generator) {
		g.shell = shell
		g.goos = goos
	}
}

// WithMaxTokens caps the reply length
func WithMaxTokens(n int) GeneratorOption {
	return func(g *Generator) { g.maxTokens = n }
}

// WithTrace echoes every request and response as JSON to w
func WithTrace(w io.Writer) GeneratorOption {
	return func(g *Generator) { g.trace = w }
}

// NewGenerator creates a Generator for the given provider and model
func NewGenerator(p Provider, pm *prompt.Manager, model string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider: p,
		prompts:  pm,
		model:    model,
		lang:     "en",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildRequest frames the full history. The first turn is the task, every
// later turn is a refinement of the previous command.
func (g *Generator) BuildRequest(turns []Turn) (*Request, error) {
	if len(turns) == 0 {
		return nil, aerrors.ErrMissingDescription()
	}

	system, err := g.prompts.Render(prompt.KeySystem, g.lang, prompt.Data{Shell: g.shell, OS: g.goos})
	if err != nil {
		return nil, err
	}

	req := &Request{
		Model:     g.model,
		System:    system,
		Messages:  make([]Message, 0, len(turns)),
		MaxTokens: g.maxTokens,
	}
	for i, turn := range turns {
		key := prompt.KeyRefineTurn
		if i == 0 {
			key = prompt.KeyInitialTurn
		}
		text, err := g.prompts.Render(key, g.lang, prompt.Data{Text: string(turn), Shell: g.shell, OS: g.goos})
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, Message{Role: RoleUser, Text: text})
	}
	return req, nil
}

// GenerateCommand performs exactly one provider call for the given history.
func (g *Generator) GenerateCommand(ctx context.Context, turns []Turn) (string, error) {
	log := logging.WithComponent("llm")

	req, err := g.BuildRequest(turns)
	if err != nil {
		return "", err
	}
	g.traceJSON("request", req)
	log.WithField("provider", g.provider.Name()).WithField("messages", len(req.Messages)).Debug("sending generation request")

	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		log.WithError(err).Debug("generation request failed")
		return "", ToTransportError(g.provider.Name(), err)
	}
	g.traceJSON("response", resp)

	return ExtractCommand(resp)
}

// ExtractCommand validates a reply and returns the trimmed command text.
func ExtractCommand(resp *Response) (string, error) {
	if resp == nil || len(resp.Blocks) == 0 {
		return "", aerrors.ErrMalformed("response contained no content")
	}

	first := resp.Blocks[0]
	if first.Kind != BlockText {
		return "", aerrors.ErrMalformed(fmt.Sprintf("first content block is %s, not text", first.Kind))
	}

	command := unwrapFence(strings.TrimSpace(first.Text))
	if command == "" {
		return "", aerrors.ErrMalformed("response text was empty")
	}
	return command, nil
}

// unwrapFence strips a markdown code fence that encloses the whole text.
func unwrapFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	if strings.Contains(inner, "```") {
		return s
	}
	// drop the info string ("bash", "sh", ...) on the opening line
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if info := strings.TrimSpace(inner[:nl]); !strings.ContainsAny(info, " \t") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

func (g *Generator) traceJSON(label string, v any) {
	if g.trace == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(g.trace, "[debug] %s: <unencodable: %v>\n", label, err)
		return
	}
	fmt.Fprintf(g.trace, "[debug] %s:\n%s\n", label, data)
}
