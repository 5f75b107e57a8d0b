package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Prompt keys.
const (
	KeySystem      = "system"
	KeyInitialTurn = "initial_turn"
	KeyRefineTurn  = "refine_turn"
)

// Data is the value templates are executed against.
type Data struct {
	Text  string // the user's description or clarification
	Shell string // target shell name, e.g. "zsh"
	OS    string // runtime.GOOS
}

// Manager handles loading and accessing prompts.
type Manager struct {
	templates map[string]*template.Template
}

func defaultPrompts() map[string]map[string]string {
	return map[string]map[string]string{
		KeySystem: {
			"en":    "You are an expert in shell commands. Given a description of what the user wants to do, respond ONLY with the exact shell command they should run, with no explanation, introduction, or markdown formatting. Just output the raw command that can be directly executed.{{if .Shell}} The command will run in {{.Shell}} on {{.OS}}.{{end}}",
			"zh-TW": "你是 Shell 指令專家。根據使用者想做的事情，只回覆應該執行的確切 Shell 指令，不要任何說明、開場白或 Markdown 格式。只輸出可直接執行的原始指令。{{if .Shell}}指令將在 {{.OS}} 上的 {{.Shell}} 中執行。{{end}}",
		},
		KeyInitialTurn: {
			"en":    "Generate a shell command to: {{.Text}}",
			"zh-TW": "產生一個 Shell 指令來：{{.Text}}",
		},
		KeyRefineTurn: {
			"en":    "Refine the previous command given this clarification: {{.Text}}",
			"zh-TW": "根據以下補充說明修改上一個指令：{{.Text}}",
		},
	}
}

// NewManager creates a prompt manager from a JSON file of the form
// {"key": {"lang": "template"}}. Keys missing from the file keep the
// built-in prompts.
func NewManager(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides map[string]map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("invalid prompt file %s: %w", path, err)
	}

	prompts := defaultPrompts()
	for key, langs := range overrides {
		if prompts[key] == nil {
			prompts[key] = make(map[string]string)
		}
		for lang, text := range langs {
			prompts[key][lang] = text
		}
	}
	return newManager(prompts)
}

// NewDefaultManager creates a prompt manager with built-in default prompts.
func NewDefaultManager() *Manager {
	m, err := newManager(defaultPrompts())
	if err != nil {
		panic(err)
	}
	return m
}

// LoadManager uses dir/prompts.json when it exists and the defaults otherwise.
func LoadManager(dir string) (*Manager, error) {
	path := filepath.Join(dir, "prompts.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDefaultManager(), nil
	}
	return NewManager(path)
}

func newManager(prompts map[string]map[string]string) (*Manager, error) {
	m := &Manager{templates: make(map[string]*template.Template)}
	for key, langs := range prompts {
		for lang, text := range langs {
			name := key + "/" + lang
			t, err := template.New(name).Option("missingkey=zero").Parse(text)
			if err != nil {
				return nil, fmt.Errorf("prompt %s: %w", name, err)
			}
			m.templates[name] = t
		}
	}
	return m, nil
}

// Render executes the template for key in lang, falling back to English.
func (m *Manager) Render(key, lang string, data Data) (string, error) {
	t, ok := m.templates[key+"/"+NormalizeLanguage(lang)]
	if !ok {
		t, ok = m.templates[key+"/en"]
	}
	if !ok {
		return "", fmt.Errorf("prompt with key '%s' not found", key)
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt %s: %w", key, err)
	}
	return b.String(), nil
}

// NormalizeLanguage maps common spellings onto the prompt language keys.
func NormalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "english":
		return "en"
	case "zh", "zh-tw", "zh_tw", "chinese", "traditional chinese":
		return "zh-TW"
	default:
		return lang
	}
}
