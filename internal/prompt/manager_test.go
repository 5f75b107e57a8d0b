package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderInitialAndRefineTurns(t *testing.T) {
	m := NewDefaultManager()

	initial, err := m.Render(KeyInitialTurn, "en", Data{Text: "list files"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if initial != "Generate a shell command to: list files" {
		t.Errorf("Unexpected initial turn: %q", initial)
	}

	refine, err := m.Render(KeyRefineTurn, "en", Data{Text: "include hidden"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if refine != "Refine the previous command given this clarification: include hidden" {
		t.Errorf("Unexpected refine turn: %q", refine)
	}
}

func TestRenderSystemPromptShellHint(t *testing.T) {
	m := NewDefaultManager()

	plain, err := m.Render(KeySystem, "en", Data{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasSuffix(plain, "Just output the raw command that can be directly executed.") {
		t.Errorf("System prompt without shell should end with the base text, got %q", plain)
	}

	withShell, _ := m.Render(KeySystem, "en", Data{Shell: "zsh", OS: "darwin"})
	if !strings.Contains(withShell, "zsh on darwin") {
		t.Errorf("Expected shell hint, got %q", withShell)
	}
}

func TestLanguageFallback(t *testing.T) {
	m := NewDefaultManager()

	zh, err := m.Render(KeyInitialTurn, "chinese", Data{Text: "列出檔案"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(zh, "列出檔案") || strings.HasPrefix(zh, "Generate") {
		t.Errorf("Expected zh-TW template, got %q", zh)
	}

	fr, err := m.Render(KeyInitialTurn, "fr", Data{Text: "x"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if fr != "Generate a shell command to: x" {
		t.Errorf("Unknown languages should fall back to English, got %q", fr)
	}

	if _, err := m.Render("missing", "en", Data{}); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestNewManagerOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	content := `{"initial_turn": {"en": "Write a POSIX command that will: {{.Text}}"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManager(dir)
	if err != nil {
		t.Fatalf("LoadManager failed: %v", err)
	}

	got, _ := m.Render(KeyInitialTurn, "en", Data{Text: "count lines"})
	if got != "Write a POSIX command that will: count lines" {
		t.Errorf("Override not applied, got %q", got)
	}
	refine, _ := m.Render(KeyRefineTurn, "en", Data{Text: "y"})
	if !strings.HasPrefix(refine, "Refine the previous command") {
		t.Errorf("Keys absent from the file should keep defaults, got %q", refine)
	}
}

func TestNewManagerRejectsBadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(path, []byte(`{"system": {"en": "{{.Text"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(path); err == nil {
		t.Error("Expected parse error for malformed template")
	}
}

func TestLoadManagerWithoutFile(t *testing.T) {
	m, err := LoadManager(t.TempDir())
	if err != nil {
		t.Fatalf("LoadManager failed: %v", err)
	}
	if _, err := m.Render(KeySystem, "en", Data{Shell: "bash", OS: "linux"}); err != nil {
		t.Errorf("Default prompts should be available: %v", err)
	}
}
