package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrapperCode(t *testing.T) {
	code := WrapperCode("")

	expectedComponents := []string{
		"# aishell wrapper - start",
		"# aishell wrapper - end",
		"ai() {",
		"aishell --handoff",
		"print -z",
		"read -r -e -i",
		"history -s",
		"last_command",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(code, component) {
			t.Errorf("Wrapper code missing expected component: %s", component)
		}
	}

	if !strings.Contains(WrapperCode("cmdgen"), "cmdgen() {") {
		t.Error("Custom wrapper name not used")
	}
}

func TestAddWrapperToFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), ".bashrc")

	initialContent := "# This is a test .bashrc\nexport PATH=$PATH:~/bin"
	if err := os.WriteFile(testFile, []byte(initialContent), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if err := addWrapperToFile(testFile, WrapperCode("ai")); err != nil {
		t.Fatalf("Failed to add wrapper: %v", err)
	}
	// 第二次安裝應該取代舊的區塊，而不是重複加入
	if err := addWrapperToFile(testFile, WrapperCode("cmd")); err != nil {
		t.Fatalf("Failed to add wrapper again: %v", err)
	}

	content, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read test file: %v", err)
	}
	contentStr := string(content)

	if !strings.HasPrefix(contentStr, initialContent+"\n") {
		t.Error("Original content not preserved")
	}
	if occurrences := strings.Count(contentStr, wrapperStartMarker); occurrences != 1 {
		t.Errorf("Expected 1 wrapper occurrence, got %d", occurrences)
	}
	if strings.Contains(contentStr, "ai() {") || !strings.Contains(contentStr, "cmd() {") {
		t.Error("Existing wrapper block was not replaced")
	}
}

func TestRemoveWrapperFromFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), ".zshrc")

	before := "# This is a test .zshrc\nexport PATH=$PATH:~/bin\n"
	after := "\n# More content after wrapper\nalias ll='ls -la'\n"
	if err := os.WriteFile(testFile, []byte(before+WrapperCode("ai")+after), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	removed, err := removeWrapperFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to remove wrapper: %v", err)
	}
	if !removed {
		t.Error("Expected wrapper to be removed, but removed=false")
	}

	content, _ := os.ReadFile(testFile)
	if string(content) != before+after {
		t.Errorf("Unexpected content after removal:\n%s", content)
	}
}

func TestRemoveWrapperFromNonExistentFile(t *testing.T) {
	removed, err := removeWrapperFromFile("/nonexistent/file")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if removed {
		t.Error("Expected removed=false for non-existent file")
	}
}

func TestRemoveWrapperMissingEndMarker(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), ".bashrc")
	if err := os.WriteFile(testFile, []byte(wrapperStartMarker+"\nai() { :; }\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := removeWrapperFromFile(testFile); err == nil {
		t.Error("Expected an error when the end marker is missing")
	}
}

func TestInstallUninstall(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, ".bash_profile"), []byte("# profile\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err := Install(home, "ai")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	want := []string{filepath.Join(home, ".bash_profile"), filepath.Join(home, ".zshrc")}
	if strings.Join(changed, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, changed)
	}
	if got := InstalledIn(home); len(got) != 2 {
		t.Errorf("Expected wrapper in 2 files, got %v", got)
	}

	removed, err := Uninstall(home)
	if err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("Expected 2 files cleaned, got %v", removed)
	}
	if got := InstalledIn(home); len(got) != 0 {
		t.Errorf("Wrapper still installed in %v", got)
	}
}
