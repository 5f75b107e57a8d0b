package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

const (
	wrapperStartMarker = config.WrapperStartMarker
	wrapperEndMarker   = config.WrapperEndMarker
)

// WrapperCode returns the shell function that runs aishell in handoff mode and
// puts the accepted command into the shell's line editor.
func WrapperCode(name string) string {
	if name == "" {
		name = config.DefaultWrapperName
	}
	return fmt.Sprintf(`
%[1]s
%[2]s() {
    local _aishell_file="${AISHELL_STATE_DIR:-$HOME/.config/aishell}/last_command"
    rm -f "$_aishell_file"
    command aishell --handoff "$@" || return $?
    [ -s "$_aishell_file" ] || return 0
    local _aishell_cmd
    _aishell_cmd="$(cat "$_aishell_file")"
    rm -f "$_aishell_file"
    if [ -n "$ZSH_VERSION" ]; then
        # zsh: push onto the editing buffer of the next prompt
        print -z -- "$_aishell_cmd"
    else
        local _aishell_line
        read -r -e -i "$_aishell_cmd" -p "$ " _aishell_line || return 0
        [ -n "$_aishell_line" ] || return 0
        history -s "$_aishell_line"
        eval "$_aishell_line"
    fi
}
%[3]s
`, wrapperStartMarker, name, wrapperEndMarker)
}

// RCFiles returns the rc files the wrapper is written to.
func RCFiles(home string) []string {
	bashrc := filepath.Join(home, ".bashrc")
	bashProfile := filepath.Join(home, ".bash_profile")

	bash := bashrc
	if !fileExists(bashrc) && fileExists(bashProfile) {
		bash = bashProfile
	}
	return []string{bash, filepath.Join(home, ".zshrc")}
}

// Install writes the wrapper into the bash and zsh rc files under home and
// returns the files it changed.
func Install(home, name string) ([]string, error) {
	code := WrapperCode(name)
	var changed []string
	for _, path := range RCFiles(home) {
		if err := addWrapperToFile(path, code); err != nil {
			return changed, aerrors.ErrWrapperInstallFailed(err).WithContext("file", path)
		}
		changed = append(changed, path)
	}
	return changed, nil
}

// Uninstall removes the wrapper block from every rc file under home.
func Uninstall(home string) ([]string, error) {
	var changed []string
	for _, fileName := range []string{".bashrc", ".bash_profile", ".zshrc"} {
		path := filepath.Join(home, fileName)
		removed, err := removeWrapperFromFile(path)
		if err != nil {
			return changed, aerrors.ErrWrapperUninstallFailed(err).WithContext("file", path)
		}
		if removed {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

// InstalledIn lists the rc files under home that contain the wrapper
func InstalledIn(home string) []string {
	var files []string
	for _, fileName := range []string{".bashrc", ".bash_profile", ".zshrc"} {
		path := filepath.Join(home, fileName)
		if fileContainsWrapper(path) {
			files = append(files, path)
		}
	}
	return files
}

// addWrapperToFile appends the wrapper, or replaces an existing block in place
func addWrapperToFile(filePath, code string) error {
	content, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	contentStr := string(content)
	start := strings.Index(contentStr, wrapperStartMarker)
	end := strings.Index(contentStr, wrapperEndMarker)

	switch {
	case start != -1 && end > start:
		end += len(wrapperEndMarker)
		if end < len(contentStr) && contentStr[end] == '\n' {
			end++
		}
		// the block starts with its own blank line
		if start > 0 && contentStr[start-1] == '\n' {
			start--
		}
		contentStr = contentStr[:start] + code + contentStr[end:]
	default:
		if contentStr != "" && !strings.HasSuffix(contentStr, "\n") {
			contentStr += "\n"
		}
		contentStr += code
	}

	return os.WriteFile(filePath, []byte(contentStr), config.DefaultFilePermissions)
}

// removeWrapperFromFile removes the wrapper block from a shell config file
func removeWrapperFromFile(filePath string) (bool, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	contentStr := string(content)
	start := strings.Index(contentStr, wrapperStartMarker)
	if start == -1 {
		return false, nil
	}
	end := strings.Index(contentStr, wrapperEndMarker)
	if end == -1 || end < start {
		return false, fmt.Errorf("found start marker but no end marker in %s", filePath)
	}

	end += len(wrapperEndMarker)
	if end < len(contentStr) && contentStr[end] == '\n' {
		end++
	}
	if start > 0 && contentStr[start-1] == '\n' {
		start--
	}

	if err := os.WriteFile(filePath, []byte(contentStr[:start]+contentStr[end:]), config.DefaultFilePermissions); err != nil {
		return false, err
	}
	return true, nil
}

func fileContainsWrapper(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), wrapperStartMarker)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
