// Package security redacts credentials from diagnostic output.
package security

import (
	"io"
	"regexp"
	"sort"
	"sync"
)

// SanitizePattern 清理模式
type SanitizePattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
	Priority    int
}

// Sanitizer replaces secrets in text. Higher priority patterns run first.
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []SanitizePattern
}

var defaultPatterns = []struct {
	name        string
	pattern     string
	replacement string
	priority    int
}{
	// 私鑰
	{"private_key", `-----BEGIN (?:[A-Z]+ )?PRIVATE KEY-----[\s\S]*?-----END (?:[A-Z]+ )?PRIVATE KEY-----`, "***PRIVATE_KEY_REDACTED***", 10},
	// API 密鑰和令牌
	{"anthropic_key", `\bsk-ant-[a-zA-Z0-9_-]{16,}`, "***REDACTED_API_KEY***", 10},
	{"openai_key", `\bsk-(?:proj-)?[a-zA-Z0-9_-]{16,}`, "***REDACTED_API_KEY***", 9},
	{"bearer_token", `(?i)(bearer\s+)[a-zA-Z0-9._-]{20,}`, "${1}***REDACTED_TOKEN***", 9},
	{"api_key", `(?i)(api[_-]?key|x-api-key)("?\s*[:=]\s*"?)[a-zA-Z0-9._-]{16,}`, "${1}${2}***REDACTED_API_KEY***", 8},
	{"aws_access_key", `\bAKIA[0-9A-Z]{16}\b`, "***AWS_ACCESS_KEY***", 8},
	{"jwt_token", `\beyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\b`, "***JWT_TOKEN***", 7},
	// 環境變量
	{"env_secret", `\b([A-Z][A-Z0-9_]*(?:KEY|SECRET|TOKEN|PASSWORD))=("[^"]*"|'[^']*'|\S+)`, "${1}=***REDACTED***", 6},
	// 數據庫連接字符串
	{"url_password", `(?i)\b([a-z][a-z0-9+.-]*://[^:/@\s]+):[^@/\s]+@`, "${1}:***REDACTED***@", 5},
}

// NewSanitizer returns a sanitizer with the built-in patterns.
func NewSanitizer() *Sanitizer {
	s := &Sanitizer{}
	for _, p := range defaultPatterns {
		s.patterns = append(s.patterns, SanitizePattern{
			Name:        p.name,
			Pattern:     regexp.MustCompile(p.pattern),
			Replacement: p.replacement,
			Priority:    p.priority,
		})
	}
	s.sortPatternsByPriority()
	return s
}

func (s *Sanitizer) sortPatternsByPriority() {
	sort.SliceStable(s.patterns, func(i, j int) bool {
		return s.patterns[i].Priority > s.patterns[j].Priority
	})
}

// AddPattern registers an extra pattern
func (s *Sanitizer) AddPattern(name, pattern, replacement string, priority int) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, SanitizePattern{Name: name, Pattern: re, Replacement: replacement, Priority: priority})
	s.sortPatternsByPriority()
	return nil
}

// AddLiteral redacts an exact value, such as a credential resolved at startup.
func (s *Sanitizer) AddLiteral(name, value string) {
	if len(value) < 4 {
		return
	}
	_ = s.AddPattern(name, regexp.QuoteMeta(value), "***REDACTED***", 11)
}

// Sanitize 清理文本中的敏感數據
func (s *Sanitizer) Sanitize(text string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patterns {
		text = p.Pattern.ReplaceAllString(text, p.Replacement)
	}
	return text
}

type sanitizingWriter struct {
	w io.Writer
	s *Sanitizer
}

// NewWriter redacts every Write before passing it to w. Each Write is
// sanitized on its own, so callers should write whole records.
func NewWriter(w io.Writer, s *Sanitizer) io.Writer {
	return &sanitizingWriter{w: w, s: s}
}

func (sw *sanitizingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(sw.w, sw.s.Sanitize(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
