package errors

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Exit codes used by the aishell binary.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUserCancel = 130
)

// ErrorHandler 定義錯誤處理器接口
type ErrorHandler interface {
	Handle(err error)
}

// ConsoleErrorHandler 控制台錯誤處理器，所有輸出都寫到診斷流
type ConsoleErrorHandler struct {
	debugMode bool
	out       io.Writer
}

// NewConsoleErrorHandler 創建新的控制台錯誤處理器
func NewConsoleErrorHandler(out io.Writer, debugMode bool) *ConsoleErrorHandler {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleErrorHandler{
		debugMode: debugMode,
		out:       out,
	}
}

// Handle 處理錯誤並輸出到控制台
func (h *ConsoleErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	if e, ok := GetAishellError(err); ok {
		h.handleAishellError(e)
	} else {
		pterm.Error.WithWriter(h.out).Println(err.Error())
	}
}

func (h *ConsoleErrorHandler) handleAishellError(e *AishellError) {
	// 非面向用戶的錯誤只在調試模式顯示
	if !e.IsUserFacing() && !h.debugMode {
		return
	}

	switch {
	case e.Code == ErrUserCancel:
		pterm.Info.WithWriter(h.out).Println("Cancelled.")
		return
	case !e.IsFatal():
		pterm.Warning.WithWriter(h.out).Println(e.Message)
	default:
		pterm.Error.WithWriter(h.out).Println(h.formatUserMessage(e))
	}

	for _, hint := range e.Hints {
		pterm.Info.WithWriter(h.out).Println(hint)
	}

	if h.debugMode {
		debug := pterm.Debug.WithWriter(h.out).WithDebugger(false)
		debug.Println("code:", e.Code)
		if e.Cause != nil {
			debug.Println("cause:", e.Cause.Error())
		}
		if len(e.Context) > 0 {
			debug.Println("context:", e.Context)
		}
		if e.Stack != "" {
			debug.Println("at:", e.Stack)
		}
	}
}

// formatUserMessage 格式化面向用戶的錯誤消息
func (h *ConsoleErrorHandler) formatUserMessage(e *AishellError) string {
	message := e.Message
	if e.Details != "" {
		message += ": " + e.Details
	}
	if e.Cause != nil && !h.debugMode && e.Code == ErrTransport {
		message += ": " + e.Cause.Error()
	}
	return message
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if e, ok := GetAishellError(err); ok {
		switch {
		case e.Code == ErrUserCancel:
			return ExitUserCancel
		case !e.IsFatal():
			return ExitOK
		}
	}
	return ExitFailure
}
