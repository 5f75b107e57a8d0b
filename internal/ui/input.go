package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// LineReader reads one line of user input. It implements session.Prompter.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// PlainReader reads lines from any reader. The prompt goes to out.
// End of input with nothing typed counts as an empty line.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader creates a PlainReader
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

// ReadLine implements LineReader
func (r *PlainReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(r.out, prompt)
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := r.in.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(r.out)
		return "", aerrors.ErrUserCancelled()
	case res := <-ch:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", aerrors.ErrUserInputFailed(res.err)
		}
		if errors.Is(res.err, io.EOF) && res.line == "" {
			fmt.Fprintln(r.out)
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

// TerminalReader reads a line with an editable text field.
type TerminalReader struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalReader creates a TerminalReader bound to a terminal
func NewTerminalReader(in io.Reader, out io.Writer) *TerminalReader {
	return &TerminalReader{in: in, out: out}
}

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

type lineModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newLineModel(prompt string) lineModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Placeholder = ""
	ti.CharLimit = 0
	ti.Focus()
	return lineModel{input: ti}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.done = true
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done || m.cancelled {
		// 保留輸入內容在畫面上
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View()
}

// ReadLine implements LineReader
func (r *TerminalReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	p := tea.NewProgram(newLineModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(r.in),
		tea.WithOutput(r.out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return "", aerrors.ErrUserCancelled()
		}
		return "", aerrors.ErrUserInputFailed(err)
	}

	m, ok := final.(lineModel)
	if !ok {
		return "", aerrors.ErrUserInputFailed(fmt.Errorf("unexpected model %T", final))
	}
	if m.cancelled {
		return "", aerrors.ErrUserCancelled()
	}
	return m.input.Value(), nil
}
