// Package clipboard copies text with whatever the environment offers: a
// system clipboard utility or an OSC 52 terminal escape sequence.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// ErrUnsupported is returned when a copier cannot work in this environment
var ErrUnsupported = errors.New("clipboard not supported in this environment")

// Copier places text on a clipboard
type Copier interface {
	Name() string
	Copy(text string) error
}

// System uses the platform clipboard utility (pbcopy, xclip, xsel, wl-copy, Windows API).
type System struct {
	write       func(string) error
	unsupported func() bool
}

// NewSystem creates a System copier
func NewSystem() *System {
	return &System{
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

func (s *System) Name() string { return "system" }

func (s *System) Copy(text string) error {
	if s.unsupported() {
		return ErrUnsupported
	}
	return s.write(text)
}

// OSC52 asks the terminal emulator to set the clipboard.
type OSC52 struct {
	out  io.Writer
	tmux bool
	term bool
}

// NewOSC52 creates an OSC52 copier writing to out. The sequence is wrapped for
// tmux or GNU screen when running inside one.
func NewOSC52(out io.Writer, isTerminal bool) *OSC52 {
	return &OSC52{
		out:  out,
		tmux: os.Getenv("TMUX") != "",
		term: isTerminal,
	}
}

func (o *OSC52) Name() string { return "osc52" }

func (o *OSC52) Copy(text string) error {
	if !o.term {
		return ErrUnsupported
	}
	seq := osc52.New(text)
	if o.tmux {
		seq = seq.Tmux()
	} else if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(o.out)
	return err
}

// Chain tries each copier in order and stops at the first success.
type Chain []Copier

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, cp := range c {
		names = append(names, cp.Name())
	}
	return strings.Join(names, ",")
}

// Copy returns CLIPBOARD_UNAVAILABLE when every copier failed.
func (c Chain) Copy(text string) error {
	var errs []error
	for _, cp := range c {
		err := cp.Copy(text)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", cp.Name(), err))
	}
	if len(errs) == 0 {
		errs = append(errs, ErrUnsupported)
	}
	return aerrors.ErrClipboardFailed(errors.Join(errs...))
}

// ForMode builds the copier for a configured clipboard mode
// ("auto", "system", "osc52", "off").
func ForMode(mode string, tty io.Writer, isTerminal bool) Chain {
	switch mode {
	case "system":
		return Chain{NewSystem()}
	case "osc52":
		return Chain{NewOSC52(tty, isTerminal)}
	case "off":
		return Chain{}
	}
	return Chain{NewSystem(), NewOSC52(tty, isTerminal)}
}
