package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/TonnyWong1052/aishell/internal/llm"
	"github.com/TonnyWong1052/aishell/internal/logging"
)

// State of the refinement loop
type State int

const (
	AwaitingGeneration State = iota
	Presenting
	Accepted
)

func (s State) String() string {
	switch s {
	case AwaitingGeneration:
		return "awaiting_generation"
	case Presenting:
		return "presenting"
	case Accepted:
		return "accepted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode selects how far the loop goes before accepting.
type Mode string

const (
	// ModeRefine asks for clarifications until the user accepts with an empty line
	ModeRefine Mode = "refine"
	// ModeOnce accepts the first command
	ModeOnce Mode = "once"
	// ModeCommandOnly is ModeOnce with a silent view
	ModeCommandOnly Mode = "command-only"
)

// RefinePrompt is shown while a command is presented
const RefinePrompt = "Refine (describe a change, or press Enter to accept): "

// Generator produces one command for the full turn history
type Generator interface {
	GenerateCommand(ctx context.Context, turns []llm.Turn) (string, error)
}

// Prompter reads one line of user input. Interrupts are reported as errors.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// View renders progress and candidates on the diagnostic stream.
type View interface {
	// Generating is called before each generation. The returned func is
	// called with the outcome once the generation finishes.
	Generating(turn int) func(err error)
	// ShowCommand presents a candidate. previous is empty on the first round.
	ShowCommand(previous, current string)
}

// NopView renders nothing
type NopView struct{}

func (NopView) Generating(int) func(error) { return func(error) {} }
func (NopView) ShowCommand(string, string) {}

// Loop drives a Session through AwaitingGeneration, Presenting and Accepted.
type Loop struct {
	gen      Generator
	prompter Prompter
	view     View
	out      io.Writer
	mode     Mode
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithPrompter sets the clarification reader used in refine mode
func WithPrompter(p Prompter) LoopOption {
	return func(l *Loop) { l.prompter = p }
}

// WithView sets the progress view
func WithView(v View) LoopOption {
	return func(l *Loop) { l.view = v }
}

// WithMode sets the loop mode
func WithMode(m Mode) LoopOption {
	return func(l *Loop) { l.mode = m }
}

// NewLoop creates a loop that emits the accepted command to out.
func NewLoop(gen Generator, out io.Writer, opts ...LoopOption) *Loop {
	l := &Loop{
		gen:  gen,
		out:  out,
		view: NopView{},
		mode: ModeRefine,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.mode == ModeCommandOnly {
		l.view = NopView{}
	}
	// refine mode without a way to read clarifications degrades to once
	if l.mode == ModeRefine && l.prompter == nil {
		l.mode = ModeOnce
	}
	return l
}

// Mode reports the effective mode
func (l *Loop) Mode() Mode { return l.mode }

// Run executes the loop until acceptance or the first error. On acceptance
// the command plus a newline is written to out exactly once. On error nothing
// is written to out.
func (l *Loop) Run(ctx context.Context, s *Session) (string, error) {
	log := logging.WithComponent("session").WithField("session", s.ID())
	state := AwaitingGeneration

	for {
		log.WithField("state", state.String()).WithField("turns", s.Len()).Debug("loop step")

		switch state {
		case AwaitingGeneration:
			done := l.view.Generating(s.Len())
			cmd, err := l.gen.GenerateCommand(ctx, s.Turns())
			done(err)
			if err != nil {
				return "", err
			}

			previous, _ := s.Command()
			s.setCommand(cmd)
			l.view.ShowCommand(previous, cmd)

			if l.mode == ModeRefine {
				state = Presenting
			} else {
				state = Accepted
			}

		case Presenting:
			line, err := l.prompter.ReadLine(ctx, RefinePrompt)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(line) == "" {
				state = Accepted
				continue
			}
			s.Clarify(strings.TrimSpace(line))
			state = AwaitingGeneration

		case Accepted:
			cmd, _ := s.Command()
			if _, err := fmt.Fprintln(l.out, cmd); err != nil {
				return cmd, err
			}
			log.WithField("turns", s.Len()).Info("command accepted")
			return cmd, nil
		}
	}
}
