// Package session holds the turn history of one run and the refinement loop
// that drives it to an accepted command.
package session

import (
	"strings"

	"github.com/google/uuid"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
	"github.com/TonnyWong1052/aishell/internal/llm"
)

// Session is the ordered history of user turns plus the latest command.
// It is owned by a single goroutine.
type Session struct {
	id         string
	turns      []llm.Turn
	command    string
	hasCommand bool
}

// New starts a session from the task description.
func New(description string) (*Session, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, aerrors.ErrMissingDescription()
	}
	return &Session{
		id:    uuid.NewString(),
		turns: []llm.Turn{llm.Turn(description)},
	}, nil
}

// ID is a random identifier used to correlate log lines of one run
func (s *Session) ID() string { return s.id }

// Clarify appends a clarification turn.
func (s *Session) Clarify(text string) {
	s.turns = append(s.turns, llm.Turn(text))
}

// Turns returns a copy of the history.
func (s *Session) Turns() []llm.Turn {
	out := make([]llm.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns
func (s *Session) Len() int { return len(s.turns) }

// Command returns the most recent command and whether one exists yet.
func (s *Session) Command() (string, bool) {
	return s.command, s.hasCommand
}

func (s *Session) setCommand(cmd string) {
	s.command = cmd
	s.hasCommand = true
}
