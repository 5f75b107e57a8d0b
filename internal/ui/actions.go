package ui

import (
	"fmt"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/pterm/pterm"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// Action is what to do with an accepted command
type Action int

const (
	ActionDone Action = iota
	ActionRun
	ActionCopy
)

func (a Action) String() string {
	switch a {
	case ActionRun:
		return "run"
	case ActionCopy:
		return "copy"
	}
	return "done"
}

var actionOptions = []struct {
	action Action
	key    string
	label  string
}{
	{ActionRun, "r", "Run it now"},
	{ActionCopy, "c", "Copy to clipboard"},
	{ActionDone, "d", "Done"},
}

// ActionPicker asks for a single post-acceptance action.
type ActionPicker struct {
	out *os.File
}

// NewActionPicker creates a picker that renders on out, normally stderr so the
// command stream stays clean.
func NewActionPicker(out *os.File) *ActionPicker {
	return &ActionPicker{out: out}
}

// Pick shows the options and waits for one key. Arrows and Enter choose the
// highlighted entry, letters choose directly. Ctrl+C cancels.
func (p *ActionPicker) Pick() (Action, error) {
	selectedIdx := len(actionOptions) - 1

	render := func() string {
		var b strings.Builder
		b.WriteString("What next?\n")
		for i, opt := range actionOptions {
			line := fmt.Sprintf("[%s] %s", opt.key, opt.label)
			if i == selectedIdx {
				b.WriteString(pterm.Sprintf("%s %s\n", pterm.ThemeDefault.SecondaryStyle.Sprint(">"), line))
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		return b.String()
	}

	area := cursor.NewArea().WithWriter(p.out)
	area.Update(render())
	defer area.Clear()

	c := cursor.NewCursor().WithWriter(p.out)
	c.Hide()
	defer c.Show()

	chosen := ActionDone
	var cancelErr error
	err := keyboard.Listen(func(k keys.Key) (bool, error) {
		switch k.Code {
		case keys.Up, keys.CtrlP:
			selectedIdx = (selectedIdx + len(actionOptions) - 1) % len(actionOptions)
			area.Update(render())
			return false, nil
		case keys.Down, keys.CtrlN, keys.Tab:
			selectedIdx = (selectedIdx + 1) % len(actionOptions)
			area.Update(render())
			return false, nil
		case keys.Enter:
			chosen = actionOptions[selectedIdx].action
			return true, nil
		}

		action, stop, cancel := actionForKey(k)
		if cancel {
			cancelErr = aerrors.ErrUserCancelled()
			return true, nil
		}
		if stop {
			chosen = action
		}
		return stop, nil
	})
	if err != nil {
		return ActionDone, aerrors.ErrUserInputFailed(err)
	}
	if cancelErr != nil {
		return ActionDone, cancelErr
	}
	return chosen, nil
}

// actionForKey maps a direct key press to an action.
func actionForKey(k keys.Key) (action Action, stop bool, cancel bool) {
	switch k.Code {
	case keys.CtrlC:
		return ActionDone, true, true
	case keys.Escape:
		return ActionDone, true, false
	case keys.RuneKey:
		for _, opt := range actionOptions {
			if strings.EqualFold(k.String(), opt.key) {
				return opt.action, true, false
			}
		}
	}
	return ActionDone, false, false
}
