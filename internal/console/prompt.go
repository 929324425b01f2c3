package console

import (
	"github.com/pterm/pterm"

	"menagerie/cli/internal/terminal"
)

// Prompter asks the user for input.
type Prompter interface {
	Select(label string, options []string) (string, error)
	Text(label, def string) (string, error)
	Confirm(label string, def bool) (bool, error)
}

// PtermPrompter prompts with pterm's interactive printers.
type PtermPrompter struct {
	// Compact clears each answered text prompt from the screen.
	Compact bool
}

func (PtermPrompter) Select(label string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(12).
		Show(label)
}

func (p PtermPrompter) Text(label, def string) (string, error) {
	answer, err := pterm.DefaultInteractiveTextInput.
		WithDefaultValue(def).
		Show(label)
	if err != nil {
		return "", err
	}
	if p.Compact {
		// label, ": " and the answer as typed
		terminal.ClearPreviousLines(len(label) + 2 + len(answer))
	}
	return answer, nil
}

func (PtermPrompter) Confirm(label string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(label)
}
