// Package prompt asks the user questions on the terminal.
package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user interrupts a prompt (Ctrl-C or
// Ctrl-D).
var ErrAborted = errors.New("aborted")

// Choice is one entry of a Select menu.
type Choice struct {
	Name        string
	Value       string
	Description string
}

// Prompter is what the wizard needs from a terminal.
type Prompter interface {
	// Select shows label with choices and returns the index picked. size is
	// the number of visible rows; zero means the default.
	Select(label string, choices []Choice, size int) (int, error)
	// Input reads a line of text, pre-filled with def.
	Input(label, def string) (string, error)
}

var selectTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}",
	Active:   "▸ {{ .Name | magenta }}",
	Inactive: "  {{ .Name }}",
	Selected: "✔ {{ .Name | faint }}",
	Details:  `{{ if .Description }}{{ .Description | faint }}{{ end }}`,
}

// Terminal implements Prompter with promptui.
type Terminal struct{}

func (Terminal) Select(label string, choices []Choice, size int) (int, error) {
	if len(choices) == 0 {
		return 0, fmt.Errorf("%s: nothing to choose from", label)
	}
	s := promptui.Select{
		Label:     label,
		Items:     choices,
		Size:      size,
		Templates: selectTemplates,
	}
	i, _, err := s.Run()
	return i, translate(err)
}

func (Terminal) Input(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
	}
	v, err := p.Run()
	return v, translate(err)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return ErrAborted
	}
	return err
}

// Banner colours s for the wizard greeting.
func Banner(s string) string {
	return promptui.Styler(promptui.FGMagenta)(s)
}
