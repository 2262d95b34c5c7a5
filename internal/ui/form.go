package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user abandons an interactive form.
var ErrAborted = errors.New("aborted")

// FormField is one input of a fill form.
type FormField struct {
	Label string
	Value string
}

// formModel walks a list of fields one at a time. Enter stores the input
// and moves to the next field; enter on the last field finishes.
type formModel struct {
	title   string
	fields  []FormField
	input   textinput.Model
	index   int
	done    bool
	aborted bool
}

func newFormModel(title string, fields []FormField) formModel {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 512
	in.Width = 48
	in.Placeholder = "value"
	in.Focus()

	m := formModel{
		title:  title,
		fields: append([]FormField(nil), fields...),
		input:  in,
	}
	m.load()
	return m
}

func (m *formModel) load() {
	m.input.SetValue(m.fields[m.index].Value)
	m.input.CursorEnd()
}

func (m *formModel) commit() {
	m.fields[m.index].Value = m.input.Value()
}

func (m formModel) Init() tea.Cmd { return textinput.Blink }

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.commit()
			if m.index == len(m.fields)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.index++
			m.load()
			return m, nil
		case "tab", "down":
			m.commit()
			if m.index < len(m.fields)-1 {
				m.index++
				m.load()
			}
			return m, nil
		case "shift+tab", "up":
			m.commit()
			if m.index > 0 {
				m.index--
				m.load()
			}
			return m, nil
		case "ctrl+s":
			m.commit()
			m.done = true
			return m, tea.Quit
		case "esc":
			m.done = true
			return m, tea.Quit
		case "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m formModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", boldStyle.Render(m.title))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render("enter next • tab/shift+tab move • ctrl+s save • esc finish • ctrl+c abort"))

	for i, f := range m.fields {
		if i == m.index {
			fmt.Fprintf(&b, "%s%s\n    %s\n", promptStyle.Render("▸ "), boldStyle.Render(f.Label), m.input.View())
			continue
		}
		val := f.Value
		if strings.TrimSpace(val) == "" {
			val = dimStyle.Render("(empty)")
		}
		fmt.Fprintf(&b, "  %s  %s\n", dimStyle.Render(f.Label), val)
	}
	fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(fmt.Sprintf("field %d of %d", m.index+1, len(m.fields))))
	return b.String()
}

// RunForm prompts for each field in turn and returns the edited copies.
// Esc finishes with the values stored so far; ctrl+c returns ErrAborted.
func RunForm(title string, fields []FormField) ([]FormField, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	p := tea.NewProgram(newFormModel(title, fields), tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr)
	final := result.(formModel)
	if final.aborted {
		return nil, ErrAborted
	}
	return final.fields, nil
}
