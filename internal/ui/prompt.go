package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Bubbletea-based interactive prompts
// =============================================================================

// confirmModel is a bubbletea model for y/n confirmation.
type confirmModel struct {
	prompt   string
	cursor   int // 0 = yes, 1 = no
	decided  bool
	accepted bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.accepted, m.decided = true, true
		return m, tea.Quit
	case "n", "N", "ctrl+c", "esc":
		m.accepted, m.decided = false, true
		return m, tea.Quit
	case "left", "h":
		m.cursor = 0
	case "right", "l":
		m.cursor = 1
	case "enter", " ":
		m.accepted = m.cursor == 0
		m.decided = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	yes := dimStyle.Render("  Yes ")
	no := dimStyle.Render("  No  ")
	if m.cursor == 0 {
		yes = successStyle.Render("▸ Yes ")
	} else {
		no = errorStyle.Render("▸ No  ")
	}
	return fmt.Sprintf("%s\n\n  %s  %s\n\n%s",
		promptStyle.Render(m.prompt),
		yes, no,
		dimStyle.Render("  ←/→ to select • enter to confirm • y/n for quick select"))
}

// Confirm prompts the user with a yes/no question and returns the response.
func Confirm(prompt string) (bool, error) {
	m := confirmModel{prompt: prompt}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	fmt.Fprintln(os.Stderr)
	return result.(confirmModel).accepted, nil
}

// DomainItem is one row of the domain selector.
type DomainItem struct {
	Name   string
	Filled int
	Total  int
}

// Toggler is the selection state a domain selector edits. Toggle returns
// membership after the call; a refused add leaves the domain out.
type Toggler interface {
	Toggle(domain string) bool
	Contains(domain string) bool
}

// selectDomainsModel is a bubbletea model for choosing batch-export domains.
// Every toggle goes through the Toggler so its admission rule applies.
type selectDomainsModel struct {
	title     string
	items     []DomainItem
	sel       Toggler
	cursor    int
	notice    string
	confirmed bool
	cancelled bool
}

func (m selectDomainsModel) Init() tea.Cmd { return nil }

func (m selectDomainsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.items) == 0 {
			break
		}
		m.toggle(m.items[m.cursor])
	case "a":
		for _, it := range m.items {
			if !m.sel.Contains(it.Name) {
				m.toggle(it)
			}
		}
	case "enter":
		m.confirmed = true
		return m, tea.Quit
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *selectDomainsModel) toggle(it DomainItem) {
	was := m.sel.Contains(it.Name)
	if now := m.sel.Toggle(it.Name); !was && !now {
		m.notice = fmt.Sprintf("%s is incomplete (%d/%d fields). Fill every field first.", it.Name, it.Filled, it.Total)
	}
}

func (m selectDomainsModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s\n", boldStyle.Render(m.title))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render("↑/↓ navigate • space toggle • a all complete • enter confirm • esc cancel"))

	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = promptStyle.Render("▸ ")
		}
		checkbox := "[ ]"
		if m.sel.Contains(it.Name) {
			checkbox = successStyle.Render("[✓]")
		} else if it.Total == 0 || it.Filled < it.Total {
			checkbox = dimStyle.Render("[·]")
		}
		fmt.Fprintf(&b, "%s%s  %-34s %s\n", cursor, checkbox, it.Name, ProgressBar(it.Filled, it.Total, 10))
	}

	if m.notice != "" {
		fmt.Fprintf(&b, "\n  %s\n", warningStyle.Render(m.notice))
	}
	return b.String()
}

// SelectDomains runs the interactive domain selector over sel. It returns
// false when the user cancelled; sel keeps whatever toggles were made
// either way.
func SelectDomains(title string, items []DomainItem, sel Toggler) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	m := selectDomainsModel{title: title, items: items, sel: sel}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	fmt.Fprintln(os.Stderr)
	return !result.(selectDomainsModel).cancelled, nil
}
