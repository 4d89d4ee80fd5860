package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is the bubbletea model for a yes/no prompt.
type confirmModel struct {
	prompt    string
	confirmed bool
	answered  bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.confirmed = true
			m.answered = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.prompt))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("y/⏎ confirm  n/q abort"))
	b.WriteString("\n")
	return b.String()
}

// confirm shows an interactive yes/no prompt and reports the answer.
func confirm(prompt string) (bool, error) {
	final, err := tea.NewProgram(confirmModel{prompt: prompt}).Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.confirmed, nil
}
