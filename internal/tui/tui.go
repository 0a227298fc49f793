// Package tui provides the interactive topic picker used by the article command.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user quits without choosing a topic.
var ErrCancelled = errors.New("topic selection cancelled")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

// model holds the picker state.
type model struct {
	source      string
	topics      []string
	selectedIdx int
	chosen      string
	width       int
	quitting    bool
}

func newModel(source string, topics []string) model {
	return model{source: source, topics: topics}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.topics)-1 {
				m.selectedIdx++
			}
		case "enter":
			if len(m.topics) > 0 {
				m.chosen = m.topics[m.selectedIdx]
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.chosen != "" || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose a topic"))
	b.WriteString("\n")
	if m.source != "" {
		b.WriteString(sourceStyle.Render(m.source))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, topic := range m.topics {
		if i == m.selectedIdx {
			b.WriteString(cursorStyle.Render(selectedStyle.Render(fmt.Sprintf("%d. %s", i+1, topic))))
		} else {
			fmt.Fprintf(&b, "  %d. %s", i+1, topic)
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n[↑/k] Up | [↓/j] Down | [enter] Select | [q] Quit"))
	return b.String()
}

// PickTopic shows the topics and returns the one the user selects.
func PickTopic(source string, topics []string) (string, error) {
	if len(topics) == 0 {
		return "", fmt.Errorf("no topics to choose from")
	}

	final, err := tea.NewProgram(newModel(source, topics)).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run topic picker: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.chosen == "" {
		return "", ErrCancelled
	}
	return m.chosen, nil
}
