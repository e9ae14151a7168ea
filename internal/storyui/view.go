package storyui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width := max(m.width-4, 20)
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Width(width)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Duskborne") + "  " + statsStyle.Render(m.stats()) + "\n\n")

	if m.ending != nil {
		b.WriteString(panel.Render(m.endingView()))
	} else {
		b.WriteString(panel.Render(m.sceneView()))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • enter confirm • n next beat • a travel • e ending • q quit"))
	return b.String()
}

func (m Model) stats() string {
	e := m.engine
	return fmt.Sprintf("area %s • morality %d • decisions %d", m.Area(), e.Morality(), e.DecisionCount())
}

func (m Model) sceneView() string {
	var b strings.Builder
	if d, ok := m.engine.CurrentDialogue(); ok {
		b.WriteString(speakerStyle.Render(d.Speaker) + "\n")
		b.WriteString(textStyle.Render(d.Text) + "\n")
	} else {
		b.WriteString(textStyle.Render("The road is quiet.") + "\n")
	}

	if m.engine.HasPendingChoice() {
		b.WriteString("\n")
		for i, c := range m.engine.CurrentChoices() {
			if i == m.engine.SelectedChoiceIndex() {
				b.WriteString(selectedStyle.Render("> "+c.Text) + "\n")
				continue
			}
			b.WriteString(choiceStyle.Render("  "+c.Text) + "\n")
		}
	}

	b.WriteString("\n" + statsStyle.Render(m.bonds()))
	return b.String()
}

func (m Model) bonds() string {
	var parts []string
	for _, s := range m.engine.Relationships() {
		parts = append(parts, fmt.Sprintf("%s %d", s.Name, s.Value))
	}
	line := "bonds: " + strings.Join(parts, ", ")

	var flags []string
	for name, v := range m.engine.Flags() {
		if v {
			flags = append(flags, name)
		}
	}
	if len(flags) > 0 {
		sort.Strings(flags)
		line += "\nflags: " + strings.Join(flags, ", ")
	}
	return line
}

func (m Model) endingView() string {
	end := m.ending
	var b strings.Builder
	b.WriteString(titleStyle.Render(end.Title) + "\n")
	b.WriteString(statsStyle.Render(fmt.Sprintf("%s path • ending %s • %d decisions • morality %d",
		end.PathType, end.ID, end.Decisions, end.Morality)) + "\n\n")
	b.WriteString(textStyle.Render(end.Description) + "\n\n")
	b.WriteString(helpStyle.Render("esc to return"))
	return b.String()
}
