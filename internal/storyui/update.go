package storyui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/narrative"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.engine.SelectPreviousChoice()
	case "down", "j":
		m.engine.SelectNextChoice()
	case "enter", " ":
		m.confirm()
	case "n":
		m.nextBeat()
	case "a":
		m.areaIdx = (m.areaIdx + 1) % len(m.areas)
		m.status = fmt.Sprintf("Travelling to %s.", m.Area())
	case "e":
		end := m.engine.CalculateEnding()
		m.ending = &end
		m.record(fmt.Sprintf("Ending %s: %s", end.ID, end.Title))
	case "esc":
		m.ending = nil
	}
	return m, nil
}

// confirm commits the pending choice, or advances the dialogue.
func (m *Model) confirm() {
	if m.engine.HasPendingChoice() {
		d, ok := m.engine.MakeChoice()
		if ok {
			m.record("> " + d.Text)
			m.logger.Debug("choice made", zap.String("choice", d.ChoiceID), zap.Int("morality", m.engine.Morality()))
			m.recordDialogue()
		}
		return
	}
	if _, ok := m.engine.CurrentDialogue(); ok {
		m.engine.AdvanceDialogue()
		m.recordDialogue()
		return
	}
	m.status = "Nothing to confirm. Press n for the next story beat."
}

// nextBeat plays a random story beat for the current area once the engine is idle.
func (m *Model) nextBeat() {
	if m.engine.Busy() {
		m.status = "Finish the current scene first."
		return
	}
	beat := narrative.StoryEvent(m.Area(), m.roller)
	if err := m.engine.Play(beat); err != nil {
		m.status = err.Error()
		return
	}
	m.recordDialogue()
}
