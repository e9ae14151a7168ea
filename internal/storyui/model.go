// Package storyui is a terminal front end over the narrative engine: it
// plays story beats, lets the player commit choices, and shows the ending
// the current state would produce.
package storyui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/narrative"
)

const maxHistory = 200

// Model is the bubbletea model.
type Model struct {
	engine *narrative.Engine
	roller *dice.Roller
	logger *zap.Logger

	areas   []string
	areaIdx int

	history []string
	ending  *narrative.Ending
	status  string

	width    int
	height   int
	quitting bool
}

// NewModel starts a new game on engine. The intro dialogue is on screen
// and area selects the first story area; unknown areas select the first one.
//
// Precondition: engine, roller, and logger must be non-nil.
func NewModel(engine *narrative.Engine, roller *dice.Roller, area string, logger *zap.Logger) Model {
	m := Model{
		engine: engine,
		roller: roller,
		logger: logger,
		areas:  narrative.StoryAreas(),
		width:  80,
		height: 24,
	}
	for i, a := range m.areas {
		if a == area {
			m.areaIdx = i
		}
	}
	engine.StartGame()
	m.recordDialogue()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Area returns the area story beats are drawn from.
func (m Model) Area() string { return m.areas[m.areaIdx] }

// Ending returns the ending last shown, if any.
func (m Model) Ending() (narrative.Ending, bool) {
	if m.ending == nil {
		return narrative.Ending{}, false
	}
	return *m.ending, true
}

// History returns the transcript.
func (m Model) History() []string { return append([]string(nil), m.history...) }

// Quitting reports whether the player asked to quit.
func (m Model) Quitting() bool { return m.quitting }

func (m *Model) record(line string) {
	m.history = append(m.history, line)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func (m *Model) recordDialogue() {
	if d, ok := m.engine.CurrentDialogue(); ok {
		m.record(fmt.Sprintf("%s: %s", d.Speaker, d.Text))
	}
}
