// Package narrative implements the decision engine: dialogue display, the
// single pending choice, the morality/relationship/flag state those choices
// mutate, and the ending computed from that state.
package narrative

import (
	"math"
	"sort"
	"time"
)

// Dialogue is one line of displayed text.
type Dialogue struct {
	Speaker string `yaml:"speaker" json:"speaker"`
	Text    string `yaml:"text" json:"text"`
}

// Choice is one selectable option of a pending choice.
type Choice struct {
	ID            string
	Text          string
	Morality      int
	Relationships map[string]int
	Flags         map[string]bool
	// Callback runs after the effects are applied and before the choice is cleared.
	Callback func()
}

// ChoiceSpec is the content form of a Choice.
type ChoiceSpec struct {
	ID            string          `yaml:"id"`
	Text          string          `yaml:"text"`
	Morality      int             `yaml:"morality"`
	Relationships map[string]int  `yaml:"relationships"`
	Flags         map[string]bool `yaml:"flags"`
}

// Choice converts the spec into a Choice without a callback.
func (s ChoiceSpec) Choice() Choice {
	return Choice{
		ID:            s.ID,
		Text:          s.Text,
		Morality:      s.Morality,
		Relationships: s.Relationships,
		Flags:         s.Flags,
	}
}

// Choices converts a slice of specs.
func Choices(specs []ChoiceSpec) []Choice {
	out := make([]Choice, len(specs))
	for i, s := range specs {
		out[i] = s.Choice()
	}
	return out
}

// Decision is the immutable record of a committed choice.
type Decision struct {
	ChoiceID  string    `json:"choice_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Score is one named counter.
type Score struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Scores is an insertion-ordered set of named counters. The order is the
// tie-break order for Dominant.
type Scores struct {
	order  []string
	values map[string]int
}

// NewScores returns Scores holding names at zero, in order.
func NewScores(names ...string) *Scores {
	s := &Scores{values: make(map[string]int, len(names))}
	for _, n := range names {
		s.ensure(n)
	}
	return s
}

func scoresFrom(list []Score) *Scores {
	s := NewScores()
	for _, sc := range list {
		s.ensure(sc.Name)
		s.values[sc.Name] = sc.Value
	}
	return s
}

func (s *Scores) ensure(name string) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
		s.values[name] = 0
	}
}

// Get returns the value of name, zero when unseen.
func (s *Scores) Get(name string) int { return s.values[name] }

// Add increments name by delta, saturating at ±math.MaxInt, and appends
// unseen names to the order.
func (s *Scores) Add(name string, delta int) {
	s.ensure(name)
	s.values[name] = clampedAdd(s.values[name], delta, math.MaxInt)
}

// clampedAdd returns v+delta limited to [-bound, bound] without overflowing.
//
// Precondition: bound >= 1 and -bound <= v <= bound.
func clampedAdd(v, delta, bound int) int {
	switch {
	case delta > 0 && v > bound-delta:
		return bound
	case delta < 0 && v < -bound-delta:
		return -bound
	}
	return v + delta
}

// AddAll applies every delta in m. Unseen names are appended in sorted order.
func (s *Scores) AddAll(m map[string]int) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		s.Add(n, m[n])
	}
}

// Len returns the number of names.
func (s *Scores) Len() int { return len(s.order) }

// List returns the counters in order.
func (s *Scores) List() []Score {
	out := make([]Score, len(s.order))
	for i, n := range s.order {
		out[i] = Score{Name: n, Value: s.values[n]}
	}
	return out
}

// Dominant returns the first name holding the maximum value.
//
// Postcondition: ok is false only when Scores is empty.
func (s *Scores) Dominant() (name string, ok bool) {
	for _, n := range s.order {
		if !ok || s.values[n] > s.values[name] {
			name, ok = n, true
		}
	}
	return name, ok
}

// AllZero reports whether every counter is zero.
func (s *Scores) AllZero() bool {
	for _, v := range s.values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Mode is what the engine is currently asking of the player.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDialogue
	ModeChoice
)

func (m Mode) String() string {
	switch m {
	case ModeDialogue:
		return "dialogue"
	case ModeChoice:
		return "choice"
	default:
		return "idle"
	}
}

// Default relationship, flag, and combat style keys.
var (
	DefaultRelationships = []string{"warrior", "mage", "thief", "mentor", "villain"}
	DefaultFlags         = []string{
		FlagSavedVillage, "defeatedBoss1", "defeatedBoss2", "defeatedBoss3",
		FlagFoundSecret, FlagBetrayedAlly, FlagSparedEnemy, "destroyedArtifact",
	}
	CombatStyles = []string{StyleAggressive, StyleDefensive, StyleTactical}
)

const (
	FlagSavedVillage = "savedVillage"
	FlagFoundSecret  = "foundSecret"
	FlagBetrayedAlly = "betrayedAlly"
	FlagSparedEnemy  = "sparedEnemy"

	StyleAggressive = "aggressive"
	StyleDefensive  = "defensive"
	StyleTactical   = "tactical"
)
