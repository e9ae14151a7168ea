package narrative

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

var (
	// ErrChoicePending is returned by PresentChoice while another choice awaits commitment.
	ErrChoicePending = errors.New("narrative: a choice is already pending")
	// ErrNoChoices is returned by PresentChoice for an empty choice set.
	ErrNoChoices = errors.New("narrative: choice set is empty")
)

// IntroDialogue opens every game.
var IntroDialogue = Dialogue{
	Speaker: "Narrator",
	Text:    "Long ago, a great darkness fell upon the land. You are the last hope to restore balance. But beware - every choice has consequences...",
}

// BossFlag names the flag recording the defeat of the i-th boss (1-based).
func BossFlag(i int) string { return fmt.Sprintf("defeatedBoss%d", i) }

// Engine owns the narrative state. It is driven from the session tick and is
// not safe for concurrent use.
//
// Invariant: at most one choice set is pending at a time.
// Invariant: -MoralityBound <= morality <= MoralityBound.
type Engine struct {
	t      tuning.Constants
	clock  timer.Clock
	tracer trace.Tracer
	logger *zap.Logger

	morality      int
	relationships *Scores
	combatStyle   *Scores
	flags         map[string]bool
	decisions     []Decision

	dialogue *Dialogue
	queue    []Dialogue

	choices       []Choice
	selected      int
	pending       bool
	promptShown   bool
	queuedChoices [][]Choice

	observers []func(Decision)
}

// NewEngine returns an engine holding the default state.
//
// Precondition: clock, tracer, and logger must be non-nil.
func NewEngine(t tuning.Constants, clock timer.Clock, tracer trace.Tracer, logger *zap.Logger) *Engine {
	if clock == nil || tracer == nil || logger == nil {
		panic("narrative.NewEngine: clock, tracer, and logger must be non-nil")
	}
	e := &Engine{t: t, clock: clock, tracer: tracer, logger: logger}
	e.Reset()
	return e
}

// Reset restores the default state and drops any dialogue or pending choice.
// Commit observers stay registered.
func (e *Engine) Reset() {
	e.morality = 0
	e.relationships = NewScores(DefaultRelationships...)
	e.combatStyle = NewScores(CombatStyles...)
	e.flags = make(map[string]bool, len(DefaultFlags))
	for _, f := range DefaultFlags {
		e.flags[f] = false
	}
	e.decisions = nil
	e.clearPresentation()
}

func (e *Engine) clearPresentation() {
	e.dialogue = nil
	e.queue = nil
	e.choices = nil
	e.selected = 0
	e.pending = false
	e.promptShown = false
	e.queuedChoices = nil
}

// StartGame shows the narrator's introduction.
func (e *Engine) StartGame() {
	e.ShowDialogue(IntroDialogue)
}

// ShowDialogue replaces the current dialogue.
func (e *Engine) ShowDialogue(d Dialogue) {
	e.dialogue = &d
}

// QueueDialogue shows the first line now when nothing is displayed and
// appends the rest behind the current dialogue.
func (e *Engine) QueueDialogue(ds ...Dialogue) {
	for _, d := range ds {
		if e.dialogue == nil {
			e.ShowDialogue(d)
			continue
		}
		e.queue = append(e.queue, d)
	}
}

// AdvanceDialogue moves to the next queued line.
//
// Postcondition: Returns false when another line is now displayed, true when
// the dialogue has finished.
func (e *Engine) AdvanceDialogue() bool {
	if e.dialogue == nil {
		return true
	}
	if len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.dialogue = &next
		return false
	}
	e.dialogue = nil
	return true
}

// CurrentDialogue returns the displayed line, if any.
func (e *Engine) CurrentDialogue() (Dialogue, bool) {
	if e.dialogue == nil {
		return Dialogue{}, false
	}
	return *e.dialogue, true
}

// PresentChoice makes choices the pending choice set with the first option selected.
// A dialogue displayed at this moment becomes the choice's prompt and is
// dismissed when the choice is committed.
//
// Postcondition: Returns ErrChoicePending or ErrNoChoices and changes nothing on failure.
func (e *Engine) PresentChoice(choices []Choice) error {
	if e.pending {
		return ErrChoicePending
	}
	if len(choices) == 0 {
		return ErrNoChoices
	}
	e.choices = append([]Choice(nil), choices...)
	e.selected = 0
	e.pending = true
	e.promptShown = e.dialogue != nil
	return nil
}

// QueueChoice presents choices now, or after the pending choice is committed.
func (e *Engine) QueueChoice(choices []Choice) {
	if len(choices) == 0 {
		return
	}
	if err := e.PresentChoice(choices); err != nil {
		e.queuedChoices = append(e.queuedChoices, choices)
	}
}

// CurrentChoices returns the pending choice set, or nil.
func (e *Engine) CurrentChoices() []Choice { return e.choices }

// SelectedChoiceIndex returns the highlighted option.
func (e *Engine) SelectedChoiceIndex() int { return e.selected }

// HasPendingChoice reports whether a choice awaits commitment.
func (e *Engine) HasPendingChoice() bool { return e.pending }

// Mode reports what the engine is waiting on.
func (e *Engine) Mode() Mode {
	switch {
	case e.pending:
		return ModeChoice
	case e.dialogue != nil:
		return ModeDialogue
	default:
		return ModeIdle
	}
}

// Busy reports whether a dialogue or choice is on screen.
func (e *Engine) Busy() bool { return e.Mode() != ModeIdle }

// SelectNextChoice moves the highlight forward, wrapping.
func (e *Engine) SelectNextChoice() {
	if len(e.choices) == 0 {
		return
	}
	e.selected = (e.selected + 1) % len(e.choices)
}

// SelectPreviousChoice moves the highlight back, wrapping.
func (e *Engine) SelectPreviousChoice() {
	if len(e.choices) == 0 {
		return
	}
	e.selected = (e.selected - 1 + len(e.choices)) % len(e.choices)
}

// MakeChoice commits the highlighted option: effects, decision record,
// callback, then clears the pending choice and notifies observers.
//
// Postcondition: Returns false and changes nothing when no choice is pending.
func (e *Engine) MakeChoice() (Decision, bool) {
	if !e.pending || len(e.choices) == 0 {
		return Decision{}, false
	}
	choice := e.choices[e.selected]
	_, span := e.tracer.Start(context.Background(), "narrative.MakeChoice",
		trace.WithAttributes(attribute.String("choice.id", choice.ID)))
	defer span.End()

	e.ApplyEffects(choice.Morality, choice.Relationships, choice.Flags)
	d := Decision{ChoiceID: choice.ID, Text: choice.Text, Timestamp: e.clock.Now()}
	e.decisions = append(e.decisions, d)

	if e.promptShown {
		e.AdvanceDialogue()
	}
	if choice.Callback != nil {
		choice.Callback()
	}

	e.choices = nil
	e.selected = 0
	e.pending = false
	e.promptShown = false
	if len(e.queuedChoices) > 0 {
		next := e.queuedChoices[0]
		e.queuedChoices = e.queuedChoices[1:]
		_ = e.PresentChoice(next)
	}

	span.SetAttributes(
		attribute.Int("narrative.morality", e.morality),
		attribute.Int("narrative.decisions", len(e.decisions)),
	)
	e.logger.Debug("choice committed",
		zap.String("choice", choice.ID),
		zap.Int("morality", e.morality),
		zap.Int("decisions", len(e.decisions)),
	)
	for _, fn := range e.observers {
		fn(d)
	}
	return d, true
}

// OnCommit registers fn to run after every committed choice.
func (e *Engine) OnCommit(fn func(Decision)) {
	e.observers = append(e.observers, fn)
}

// ApplyEffects adds morality (clamped), adds relationship deltas, and
// overwrites flags.
//
// Postcondition: morality stays within ±MoralityBound for any delta, and a
// positive delta never lowers it.
func (e *Engine) ApplyEffects(morality int, relationships map[string]int, flags map[string]bool) {
	e.morality = clampedAdd(e.morality, morality, e.t.MoralityBound)
	e.relationships.AddAll(relationships)
	for name, v := range flags {
		e.flags[name] = v
	}
}

// SetFlag overwrites one flag.
func (e *Engine) SetFlag(name string, v bool) { e.flags[name] = v }

// Flag returns the value of name, false when unset.
func (e *Engine) Flag(name string) bool { return e.flags[name] }

// Flags returns a copy of every flag.
func (e *Engine) Flags() map[string]bool {
	out := make(map[string]bool, len(e.flags))
	for k, v := range e.flags {
		out[k] = v
	}
	return out
}

// Morality returns the clamped morality score.
func (e *Engine) Morality() int { return e.morality }

// Relationship returns the score of faction, zero when unseen.
func (e *Engine) Relationship(faction string) int { return e.relationships.Get(faction) }

// Relationships returns the relationship scores in order.
func (e *Engine) Relationships() []Score { return e.relationships.List() }

// CombatStyle returns the combat style counters in order.
func (e *Engine) CombatStyle() []Score { return e.combatStyle.List() }

// TrackCombatStyle counts one observation of style.
func (e *Engine) TrackCombatStyle(style string) { e.combatStyle.Add(style, 1) }

// Decisions returns a copy of the decision log.
func (e *Engine) Decisions() []Decision { return append([]Decision(nil), e.decisions...) }

// DecisionCount returns the number of committed choices.
func (e *Engine) DecisionCount() int { return len(e.decisions) }

// ShouldTriggerEnding reports whether all three bosses are defeated or the
// decision limit is reached.
func (e *Engine) ShouldTriggerEnding() bool {
	allBosses := e.flags[BossFlag(1)] && e.flags[BossFlag(2)] && e.flags[BossFlag(3)]
	return allBosses || len(e.decisions) >= e.t.EndingDecisionLimit
}
