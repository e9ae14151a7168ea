package narrative

import (
	"sort"

	"github.com/cory-johannsen/duskborne/internal/game/dice"
)

// StoryBeat is a dialogue line with the choices it prompts.
type StoryBeat struct {
	Dialogue Dialogue
	Choices  []ChoiceSpec
}

const defaultStoryArea = "forest"

var storyBeats = map[string][]StoryBeat{
	"forest": {
		{
			Dialogue: Dialogue{Speaker: "Stranger", Text: "Traveler! Bandits have taken my daughter. Will you help?"},
			Choices: []ChoiceSpec{
				{ID: "help_stranger", Text: "I will help you.", Morality: 10, Relationships: map[string]int{"warrior": 5}},
				{ID: "demand_payment", Text: "What's in it for me?", Morality: -5},
				{ID: "refuse_help", Text: "That's not my problem.", Morality: -15},
			},
		},
		{
			Dialogue: Dialogue{Speaker: "Merchant", Text: "I have a magical artifact, but dark forces seek it. Will you protect it or claim it for yourself?"},
			Choices: []ChoiceSpec{
				{ID: "protect_artifact", Text: "I will keep it safe.", Morality: 15, Flags: map[string]bool{"destroyedArtifact": false}},
				{ID: "claim_artifact", Text: "I'll take it for myself.", Morality: -10},
				{ID: "destroy_artifact", Text: "It must be destroyed.", Morality: 5, Flags: map[string]bool{"destroyedArtifact": true}},
			},
		},
	},
	"village": {
		{
			Dialogue: Dialogue{Speaker: "Elder", Text: "A plague threatens our village. The cure lies in the cursed forest. Will you retrieve it?"},
			Choices: []ChoiceSpec{
				{ID: "get_cure", Text: "I'll bring back the cure.", Morality: 20, Flags: map[string]bool{FlagSavedVillage: true}},
				{ID: "demand_reward", Text: "Only if you pay me well.", Morality: -5},
				{ID: "leave_village", Text: "I have more important matters.", Morality: -20},
			},
		},
	},
	"dungeon": {
		{
			Dialogue: Dialogue{Speaker: "Captured Thief", Text: "Please, help me escape! I know secrets that could aid you."},
			Choices: []ChoiceSpec{
				{ID: "free_thief", Text: "I'll help you escape.", Relationships: map[string]int{"thief": 20}},
				{ID: "interrogate", Text: "Tell me the secrets first.", Morality: -5},
				{ID: "leave_imprisoned", Text: "You deserve to be here.", Morality: -10},
			},
		},
	},
	"boss_room": {
		{
			Dialogue: Dialogue{Speaker: "Boss", Text: "You've come far, but your journey ends here. Join me and we can rule together!"},
			Choices: []ChoiceSpec{
				{ID: "refuse_boss", Text: "Never! I will stop you!", Morality: 15},
				{ID: "consider_offer", Text: "Tell me more about your offer.", Morality: -5},
				{ID: "betray_for_power", Text: "I accept your offer.", Morality: -30, Flags: map[string]bool{FlagBetrayedAlly: true}},
			},
		},
	},
}

// StoryBeats returns the beats for area, falling back to the forest's.
func StoryBeats(area string) []StoryBeat {
	if beats, ok := storyBeats[area]; ok {
		return beats
	}
	return storyBeats[defaultStoryArea]
}

// StoryAreas returns the area IDs with their own story beats, sorted.
func StoryAreas() []string {
	out := make([]string, 0, len(storyBeats))
	for area := range storyBeats {
		out = append(out, area)
	}
	sort.Strings(out)
	return out
}

// StoryEvent picks one beat for area uniformly at random.
func StoryEvent(area string, roller *dice.Roller) StoryBeat {
	beats := StoryBeats(area)
	return beats[roller.Intn("story beat", len(beats))]
}

// Play shows the beat's dialogue and presents its choices.
func (e *Engine) Play(beat StoryBeat) error {
	e.ShowDialogue(beat.Dialogue)
	if len(beat.Choices) == 0 {
		return nil
	}
	return e.PresentChoice(Choices(beat.Choices))
}
