package session

// State is the top-level mode a session is in.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StatePaused
	StateDialogue
	StateChoice
	StateGameOver
	StateEnding
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateDialogue:
		return "dialogue"
	case StateChoice:
		return "choice"
	case StateGameOver:
		return "game_over"
	case StateEnding:
		return "ending"
	default:
		return "unknown"
	}
}
