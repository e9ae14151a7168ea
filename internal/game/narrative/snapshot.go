package narrative

// Snapshot is the serializable narrative state. Displayed dialogue and any
// pending choice are not part of it.
type Snapshot struct {
	Morality      int             `json:"morality"`
	Relationships []Score         `json:"relationships"`
	CombatStyle   []Score         `json:"combat_style"`
	Flags         map[string]bool `json:"flags"`
	Decisions     []Decision      `json:"decisions"`
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Morality:      e.morality,
		Relationships: e.relationships.List(),
		CombatStyle:   e.combatStyle.List(),
		Flags:         e.Flags(),
		Decisions:     e.Decisions(),
	}
}

// Restore replaces the state with s. Morality is re-clamped and any displayed
// dialogue or pending choice is dropped.
func (e *Engine) Restore(s Snapshot) {
	e.clearPresentation()
	bound := e.t.MoralityBound
	e.morality = max(-bound, min(bound, s.Morality))
	e.relationships = scoresFrom(s.Relationships)
	e.combatStyle = scoresFrom(s.CombatStyle)
	e.flags = make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		e.flags[k] = v
	}
	e.decisions = append([]Decision(nil), s.Decisions...)
}
