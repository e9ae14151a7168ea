package npc

import "github.com/cory-johannsen/duskborne/internal/game/physics"

// Instance is a live NPC standing in the current level.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// Name keys the NPC's dialogue definition.
	Name string
	// Rect is the NPC's position and size.
	Rect physics.Rect
	// HasDialogue is true until the NPC's greeting has been shown once.
	HasDialogue bool
}

// NewInstance creates a live NPC instance.
//
// Postcondition: HasDialogue is true.
func NewInstance(id, name string, rect physics.Rect) *Instance {
	return &Instance{ID: id, Name: name, Rect: rect, HasDialogue: true}
}

// Near reports whether the centers of r and the NPC are closer than rng.
func (i *Instance) Near(r physics.Rect, rng float64) bool {
	return i.distance(r) < rng
}

func (i *Instance) distance(r physics.Rect) float64 {
	return physics.Distance(r.CenterX(), r.CenterY(), i.Rect.CenterX(), i.Rect.CenterY())
}
