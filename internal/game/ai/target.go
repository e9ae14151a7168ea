package ai

import "github.com/cory-johannsen/duskborne/internal/game/player"

// Target is the snapshot of the player an AI reads during one update.
type Target struct {
	X, Y          float64
	Combo         int
	DodgeCooldown float64
	Dodging       bool
	Invulnerable  bool
}

// TargetOf snapshots p.
func TargetOf(p *player.Player) Target {
	return Target{
		X:             p.X,
		Y:             p.Y,
		Combo:         p.Combo,
		DodgeCooldown: p.DodgeCooldown,
		Dodging:       p.Dodging,
		Invulnerable:  p.Invulnerable,
	}
}

// direction returns 1 when the target is to the right of x, otherwise -1.
func (t Target) direction(x float64) float64 {
	if t.X-x > 0 {
		return 1
	}
	return -1
}
