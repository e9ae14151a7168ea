package main

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/npc"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/player"
	"github.com/cory-johannsen/duskborne/internal/game/session"
)

const (
	attackReachX = 70.0
	attackReachY = 80.0
	dodgeRange   = 100.0
	dodgeChance  = 0.3
	stuckTicks   = 20
	arriveRange  = 10.0
)

// pilot is the autopilot's memory of one session.
type pilot struct {
	lastX  float64
	stuck  int
	choice int
}

// Autopilot plays sessions: it walks toward the nearest foe, fights it, talks
// to every NPC it passes, takes portals once an area's boss is down, and picks
// choices at random.
type Autopilot struct {
	roller *dice.Roller

	mu     sync.Mutex
	pilots map[uuid.UUID]*pilot
}

// NewAutopilot returns an autopilot drawing its choices from roller.
//
// Precondition: roller must be non-nil.
func NewAutopilot(roller *dice.Roller) *Autopilot {
	return &Autopilot{roller: roller, pilots: make(map[uuid.UUID]*pilot)}
}

// Input implements session.InputSource.
func (a *Autopilot) Input(s *session.Session) player.Input {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pilots[s.ID]
	if !ok {
		p = &pilot{choice: -1}
		a.pilots[s.ID] = p
	}

	f := player.NewFrame()
	switch s.State() {
	case session.StateMenu, session.StateDialogue:
		return f.Press(player.ActionInteract)
	case session.StatePaused:
		return f.Press(player.ActionPause)
	case session.StateChoice:
		return a.choose(s, p, f)
	case session.StatePlaying:
		return a.play(s, p, f)
	default:
		return player.None
	}
}

func (a *Autopilot) choose(s *session.Session, p *pilot, f *player.Frame) player.Input {
	e := s.Narrative()
	n := len(e.CurrentChoices())
	if n == 0 {
		return player.None
	}
	if p.choice < 0 || p.choice >= n {
		p.choice = a.roller.Intn("autopilot choice", n)
	}
	if e.SelectedChoiceIndex() != p.choice {
		return f.Press(player.ActionDown)
	}
	p.choice = -1
	return f.Press(player.ActionInteract)
}

func (a *Autopilot) play(s *session.Session, p *pilot, f *player.Frame) player.Input {
	pl := s.Player()
	lvl := s.Level()
	me := pl.Rect()

	if _, ok := lvl.NPCNear(me, npc.InteractRange); ok {
		return f.Press(player.ActionInteract)
	}

	foe, foeFound := nearestFoe(s)
	if !foeFound || bossDown(s) {
		if _, ok := lvl.PortalAt(me); ok {
			return f.Press(player.ActionInteract)
		}
	}

	targetX := me.CenterX()
	switch {
	case foeFound:
		targetX = foe.CenterX()
		dx := math.Abs(foe.CenterX() - me.CenterX())
		dy := math.Abs(foe.CenterY() - me.CenterY())
		if dx < attackReachX && dy < attackReachY {
			f.Press(player.ActionAttack)
		}
	case len(lvl.Area.Portals) > 0:
		targetX = lvl.Area.Portals[0].CenterX()
	}

	if threatened(s, me) && a.roller.Chance("autopilot dodge", dodgeChance) {
		f.Press(player.ActionDodge)
	}

	switch {
	case targetX > me.CenterX()+arriveRange:
		f.Hold(player.ActionRight)
	case targetX < me.CenterX()-arriveRange:
		f.Hold(player.ActionLeft)
	}

	if math.Abs(pl.X-p.lastX) < 0.5 && math.Abs(targetX-me.CenterX()) > arriveRange {
		p.stuck++
	} else {
		p.stuck = 0
	}
	p.lastX = pl.X
	if p.stuck >= stuckTicks {
		p.stuck = 0
		f.Press(player.ActionJump)
	}
	return f
}

// nearestFoe returns the bounds of the closest living foe.
func nearestFoe(s *session.Session) (physics.Rect, bool) {
	me := s.Player().Rect()
	var (
		best  physics.Rect
		bestD = math.Inf(1)
		found bool
	)
	for _, c := range s.Level().Foes() {
		r := c.Bounds()
		d := physics.Distance(me.CenterX(), me.CenterY(), r.CenterX(), r.CenterY())
		if d < bestD {
			best, bestD, found = r, d, true
		}
	}
	return best, found
}

// bossDown reports whether the level has no living boss.
func bossDown(s *session.Session) bool {
	for _, b := range s.Level().Bosses() {
		if b.Alive() {
			return false
		}
	}
	return true
}

func threatened(s *session.Session, me physics.Rect) bool {
	for _, c := range s.Level().Foes() {
		if !c.Attacking() {
			continue
		}
		r := c.Bounds()
		if physics.Distance(me.CenterX(), me.CenterY(), r.CenterX(), r.CenterY()) < dodgeRange {
			return true
		}
	}
	return false
}

// Finished reports true once every session has reached a game over or an
// ending, or has run maxTicks ticks. A zero maxTicks means no tick limit.
func Finished(maxTicks int) func(*session.Manager) bool {
	return func(m *session.Manager) bool {
		all := m.All()
		if len(all) == 0 {
			return false
		}
		for _, s := range all {
			if maxTicks > 0 && s.Ticks() >= uint64(maxTicks) {
				continue
			}
			if st := s.State(); st != session.StateGameOver && st != session.StateEnding {
				return false
			}
		}
		return true
	}
}
