// Package physics provides the axis-aligned rectangle geometry and the gravity,
// landing, and wall rules shared by every body in an area.
package physics

import "math"

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"width" json:"width"`
	H float64 `yaml:"height" json:"height"`
}

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Overlaps reports whether a and b intersect. Edges are half-open, so rectangles
// that merely touch do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W &&
		a.X+a.W > b.X &&
		a.Y < b.Y+b.H &&
		a.Y+a.H > b.Y
}

// IntegrateGravity returns vy after one tick of gravity, capped at maxFall.
func IntegrateGravity(vy, gravity, maxFall float64) float64 {
	return math.Min(vy+gravity, maxFall)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Body is the kinematic state shared by the player, enemies, and bosses.
type Body struct {
	X, Y          float64
	VX, VY        float64
	Width, Height float64
}

// Rect returns the body's bounding box.
func (b *Body) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height}
}

// Center returns the midpoint of the bounding box.
func (b *Body) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Integrate moves the body by its velocity.
func (b *Body) Integrate() {
	b.X += b.VX
	b.Y += b.VY
}

// ClampX keeps the body inside [0, width-body width].
func (b *Body) ClampX(width float64) {
	b.X = Clamp(b.X, 0, width-b.Width)
}

// Platform is a solid surface. Climbable platforms act as walls the player may scale.
type Platform struct {
	Rect      `yaml:",inline"`
	Climbable bool `yaml:"climbable"`
	Hazard    bool `yaml:"hazard"`
	Unstable  bool `yaml:"unstable"`
}

// World is the geometry an update needs from the current area.
type World interface {
	Platforms() []Platform
	Width() float64
	Height() float64
}

// StaticWorld is a fixed World.
type StaticWorld struct {
	Solids []Platform
	W, H   float64
}

// Platforms implements World.
func (s StaticWorld) Platforms() []Platform { return s.Solids }

// Width implements World.
func (s StaticWorld) Width() float64 { return s.W }

// Height implements World.
func (s StaticWorld) Height() float64 { return s.H }

// LandOnPlatforms applies the falling-body ground rule: a body moving down into a
// platform snaps onto its top and stops.
//
// Postcondition: Returns true if the body landed on at least one platform.
func LandOnPlatforms(b *Body, platforms []Platform) bool {
	landed := false
	for _, p := range platforms {
		if !Overlaps(b.Rect(), p.Rect) {
			continue
		}
		if b.VY > 0 {
			b.Y = p.Y - b.Height
			b.VY = 0
			landed = true
		}
	}
	return landed
}

// WallSide names the side of the body a climbable wall touches.
type WallSide int

const (
	// NoWall means no climbable wall is in contact.
	NoWall WallSide = iota
	// WallLeft means the wall is on the body's left.
	WallLeft
	// WallRight means the wall is on the body's right.
	WallRight
)

// Contact summarizes the result of ResolveCollisions.
type Contact struct {
	OnGround bool
	Wall     WallSide
	Landed   bool
}

// ResolveCollisions separates b from every overlapping platform along the axis of
// least penetration, then clamps b inside the world.
//
// Postcondition: b lies within [0, w.Width()-b.Width] x [0, w.Height()-b.Height].
func ResolveCollisions(b *Body, w World) Contact {
	var c Contact
	for _, p := range w.Platforms() {
		if !Overlaps(b.Rect(), p.Rect) {
			continue
		}
		overlapX := math.Min(b.X+b.Width-p.X, p.X+p.W-b.X)
		overlapY := math.Min(b.Y+b.Height-p.Y, p.Y+p.H-b.Y)

		if overlapX < overlapY {
			if b.X < p.X {
				b.X = p.X - b.Width
				if p.Climbable {
					c.Wall = WallRight
				}
			} else {
				b.X = p.X + p.W
				if p.Climbable {
					c.Wall = WallLeft
				}
			}
			b.VX = 0
			continue
		}
		if b.Y < p.Y {
			b.Y = p.Y - b.Height
			c.OnGround = true
			c.Landed = true
		} else {
			b.Y = p.Y + p.H
		}
		b.VY = 0
	}

	b.X = Clamp(b.X, 0, w.Width()-b.Width)
	b.Y = Clamp(b.Y, 0, w.Height()-b.Height)
	if b.Y >= w.Height()-b.Height {
		c.OnGround = true
	}
	return c
}
