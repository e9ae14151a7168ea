package player

// Action names a logical input.
type Action string

const (
	ActionLeft     Action = "left"
	ActionRight    Action = "right"
	ActionUp       Action = "up"
	ActionDown     Action = "down"
	ActionJump     Action = "jump"
	ActionAttack   Action = "attack"
	ActionSpecial  Action = "special"
	ActionDodge    Action = "dodge"
	ActionInteract Action = "interact"
	ActionPause    Action = "pause"
)

// Input is the polled, per-frame action contract. Pressed and Released are
// edge-triggered for the current frame; Down is level-triggered.
type Input interface {
	IsActionPressed(a Action) bool
	IsActionDown(a Action) bool
	IsActionReleased(a Action) bool
	// Axis returns a value in [-1, 1]: -1 when only neg is down, 1 when only pos is down.
	Axis(neg, pos Action) float64
}

// Frame is an Input for one tick. The zero Frame has nothing pressed.
type Frame struct {
	pressed  map[Action]bool
	down     map[Action]bool
	released map[Action]bool
}

// NewFrame returns an empty Frame.
func NewFrame() *Frame {
	return &Frame{
		pressed:  make(map[Action]bool),
		down:     make(map[Action]bool),
		released: make(map[Action]bool),
	}
}

// Press marks actions as pressed this frame, which also holds them down.
func (f *Frame) Press(actions ...Action) *Frame {
	for _, a := range actions {
		f.pressed[a] = true
		f.down[a] = true
	}
	return f
}

// Hold marks actions as held down without a fresh press.
func (f *Frame) Hold(actions ...Action) *Frame {
	for _, a := range actions {
		f.down[a] = true
	}
	return f
}

// Release marks actions as released this frame.
func (f *Frame) Release(actions ...Action) *Frame {
	for _, a := range actions {
		f.released[a] = true
		delete(f.down, a)
	}
	return f
}

// IsActionPressed implements Input.
func (f *Frame) IsActionPressed(a Action) bool { return f != nil && f.pressed[a] }

// IsActionDown implements Input.
func (f *Frame) IsActionDown(a Action) bool { return f != nil && f.down[a] }

// IsActionReleased implements Input.
func (f *Frame) IsActionReleased(a Action) bool { return f != nil && f.released[a] }

// Axis implements Input.
func (f *Frame) Axis(neg, pos Action) float64 {
	v := 0.0
	if f.IsActionDown(neg) {
		v--
	}
	if f.IsActionDown(pos) {
		v++
	}
	return v
}

// None is an Input with nothing pressed.
var None Input = (*Frame)(nil)
