package components

import (
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/yohamta/donburi"
)

// Command is a discrete viewer action outside of movement.
type Command int

const (
	CommandAnswer1 Command = iota
	CommandAnswer2
	CommandAnswer3
	CommandAnswer4
	CommandPortal
	CommandToggleMap
	CommandToggleMouse
	CommandFullscreen
	CommandCount
)

// ActionState represents the temporal state of a command
type ActionState struct {
	Pressed      bool // Currently held down
	JustPressed  bool // Pressed this frame
	JustReleased bool // Released this frame
}

// InputData is the singleton holding this frame's sampled input.
// JustPressed/JustReleased are computed on-demand by comparing frames.
type InputData struct {
	Movement kinematics.Input

	Current  [CommandCount]bool
	Previous [CommandCount]bool

	// Cursor position at the last sample, for mouse look deltas.
	CursorX, CursorY int
	MouseLook        bool
	cursorKnown      bool
}

// Command returns the ActionState of c for this frame.
func (in *InputData) Command(c Command) ActionState {
	curr := in.Current[c]
	prev := in.Previous[c]
	return ActionState{
		Pressed:      curr,
		JustPressed:  curr && !prev,
		JustReleased: !curr && prev,
	}
}

// Look returns the cursor delta since the previous sample and records x, y.
// The first sample after mouse look is enabled yields no delta.
func (in *InputData) Look(x, y int) (dx, dy float64) {
	if in.cursorKnown {
		dx, dy = float64(x-in.CursorX), float64(y-in.CursorY)
	}
	in.CursorX, in.CursorY = x, y
	in.cursorKnown = true
	return dx, dy
}

// ForgetCursor drops the recorded cursor so the next Look starts fresh.
func (in *InputData) ForgetCursor() {
	in.cursorKnown = false
}

var Input = donburi.NewComponentType[InputData]()
