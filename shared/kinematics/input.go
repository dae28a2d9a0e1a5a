package kinematics

// Action is an abstract movement intent, independent of any key binding.
type Action int

const (
	ActionForward Action = iota
	ActionBack
	ActionStrafeLeft
	ActionStrafeRight
	ActionTurnLeft
	ActionTurnRight
	ActionCount
)

var actionNames = [ActionCount]string{
	"forward", "back", "strafe_left", "strafe_right", "turn_left", "turn_right",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Input is the snapshot sampled once at the start of a tick.
type Input struct {
	Held   [ActionCount]bool
	LookDX float64
	LookDY float64
	// SpeedScale multiplies MoveSpeed for this tick; 0 means full speed.
	SpeedScale float64
}

// Press marks an action as held and returns the input for chaining in tests and bots.
func (in Input) Press(actions ...Action) Input {
	for _, a := range actions {
		if a >= 0 && a < ActionCount {
			in.Held[a] = true
		}
	}
	return in
}

func (in Input) axis(pos, neg Action) float64 {
	v := 0.0
	if in.Held[pos] {
		v++
	}
	if in.Held[neg] {
		v--
	}
	return v
}

func (in Input) speed(cfg Config) float64 {
	if in.SpeedScale > 0 {
		return cfg.MoveSpeed * in.SpeedScale
	}
	return cfg.MoveSpeed
}

// Idle reports whether the snapshot carries no intent at all.
func (in Input) Idle() bool {
	for _, h := range in.Held {
		if h {
			return false
		}
	}
	return in.LookDX == 0 && in.LookDY == 0
}
