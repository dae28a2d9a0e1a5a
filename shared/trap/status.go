package trap

import (
	"time"

	"github.com/automoto/mazecrawl/shared/kinematics"
)

// Status tracks the timed effects on one player.
type Status struct {
	FrozenUntil  time.Time
	BlindUntil   time.Time
	SlowUntil    time.Time
	SlowFactor   float64
	ReverseUntil time.Time
}

// Apply starts the timed part of e. Teleports leave the status untouched.
func (s *Status) Apply(e Effect, now time.Time) {
	until := now.Add(time.Duration(e.Duration) * time.Second)
	switch e.Kind {
	case Freeze:
		s.FrozenUntil = until
	case Blind:
		s.BlindUntil = until
	case Slow:
		s.SlowUntil = until
		s.SlowFactor = e.SpeedMultiplier
		if s.SlowFactor <= 0 {
			s.SlowFactor = SlowFactor
		}
	case ReverseControls:
		s.ReverseUntil = until
	}
}

// Frozen reports whether moves are refused at now.
func (s Status) Frozen(now time.Time) bool {
	return now.Before(s.FrozenUntil)
}

// Modifiers samples the status at now.
func (s Status) Modifiers(now time.Time) Modifiers {
	m := Modifiers{
		Frozen:   now.Before(s.FrozenUntil),
		Blind:    now.Before(s.BlindUntil),
		Reversed: now.Before(s.ReverseUntil),
	}
	if now.Before(s.SlowUntil) {
		m.Speed = s.SlowFactor
	}
	return m
}

// Remaining returns the longest time any effect still has to run.
func (s Status) Remaining(now time.Time) time.Duration {
	var longest time.Duration
	for _, until := range []time.Time{s.FrozenUntil, s.BlindUntil, s.SlowUntil, s.ReverseUntil} {
		if d := until.Sub(now); d > longest {
			longest = d
		}
	}
	return longest
}

// Modifiers is the movement effect of a status at one instant. It is synced
// to clients so prediction filters input the same way the server does.
type Modifiers struct {
	Frozen   bool
	Blind    bool
	Reversed bool
	Speed    float64 // 0 is full speed
}

// Active reports whether any effect is running.
func (m Modifiers) Active() bool {
	return m.Frozen || m.Blind || m.Reversed || m.Speed > 0
}

// Filter rewrites a tick's input. A frozen player keeps looking around but
// cannot move or turn; reversed controls swap every opposing pair.
func (m Modifiers) Filter(in kinematics.Input) kinematics.Input {
	if m.Frozen {
		return kinematics.Input{LookDX: in.LookDX, LookDY: in.LookDY}
	}
	if m.Reversed {
		swap := func(a, b kinematics.Action) {
			in.Held[a], in.Held[b] = in.Held[b], in.Held[a]
		}
		swap(kinematics.ActionForward, kinematics.ActionBack)
		swap(kinematics.ActionStrafeLeft, kinematics.ActionStrafeRight)
		swap(kinematics.ActionTurnLeft, kinematics.ActionTurnRight)
	}
	if m.Speed > 0 {
		in.SpeedScale = m.Speed
	}
	return in
}

// Labels names the running effects for display.
func (m Modifiers) Labels() []string {
	var out []string
	if m.Frozen {
		out = append(out, "frozen")
	}
	if m.Blind {
		out = append(out, "blind")
	}
	if m.Speed > 0 {
		out = append(out, "slowed")
	}
	if m.Reversed {
		out = append(out, "reversed")
	}
	return out
}
