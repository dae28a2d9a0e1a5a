package kinematics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid kinematics config")

// Config holds the tunable constants of the room-local movement model.
// Speeds are applied once per tick, not scaled by elapsed time.
type Config struct {
	RoomSize  float64 `yaml:"room_size"`
	EyeHeight float64 `yaml:"eye_height"`
	Radius    float64 `yaml:"radius"`

	// TransitionMargin is the inset from the wall at which a crossing fires.
	TransitionMargin float64 `yaml:"transition_margin"`
	// EntryInset is how far inside the entry wall the player lands in a new room.
	EntryInset    float64 `yaml:"entry_inset"`
	DoorHalfWidth float64 `yaml:"door_half_width"`

	MoveSpeed        float64 `yaml:"move_speed"`
	RotationSpeed    float64 `yaml:"rotation_speed"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	PitchSensitivity float64 `yaml:"pitch_sensitivity"`
	MaxPitch         float64 `yaml:"max_pitch"`
}

func DefaultConfig() Config {
	return Config{
		RoomSize:         10,
		EyeHeight:        1.6,
		Radius:           0.3,
		TransitionMargin: 1.0,
		EntryInset:       1.0,
		DoorHalfWidth:    1.0,
		MoveSpeed:        0.1,
		RotationSpeed:    0.03,
		MouseSensitivity: 0.002,
		PitchSensitivity: 0.002,
		MaxPitch:         math.Pi/2 - 0.1,
	}
}

// Half returns half the room extent.
func (c Config) Half() float64 {
	return c.RoomSize / 2
}

// Validate checks that every constant is usable and that a doorway gap can
// always be reached before the crossing threshold.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"room_size", c.RoomSize},
		{"radius", c.Radius},
		{"transition_margin", c.TransitionMargin},
		{"entry_inset", c.EntryInset},
		{"door_half_width", c.DoorHalfWidth},
		{"move_speed", c.MoveSpeed},
		{"rotation_speed", c.RotationSpeed},
		{"max_pitch", c.MaxPitch},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.MouseSensitivity < 0 || c.PitchSensitivity < 0 {
		return fmt.Errorf("%w: look sensitivity must not be negative", ErrInvalidConfig)
	}

	half := c.Half()
	switch {
	case c.Radius >= half:
		return fmt.Errorf("%w: radius %v must be below half the room size %v", ErrInvalidConfig, c.Radius, half)
	case c.TransitionMargin >= half:
		return fmt.Errorf("%w: transition margin %v must be below %v", ErrInvalidConfig, c.TransitionMargin, half)
	case c.EntryInset >= half:
		return fmt.Errorf("%w: entry inset %v must be below %v", ErrInvalidConfig, c.EntryInset, half)
	case c.EntryInset < c.TransitionMargin:
		return fmt.Errorf("%w: entry inset %v would land past the crossing threshold (margin %v)",
			ErrInvalidConfig, c.EntryInset, c.TransitionMargin)
	case c.DoorHalfWidth > half-c.Radius:
		return fmt.Errorf("%w: door half width %v leaves no solid wall beside the gap", ErrInvalidConfig, c.DoorHalfWidth)
	case c.MaxPitch >= math.Pi/2:
		return fmt.Errorf("%w: max pitch must be below pi/2", ErrInvalidConfig)
	}
	return nil
}
