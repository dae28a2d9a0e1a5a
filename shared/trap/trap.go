// Package trap holds the one-shot room traps of a maze and the timed
// movement effects they leave on the player who springs them.
package trap

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/automoto/mazecrawl/shared/maze"
)

// Kind is what a trap does when sprung. The string values are the wire names.
type Kind string

const (
	TeleportStart   Kind = "teleport_start"
	Freeze          Kind = "freeze"
	Blind           Kind = "blind"
	Slow            Kind = "slow"
	ReverseControls Kind = "reverse_controls"
	RandomTeleport  Kind = "random_teleport"
)

// Kinds lists every trap kind in a fixed order.
var Kinds = []Kind{TeleportStart, Freeze, Blind, Slow, ReverseControls, RandomTeleport}

// SlowFactor scales movement speed while a slow trap is active.
const SlowFactor = 0.5

var ErrUnknownKind = errors.New("unknown trap kind")

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DefaultDuration is how long the effect of k lasts. Teleports are instant.
func (k Kind) DefaultDuration() time.Duration {
	switch k {
	case Freeze:
		return 180 * time.Second
	case Blind:
		return 30 * time.Second
	case Slow:
		return 60 * time.Second
	case ReverseControls:
		return 45 * time.Second
	}
	return 0
}

// Teleports reports whether springing k moves the player to another room.
func (k Kind) Teleports() bool {
	return k == TeleportStart || k == RandomTeleport
}

// Trap is an armed trap in one room.
type Trap struct {
	Kind     Kind
	Duration time.Duration
}

// New returns a trap of kind k with its default duration.
func New(k Kind) Trap {
	return Trap{Kind: k, Duration: k.DefaultDuration()}
}

// Effect is what a sprung trap did to the player.
type Effect struct {
	Kind            Kind        `json:"trap_type"`
	Duration        int         `json:"duration"` // seconds
	SpeedMultiplier float64     `json:"speed_multiplier,omitempty"`
	TeleportTo      *maze.Coord `json:"teleport_to,omitempty"`
	Message         string      `json:"message"`
}

// Spring builds the effect of t. to is the destination of a teleport and is
// ignored by every other kind.
func (t Trap) Spring(to maze.Coord) Effect {
	e := Effect{Kind: t.Kind, Duration: int(t.Duration / time.Second)}
	switch t.Kind {
	case TeleportStart:
		e.TeleportTo = &to
		e.Message = "You've been teleported back to start!"
	case RandomTeleport:
		e.TeleportTo = &to
		e.Message = fmt.Sprintf("You've been teleported to %s!", to)
	case Freeze:
		e.Message = fmt.Sprintf("You're frozen for %s!", t.Duration)
	case Blind:
		e.Message = fmt.Sprintf("Your vision goes dark for %s!", t.Duration)
	case Slow:
		e.SpeedMultiplier = SlowFactor
		e.Message = fmt.Sprintf("Your movement is slowed for %s!", t.Duration)
	case ReverseControls:
		e.Message = fmt.Sprintf("Your controls are reversed for %s!", t.Duration)
	}
	return e
}

// Set is the trap table of one maze. A trap fires once: Take disarms it for
// every player sharing the set.
type Set struct {
	mu    sync.Mutex
	traps map[maze.Coord]Trap
}

func NewSet() *Set {
	return &Set{traps: make(map[maze.Coord]Trap)}
}

// Add arms t in room c, replacing any trap already there.
func (s *Set) Add(c maze.Coord, t Trap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traps[c] = t
}

// At returns the armed trap of room c without springing it.
func (s *Set) At(c maze.Coord) (Trap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.traps[c]
	return t, ok
}

// Take springs the trap of room c, removing it from the set.
func (s *Set) Take(c maze.Coord) (Trap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.traps[c]
	if ok {
		delete(s.traps, c)
	}
	return t, ok
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.traps)
}

// Rooms returns the armed rooms in row-major order.
func (s *Set) Rooms() []maze.Coord {
	s.mu.Lock()
	out := make([]maze.Coord, 0, len(s.traps))
	for c := range s.traps {
		out = append(out, c)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Scatter arms n traps of random kinds in distinct rooms of a w by h maze.
// The start room is never trapped.
func Scatter(rng *rand.Rand, w, h, n int) *Set {
	s := NewSet()
	if w <= 0 || h <= 0 {
		return s
	}
	for i, idx := range rng.Perm(w*h - 1) {
		if i == n {
			break
		}
		c := maze.Coord{X: (idx + 1) % w, Y: (idx + 1) / w}
		s.traps[c] = New(Kinds[rng.Intn(len(Kinds))])
	}
	return s
}
