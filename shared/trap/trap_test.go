package trap

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("lose_reward"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestSpring(t *testing.T) {
	to := maze.Coord{X: 3, Y: 1}
	tests := []struct {
		kind     Kind
		duration int
		teleport bool
		speed    float64
	}{
		{TeleportStart, 0, true, 0},
		{RandomTeleport, 0, true, 0},
		{Freeze, 180, false, 0},
		{Blind, 30, false, 0},
		{Slow, 60, false, SlowFactor},
		{ReverseControls, 45, false, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := New(tt.kind).Spring(to)
			if e.Kind != tt.kind || e.Duration != tt.duration || e.SpeedMultiplier != tt.speed {
				t.Fatalf("unexpected effect %+v", e)
			}
			if (e.TeleportTo != nil) != tt.teleport || tt.kind.Teleports() != tt.teleport {
				t.Fatalf("teleport mismatch: %+v", e)
			}
			if tt.teleport && *e.TeleportTo != to {
				t.Fatalf("teleport to %v, want %v", *e.TeleportTo, to)
			}
			if e.Message == "" {
				t.Fatal("expected a message")
			}
		})
	}
}

func TestSet_TakeIsOneShot(t *testing.T) {
	s := NewSet()
	c := maze.Coord{X: 1, Y: 2}
	s.Add(c, New(Freeze))
	if _, ok := s.At(c); !ok {
		t.Fatal("expected an armed trap")
	}
	if tr, ok := s.Take(c); !ok || tr.Kind != Freeze {
		t.Fatalf("Take = %+v, %v", tr, ok)
	}
	if _, ok := s.Take(c); ok {
		t.Fatal("a sprung trap fired twice")
	}
	if s.Len() != 0 {
		t.Fatalf("expected an empty set, got %d", s.Len())
	}
}

func TestScatter(t *testing.T) {
	tests := []struct {
		name    string
		w, h, n int
		want    int
	}{
		{"some", 5, 5, 8, 8},
		{"more than rooms", 2, 2, 9, 3},
		{"single room", 1, 1, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 10; seed++ {
				s := Scatter(rand.New(rand.NewSource(seed)), tt.w, tt.h, tt.n)
				if s.Len() != tt.want {
					t.Fatalf("seed %d: expected %d traps, got %d", seed, tt.want, s.Len())
				}
				for _, c := range s.Rooms() {
					if c == (maze.Coord{}) {
						t.Fatalf("seed %d: start room trapped", seed)
					}
					if c.X >= tt.w || c.Y >= tt.h {
						t.Fatalf("seed %d: trap outside the maze at %s", seed, c)
					}
				}
			}
		})
	}
}

func TestStatus_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	var s Status
	s.Apply(New(Freeze).Spring(maze.Coord{}), now)
	s.Apply(New(Slow).Spring(maze.Coord{}), now)

	m := s.Modifiers(now.Add(59 * time.Second))
	if !m.Frozen || m.Speed != SlowFactor || m.Reversed || m.Blind {
		t.Fatalf("unexpected modifiers %+v", m)
	}
	if m = s.Modifiers(now.Add(61 * time.Second)); !m.Frozen || m.Speed != 0 {
		t.Fatalf("slow should have worn off: %+v", m)
	}
	if s.Frozen(now.Add(180 * time.Second)) {
		t.Fatal("freeze should end after 180s")
	}
	if got := s.Remaining(now.Add(100 * time.Second)); got != 80*time.Second {
		t.Fatalf("remaining = %v, want 80s", got)
	}
	s.Apply(New(RandomTeleport).Spring(maze.Coord{X: 1}), now)
	if s.Modifiers(now.Add(200*time.Second)).Active() {
		t.Fatal("a teleport must not start a timed effect")
	}
}

func TestModifiers_Filter(t *testing.T) {
	in := kinematics.Input{LookDX: 3}.Press(kinematics.ActionForward, kinematics.ActionStrafeLeft, kinematics.ActionTurnRight)
	tests := []struct {
		name  string
		mods  Modifiers
		held  []kinematics.Action
		scale float64
	}{
		{"none", Modifiers{}, []kinematics.Action{kinematics.ActionForward, kinematics.ActionStrafeLeft, kinematics.ActionTurnRight}, 0},
		{"frozen", Modifiers{Frozen: true, Speed: SlowFactor}, nil, 0},
		{"reversed", Modifiers{Reversed: true}, []kinematics.Action{kinematics.ActionBack, kinematics.ActionStrafeRight, kinematics.ActionTurnLeft}, 0},
		{"slowed", Modifiers{Speed: SlowFactor}, []kinematics.Action{kinematics.ActionForward, kinematics.ActionStrafeLeft, kinematics.ActionTurnRight}, SlowFactor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mods.Filter(in)
			want := kinematics.Input{LookDX: 3, SpeedScale: tt.scale}.Press(tt.held...)
			if got != want {
				t.Fatalf("Filter = %+v, want %+v", got, want)
			}
		})
	}
}
