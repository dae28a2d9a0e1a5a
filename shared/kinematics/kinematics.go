// Package kinematics is the per-tick movement and room-crossing transition
// function. It never performs I/O: a crossing is reported in Effects and the
// caller decides whether to commit it with Enter.
//
// Local frame: origin at the room center, X grows east, Z grows south, Y is
// up. Yaw 0 faces north (-Z) and positive yaw turns left.
package kinematics

import (
	"math"

	"github.com/automoto/mazecrawl/shared/maze"
)

// Pose is the continuous position and orientation inside the current room.
type Pose struct {
	X, Y, Z float64
	Yaw     float64
	Pitch   float64
}

// State is everything the transition function reads and writes.
type State struct {
	RoomX, RoomY int
	Pose         Pose
	Doors        maze.Doors

	// Entry is the wall of the current room the player came in through.
	Entry    maze.Direction
	HasEntry bool
}

// Room returns the current room coordinate.
func (s State) Room() maze.Coord {
	return maze.Coord{X: s.RoomX, Y: s.RoomY}
}

// Gate is an extra per-direction traversal predicate layered over the maze
// doors. The entry door of the current room is exempt from it.
type Gate interface {
	Permits(d maze.Direction) bool
}

// OpenGate permits every door.
type OpenGate struct{}

func (OpenGate) Permits(maze.Direction) bool { return true }

// Effects describes what a Step observed.
type Effects struct {
	Crossing maze.Direction
	Crossed  bool
	BlockedX bool
	BlockedZ bool
}

// Blocked reports whether any axis was rejected.
func (e Effects) Blocked() bool {
	return e.BlockedX || e.BlockedZ
}

// Spawn returns the state at the center of a room.
func Spawn(cfg Config, roomX, roomY int, doors maze.Doors) State {
	return State{
		RoomX: roomX,
		RoomY: roomY,
		Pose:  Pose{Y: cfg.EyeHeight},
		Doors: doors,
	}
}

// Passable reports whether the current room's door towards d may be walked through.
func Passable(s State, gate Gate, d maze.Direction) bool {
	if !s.Doors.Has(d) {
		return false
	}
	if s.HasEntry && d == s.Entry {
		return true
	}
	return gate == nil || gate.Permits(d)
}

// Step advances one tick: look, turn, axis-separated translation with
// wall/door collision, then the crossing check. The room never changes here.
func Step(cfg Config, s State, in Input, gate Gate) (State, Effects) {
	var fx Effects
	p := &s.Pose

	p.Yaw -= in.LookDX * cfg.MouseSensitivity
	p.Pitch -= in.LookDY * cfg.PitchSensitivity
	p.Pitch = clamp(p.Pitch, -cfg.MaxPitch, cfg.MaxPitch)
	p.Yaw += in.axis(ActionTurnLeft, ActionTurnRight) * cfg.RotationSpeed

	fwd := in.axis(ActionForward, ActionBack)
	strafe := in.axis(ActionStrafeRight, ActionStrafeLeft)
	sin, cos := math.Sincos(p.Yaw)
	speed := in.speed(cfg)
	dx := (-sin*fwd + cos*strafe) * speed
	dz := (-cos*fwd - sin*strafe) * speed

	if dx != 0 {
		if x, z, ok := admit(cfg, s, gate, p.X+dx, p.Z); ok {
			p.X, p.Z = x, z
		} else {
			fx.BlockedX = true
		}
	}
	if dz != 0 {
		if x, z, ok := admit(cfg, s, gate, p.X, p.Z+dz); ok {
			p.X, p.Z = x, z
		} else {
			fx.BlockedZ = true
		}
	}

	if d, ok := crossing(cfg, s, gate); ok {
		fx.Crossing = d
		fx.Crossed = true
	}
	return s, fx
}

// admit runs the wall/door collision test for a candidate point. A point past
// a wall plane is only admitted through a passable door and inside its gap,
// and is then clamped to the room extent.
func admit(cfg Config, s State, gate Gate, x, z float64) (float64, float64, bool) {
	half := cfg.Half()
	wall := half - cfg.Radius

	through := func(d maze.Direction, lateral float64) bool {
		return Passable(s, gate, d) && math.Abs(lateral) <= cfg.DoorHalfWidth
	}

	if z < -wall {
		if !through(maze.North, x) {
			return 0, 0, false
		}
		z = math.Max(z, -half)
	}
	if z > wall {
		if !through(maze.South, x) {
			return 0, 0, false
		}
		z = math.Min(z, half)
	}
	if x > wall {
		if !through(maze.East, z) {
			return 0, 0, false
		}
		x = math.Min(x, half)
	}
	if x < -wall {
		if !through(maze.West, z) {
			return 0, 0, false
		}
		x = math.Max(x, -half)
	}
	return x, z, true
}

// crossing checks the four walls in the fixed order north, south, east, west.
func crossing(cfg Config, s State, gate Gate) (maze.Direction, bool) {
	t := cfg.Half() - cfg.TransitionMargin
	p := s.Pose
	for _, d := range maze.Directions {
		var depth, lateral float64
		switch d {
		case maze.North:
			depth, lateral = -p.Z, p.X
		case maze.South:
			depth, lateral = p.Z, p.X
		case maze.East:
			depth, lateral = p.X, p.Z
		case maze.West:
			depth, lateral = -p.X, p.Z
		}
		if depth > t && math.Abs(lateral) <= cfg.DoorHalfWidth && Passable(s, gate, d) {
			return d, true
		}
	}
	return 0, false
}

// Enter commits a crossing through d into the neighboring room whose doors
// are given. The coordinate along d is placed EntryInset inside the entry
// wall; the lateral coordinate and orientation are kept.
func Enter(cfg Config, s State, d maze.Direction, doors maze.Doors) State {
	dx, dy := d.Delta()
	s.RoomX += dx
	s.RoomY += dy

	edge := cfg.Half() - cfg.EntryInset
	switch d {
	case maze.North:
		s.Pose.Z = edge
	case maze.South:
		s.Pose.Z = -edge
	case maze.East:
		s.Pose.X = -edge
	case maze.West:
		s.Pose.X = edge
	}
	s.Doors = doors
	s.Entry = d.Opposite()
	s.HasEntry = true
	return s
}

// Heading names the cardinal direction the yaw faces.
func Heading(yaw float64) maze.Direction {
	return HeadingFromDegrees(HeadingDegrees(yaw))
}

// HeadingDegrees returns the yaw as degrees clockwise from north in [0,360).
func HeadingDegrees(yaw float64) float64 {
	deg := math.Mod(-yaw*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// HeadingFromDegrees uses half-open 90 degree sectors: [315,45) north,
// [45,135) east, [135,225) south, [225,315) west. deg must be in [0,360).
func HeadingFromDegrees(deg float64) maze.Direction {
	switch {
	case deg >= 315 || deg < 45:
		return maze.North
	case deg < 135:
		return maze.East
	case deg < 225:
		return maze.South
	default:
		return maze.West
	}
}

// Normalized maps the pose to [0,1] room coordinates for map markers,
// u growing east and v growing south.
func Normalized(cfg Config, p Pose) (u, v float64) {
	half := cfg.Half()
	u = clamp((p.X+half)/cfg.RoomSize, 0, 1)
	v = clamp((p.Z+half)/cfg.RoomSize, 0, 1)
	return u, v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
