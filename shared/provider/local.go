package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// Local serves rooms from an in-process maze. Many Local providers may share
// one maze; each keeps its own position and visited set.
type Local struct {
	mu      sync.RWMutex
	maze    *maze.Maze
	start   maze.Coord
	current maze.Coord
	visited map[maze.Coord]struct{}
	traps   *trap.Set
	rng     *rand.Rand
}

type LocalOption func(*Local)

// WithTraps springs the traps of set on room entry. The set may be shared
// with other providers over the same maze.
func WithTraps(set *trap.Set) LocalOption {
	return func(l *Local) {
		l.traps = set
	}
}

// WithRand supplies the source for portal and trap destinations.
func WithRand(rng *rand.Rand) LocalOption {
	return func(l *Local) {
		l.rng = rng
	}
}

// NewLocal starts at (0,0) with the start room already visited.
func NewLocal(m *maze.Maze, opts ...LocalOption) *Local {
	l := &Local{
		maze:    m,
		visited: make(map[maze.Coord]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l.visited[l.start] = struct{}{}
	return l
}

func (l *Local) Maze() *maze.Maze {
	return l.maze
}

func (l *Local) StartPosition(context.Context) (maze.Coord, error) {
	return l.start, nil
}

func (l *Local) Position() maze.Coord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *Local) CurrentRoom(context.Context) (RoomData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.roomLocked(l.current)
}

func (l *Local) roomLocked(c maze.Coord) (RoomData, error) {
	r, ok := l.maze.Room(c.X, c.Y)
	if !ok {
		return RoomData{}, &MoveError{Code: CodeOutOfBounds, Message: fmt.Sprintf("no room at %s", c)}
	}
	return FromRoom(r), nil
}

// MoveToRoom checks the door first, then the bounds of the destination. An
// armed trap in the destination springs once the move is committed.
func (l *Local) MoveToRoom(_ context.Context, d maze.Direction) (MoveResult, error) {
	if !d.Valid() {
		return MoveResult{}, NewMoveError(CodeInvalidInput, "unknown direction")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.maze.Room(l.current.X, l.current.Y)
	if !ok || !r.HasDoor(d) {
		return MoveResult{}, NewMoveError(CodeNoDoor, fmt.Sprintf("room %s has no %s door", l.current, d))
	}
	next := l.current.Step(d)
	if !l.maze.InBounds(next.X, next.Y) {
		return MoveResult{}, NewMoveError(CodeOutOfBounds, fmt.Sprintf("%s is outside the maze", next))
	}

	room, err := l.roomLocked(next)
	if err != nil {
		return MoveResult{}, err
	}
	l.current = next
	l.visited[next] = struct{}{}

	effect := l.springLocked(next)
	if effect != nil && effect.TeleportTo != nil {
		if room, err = l.roomLocked(l.current); err != nil {
			return MoveResult{}, err
		}
	}
	return MoveResult{Room: room, Trap: effect}, nil
}

// springLocked fires the trap of room c, if any, and performs its teleport.
func (l *Local) springLocked(c maze.Coord) *trap.Effect {
	if l.traps == nil {
		return nil
	}
	t, ok := l.traps.Take(c)
	if !ok {
		return nil
	}
	var to maze.Coord
	switch t.Kind {
	case trap.TeleportStart:
		to = l.start
	case trap.RandomTeleport:
		to = l.randomRoomLocked()
	}
	if t.Kind.Teleports() {
		l.current = to
		l.visited[to] = struct{}{}
	}
	e := t.Spring(to)
	return &e
}

func (l *Local) randomRoomLocked() maze.Coord {
	return maze.Coord{X: l.rng.Intn(l.maze.Width), Y: l.rng.Intn(l.maze.Height)}
}

// UsePortal teleports to a random room, which may be the current one. It
// fails with CodeNoPortal unless the current room holds a portal.
func (l *Local) UsePortal(context.Context) (RoomData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.maze.HasPortal(l.current.X, l.current.Y) {
		return RoomData{}, NewMoveError(CodeNoPortal, fmt.Sprintf("room %s has no portal", l.current))
	}
	c := l.randomRoomLocked()
	room, err := l.roomLocked(c)
	if err != nil {
		return RoomData{}, err
	}
	l.current = c
	l.visited[c] = struct{}{}
	return room, nil
}

// Teleport jumps to any room inside the maze and marks it visited.
func (l *Local) Teleport(x, y int) (RoomData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := maze.Coord{X: x, Y: y}
	room, err := l.roomLocked(c)
	if err != nil {
		return RoomData{}, err
	}
	l.current = c
	l.visited[c] = struct{}{}
	return room, nil
}

func (l *Local) MazeSize() (Size, bool) {
	return Size{Width: l.maze.Width, Height: l.maze.Height}, true
}

// Visited reports whether the room has been entered at least once.
func (l *Local) Visited(c maze.Coord) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.visited[c]
	return ok
}

// VisitedRooms returns the visited rooms in row-major order.
func (l *Local) VisitedRooms() []RoomData {
	l.mu.RLock()
	coords := make([]maze.Coord, 0, len(l.visited))
	for c := range l.visited {
		coords = append(coords, c)
	}
	l.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})

	out := make([]RoomData, 0, len(coords))
	for _, c := range coords {
		if r, ok := l.maze.Room(c.X, c.Y); ok {
			out = append(out, FromRoom(r))
		}
	}
	return out
}
