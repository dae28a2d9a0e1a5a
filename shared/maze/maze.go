// Package maze holds the room grid and its door topology. It is pure data with
// no dependencies on rendering, networking or the ECS so both the client and
// the dedicated server can share one read-only instance.
package maze

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize     = errors.New("maze dimensions must be positive")
	ErrAsymmetricDoor  = errors.New("door has no matching door on the neighboring room")
	ErrDoorOutOfBounds = errors.New("door leads outside the maze")
)

// Maze is a dense width x height grid of rooms stored row-major.
// Door flags never change after construction.
type Maze struct {
	Width  int
	Height int
	rooms  []Room
}

func newGrid(width, height int) (*Maze, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	m := &Maze{
		Width:  width,
		Height: height,
		rooms:  make([]Room, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.rooms[y*width+x] = Room{X: x, Y: y}
		}
	}
	return m, nil
}

// New builds a width x height maze and generates its doors.
func New(width, height int, opts ...Option) (*Maze, error) {
	m, err := newGrid(width, height)
	if err != nil {
		return nil, err
	}
	cfg := newGenConfig(opts)
	if cfg.connected {
		m.generateConnected(cfg)
	} else {
		m.generateDoors(cfg)
	}
	m.placePortals(cfg)
	return m, nil
}

// FromLayout builds a maze from an explicit door layout indexed [y][x].
// The layout must already be symmetric; it is validated, never repaired.
func FromLayout(width, height int, doors [][]Doors) (*Maze, error) {
	m, err := newGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(doors) != height {
		return nil, fmt.Errorf("layout has %d rows, want %d", len(doors), height)
	}
	for y, row := range doors {
		if len(row) != width {
			return nil, fmt.Errorf("layout row %d has %d rooms, want %d", y, len(row), width)
		}
		for x, d := range row {
			m.rooms[y*width+x].Doors = d
		}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Maze) validate() error {
	for i := range m.rooms {
		r := &m.rooms[i]
		for _, d := range Directions {
			if !r.Doors.Has(d) {
				continue
			}
			n := r.Coord().Step(d)
			if !m.InBounds(n.X, n.Y) {
				return fmt.Errorf("%w: room %s %s", ErrDoorOutOfBounds, r.Coord(), d)
			}
			if !m.rooms[n.Y*m.Width+n.X].Doors.Has(d.Opposite()) {
				return fmt.Errorf("%w: room %s %s", ErrAsymmetricDoor, r.Coord(), d)
			}
		}
	}
	return nil
}

// InBounds reports whether (x, y) addresses a room.
func (m *Maze) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Room returns a copy of the room at (x, y). ok is false outside the grid.
func (m *Maze) Room(x, y int) (Room, bool) {
	if !m.InBounds(x, y) {
		return Room{}, false
	}
	return m.rooms[y*m.Width+x], true
}

// Rooms returns a row-major copy of every room.
func (m *Maze) Rooms() []Room {
	out := make([]Room, len(m.rooms))
	copy(out, m.rooms)
	return out
}

// Neighbor returns the coordinate next to (x, y) in direction d if it is inside the grid.
func (m *Maze) Neighbor(x, y int, d Direction) (Coord, bool) {
	n := Coord{X: x, Y: y}.Step(d)
	return n, m.InBounds(n.X, n.Y)
}

// CanMoveTo reports whether the room at (fromX, fromY) exists, has a door
// towards d, and that door leads to a room inside the grid.
func (m *Maze) CanMoveTo(fromX, fromY int, d Direction) bool {
	r, ok := m.Room(fromX, fromY)
	if !ok || !r.Doors.Has(d) {
		return false
	}
	_, ok = m.Neighbor(fromX, fromY, d)
	return ok
}

// DoorCount returns the number of doors of the room at (x, y), 0 outside the grid.
func (m *Maze) DoorCount(x, y int) int {
	r, ok := m.Room(x, y)
	if !ok {
		return 0
	}
	return r.Doors.Count()
}

// SetWallTexture decorates a wall. It reports false outside the grid.
func (m *Maze) SetWallTexture(x, y int, d Direction, url string) bool {
	if !m.InBounds(x, y) {
		return false
	}
	m.rooms[y*m.Width+x].SetWallTexture(d, url)
	return true
}

// SetAd places an ad panel on a wall. It reports false outside the grid.
func (m *Maze) SetAd(x, y int, d Direction, ad *Ad) bool {
	if !m.InBounds(x, y) {
		return false
	}
	m.rooms[y*m.Width+x].SetAd(d, ad)
	return true
}

// SetPortal places or removes the portal of a room. It reports false
// outside the grid.
func (m *Maze) SetPortal(x, y int, on bool) bool {
	if !m.InBounds(x, y) {
		return false
	}
	m.rooms[y*m.Width+x].Portal = on
	return true
}

// HasPortal reports whether the room at (x, y) holds a portal.
func (m *Maze) HasPortal(x, y int) bool {
	r, ok := m.Room(x, y)
	return ok && r.Portal
}

// Portals returns the portal rooms in row-major order.
func (m *Maze) Portals() []Coord {
	var out []Coord
	for _, r := range m.rooms {
		if r.Portal {
			out = append(out, r.Coord())
		}
	}
	return out
}

// Reachable returns every room reachable from (x, y) through doors.
func (m *Maze) Reachable(x, y int) map[Coord]bool {
	seen := make(map[Coord]bool)
	if !m.InBounds(x, y) {
		return seen
	}
	queue := []Coord{{X: x, Y: y}}
	seen[queue[0]] = true
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			if !m.CanMoveTo(c.X, c.Y, d) {
				continue
			}
			n := c.Step(d)
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// link opens a door from (x, y) towards d together with the matching door on
// the neighbor. It is the only place door flags are written during generation.
func (m *Maze) link(x, y int, d Direction) {
	n := Coord{X: x, Y: y}.Step(d)
	m.rooms[y*m.Width+x].Doors.set(d)
	m.rooms[n.Y*m.Width+n.X].Doors.set(d.Opposite())
}
