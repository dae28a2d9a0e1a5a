package maze

import (
	"math/rand"
	"time"
)

// DefaultDoorThreshold is the draw a door roll must exceed, giving each
// candidate door a 60% chance.
const DefaultDoorThreshold = 0.4

// DefaultLoopChance is the extra-door probability used by the connected generator.
const DefaultLoopChance = 0.3

type genConfig struct {
	rng        *rand.Rand
	threshold  float64
	connected  bool
	loopChance float64
	portals    int
}

// Option configures door generation.
type Option func(*genConfig)

// WithSeed makes generation deterministic.
func WithSeed(seed int64) Option {
	return func(c *genConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(c *genConfig) {
		c.rng = rng
	}
}

// WithDoorThreshold changes the value a roll must exceed to create a door.
func WithDoorThreshold(t float64) Option {
	return func(c *genConfig) {
		c.threshold = t
	}
}

// WithConnected switches to a spanning-tree generator that guarantees every
// room is reachable from (0,0), then adds loop doors with probability loopChance.
func WithConnected(loopChance float64) Option {
	return func(c *genConfig) {
		c.connected = true
		c.loopChance = loopChance
	}
}

// WithPortals places n portals in distinct random rooms other than the
// start room, after the doors are generated.
func WithPortals(n int) Option {
	return func(c *genConfig) {
		c.portals = n
	}
}

func newGenConfig(opts []Option) genConfig {
	cfg := genConfig{threshold: DefaultDoorThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return cfg
}

// generateDoors is the single-pass raster generator. Each room rolls for a
// north and an east door; the south and west doors come from the neighbors'
// rolls. Reachability of every room is not guaranteed.
func (m *Maze) generateDoors(cfg genConfig) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if y > 0 && cfg.rng.Float64() > cfg.threshold {
				m.link(x, y, North)
			}
			if x < m.Width-1 && cfg.rng.Float64() > cfg.threshold {
				m.link(x, y, East)
			}
		}
	}
	m.ensureStartDoor()
}

// ensureStartDoor gives a doorless start room one exit: east when there is a
// second column, otherwise south when there is a second row.
func (m *Maze) ensureStartDoor() {
	if m.rooms[0].Doors.Any() {
		return
	}
	switch {
	case m.Width > 1:
		m.link(0, 0, East)
	case m.Height > 1:
		m.link(0, 0, South)
	}
}

// generateConnected carves an iterative depth-first spanning tree from (0,0)
// and then opens extra south/east doors to create loops.
func (m *Maze) generateConnected(cfg genConfig) {
	visited := make([]bool, len(m.rooms))
	stack := []Coord{{X: 0, Y: 0}}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		idx := c.Y*m.Width + c.X
		if !visited[idx] {
			visited[idx] = true
		}

		dirs := Directions
		cfg.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

		advanced := false
		for _, d := range dirs {
			n, ok := m.Neighbor(c.X, c.Y, d)
			if !ok || visited[n.Y*m.Width+n.X] {
				continue
			}
			m.link(c.X, c.Y, d)
			stack = append(stack, n)
			advanced = true
			break
		}
		if !advanced {
			stack = stack[:len(stack)-1]
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r := &m.rooms[y*m.Width+x]
			if y < m.Height-1 && !r.Doors.South && cfg.rng.Float64() < cfg.loopChance {
				m.link(x, y, South)
			}
			if x < m.Width-1 && !r.Doors.East && cfg.rng.Float64() < cfg.loopChance {
				m.link(x, y, East)
			}
		}
	}
}

// placePortals draws the portal rooms from every room but (0,0). The door
// layout is finished first so a seed gives the same doors with or without
// portals.
func (m *Maze) placePortals(cfg genConfig) {
	if cfg.portals <= 0 {
		return
	}
	eligible := len(m.rooms) - 1
	for i, idx := range cfg.rng.Perm(eligible) {
		if i == cfg.portals {
			break
		}
		m.rooms[idx+1].Portal = true
	}
}
