// Package player drives the kinematics transition function against a room
// provider and the door-lock overlay. It is shared by the viewer, the
// headless server and bots.
package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
)

// Event is the edge-triggered outcome of one tick.
type Event struct {
	RoomChanged bool
	From, To    maze.Coord
	Direction   maze.Direction
	Blocked     bool
	// Unlocked is set on the tick the room's locks opened.
	Unlocked bool
	// Trap is the trap sprung by entering the room. After a teleport, To is
	// the room the trap sent the player to.
	Trap *trap.Effect
}

// Controller owns one player's movement state. Tick must not be called
// concurrently; the read accessors share that restriction.
type Controller struct {
	cfg      kinematics.Config
	provider provider.RoomProvider
	locks    doorlock.Source
	overlay  *doorlock.Overlay
	now      func() time.Time

	state  kinematics.State
	room   provider.RoomData
	status trap.Status
}

type Option func(*Controller)

// WithLocks consults src for the lock status of every entered room.
func WithLocks(src doorlock.Source) Option {
	return func(c *Controller) {
		c.locks = src
	}
}

// WithClock replaces time.Now for lock timers.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New spawns the player at the center of the provider's start room.
func New(ctx context.Context, cfg kinematics.Config, p provider.RoomProvider, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:      cfg,
		provider: p,
		overlay:  doorlock.NewOverlay(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	start, err := p.StartPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	room, err := p.CurrentRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("start room: %w", err)
	}
	if room.Coord() != start {
		return nil, fmt.Errorf("provider start %s disagrees with current room %s", start, room.Coord())
	}
	c.room = room
	c.state = kinematics.Spawn(cfg, start.X, start.Y, room.Doors)
	c.refreshLocks(ctx, doorlock.NoEntry)
	return c, nil
}

// Resync re-reads the provider's current room and respawns at its center,
// keeping the orientation. Used after a teleport.
func (c *Controller) Resync(ctx context.Context) error {
	room, err := c.provider.CurrentRoom(ctx)
	if err != nil {
		return err
	}
	c.respawn(ctx, room)
	return nil
}

// respawn places the player at the center of room with no entry door,
// keeping the orientation.
func (c *Controller) respawn(ctx context.Context, room provider.RoomData) {
	pose := c.state.Pose
	c.room = room
	c.state = kinematics.Spawn(c.cfg, room.X, room.Y, room.Doors)
	c.state.Pose.Yaw, c.state.Pose.Pitch = pose.Yaw, pose.Pitch
	c.refreshLocks(ctx, doorlock.NoEntry)
}

// Tick advances one simulation step. A crossing is committed only after the
// provider has returned the next room. When the provider fails, the room is
// unchanged, this tick's translation is undone and the *provider.MoveError is
// returned.
func (c *Controller) Tick(ctx context.Context, in kinematics.Input) (Event, error) {
	var ev Event
	now := c.now()
	ev.Unlocked = c.overlay.Advance(now)
	in = c.status.Modifiers(now).Filter(in)

	prev := c.state
	next, fx := kinematics.Step(c.cfg, c.state, in, c.overlay)
	ev.Blocked = fx.Blocked()
	if !fx.Crossed {
		c.state = next
		return ev, nil
	}

	res, err := c.provider.MoveToRoom(ctx, fx.Crossing)
	if err != nil {
		next.Pose.X, next.Pose.Z = prev.Pose.X, prev.Pose.Z
		c.state = next
		return ev, asMoveError(err)
	}

	ev.RoomChanged = true
	ev.From = prev.Room()
	ev.Direction = fx.Crossing

	if res.Trap != nil {
		ev.Trap = res.Trap
		c.status.Apply(*res.Trap, now)
		if res.Trap.TeleportTo != nil {
			c.state = next
			c.respawn(ctx, res.Room)
			ev.To = res.Room.Coord()
			return ev, nil
		}
	}

	entered := kinematics.Enter(c.cfg, next, fx.Crossing, res.Room.Doors)
	if got := res.Room.Coord(); got != entered.Room() {
		// The provider is authoritative on where the player ended up.
		log.Printf("[player] provider placed player in %s, expected %s", got, entered.Room())
		entered.RoomX, entered.RoomY = got.X, got.Y
	}

	c.state = entered
	c.room = res.Room
	c.refreshLocks(ctx, entered.Entry)
	ev.To = entered.Room()
	return ev, nil
}

// UsePortal teleports through the portal of the current room and respawns
// at the center of the destination.
func (c *Controller) UsePortal(ctx context.Context) (provider.RoomData, error) {
	pu, ok := c.provider.(provider.PortalUser)
	if !ok {
		return provider.RoomData{}, provider.NewMoveError(provider.CodeNoPortal, "portals are unavailable")
	}
	if _, err := pu.UsePortal(ctx); err != nil {
		return provider.RoomData{}, asMoveError(err)
	}
	if err := c.Resync(ctx); err != nil {
		return provider.RoomData{}, asMoveError(err)
	}
	return c.room, nil
}

// Traps samples the running trap effects.
func (c *Controller) Traps() trap.Modifiers {
	return c.status.Modifiers(c.now())
}

// TrapRemaining returns how long the longest running trap effect lasts.
func (c *Controller) TrapRemaining() time.Duration {
	return c.status.Remaining(c.now())
}

func asMoveError(err error) error {
	var me *provider.MoveError
	if errors.As(err, &me) {
		return err
	}
	return &provider.MoveError{Code: provider.CodeNetwork, Err: err}
}

// refreshLocks loads the overlay for the current room. A failed lookup
// leaves every door open.
func (c *Controller) refreshLocks(ctx context.Context, entry maze.Direction) {
	var status doorlock.Status
	if c.locks != nil {
		st, err := c.locks.DoorStatus(ctx, c.state.RoomX, c.state.RoomY, entry)
		if err != nil {
			log.Printf("[player] door status for %s: %v", c.state.Room(), err)
		} else {
			status = st
		}
	}
	c.overlay.Enter(status, entry, c.now())
}

// AnswerQuiz answers the current room's quiz. When the lock source can grade
// answers itself, the verdict comes from it.
func (c *Controller) AnswerQuiz(ctx context.Context, idx int) (bool, error) {
	now := c.now()
	g, ok := c.locks.(doorlock.Grader)
	if !ok {
		return c.overlay.Answer(idx, now)
	}
	if c.overlay.Cooldown(now) > 0 {
		return false, doorlock.ErrCooldown
	}
	q := c.overlay.Quiz()
	if q == nil {
		return false, doorlock.ErrNoQuiz
	}
	correct, cooldown, err := g.AnswerQuiz(ctx, c.state.RoomX, c.state.RoomY, q.ID, idx)
	if err != nil {
		return false, err
	}
	c.overlay.ApplyAnswer(correct, cooldown, now)
	return correct, nil
}

func (c *Controller) State() kinematics.State {
	return c.state
}

func (c *Controller) Config() kinematics.Config {
	return c.cfg
}

func (c *Controller) Provider() provider.RoomProvider {
	return c.provider
}

// Room returns the provider's data for the current room.
func (c *Controller) Room() provider.RoomData {
	return c.room
}

func (c *Controller) Heading() maze.Direction {
	return kinematics.Heading(c.state.Pose.Yaw)
}

func (c *Controller) Normalized() (u, v float64) {
	return kinematics.Normalized(c.cfg, c.state.Pose)
}

func (c *Controller) VisitedRooms() []provider.RoomData {
	return c.provider.VisitedRooms()
}

func (c *Controller) Locks() *doorlock.Overlay {
	return c.overlay
}
