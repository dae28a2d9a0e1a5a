package core

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/leap-fish/necs/esync"
)

// update runs sub-stepped controller ticks for every player. Called once per
// server tick. Sub-stepping keeps the per-tick speeds, tuned for
// SimulationHz, correct at the server's lower tick rate.
func (s *Server) update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := s.cfg.SimulationHz / s.cfg.TickRate // 3 at 20 Hz
	if steps < 1 {
		steps = 1
	}

	ctx := context.Background()
	for _, c := range s.crawlers() {
		for step := 0; step < steps; step++ {
			if !s.stepCrawler(ctx, c) {
				break
			}
		}
		s.writeComponents(c)
		s.place(c)
	}
	s.flushPresence()
}

// stepCrawler runs one controller tick and reports whether further sub-steps
// should run this server tick.
func (s *Server) stepCrawler(ctx context.Context, c *crawler) bool {
	var in kinematics.Input
	if c.isBot() {
		in = c.bot.decide(c.ctrl)
	} else {
		in = c.nextInput()
	}

	ev, err := c.ctrl.Tick(ctx, in)
	if err != nil {
		var me *provider.MoveError
		if errors.As(err, &me) {
			s.send(c.client, messages.MoveRejected{Code: string(me.Code), Message: me.Error()})
		}
		log.Printf("[server] %q tick: %v", c.name, err)
		return false
	}
	if c.isBot() {
		c.bot.observe(ev)
		c.bot.solve(ctx, c.ctrl)
	}
	if ev.Trap != nil {
		log.Printf("[server] %q sprung a %s trap", c.name, ev.Trap.Kind)
		s.send(c.client, messages.TrapSprung{Kind: string(ev.Trap.Kind), Seconds: ev.Trap.Duration, Message: ev.Trap.Message})
	}
	if ev.RoomChanged {
		s.place(c)
		s.sendLocks(c)
	}
	return true
}

// sendLocks tells a human which locks hold the doors of its room. The
// correct quiz option stays on the server.
func (s *Server) sendLocks(c *crawler) {
	if c.isBot() {
		return
	}
	st := c.ctrl.State()
	locks := c.ctrl.Locks()
	msg := messages.RoomLocks{RoomX: st.RoomX, RoomY: st.RoomY, Locked: locks.Locked()}
	if rem := locks.Remaining(time.Now()); rem > 0 {
		msg.Seconds = int(math.Ceil(rem.Seconds()))
	}
	if q := locks.Quiz(); q != nil {
		msg.Quiz = &messages.QuizPrompt{ID: q.ID, Question: q.Question, Options: q.Options}
	}
	s.send(c.client, msg)
}

// crawlers returns every joined player, humans first. Caller holds s.mu.
func (s *Server) crawlers() []*crawler {
	out := make([]*crawler, 0, len(s.clients)+len(s.bots))
	for _, c := range s.clients {
		if c.joined {
			out = append(out, c)
		}
	}
	return append(out, s.bots...)
}

// writeComponents copies the controller state into the synced components.
func (s *Server) writeComponents(c *crawler) {
	if !s.world.Valid(c.entity) {
		return
	}
	entry := s.world.Entry(c.entity)
	st := c.ctrl.State()

	room := netcomponents.NetRoom.Get(entry)
	room.X, room.Y = st.RoomX, st.RoomY
	room.Doors = st.Doors
	room.Entry, room.HasEntry = st.Entry, st.HasEntry
	room.Portal = c.ctrl.Room().HasPortal

	pose := netcomponents.NetPose.Get(entry)
	pose.X, pose.Z = st.Pose.X, st.Pose.Z
	pose.Yaw, pose.Pitch = st.Pose.Yaw, st.Pose.Pitch

	state := netcomponents.NetPlayerState.Get(entry)
	state.Name = c.name
	state.Heading = c.ctrl.Heading()
	state.Locked = c.ctrl.Locks().Locked()
	state.Bot = c.isBot()
	state.LastSequence = c.lastInputSeq
	state.Traps = c.ctrl.Traps()
}

// place updates the presence index and announces a room change.
func (s *Server) place(c *crawler) {
	st := c.ctrl.State()
	u, v := c.ctrl.Normalized()
	prev, changed := s.presence.Place(c.entity, st.Room(), u, v)
	if !changed {
		return
	}
	s.announceDeparture(c, prev)
	s.announceArrival(c, st.Room())
}

func (s *Server) announceArrival(c *crawler, room maze.Coord) {
	msg := messages.PlayerJoinedRoom{NetworkID: s.netID(c), Name: c.name, RoomX: room.X, RoomY: room.Y}
	s.sendRoom(room, c, msg)
	s.markDirty(room)
}

func (s *Server) announceDeparture(c *crawler, room maze.Coord) {
	msg := messages.PlayerLeftRoom{NetworkID: s.netID(c), RoomX: room.X, RoomY: room.Y}
	s.sendRoom(room, c, msg)
	s.markDirty(room)
}

func (s *Server) markDirty(room maze.Coord) {
	s.dirty[room] = true
}

// flushPresence sends the occupant list of every room that changed since
// the last flush to everyone in it.
func (s *Server) flushPresence() {
	for room := range s.dirty {
		msg := s.roomPresence(room)
		s.sendRoom(room, nil, msg)
	}
	clear(s.dirty)
}

func (s *Server) roomPresence(room maze.Coord) messages.RoomPresence {
	msg := messages.RoomPresence{RoomX: room.X, RoomY: room.Y}
	for _, e := range s.presence.Occupants(room) {
		c, ok := s.entities[e]
		if !ok {
			continue
		}
		st := c.ctrl.State()
		msg.Players = append(msg.Players, messages.PresenceEntry{
			NetworkID: s.netID(c),
			Name:      c.name,
			X:         st.Pose.X,
			Z:         st.Pose.Z,
		})
	}
	return msg
}

// sendRoom sends msg to every human in room except skip.
func (s *Server) sendRoom(room maze.Coord, skip *crawler, msg any) {
	for _, e := range s.presence.Occupants(room) {
		c, ok := s.entities[e]
		if !ok || c == skip {
			continue
		}
		s.send(c.client, msg)
	}
}

func (s *Server) netID(c *crawler) esync.NetworkId {
	if !s.world.Valid(c.entity) {
		return 0
	}
	if id := esync.GetNetworkId(s.world.Entry(c.entity)); id != nil {
		return *id
	}
	return 0
}
