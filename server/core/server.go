package core

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/mazedata"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/automoto/mazecrawl/shared/netconfig"
	"github.com/automoto/mazecrawl/shared/player"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

// Server hosts one read-only maze and every player crawling it.
type Server struct {
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport

	cfg    config.ServerConfig
	player kinematics.Config
	maze   *maze.Maze
	locks  doorlock.StaticSource
	traps  *trap.Set
	rng    *rand.Rand // seeds the per-player providers

	presence *Presence
	dirty    map[maze.Coord]bool // rooms whose occupants changed this tick

	// Track which network client owns which crawler
	clients  map[*router.NetworkClient]*crawler
	entities map[donburi.Entity]*crawler
	bots     []*crawler
	mu       sync.Mutex
}

// NewServer creates a server for layout. Player movement constants come from pc.
func NewServer(cfg config.ServerConfig, pc kinematics.Config, layout *mazedata.Layout) *Server {
	world := donburi.NewWorld()

	s := &Server{
		world:    world,
		cfg:      cfg,
		player:   pc,
		maze:     layout.Maze,
		locks:    layout.Locks,
		traps:    layout.Traps,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		presence: NewPresence(layout.Maze.Width, layout.Maze.Height),
		dirty:    make(map[maze.Coord]bool),
		clients:  make(map[*router.NetworkClient]*crawler),
		entities: make(map[donburi.Entity]*crawler),
	}
	if s.locks == nil {
		s.locks = doorlock.StaticSource{}
	}
	s.loop = NewGameLoop(s, cfg.TickRate)

	// Set up the world for esync
	srvsync.UseEsync(world)

	s.setupRouterCallbacks()

	return s
}

// Start runs the game loop and then blocks serving WebSocket clients on port.
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.onConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.onJoinRequest(client, req)
	})

	router.On(func(client *router.NetworkClient, input messages.PlayerInput) {
		s.onPlayerInput(client, input)
	})

	router.On(func(client *router.NetworkClient, msg messages.QuizAnswer) {
		s.onQuizAnswer(client, msg)
	})

	router.On(func(client *router.NetworkClient, _ messages.UsePortal) {
		s.onUsePortal(client)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onConnect(client *router.NetworkClient) {
	log.Printf("[server] client connected: %s", client.Id())

	s.mu.Lock()
	s.clients[client] = &crawler{client: client}
	s.mu.Unlock()
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	if err != nil {
		log.Printf("[server] client %s disconnected with error: %v", client.Id(), err)
	} else {
		log.Printf("[server] client %s disconnected", client.Id())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[client]
	if !ok {
		return
	}
	delete(s.clients, client)
	if c.joined {
		s.despawn(c)
	}
}

func (s *Server) onJoinRequest(client *router.NetworkClient, req messages.JoinRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[client]
	if !ok || c.joined {
		return
	}

	if reason := s.admit(req); reason != "" {
		log.Printf("[server] rejected %s: %s", client.Id(), reason)
		s.send(client, messages.JoinRejected{Reason: reason})
		return
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		name = "crawler-" + client.Id()
	}
	if err := s.spawn(c, name); err != nil {
		log.Printf("[server] spawn for %s failed: %v", client.Id(), err)
		s.send(client, messages.JoinRejected{Reason: "spawn failed"})
		return
	}

	s.send(client, messages.JoinAccepted{
		NetworkID:  s.netID(c),
		ServerName: s.cfg.Name,
		TickRate:   s.cfg.TickRate,
		MazeWidth:  s.maze.Width,
		MazeHeight: s.maze.Height,
	})
	s.sendLocks(c)
	log.Printf("[server] %q joined as %s", name, client.Id())
}

// admit returns a rejection reason, or "" when the request may join.
func (s *Server) admit(req messages.JoinRequest) string {
	if s.cfg.Version != "" && req.Version != s.cfg.Version {
		return fmt.Sprintf("version mismatch: server requires %s", s.cfg.Version)
	}
	if len(req.PlayerName) > netconfig.MaxNameLength {
		return fmt.Sprintf("name longer than %d characters", netconfig.MaxNameLength)
	}
	if s.cfg.MaxPlayers > 0 && s.humanCount() >= s.cfg.MaxPlayers {
		return "server full"
	}
	return ""
}

// spawn gives c its own provider over the shared maze and traps, a
// controller and a synced entity in the start room. Caller holds s.mu.
func (s *Server) spawn(c *crawler, name string) error {
	rooms := provider.NewLocal(s.maze,
		provider.WithTraps(s.traps),
		provider.WithRand(rand.New(rand.NewSource(s.rng.Int63()))),
	)
	ctrl, err := player.New(context.Background(), s.player, rooms, player.WithLocks(s.locks))
	if err != nil {
		return err
	}

	entity := s.world.Create(
		netcomponents.NetRoom,
		netcomponents.NetPose,
		netcomponents.NetPlayerState,
	)

	c.entity = entity
	s.entities[entity] = c
	c.name = name
	c.rooms = rooms
	c.ctrl = ctrl
	c.joined = true
	s.writeComponents(c)

	// Mark entity for network sync with interpolation for the pose
	if err := srvsync.NetworkSync(s.world, &entity,
		srvsync.WithInterp(netcomponents.NetPose),
		netcomponents.NetRoom,
		netcomponents.NetPlayerState,
	); err != nil {
		log.Printf("[server] failed to set up network sync for %q: %v", name, err)
	}

	st := ctrl.State()
	u, v := ctrl.Normalized()
	s.presence.Place(entity, st.Room(), u, v)
	s.announceArrival(c, st.Room())
	return nil
}

// despawn removes c from the world and tells its last room. Caller holds s.mu.
func (s *Server) despawn(c *crawler) {
	if room, ok := s.presence.Remove(c.entity); ok {
		s.announceDeparture(c, room)
	}
	if s.world.Valid(c.entity) {
		s.world.Remove(c.entity)
	}
	delete(s.entities, c.entity)
	c.joined = false
	log.Printf("[server] %q left the maze", c.name)
}

func (s *Server) onPlayerInput(client *router.NetworkClient, input messages.PlayerInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[client]
	if !ok || !c.joined {
		return
	}
	c.accept(input)
}

func (s *Server) onQuizAnswer(client *router.NetworkClient, msg messages.QuizAnswer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[client]
	if !ok || !c.joined {
		return
	}
	correct, err := c.ctrl.AnswerQuiz(context.Background(), msg.Index)
	res := messages.QuizResult{Correct: correct}
	if err != nil {
		res.Error = err.Error()
	}
	if cd := c.ctrl.Locks().Cooldown(time.Now()); cd > 0 {
		res.CooldownSeconds = int(cd.Round(time.Second) / time.Second)
	}
	s.send(client, res)
	s.writeComponents(c)
}

func (s *Server) onUsePortal(client *router.NetworkClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[client]
	if !ok || !c.joined {
		return
	}
	if err := s.usePortal(c); err != nil {
		log.Printf("[server] portal for %q: %v", c.name, err)
		s.send(client, messages.MoveRejected{Code: string(provider.CodeOf(err)), Message: err.Error()})
	}
}

// usePortal teleports c through the portal of its room. Caller holds s.mu.
func (s *Server) usePortal(c *crawler) error {
	if _, err := c.ctrl.UsePortal(context.Background()); err != nil {
		return err
	}
	s.writeComponents(c)
	s.place(c)
	s.sendLocks(c)
	return nil
}

// send delivers msg to a single client. Bots have no client.
func (s *Server) send(client *router.NetworkClient, msg any) {
	if client == nil {
		return
	}
	if err := client.SendMessage(msg); err != nil {
		log.Printf("[server] send %T to %s: %v", msg, client.Id(), err)
	}
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// PlayerCount returns the number of joined players, bots included.
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Len()
}

func (s *Server) humanCount() int {
	n := 0
	for _, c := range s.clients {
		if c.joined {
			n++
		}
	}
	return n
}

// Maze returns the hosted maze. It is never modified after construction.
func (s *Server) Maze() *maze.Maze {
	return s.maze
}

// Locks returns the lock table of the hosted layout.
func (s *Server) Locks() doorlock.StaticSource {
	return s.locks
}
