package core

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/automoto/mazecrawl/shared/mazedata"
	"github.com/automoto/mazecrawl/shared/protocol"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
)

var registerOnce sync.Once

func newTestServer(t *testing.T, locked bool, setup ...func(*mazedata.Layout)) *Server {
	t.Helper()
	registerOnce.Do(func() {
		if err := protocol.RegisterComponents(); err != nil {
			t.Logf("register components: %v", err)
		}
	})
	l := corridorLayout(t)
	if !locked {
		l.Locks = doorlock.StaticSource{}
	}
	for _, fn := range setup {
		fn(l)
	}
	cfg := config.ServerConfig{Name: "test", TickRate: 20, SimulationHz: 60, MaxPlayers: 1, Version: "v1"}
	return NewServer(cfg, kinematics.DefaultConfig(), l)
}

func TestServer_BotWalksTheCorridor(t *testing.T) {
	s := newTestServer(t, false)
	if err := s.AddBots(1, config.BotConfig{Seed: 3}); err != nil {
		t.Fatal(err)
	}
	bot := s.bots[0]

	for i := 0; i < 400 && !bot.rooms.Visited(maze.Coord{X: 2, Y: 0}); i++ {
		s.update()
	}
	if !bot.rooms.Visited(maze.Coord{X: 2, Y: 0}) {
		st := bot.ctrl.State()
		t.Fatalf("bot never reached the east end; stuck in %s at %+v", st.Room(), st.Pose)
	}

	// Synced components follow the controller.
	entry := s.world.Entry(bot.entity)
	room := netcomponents.NetRoom.Get(entry)
	st := bot.ctrl.State()
	if room.X != st.RoomX || room.Y != st.RoomY {
		t.Fatalf("NetRoom (%d,%d) does not match controller %s", room.X, room.Y, st.Room())
	}
	if state := netcomponents.NetPlayerState.Get(entry); !state.Bot || state.Name != "bot-1" {
		t.Fatalf("unexpected player state %+v", state)
	}
	if got, ok := s.presence.Room(bot.entity); !ok || got != st.Room() {
		t.Fatalf("presence has %v, controller %s", got, st.Room())
	}
}

func TestServer_BotRespectsQuizLock(t *testing.T) {
	s := newTestServer(t, true)
	if err := s.AddBots(1, config.BotConfig{Seed: 11}); err != nil {
		t.Fatal(err)
	}
	bot := s.bots[0]

	half := s.player.Half()
	wall := half - s.player.Radius
	quizRoom := maze.Coord{X: 1, Y: 0}
	for i := 0; i < 400; i++ {
		s.update()
		st := bot.ctrl.State()
		if st.Room() == quizRoom && bot.ctrl.Locks().Locked() && st.Pose.X > wall {
			t.Fatalf("bot passed the east wall plane of a locked room: x=%v", st.Pose.X)
		}
	}
	if !bot.rooms.Visited(quizRoom) {
		t.Fatal("bot never reached the quiz room")
	}
}

func TestServer_Admit(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name string
		req  messages.JoinRequest
		want string
	}{
		{"ok", messages.JoinRequest{Version: "v1", PlayerName: "ann"}, ""},
		{"version", messages.JoinRequest{Version: "v0", PlayerName: "ann"}, "version mismatch"},
		{"long name", messages.JoinRequest{Version: "v1", PlayerName: strings.Repeat("x", 40)}, "name longer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.admit(tt.req)
			if tt.want == "" && got != "" || !strings.Contains(got, tt.want) {
				t.Fatalf("admit = %q, want %q", got, tt.want)
			}
		})
	}

	// MaxPlayers counts humans only.
	s.clients[nil] = &crawler{joined: true}
	if got := s.admit(messages.JoinRequest{Version: "v1"}); got != "server full" {
		t.Fatalf("expected server full, got %q", got)
	}
}

func TestCrawler_LookDeltasAreConsumedOnce(t *testing.T) {
	c := &crawler{lookDX: 4, lookDY: -2}
	c.held[kinematics.ActionForward] = true

	first := c.nextInput()
	second := c.nextInput()
	if first.LookDX != 4 || first.LookDY != -2 {
		t.Fatalf("first input lost the look delta: %+v", first)
	}
	if second.LookDX != 0 || second.LookDY != 0 {
		t.Fatalf("look delta applied twice: %+v", second)
	}
	if !second.Held[kinematics.ActionForward] {
		t.Fatal("held actions should persist across sub-steps")
	}
}

func TestLoadLayout_Generated(t *testing.T) {
	cfg := config.MazeConfig{Width: 4, Height: 3, Seed: 9, DoorThreshold: maze.DefaultDoorThreshold, Portals: 2, Traps: 3}
	l, err := LoadLayout(cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if l.Maze.Width != 4 || l.Maze.Height != 3 || l.Locks == nil {
		t.Fatalf("unexpected layout %+v", l)
	}
	if len(l.Maze.Portals()) != 2 || l.Traps.Len() != 3 {
		t.Fatalf("expected 2 portals and 3 traps, got %v and %d", l.Maze.Portals(), l.Traps.Len())
	}
	if _, ok := l.Traps.At(maze.Coord{}); ok || l.Maze.HasPortal(0, 0) {
		t.Fatal("the start room must stay free of portals and traps")
	}
	again, _ := LoadLayout(cfg, t.TempDir())
	if got, want := again.Traps.Rooms(), l.Traps.Rooms(); len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("same seed scattered traps differently: %v vs %v", got, want)
	}

	cfg.Layout = "missing"
	if _, err := LoadLayout(cfg, t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing layout")
	}
}

func TestServer_PortalRequiresPortalRoom(t *testing.T) {
	s := newTestServer(t, false)
	c := &crawler{}
	if err := s.spawn(c, "ann"); err != nil {
		t.Fatal(err)
	}

	if err := s.usePortal(c); provider.CodeOf(err) != provider.CodeNoPortal {
		t.Fatalf("expected NO_PORTAL from the start room, got %v", err)
	}
	if c.ctrl.State().Room() != (maze.Coord{}) {
		t.Fatalf("refused portal moved the player to %s", c.ctrl.State().Room())
	}

	// Walk into the portal room of the corridor.
	c.held[kinematics.ActionStrafeRight] = true
	for i := 0; i < 400 && c.ctrl.State().Room() == (maze.Coord{}); i++ {
		s.stepCrawler(context.Background(), c)
	}
	c.held = [kinematics.ActionCount]bool{}
	s.writeComponents(c)
	if !netcomponents.NetRoom.Get(s.world.Entry(c.entity)).Portal {
		t.Fatalf("synced room in %s does not show the portal", c.ctrl.State().Room())
	}
	if err := s.usePortal(c); err != nil {
		t.Fatal(err)
	}
	if got, ok := s.presence.Room(c.entity); !ok || got != c.rooms.Position() || c.ctrl.State().Room() != got {
		t.Fatalf("presence %v, provider %s, controller %s", got, c.rooms.Position(), c.ctrl.State().Room())
	}
}

func TestServer_TrapEffectIsSynced(t *testing.T) {
	s := newTestServer(t, false, func(l *mazedata.Layout) {
		l.Traps.Add(maze.Coord{X: 1, Y: 0}, trap.New(trap.Freeze))
	})
	if err := s.AddBots(1, config.BotConfig{Seed: 3}); err != nil {
		t.Fatal(err)
	}
	bot := s.bots[0]

	for i := 0; i < 400 && !bot.rooms.Visited(maze.Coord{X: 1, Y: 0}); i++ {
		s.update()
	}
	if s.traps.Len() != 0 {
		t.Fatal("the trap was never sprung")
	}
	state := netcomponents.NetPlayerState.Get(s.world.Entry(bot.entity))
	if !state.Traps.Frozen {
		t.Fatalf("synced state does not show the freeze: %+v", state.Traps)
	}
}
