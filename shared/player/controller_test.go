package player

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
)

// flakyProvider wraps Local and fails moves while down is set.
type flakyProvider struct {
	*provider.Local
	down  bool
	calls int
}

func (f *flakyProvider) MoveToRoom(ctx context.Context, d maze.Direction) (provider.MoveResult, error) {
	f.calls++
	if f.down {
		return provider.MoveResult{}, errors.New("connection refused")
	}
	return f.Local.MoveToRoom(ctx, d)
}

// 4x4 maze whose start room only has an east door.
func eastOnlyMaze(t *testing.T) *maze.Maze {
	t.Helper()
	layout := make([][]maze.Doors, 4)
	for y := range layout {
		layout[y] = make([]maze.Doors, 4)
	}
	layout[0][0].East = true
	layout[0][1].West = true
	layout[0][1].East = true
	layout[0][2].West = true
	m, err := maze.FromLayout(4, 4, layout)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func walk(t *testing.T, c *Controller, yaw float64, maxTicks int) (Event, error) {
	t.Helper()
	c.state.Pose.Yaw = yaw
	in := kinematics.Input{}.Press(kinematics.ActionForward)
	for i := 0; i < maxTicks; i++ {
		ev, err := c.Tick(context.Background(), in)
		if err != nil || ev.RoomChanged {
			return ev, err
		}
	}
	return Event{}, nil
}

func TestController_StartsAtCenter(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	c, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t)))
	if err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if s.RoomX != 0 || s.RoomY != 0 {
		t.Fatalf("expected (0,0), got %s", s.Room())
	}
	if s.Pose.X != 0 || s.Pose.Z != 0 || s.Pose.Y != cfg.EyeHeight {
		t.Fatalf("unexpected spawn pose %+v", s.Pose)
	}
	if !c.Room().Doors.East {
		t.Fatal("room data not loaded")
	}
}

func TestController_RejectsBadConfig(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	cfg.RoomSize = -1
	if _, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t))); !errors.Is(err, kinematics.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestController_CrossesEast(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	local := provider.NewLocal(eastOnlyMaze(t))
	c, err := New(context.Background(), cfg, local)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := walk(t, c, -math.Pi/2, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.RoomChanged || ev.Direction != maze.East {
		t.Fatalf("expected east room change, got %+v", ev)
	}
	if ev.From != (maze.Coord{}) || ev.To != (maze.Coord{X: 1, Y: 0}) {
		t.Fatalf("unexpected transition %s -> %s", ev.From, ev.To)
	}
	s := c.State()
	if want := -(cfg.Half() - cfg.EntryInset); math.Abs(s.Pose.X-want) > 1e-9 {
		t.Fatalf("expected x=%v, got %v", want, s.Pose.X)
	}
	if local.Position() != s.Room() {
		t.Fatalf("provider at %s, controller at %s", local.Position(), s.Room())
	}
	if c.Heading() != maze.East {
		t.Fatalf("heading = %v", c.Heading())
	}
	if n := len(c.VisitedRooms()); n != 2 {
		t.Fatalf("expected 2 visited rooms, got %d", n)
	}

	// Only one event per crossing.
	ev, err = c.Tick(context.Background(), kinematics.Input{})
	if err != nil || ev.RoomChanged {
		t.Fatalf("unexpected second event %+v, %v", ev, err)
	}
}

func TestController_ProviderFailureKeepsRoom(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	fp := &flakyProvider{Local: provider.NewLocal(eastOnlyMaze(t)), down: true}
	c, err := New(context.Background(), cfg, fp)
	if err != nil {
		t.Fatal(err)
	}

	_, err = walk(t, c, -math.Pi/2, 200)
	if !errors.Is(err, provider.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	var me *provider.MoveError
	if !errors.As(err, &me) || me.Code != provider.CodeNetwork {
		t.Fatalf("expected *MoveError with NETWORK_ERROR, got %T %v", err, err)
	}
	s := c.State()
	if s.RoomX != 0 || s.RoomY != 0 {
		t.Fatalf("room changed to %s after a failed move", s.Room())
	}
	if s.Pose.X > cfg.Half()-cfg.TransitionMargin {
		t.Fatalf("translation not rolled back, x=%v", s.Pose.X)
	}

	fp.down = false
	ev, err := walk(t, c, -math.Pi/2, 10)
	if err != nil || !ev.RoomChanged {
		t.Fatalf("expected recovery, got %+v, %v", ev, err)
	}
}

func TestController_LockedDoor(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	locks := doorlock.StaticSource{}
	locks.Add(1, 0, doorlock.Lock{Direction: maze.East, Kind: doorlock.KindTimer, Seconds: 10})
	locks.Add(1, 0, doorlock.Lock{Direction: maze.West, Kind: doorlock.KindTimer, Seconds: 10})

	c, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t)),
		WithLocks(locks), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if ev, err := walk(t, c, -math.Pi/2, 200); err != nil || !ev.RoomChanged {
		t.Fatalf("expected to enter (1,0), got %+v, %v", ev, err)
	}
	if !c.Locks().Locked() {
		t.Fatal("expected room (1,0) to be locked")
	}

	if ev, _ := walk(t, c, -math.Pi/2, 200); ev.RoomChanged {
		t.Fatal("walked through a locked door")
	}

	// The player rests in the east doorway, past the crossing depth. The tick
	// that unlocks the room carries it through without any input.
	if x := c.State().Pose.X; x <= cfg.Half()-cfg.TransitionMargin {
		t.Fatalf("expected to rest past the crossing depth, x=%v", x)
	}
	now = now.Add(10 * time.Second)
	ev, err := c.Tick(context.Background(), kinematics.Input{})
	if err != nil || !ev.Unlocked {
		t.Fatalf("expected the timer to unlock, got %+v, %v", ev, err)
	}
	if !ev.RoomChanged || ev.To != (maze.Coord{X: 2, Y: 0}) {
		t.Fatalf("expected the unlock tick to enter (2,0), got %+v", ev)
	}
}

func TestController_UnlockCrossesOnlyInsideDoorGap(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	rest := cfg.Half() - cfg.Radius

	tests := []struct {
		name    string
		lateral float64
		crosses bool
	}{
		{"in the gap", 0, true},
		{"at the gap edge", cfg.DoorHalfWidth, true},
		{"beside the gap", cfg.DoorHalfWidth + 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			locks := doorlock.StaticSource{}
			locks.Add(1, 0, doorlock.Lock{Direction: maze.East, Kind: doorlock.KindTimer, Seconds: 5})

			c, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t)),
				WithLocks(locks), WithClock(func() time.Time { return now }))
			if err != nil {
				t.Fatal(err)
			}
			if ev, err := walk(t, c, -math.Pi/2, 200); err != nil || !ev.RoomChanged {
				t.Fatalf("expected to enter (1,0), got %+v, %v", ev, err)
			}

			c.state.Pose.X, c.state.Pose.Z = rest, tt.lateral
			if ev, _ := c.Tick(context.Background(), kinematics.Input{}); ev.RoomChanged {
				t.Fatal("crossed while the door was held")
			}

			now = now.Add(5 * time.Second)
			ev, err := c.Tick(context.Background(), kinematics.Input{})
			if err != nil || !ev.Unlocked {
				t.Fatalf("expected the timer to unlock, got %+v, %v", ev, err)
			}
			if ev.RoomChanged != tt.crosses {
				t.Fatalf("RoomChanged = %v, want %v (%+v)", ev.RoomChanged, tt.crosses, ev)
			}
		})
	}
}

func TestController_EntryDoorExempt(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	locks := doorlock.StaticSource{}
	locks.Add(1, 0, doorlock.Lock{Direction: maze.East, Kind: doorlock.KindQuiz,
		Quiz: &doorlock.Quiz{ID: "q", Options: []string{"a", "b"}, Correct: 0}})
	locks.Add(1, 0, doorlock.Lock{Direction: maze.West, Kind: doorlock.KindTimer, Seconds: 60})

	c, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t)), WithLocks(locks))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := walk(t, c, -math.Pi/2, 200); err != nil {
		t.Fatal(err)
	}
	ev, err := walk(t, c, math.Pi/2, 200)
	if err != nil || !ev.RoomChanged || ev.To != (maze.Coord{}) {
		t.Fatalf("expected to leave back west, got %+v, %v", ev, err)
	}
}

func TestController_AnswerQuizLocally(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	locks := doorlock.StaticSource{}
	locks.Add(0, 0, doorlock.Lock{Direction: maze.East, Kind: doorlock.KindQuiz,
		Quiz: &doorlock.Quiz{ID: "q", Options: []string{"a", "b"}, Correct: 1}})

	c, err := New(context.Background(), cfg, provider.NewLocal(eastOnlyMaze(t)), WithLocks(locks))
	if err != nil {
		t.Fatal(err)
	}
	if c.Locks().Permits(maze.East) {
		t.Fatal("expected east locked in the start room")
	}
	ok, err := c.AnswerQuiz(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("AnswerQuiz = %v, %v", ok, err)
	}
	if !c.Locks().Permits(maze.East) {
		t.Fatal("expected east open after the right answer")
	}
}

func TestController_Resync(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	local := provider.NewLocal(eastOnlyMaze(t))
	c, err := New(context.Background(), cfg, local)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := local.Teleport(3, 3); err != nil {
		t.Fatal(err)
	}
	if err := c.Resync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.State().Room() != (maze.Coord{X: 3, Y: 3}) {
		t.Fatalf("expected (3,3), got %s", c.State().Room())
	}
}

// trappedController walks from (0,0) into (1,0), where a trap of kind k waits.
func trappedController(t *testing.T, k trap.Kind, clock *time.Time) (*Controller, *provider.Local, Event) {
	t.Helper()
	set := trap.NewSet()
	set.Add(maze.Coord{X: 1, Y: 0}, trap.New(k))
	local := provider.NewLocal(eastOnlyMaze(t), provider.WithTraps(set))
	c, err := New(context.Background(), kinematics.DefaultConfig(), local,
		WithClock(func() time.Time { return *clock }))
	if err != nil {
		t.Fatal(err)
	}
	ev, err := walk(t, c, -math.Pi/2, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.RoomChanged || ev.Trap == nil || ev.Trap.Kind != k {
		t.Fatalf("expected a %s trap on entry, got %+v", k, ev)
	}
	return c, local, ev
}

func TestController_TrapMovementEffects(t *testing.T) {
	cfg := kinematics.DefaultConfig()
	tests := []struct {
		kind trap.Kind
		// eastward displacement of one forward tick facing east
		want float64
	}{
		{trap.Freeze, 0},
		{trap.Slow, cfg.MoveSpeed * trap.SlowFactor},
		{trap.ReverseControls, -cfg.MoveSpeed},
		{trap.Blind, cfg.MoveSpeed},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			clock := time.Unix(0, 0)
			c, _, _ := trappedController(t, tt.kind, &clock)
			c.state.Pose.X, c.state.Pose.Z = 0, 0
			if !c.Traps().Active() {
				t.Fatal("expected a running effect")
			}

			before := c.State().Pose.X
			if _, err := c.Tick(context.Background(), kinematics.Input{}.Press(kinematics.ActionForward)); err != nil {
				t.Fatal(err)
			}
			if got := c.State().Pose.X - before; math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("moved %v, want %v", got, tt.want)
			}

			clock = clock.Add(tt.kind.DefaultDuration() + time.Second)
			if c.Traps().Active() {
				t.Fatalf("effect still running after %s", tt.kind.DefaultDuration())
			}
			before = c.State().Pose.X
			if _, err := c.Tick(context.Background(), kinematics.Input{}.Press(kinematics.ActionForward)); err != nil {
				t.Fatal(err)
			}
			if got := c.State().Pose.X - before; math.Abs(got-cfg.MoveSpeed) > 1e-9 {
				t.Fatalf("after expiry moved %v, want %v", got, cfg.MoveSpeed)
			}
		})
	}
}

func TestController_TeleportTrapRespawns(t *testing.T) {
	clock := time.Unix(0, 0)
	c, local, ev := trappedController(t, trap.TeleportStart, &clock)
	if ev.From != (maze.Coord{}) || ev.To != (maze.Coord{}) {
		t.Fatalf("expected to land back in the start room, got %s -> %s", ev.From, ev.To)
	}
	s := c.State()
	if s.Room() != local.Position() || s.Room() != (maze.Coord{}) {
		t.Fatalf("controller in %s, provider in %s", s.Room(), local.Position())
	}
	if s.Pose.X != 0 || s.Pose.Z != 0 || s.HasEntry {
		t.Fatalf("expected a centered respawn without entry door, got %+v", s)
	}
	if math.Abs(s.Pose.Yaw+math.Pi/2) > 1e-9 {
		t.Fatalf("orientation lost: yaw %v", s.Pose.Yaw)
	}
}

func TestController_UsePortal(t *testing.T) {
	m := eastOnlyMaze(t)
	m.SetPortal(1, 0, true)
	local := provider.NewLocal(m)
	c, err := New(context.Background(), kinematics.DefaultConfig(), local)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.UsePortal(context.Background()); provider.CodeOf(err) != provider.CodeNoPortal {
		t.Fatalf("expected NO_PORTAL away from a portal room, got %v", err)
	}
	if ev, err := walk(t, c, -math.Pi/2, 200); err != nil || !ev.RoomChanged {
		t.Fatalf("walk east: %+v, %v", ev, err)
	}
	if !c.Room().HasPortal {
		t.Fatal("expected the portal room")
	}
	room, err := c.UsePortal(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if room.Coord() != local.Position() || c.State().Room() != room.Coord() {
		t.Fatalf("portal to %s, provider %s, controller %s", room.Coord(), local.Position(), c.State().Room())
	}
	if s := c.State(); s.Pose.X != 0 || s.Pose.Z != 0 {
		t.Fatalf("expected a centered respawn, got %+v", s.Pose)
	}
}
