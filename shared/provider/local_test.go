package provider

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// 3x2 layout:
//
//	(0,0) - (1,0)   (2,0)
//	          |
//	(0,1)   (1,1) - (2,1)
func testMaze(t *testing.T) *maze.Maze {
	t.Helper()
	m, err := maze.FromLayout(3, 2, [][]maze.Doors{
		{{East: true}, {West: true, South: true}, {}},
		{{}, {North: true, East: true}, {West: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLocal_StartsAtOriginVisited(t *testing.T) {
	l := NewLocal(testMaze(t))
	ctx := context.Background()

	start, err := l.StartPosition(ctx)
	if err != nil || start != (maze.Coord{}) {
		t.Fatalf("StartPosition = %v, %v", start, err)
	}
	room, err := l.CurrentRoom(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if room.X != 0 || room.Y != 0 || !room.Doors.East {
		t.Fatalf("unexpected start room %+v", room)
	}
	visited := l.VisitedRooms()
	if len(visited) != 1 || visited[0].Coord() != (maze.Coord{}) {
		t.Fatalf("expected only the start room visited, got %+v", visited)
	}
	size, ok := l.MazeSize()
	if !ok || size.Width != 3 || size.Height != 2 {
		t.Fatalf("MazeSize = %+v, %v", size, ok)
	}
}

func TestLocal_MoveToRoom(t *testing.T) {
	l := NewLocal(testMaze(t))
	ctx := context.Background()

	if _, err := l.MoveToRoom(ctx, maze.South); !errors.Is(err, ErrNoDoor) {
		t.Fatalf("expected ErrNoDoor, got %v", err)
	}
	if l.Position() != (maze.Coord{}) {
		t.Fatal("failed move changed the position")
	}

	steps := []maze.Direction{maze.East, maze.South, maze.East}
	for _, d := range steps {
		res, err := l.MoveToRoom(ctx, d)
		if err != nil {
			t.Fatalf("move %s: %v", d, err)
		}
		if res.Room.Coord() != l.Position() {
			t.Fatalf("result room %s does not match position %s", res.Room.Coord(), l.Position())
		}
	}
	if l.Position() != (maze.Coord{X: 2, Y: 1}) {
		t.Fatalf("expected (2,1), got %s", l.Position())
	}

	var want = []maze.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}
	got := l.VisitedRooms()
	if len(got) != len(want) {
		t.Fatalf("expected %d visited rooms, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Coord() != want[i] {
			t.Errorf("visited[%d] = %s, want %s", i, got[i].Coord(), want[i])
		}
	}
}

func TestLocal_VisitedNeverShrinks(t *testing.T) {
	l := NewLocal(testMaze(t))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := l.MoveToRoom(ctx, maze.East); err != nil {
			t.Fatal(err)
		}
		if _, err := l.MoveToRoom(ctx, maze.West); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(l.VisitedRooms()); n != 2 {
		t.Fatalf("expected 2 visited rooms, got %d", n)
	}
}

func TestLocal_Teleport(t *testing.T) {
	l := NewLocal(testMaze(t))
	if _, err := l.Teleport(9, 9); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	room, err := l.Teleport(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if room.Doors.Any() {
		t.Fatalf("expected isolated room, got %+v", room.Doors)
	}
	if !l.Visited(maze.Coord{X: 2, Y: 0}) {
		t.Fatal("teleport target not marked visited")
	}
}

func TestMoveError(t *testing.T) {
	err := error(&MoveError{Code: CodeNetwork, Err: context.DeadlineExceeded})
	if !errors.Is(err, ErrNetwork) {
		t.Fatal("expected ErrNetwork match")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected wrapped error match")
	}
	if errors.Is(err, ErrNoDoor) {
		t.Fatal("unexpected ErrNoDoor match")
	}
	if CodeOf(err) != CodeNetwork {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
}

func TestFromRoomCopiesDecoration(t *testing.T) {
	m := testMaze(t)
	m.SetWallTexture(0, 0, maze.North, "stone.png")
	m.SetAd(0, 0, maze.West, &maze.Ad{Type: "image", URL: "ad.png"})
	r, _ := m.Room(0, 0)
	rd := FromRoom(r)
	if rd.WallTextures["north"] != "stone.png" || rd.Ads["west"] == nil {
		t.Fatalf("decoration lost: %+v", rd)
	}
}

func TestLocal_UsePortal(t *testing.T) {
	m := testMaze(t)
	m.SetPortal(1, 0, true)
	l := NewLocal(m, WithRand(rand.New(rand.NewSource(4))))
	ctx := context.Background()

	if _, err := l.UsePortal(ctx); !errors.Is(err, ErrNoPortal) || CodeOf(err) != CodeNoPortal {
		t.Fatalf("expected NO_PORTAL in the start room, got %v", err)
	}
	if l.Position() != (maze.Coord{}) {
		t.Fatalf("refused portal moved the player to %s", l.Position())
	}

	if _, err := l.MoveToRoom(ctx, maze.East); err != nil {
		t.Fatal(err)
	}
	room, err := l.UsePortal(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if room.Coord() != l.Position() || !l.Visited(room.Coord()) {
		t.Fatalf("portal landed in %s but position is %s", room.Coord(), l.Position())
	}
}

func TestFromRoomCarriesPortal(t *testing.T) {
	m := testMaze(t)
	m.SetPortal(2, 1, true)
	r, _ := m.Room(2, 1)
	if !FromRoom(r).HasPortal {
		t.Fatal("portal flag lost")
	}
	r, _ = m.Room(0, 0)
	if FromRoom(r).HasPortal {
		t.Fatal("unexpected portal in the start room")
	}
}

func TestLocal_MoveSpringsTrap(t *testing.T) {
	tests := []struct {
		name    string
		kind    trap.Kind
		landing maze.Coord
	}{
		{"freeze stays", trap.Freeze, maze.Coord{X: 1, Y: 0}},
		{"back to start", trap.TeleportStart, maze.Coord{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := trap.NewSet()
			set.Add(maze.Coord{X: 1, Y: 0}, trap.New(tt.kind))
			l := NewLocal(testMaze(t), WithTraps(set))
			ctx := context.Background()

			res, err := l.MoveToRoom(ctx, maze.East)
			if err != nil {
				t.Fatal(err)
			}
			if res.Trap == nil || res.Trap.Kind != tt.kind {
				t.Fatalf("expected a %s trap, got %+v", tt.kind, res.Trap)
			}
			if res.Room.Coord() != tt.landing || l.Position() != tt.landing {
				t.Fatalf("result room %s, position %s, want %s", res.Room.Coord(), l.Position(), tt.landing)
			}
			if set.Len() != 0 {
				t.Fatal("sprung trap stayed armed")
			}

			// The trap does not fire again.
			if l.Position() != (maze.Coord{}) {
				if _, err := l.MoveToRoom(ctx, maze.West); err != nil {
					t.Fatal(err)
				}
			}
			res, err = l.MoveToRoom(ctx, maze.East)
			if err != nil {
				t.Fatal(err)
			}
			if res.Trap != nil || l.Position() != (maze.Coord{X: 1, Y: 0}) {
				t.Fatalf("second entry: trap %+v, position %s", res.Trap, l.Position())
			}
		})
	}
}

func TestLocal_RandomTeleportTrap(t *testing.T) {
	set := trap.NewSet()
	set.Add(maze.Coord{X: 1, Y: 0}, trap.New(trap.RandomTeleport))
	l := NewLocal(testMaze(t), WithTraps(set), WithRand(rand.New(rand.NewSource(9))))

	res, err := l.MoveToRoom(context.Background(), maze.East)
	if err != nil {
		t.Fatal(err)
	}
	if res.Trap == nil || res.Trap.TeleportTo == nil {
		t.Fatalf("expected a teleport effect, got %+v", res.Trap)
	}
	if *res.Trap.TeleportTo != l.Position() || res.Room.Coord() != l.Position() || !l.Visited(l.Position()) {
		t.Fatalf("teleport_to %v disagrees with position %s", *res.Trap.TeleportTo, l.Position())
	}
}
