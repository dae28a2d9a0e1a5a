package mazedata

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

func TestLoadMaze(t *testing.T) {
	layout, err := LoadMaze(os.DirFS("testdata"), "small.tmx")
	if err != nil {
		t.Fatal(err)
	}
	if layout.Name != "small" {
		t.Fatalf("name = %q", layout.Name)
	}
	m := layout.Maze
	if m.Width != 3 || m.Height != 2 {
		t.Fatalf("size = %dx%d", m.Width, m.Height)
	}

	tests := []struct {
		x, y int
		want maze.Doors
	}{
		{0, 0, maze.Doors{East: true}},
		{1, 0, maze.Doors{West: true, South: true}},
		{2, 0, maze.Doors{}},
		{0, 1, maze.Doors{}},
		{1, 1, maze.Doors{North: true, East: true}},
		{2, 1, maze.Doors{West: true}},
	}
	for _, tt := range tests {
		r, _ := m.Room(tt.x, tt.y)
		if r.Doors != tt.want {
			t.Errorf("room (%d,%d) doors = %+v, want %+v", tt.x, tt.y, r.Doors, tt.want)
		}
	}

	r, _ := m.Room(0, 0)
	if r.WallTexture(maze.North) != "textures/brick.png" {
		t.Errorf("texture = %q", r.WallTexture(maze.North))
	}

	st, err := layout.Locks.DoorStatus(context.Background(), 1, 0, maze.West)
	if err != nil {
		t.Fatal(err)
	}
	lock, ok := st.Lock(maze.South)
	if !ok || lock.Kind != doorlock.KindQuiz || lock.Quiz == nil {
		t.Fatalf("expected quiz lock on (1,0) south, got %+v", st)
	}
	if lock.Quiz.ID != "capital" || lock.Quiz.Correct != 1 || len(lock.Quiz.Options) != 3 {
		t.Fatalf("unexpected quiz %+v", lock.Quiz)
	}

	st, _ = layout.Locks.DoorStatus(context.Background(), 2, 1, doorlock.NoEntry)
	if l, ok := st.Lock(maze.West); !ok || l.Seconds != 5 {
		t.Fatalf("expected 5s timer on (2,1) west, got %+v", st)
	}

	if got := m.Portals(); len(got) != 1 || got[0] != (maze.Coord{X: 2, Y: 1}) {
		t.Fatalf("portals = %v, want [(2,1)]", got)
	}
	tr, ok := layout.Traps.At(maze.Coord{X: 1, Y: 1})
	if !ok || tr.Kind != trap.Slow || tr.Duration != 20*time.Second || layout.Traps.Len() != 1 {
		t.Fatalf("expected a 20s slow trap in (1,1), got %+v (%d traps)", tr, layout.Traps.Len())
	}
}

// singleRowTMX builds a two-room map whose tiles are given by csv, with an
// optional extra object group.
func singleRowTMX(doorsA, doorsB, csv, extra string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="1" tilewidth="32" tileheight="32" infinite="0">
 <tileset firstgid="1" name="rooms" tilewidth="32" tileheight="32" tilecount="2" columns="2">
  <tile id="0">
   <properties>
    <property name="doors" value="` + doorsA + `"/>
   </properties>
  </tile>
  <tile id="1">
   <properties>
    <property name="doors" value="` + doorsB + `"/>
   </properties>
  </tile>
 </tileset>
 <layer id="1" name="rooms" width="2" height="1">
  <data encoding="csv">
` + csv + `
</data>
 </layer>
` + extra + `
</map>
`
}

func TestLoadMaze_Rejects(t *testing.T) {
	badTrap := ` <objectgroup id="2" name="traps">
  <object id="1" x="40" y="4" width="8" height="8">
   <properties>
    <property name="kind" value="lose_reward"/>
   </properties>
  </object>
 </objectgroup>`
	tests := []struct {
		name string
		tmx  string
		want error
	}{
		{"closed start room", singleRowTMX("", "", "1,2", ""), ErrClosedStart},
		{"unknown trap kind", singleRowTMX("E", "W", "1,2", badTrap), trap.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"bad.tmx": {Data: []byte(tt.tmx)}}
			if _, err := LoadMaze(fsys, "bad.tmx"); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMaze_SingleClosedRoomIsAllowed(t *testing.T) {
	const tmx = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="1" height="1" tilewidth="32" tileheight="32" infinite="0">
 <tileset firstgid="1" name="rooms" tilewidth="32" tileheight="32" tilecount="1" columns="1">
  <tile id="0">
   <properties>
    <property name="doors" value=""/>
   </properties>
  </tile>
 </tileset>
 <layer id="1" name="rooms" width="1" height="1">
  <data encoding="csv">
1
</data>
 </layer>
</map>
`
	fsys := fstest.MapFS{"cell.tmx": {Data: []byte(tmx)}}
	if _, err := LoadMaze(fsys, "cell.tmx"); err != nil {
		t.Fatalf("a single room needs no door: %v", err)
	}
}

const asymmetricTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="1" tilewidth="32" tileheight="32" infinite="0">
 <tileset firstgid="1" name="rooms" tilewidth="32" tileheight="32" tilecount="1" columns="1">
  <tile id="0">
   <properties>
    <property name="doors" value="E"/>
   </properties>
  </tile>
 </tileset>
 <layer id="1" name="rooms" width="2" height="1">
  <data encoding="csv">
1,0
</data>
 </layer>
</map>
`

func TestLoadMaze_RejectsAsymmetricDoors(t *testing.T) {
	fsys := fstest.MapFS{"bad.tmx": {Data: []byte(asymmetricTMX)}}
	if _, err := LoadMaze(fsys, "bad.tmx"); !errors.Is(err, maze.ErrAsymmetricDoor) {
		t.Fatalf("expected ErrAsymmetricDoor, got %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	layouts, names, err := LoadAll(os.DirFS("."), "testdata")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "small" || layouts["small"] == nil {
		t.Fatalf("unexpected layouts %v", names)
	}
	if _, _, err := LoadAll(os.DirFS("."), "nowhere"); err == nil {
		t.Fatal("expected error for a directory without maps")
	}
}

func TestParseDoors(t *testing.T) {
	d, err := ParseDoors("nEw")
	if err != nil || d != (maze.Doors{North: true, East: true, West: true}) {
		t.Fatalf("ParseDoors = %+v, %v", d, err)
	}
	if _, err := ParseDoors("NX"); err == nil {
		t.Fatal("expected error for unknown door letter")
	}
}
