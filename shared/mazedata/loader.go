package mazedata

import (
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lafriks/go-tiled"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// LoadMaze parses a TMX file into a maze layout. It takes an fs.FS so callers
// can pass embed.FS or os.DirFS.
func LoadMaze(fsys fs.FS, tmxPath string) (*Layout, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	doors, err := parseRooms(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tmxPath, err)
	}
	mz, err := maze.FromLayout(m.Width, m.Height, doors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tmxPath, err)
	}
	if start, _ := mz.Room(0, 0); !start.Doors.Any() && m.Width*m.Height > 1 {
		return nil, fmt.Errorf("%s: %w", tmxPath, ErrClosedStart)
	}

	layout := &Layout{
		Name:  strings.TrimSuffix(filepath.Base(tmxPath), ".tmx"),
		Maze:  mz,
		Locks: doorlock.StaticSource{},
		Traps: trap.NewSet(),
	}

	for _, og := range m.ObjectGroups {
		for _, o := range og.Objects {
			x, y := roomOf(m, o)
			if !mz.InBounds(x, y) {
				return nil, fmt.Errorf("%s: object %d in group %q lies outside the maze", tmxPath, o.ID, og.Name)
			}
			switch og.Name {
			case groupLocks:
				lock, err := parseLock(o)
				if err != nil {
					return nil, fmt.Errorf("%s: lock %d: %w", tmxPath, o.ID, err)
				}
				if !mz.CanMoveTo(x, y, lock.Direction) {
					return nil, fmt.Errorf("%s: lock %d on room (%d,%d) %s has no door", tmxPath, o.ID, x, y, lock.Direction)
				}
				layout.Locks.Add(x, y, lock)
			case groupTextures:
				d, err := maze.ParseDirection(o.Properties.GetString("direction"))
				if err != nil {
					return nil, fmt.Errorf("%s: texture %d: %w", tmxPath, o.ID, err)
				}
				mz.SetWallTexture(x, y, d, o.Properties.GetString("url"))
			case groupAds:
				d, err := maze.ParseDirection(o.Properties.GetString("direction"))
				if err != nil {
					return nil, fmt.Errorf("%s: ad %d: %w", tmxPath, o.ID, err)
				}
				mz.SetAd(x, y, d, &maze.Ad{
					Type:   o.Properties.GetString("type"),
					URL:    o.Properties.GetString("url"),
					Text:   o.Properties.GetString("text"),
					Width:  o.Width,
					Height: o.Height,
				})
			case groupPortals:
				mz.SetPortal(x, y, true)
			case groupTraps:
				t, err := parseTrap(o)
				if err != nil {
					return nil, fmt.Errorf("%s: trap %d: %w", tmxPath, o.ID, err)
				}
				layout.Traps.Add(maze.Coord{X: x, Y: y}, t)
			}
		}
	}
	return layout, nil
}

func parseRooms(m *tiled.Map) ([][]maze.Doors, error) {
	doors := make([][]maze.Doors, m.Height)
	for y := range doors {
		doors[y] = make([]maze.Doors, m.Width)
	}

	for _, layer := range m.Layers {
		if layer.Name != layerRooms {
			continue
		}
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				tile := layer.Tiles[y*m.Width+x]
				if tile.IsNil() {
					continue
				}
				tt, err := tile.Tileset.GetTilesetTile(tile.ID)
				if err != nil {
					continue
				}
				d, err := ParseDoors(tt.Properties.GetString("doors"))
				if err != nil {
					return nil, fmt.Errorf("room (%d,%d): %w", x, y, err)
				}
				doors[y][x] = d
			}
		}
		return doors, nil
	}
	return nil, fmt.Errorf("no %q tile layer", layerRooms)
}

// ParseDoors reads a door set written as letters from "NSEW", in any order and case.
func ParseDoors(s string) (maze.Doors, error) {
	var d maze.Doors
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'N':
			d.North = true
		case 'S':
			d.South = true
		case 'E':
			d.East = true
		case 'W':
			d.West = true
		case ' ', ',':
		default:
			return maze.Doors{}, fmt.Errorf("unknown door %q in %q", r, s)
		}
	}
	return d, nil
}

func parseLock(o *tiled.Object) (doorlock.Lock, error) {
	d, err := maze.ParseDirection(o.Properties.GetString("direction"))
	if err != nil {
		return doorlock.Lock{}, err
	}
	kind, err := doorlock.ParseKind(o.Properties.GetString("kind"))
	if err != nil {
		return doorlock.Lock{}, err
	}
	lock := doorlock.Lock{
		Direction: d,
		Kind:      kind,
		Seconds:   o.Properties.GetInt("seconds"),
	}
	if kind == doorlock.KindQuiz {
		options := strings.Split(o.Properties.GetString("options"), "|")
		correct := o.Properties.GetInt("correct")
		if len(options) < 2 {
			return doorlock.Lock{}, fmt.Errorf("quiz needs at least two options")
		}
		if correct < 0 || correct >= len(options) {
			return doorlock.Lock{}, fmt.Errorf("correct option %d out of range", correct)
		}
		id := o.Name
		if id == "" {
			id = strconv.FormatUint(uint64(o.ID), 10)
		}
		lock.Quiz = &doorlock.Quiz{
			ID:       id,
			Question: o.Properties.GetString("question"),
			Options:  options,
			Correct:  correct,
		}
	}
	return lock, nil
}

func parseTrap(o *tiled.Object) (trap.Trap, error) {
	kind, err := trap.ParseKind(o.Properties.GetString("kind"))
	if err != nil {
		return trap.Trap{}, err
	}
	t := trap.New(kind)
	if s := o.Properties.GetInt("seconds"); s > 0 && !kind.Teleports() {
		t.Duration = time.Duration(s) * time.Second
	}
	return t, nil
}

func roomOf(m *tiled.Map, o *tiled.Object) (int, int) {
	return int(math.Floor(o.X / float64(m.TileWidth))), int(math.Floor(o.Y / float64(m.TileHeight)))
}

// LoadAll discovers every .tmx file in dir within fsys and returns the layouts
// keyed by stem name plus the sorted list of names.
func LoadAll(fsys fs.FS, dir string) (map[string]*Layout, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	layouts := make(map[string]*Layout, len(matches))
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		l, err := LoadMaze(fsys, path)
		if err != nil {
			return nil, nil, err
		}
		layouts[l.Name] = l
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return layouts, names, nil
}
