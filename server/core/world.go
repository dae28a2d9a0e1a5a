package core

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/mazedata"
	"github.com/automoto/mazecrawl/shared/trap"
)

// LoadLayout returns the maze to crawl: the named TMX layout from
// assetsDir when cfg.Layout is set, otherwise a generated maze without locks
// whose traps are scattered from the same seed.
func LoadLayout(cfg config.MazeConfig, assetsDir string) (*mazedata.Layout, error) {
	if cfg.Layout == "" {
		m, err := maze.New(cfg.Width, cfg.Height, cfg.Options()...)
		if err != nil {
			return nil, fmt.Errorf("generate maze: %w", err)
		}
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		traps := trap.Scatter(rand.New(rand.NewSource(seed)), m.Width, m.Height, cfg.Traps)
		log.Printf("[maze] generated %dx%d maze (connected=%v, %d portals, %d traps)",
			m.Width, m.Height, cfg.Connected, len(m.Portals()), traps.Len())
		return &mazedata.Layout{Name: "generated", Maze: m, Locks: doorlock.StaticSource{}, Traps: traps}, nil
	}

	layouts, names, err := mazedata.LoadAll(os.DirFS(assetsDir), cfg.LayoutDir)
	if err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}
	l, ok := layouts[cfg.Layout]
	if !ok {
		return nil, fmt.Errorf("layout %q not found (have %v)", cfg.Layout, names)
	}
	log.Printf("[maze] loaded layout %q: %dx%d, %d locked rooms, %d portals, %d traps",
		l.Name, l.Maze.Width, l.Maze.Height, len(l.Locks), len(l.Maze.Portals()), l.Traps.Len())
	return l, nil
}
