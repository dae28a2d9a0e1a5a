// Command mazemap draws a whole maze in the terminal. Rooms that cannot be
// reached from the start room are shaded; locked rooms are marked L.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/server/core"
	"github.com/automoto/mazecrawl/shared/mazedata"
)

type mapView struct {
	screen tcell.Screen
	cfg    config.MazeConfig
	assets string
	rng    *rand.Rand

	layout *mazedata.Layout
	err    error
}

func (v *mapView) load() {
	v.layout, v.err = core.LoadLayout(v.cfg, v.assets)
}

// regenerate switches to a generated maze with a fresh seed.
func (v *mapView) regenerate() {
	v.cfg.Layout = ""
	v.cfg.Seed = v.rng.Int63()
	v.load()
}

func (v *mapView) draw() {
	v.screen.Clear()
	defer v.screen.Show()

	if v.err != nil {
		putString(v.screen, 0, 0, "error: "+v.err.Error(), tcell.StyleDefault.Foreground(tcell.ColorRed))
		putString(v.screen, 0, 1, "r regenerate  q quit", tcell.StyleDefault)
		return
	}

	grid := render(v.layout.Maze, v.layout.Locks, v.layout.Traps)
	for y, row := range grid {
		for x, c := range row {
			v.screen.SetContent(x, y, c.r, nil, c.style)
		}
	}

	m := v.layout.Maze
	reached := len(m.Reachable(0, 0))
	status := fmt.Sprintf("%s %dx%d  seed %d  reachable %d/%d  locked %d   r regenerate  q quit",
		v.layout.Name, m.Width, m.Height, v.cfg.Seed, reached, m.Width*m.Height, len(v.layout.Locks))
	putString(v.screen, 0, len(grid)+1, status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
}

// handleInput returns false when the program should exit.
func (v *mapView) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				v.regenerate()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *mapView) run() {
	v.draw()
	for {
		if !v.handleInput(v.screen.PollEvent()) {
			return
		}
		v.draw()
	}
}

func putString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for i, r := range []rune(str) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "Env file with MAZECRAWL_* overrides")
	assetsDir := flag.String("assets", "assets", "Directory holding the layout directory")
	layout := flag.String("layout", "", "TMX layout name (empty generates a maze)")
	seed := flag.Int64("seed", 0, "Maze seed (0 = time based)")
	width := flag.Int("width", 0, "Maze width (0 keeps the configured width)")
	height := flag.Int("height", 0, "Maze height (0 keeps the configured height)")
	flag.Parse()

	if err := config.Load(*configPath, *envFile); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Maze
	if *layout != "" {
		cfg.Layout = *layout
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if cfg.Layout == "" && cfg.Seed == 0 {
		cfg.Seed = rng.Int63()
	}

	// The loader logs; keep it off the terminal the map is drawn on.
	log.SetOutput(os.Stderr)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &mapView{screen: screen, cfg: cfg, assets: *assetsDir, rng: rng}
	v.load()
	v.run()
}
