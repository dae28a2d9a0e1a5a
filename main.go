package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/fonts"
	"github.com/automoto/mazecrawl/network"
	"github.com/automoto/mazecrawl/scenes"
	"github.com/automoto/mazecrawl/server/core"
	"github.com/automoto/mazecrawl/shared/netconfig"
	"github.com/automoto/mazecrawl/shared/player"
	"github.com/automoto/mazecrawl/shared/protocol"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font/gofont/goregular"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

// quitter is implemented by scenes that can end the game.
type quitter interface {
	Quit() bool
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(Scene)
}

func (g *Game) Update() error {
	g.scene.Update()
	if q, ok := g.scene.(quitter); ok && q.Quit() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.Viewer.ScreenWidth, config.Viewer.ScreenHeight)
	return config.Viewer.ScreenWidth, config.Viewer.ScreenHeight
}

func loadFonts() error {
	if err := fonts.LoadFontWithSize(fonts.HUD, goregular.TTF, config.Viewer.HUDFontSize); err != nil {
		return err
	}
	if err := fonts.LoadFontWithSize(fonts.HUDSmall, goregular.TTF, 11); err != nil {
		return err
	}
	return fonts.LoadFontWithSize(fonts.Title, goregular.TTF, 24)
}

// localScene generates (or loads) a maze and crawls it in-process.
func localScene(g *Game, assetsDir string, replay bool) (Scene, error) {
	if config.Maze.Layout == "" {
		switch {
		case replay && systems.CurrentSettings().LastSeed != 0:
			config.Maze.Seed = systems.CurrentSettings().LastSeed
		case config.Maze.Seed == 0:
			config.Maze.Seed = time.Now().UnixNano()
		}
	}

	l, err := core.LoadLayout(config.Maze, assetsDir)
	if err != nil {
		return nil, err
	}
	if config.Maze.Layout == "" {
		systems.RememberSeed(config.Maze.Seed)
		log.Printf("Maze seed %d (replay with -replay)", config.Maze.Seed)
	}

	rooms := provider.NewLocal(l.Maze, provider.WithTraps(l.Traps))
	ctrl, err := player.New(context.Background(), config.Player, rooms, player.WithLocks(l.Locks))
	if err != nil {
		return nil, fmt.Errorf("spawn player: %w", err)
	}
	return scenes.NewCrawlScene(g, scenes.CrawlConfig{
		Controller: ctrl,
		Mode:       "local " + l.Name,
	}), nil
}

// remoteScene crawls a session opened on the REST API at url.
func remoteScene(g *Game, url string) (Scene, error) {
	remote := network.NewRemote(url, network.DefaultTimeout)
	ctrl, err := player.New(context.Background(), config.Player, remote, player.WithLocks(remote))
	if err != nil {
		return nil, fmt.Errorf("open session at %s: %w", url, err)
	}
	log.Printf("Session %s opened at %s", remote.Token(), url)

	return scenes.NewCrawlScene(g, scenes.CrawlConfig{
		Controller: ctrl,
		Mode:       "remote",
	}), nil
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "Env file with MAZECRAWL_* overrides")
	assetsDir := flag.String("assets", "assets", "Directory holding the layout directory")
	apiURL := flag.String("api", "", "Session API base URL (remote mode)")
	serverAddr := flag.String("server", "", "Game server address host:port (online mode)")
	name := flag.String("name", "", "Player name shown to others online")
	layout := flag.String("layout", "", "TMX layout name (local mode)")
	seed := flag.Int64("seed", 0, "Maze seed (local mode, 0 = time based)")
	replay := flag.Bool("replay", false, "Replay the last generated maze")
	flag.Parse()

	if err := config.Load(*configPath, *envFile); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			config.Viewer.APIURL = *apiURL
		case "server":
			config.Viewer.ServerURL = *serverAddr
		case "layout":
			config.Maze.Layout = *layout
		case "seed":
			config.Maze.Seed = *seed
		}
	})

	// Register network components for client-side deserialization
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register network components: %v", err)
	}

	// Initialize persistence and load saved settings
	if err := systems.InitPersistence(config.Viewer.AppName); err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}
	if saved, err := systems.LoadSettings(); err == nil && saved != nil {
		systems.ApplySavedSettings(saved)
	}

	if err := loadFonts(); err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	g := &Game{}
	var err error
	switch {
	case config.Viewer.ServerURL != "":
		client := network.NewClient()
		client.Connect(config.Viewer.ServerURL, netconfig.ProtocolVersion, *name)
		g.scene = scenes.NewNetworkedScene(g, client)
	case config.Viewer.APIURL != "":
		g.scene, err = remoteScene(g, config.Viewer.APIURL)
	default:
		g.scene, err = localScene(g, *assetsDir, *replay)
	}
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("mazecrawl")
	ebiten.SetWindowSize(config.Viewer.ScreenWidth, config.Viewer.ScreenHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeOnlyFullscreenEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
