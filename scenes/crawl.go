package scenes

import (
	"image/color"
	"sync"

	"github.com/automoto/mazecrawl/components"
	"github.com/automoto/mazecrawl/shared/player"
	"github.com/automoto/mazecrawl/systems"
	"github.com/automoto/mazecrawl/tags"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// CrawlConfig describes a single-player crawl driven in-process.
type CrawlConfig struct {
	Controller *player.Controller
	// Mode labels the HUD.
	Mode string
}

// CrawlScene walks a controller through its provider's maze.
type CrawlScene struct {
	ecs          *ecs.ECS
	sceneChanger SceneChanger
	config       CrawlConfig
	once         sync.Once
}

func NewCrawlScene(sc SceneChanger, config CrawlConfig) *CrawlScene {
	return &CrawlScene{sceneChanger: sc, config: config}
}

func (cs *CrawlScene) Update() {
	cs.once.Do(cs.configure)
	cs.ecs.Update()
}

func (cs *CrawlScene) Draw(screen *ebiten.Image) {
	// Always clear screen to prevent white flashes from OS window background
	screen.Fill(color.Black)

	if cs.ecs == nil {
		return
	}
	cs.ecs.Draw(screen)
}

func (cs *CrawlScene) configure() {
	cs.ecs = ecs.NewECS(donburi.NewWorld())

	cs.ecs.AddSystem(systems.UpdateInput)
	cs.ecs.AddSystem(systems.UpdateMinimap)
	cs.ecs.AddSystem(systems.UpdatePlayer)
	cs.ecs.AddSystem(systems.UpdateFade)
	cs.ecs.AddSystem(systems.UpdateMessage)

	cs.ecs.AddRenderer(layerDefault, systems.DrawRoom)
	cs.ecs.AddRenderer(layerDefault, systems.DrawMinimap)
	cs.ecs.AddRenderer(layerDefault, systems.DrawHUD)
	cs.ecs.AddRenderer(layerDefault, systems.DrawMessage)
	cs.ecs.AddRenderer(layerDefault, systems.DrawFade)

	entry := cs.ecs.World.Entry(cs.ecs.World.Create(tags.Player, components.Player))
	components.Player.SetValue(entry, components.PlayerData{
		Controller: cs.config.Controller,
	})

	systems.SetMode(cs.ecs, cs.config.Mode)
	if size, ok := cs.config.Controller.Provider().MazeSize(); ok {
		systems.SetMazeSize(cs.ecs, size.Width, size.Height)
	}
}
