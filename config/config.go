// Package config holds the tunable values of every binary. Defaults are set in
// init(); binaries overlay a YAML file and MAZECRAWL_* environment variables
// with Load, then apply their own flags.
package config

import (
	"image/color"
	"time"

	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
)

// MazeConfig describes the maze a session plays in.
type MazeConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Seed          int64   `yaml:"seed"` // 0 picks a time-based seed
	DoorThreshold float64 `yaml:"door_threshold"`

	// Connected guarantees every room is reachable from the start room.
	Connected  bool    `yaml:"connected"`
	LoopChance float64 `yaml:"loop_chance"`

	// Portals and Traps are scattered over every room but the start room.
	Portals int `yaml:"portals"`
	Traps   int `yaml:"traps"`

	// Layout names a TMX map to load instead of generating. Empty generates.
	Layout    string `yaml:"layout"`
	LayoutDir string `yaml:"layout_dir"`
}

// Options returns the generator options for this config.
func (c MazeConfig) Options() []maze.Option {
	opts := []maze.Option{maze.WithDoorThreshold(c.DoorThreshold)}
	if c.Seed != 0 {
		opts = append(opts, maze.WithSeed(c.Seed))
	}
	if c.Connected {
		opts = append(opts, maze.WithConnected(c.LoopChance))
	}
	if c.Portals > 0 {
		opts = append(opts, maze.WithPortals(c.Portals))
	}
	return opts
}

// ServerConfig contains the dedicated server settings.
type ServerConfig struct {
	Name     string `yaml:"name"`
	Port     uint   `yaml:"port"`
	TickRate int    `yaml:"tick_rate"`
	// SimulationHz is the rate the per-tick movement speeds are tuned for;
	// each server tick runs SimulationHz/TickRate controller steps.
	SimulationHz int    `yaml:"simulation_hz"`
	Version      string `yaml:"version"` // required client version, empty accepts any
	MaxPlayers   int    `yaml:"max_players"`
	Bots         int    `yaml:"bots"`

	APIAddr         string        `yaml:"api_addr"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// ViewerConfig contains the ebiten viewer settings.
type ViewerConfig struct {
	AppName      string `yaml:"app_name"`
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`

	// RoomScale is pixels per room unit in the room view.
	RoomScale   float64 `yaml:"room_scale"`
	MinimapCell float64 `yaml:"minimap_cell"`
	FadeTime    float32 `yaml:"fade_time"` // seconds
	MouseLook   bool    `yaml:"mouse_look"`

	HUDFontSize float64 `yaml:"hud_font_size"`

	// APIURL selects the remote session provider when set.
	APIURL    string `yaml:"api_url"`
	ServerURL string `yaml:"server_url"`
}

// BotConfig tunes server-side wandering players.
type BotConfig struct {
	// TurnChance is the per-tick probability of picking a new heading.
	TurnChance float64 `yaml:"turn_chance"`
	// Seed for bot decisions; 0 picks a time-based seed.
	Seed int64 `yaml:"seed"`
}

var (
	Player kinematics.Config
	Maze   MazeConfig
	Server ServerConfig
	Viewer ViewerConfig
	Bot    BotConfig
)

// Viewer palette
var (
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Floor      = color.RGBA{R: 40, G: 44, B: 52, A: 255}
	Wall       = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	Door       = color.RGBA{R: 80, G: 200, B: 120, A: 255}
	LockedDoor = color.RGBA{R: 230, G: 80, B: 60, A: 255}
	PlayerDot  = color.RGBA{R: 255, G: 220, B: 60, A: 255}
	OtherDot   = color.RGBA{R: 100, G: 180, B: 255, A: 255}
	Unvisited  = color.RGBA{R: 20, G: 20, B: 24, A: 255}
	FadeColor  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	Panel      = color.RGBA{R: 0, G: 0, B: 0, A: 170}
	Warning    = color.RGBA{R: 255, G: 170, B: 60, A: 255}
	Portal     = color.RGBA{R: 170, G: 90, B: 240, A: 255}
	Blindfold  = color.RGBA{R: 0, G: 0, B: 0, A: 235}
)

func init() {
	Player = kinematics.DefaultConfig()

	Maze = MazeConfig{
		Width:         10,
		Height:        10,
		DoorThreshold: maze.DefaultDoorThreshold,
		LoopChance:    maze.DefaultLoopChance,
		Portals:       5,
		Traps:         8,
		LayoutDir:     "mazes",
	}

	Server = ServerConfig{
		Name:            "Mazecrawl Server",
		Port:            7373,
		TickRate:        20,
		SimulationHz:    60,
		MaxPlayers:      32,
		APIAddr:         ":8080",
		SessionTTL:      30 * time.Minute,
		CleanupInterval: time.Minute,
	}

	Viewer = ViewerConfig{
		AppName:      "mazecrawl",
		ScreenWidth:  960,
		ScreenHeight: 640,
		RoomScale:    48,
		MinimapCell:  14,
		FadeTime:     0.25,
		MouseLook:    false,
		HUDFontSize:  14,
	}

	Bot = BotConfig{
		TurnChance: 0.02,
	}
}
