package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/automoto/mazecrawl/shared/kinematics"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAZECRAWL_"

// File is the YAML layout. Sections that are absent keep their current values.
type File struct {
	Player kinematics.Config `yaml:"player"`
	Maze   MazeConfig        `yaml:"maze"`
	Server ServerConfig      `yaml:"server"`
	Viewer ViewerConfig      `yaml:"viewer"`
	Bot    BotConfig         `yaml:"bot"`
}

// Load overlays the YAML file at path (skipped when empty) and then the
// environment, after reading envFile into it (skipped when missing).
// The result is validated before any global is replaced.
func Load(path, envFile string) error {
	f := File{Player: Player, Maze: Maze, Server: Server, Viewer: Viewer, Bot: Bot}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}
	if err := applyEnv(&f); err != nil {
		return err
	}

	if err := f.Validate(); err != nil {
		return err
	}
	Player, Maze, Server, Viewer, Bot = f.Player, f.Maze, f.Server, f.Viewer, f.Bot
	return nil
}

// Validate checks cross-field constraints.
func (f File) Validate() error {
	if err := f.Player.Validate(); err != nil {
		return err
	}
	if f.Maze.Layout == "" && (f.Maze.Width <= 0 || f.Maze.Height <= 0) {
		return fmt.Errorf("maze size must be positive, got %dx%d", f.Maze.Width, f.Maze.Height)
	}
	if f.Maze.Portals < 0 || f.Maze.Traps < 0 {
		return fmt.Errorf("portal and trap counts must not be negative")
	}
	if f.Server.TickRate <= 0 || f.Server.SimulationHz < f.Server.TickRate {
		return fmt.Errorf("tick rate %d must be positive and at most the simulation rate %d",
			f.Server.TickRate, f.Server.SimulationHz)
	}
	if f.Server.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

func applyEnv(f *File) error {
	vars := []struct {
		key string
		set func(string) error
	}{
		{"PORT", func(v string) error { return parseUint(v, &f.Server.Port) }},
		{"TICKRATE", func(v string) error { return parseInt(v, &f.Server.TickRate) }},
		{"VERSION", func(v string) error { f.Server.Version = v; return nil }},
		{"API_ADDR", func(v string) error { f.Server.APIAddr = v; return nil }},
		{"SESSION_TTL", func(v string) error { return parseDuration(v, &f.Server.SessionTTL) }},
		{"BOTS", func(v string) error { return parseInt(v, &f.Server.Bots) }},
		{"MAZE_WIDTH", func(v string) error { return parseInt(v, &f.Maze.Width) }},
		{"MAZE_HEIGHT", func(v string) error { return parseInt(v, &f.Maze.Height) }},
		{"SEED", func(v string) error { return parseInt64(v, &f.Maze.Seed) }},
		{"CONNECTED", func(v string) error { return parseBool(v, &f.Maze.Connected) }},
		{"PORTALS", func(v string) error { return parseInt(v, &f.Maze.Portals) }},
		{"TRAPS", func(v string) error { return parseInt(v, &f.Maze.Traps) }},
		{"LAYOUT", func(v string) error { f.Maze.Layout = v; return nil }},
		{"SERVER_URL", func(v string) error { f.Viewer.ServerURL = v; return nil }},
		{"API_URL", func(v string) error { f.Viewer.APIURL = v; return nil }},
	}
	for _, ev := range vars {
		v, ok := os.LookupEnv(EnvPrefix + ev.key)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, ev.key, err)
		}
	}
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseInt64(v string, dst *int64) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseUint(v string, dst *uint) error {
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return err
	}
	*dst = uint(n)
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
