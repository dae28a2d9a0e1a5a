package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	p, m, s, v, b := Player, Maze, Server, Viewer, Bot
	t.Cleanup(func() {
		Player, Maze, Server, Viewer, Bot = p, m, s, v, b
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	f := File{Player: Player, Maze: Maze, Server: Server, Viewer: Viewer, Bot: Bot}
	if err := f.Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	restoreGlobals(t)
	path := writeFile(t, "mazecrawl.yaml", `
maze:
  width: 6
  connected: true
server:
  port: 9000
  session_ttl: 5m
player:
  move_speed: 0.2
`)
	if err := Load(path, ""); err != nil {
		t.Fatal(err)
	}
	if Maze.Width != 6 || Maze.Height != 10 || !Maze.Connected {
		t.Fatalf("unexpected maze config %+v", Maze)
	}
	if Server.Port != 9000 || Server.SessionTTL != 5*time.Minute || Server.TickRate != 20 {
		t.Fatalf("unexpected server config %+v", Server)
	}
	if Player.MoveSpeed != 0.2 || Player.RoomSize != 10 {
		t.Fatalf("unexpected player config %+v", Player)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	restoreGlobals(t)
	path := writeFile(t, "mazecrawl.yaml", "maze:\n  width: 6\n")
	env := writeFile(t, ".env", "MAZECRAWL_SEED=1234\n")
	t.Setenv("MAZECRAWL_MAZE_WIDTH", "8")
	t.Setenv("MAZECRAWL_SEED", "")
	os.Unsetenv("MAZECRAWL_SEED")

	if err := Load(path, env); err != nil {
		t.Fatal(err)
	}
	if Maze.Width != 8 {
		t.Fatalf("expected env width 8, got %d", Maze.Width)
	}
	if Maze.Seed != 1234 {
		t.Fatalf("expected seed from env file, got %d", Maze.Seed)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	restoreGlobals(t)
	if err := Load("", filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	restoreGlobals(t)
	before := Maze
	path := writeFile(t, "bad.yaml", "maze:\n  width: 0\n")
	if err := Load(path, ""); err == nil {
		t.Fatal("expected validation error")
	}
	if Maze != before {
		t.Fatal("globals changed after a failed load")
	}

	t.Setenv("MAZECRAWL_TICKRATE", "fast")
	if err := Load("", ""); err == nil {
		t.Fatal("expected parse error for MAZECRAWL_TICKRATE")
	}
}

func TestMazeOptions(t *testing.T) {
	c := MazeConfig{DoorThreshold: 0.4}
	if n := len(c.Options()); n != 1 {
		t.Fatalf("expected 1 option, got %d", n)
	}
	c.Seed, c.Connected = 5, true
	if n := len(c.Options()); n != 3 {
		t.Fatalf("expected 3 options, got %d", n)
	}
}
