package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/server/core"
	"github.com/automoto/mazecrawl/shared/protocol"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "Env file with MAZECRAWL_* overrides")
	assetsDir := flag.String("assets", "assets", "Directory holding the layout directory")
	port := flag.Uint("port", config.Server.Port, "Server port")
	tickRate := flag.Int("tickrate", config.Server.TickRate, "Server tick rate (updates per second)")
	name := flag.String("name", config.Server.Name, "Server display name")
	version := flag.String("version", config.Server.Version, "Required client version (empty = accept any)")
	apiAddr := flag.String("api", config.Server.APIAddr, "Session API listen address (empty disables)")
	bots := flag.Int("bots", config.Server.Bots, "Number of wandering bots")
	layout := flag.String("layout", config.Maze.Layout, "TMX layout name (empty generates a maze)")
	seed := flag.Int64("seed", config.Maze.Seed, "Maze seed (0 = time based)")
	flag.Parse()

	if err := config.Load(*configPath, *envFile); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Server.Port = *port
		case "tickrate":
			config.Server.TickRate = *tickRate
		case "name":
			config.Server.Name = *name
		case "version":
			config.Server.Version = *version
		case "api":
			config.Server.APIAddr = *apiAddr
		case "bots":
			config.Server.Bots = *bots
		case "layout":
			config.Maze.Layout = *layout
		case "seed":
			config.Maze.Seed = *seed
		}
	})
	if config.Server.TickRate <= 0 {
		log.Fatalf("Tick rate must be positive, got %d", config.Server.TickRate)
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	l, err := core.LoadLayout(config.Maze, *assetsDir)
	if err != nil {
		log.Fatalf("Failed to load maze: %v", err)
	}

	server := core.NewServer(config.Server, config.Player, l)
	if config.Server.Bots > 0 {
		if err := server.AddBots(config.Server.Bots, config.Bot); err != nil {
			log.Fatalf("Failed to add bots: %v", err)
		}
	}

	var api *http.Server
	var sessions *core.Sessions
	if config.Server.APIAddr != "" {
		sessions = core.NewSessions(l, config.Server.SessionTTL, config.Server.CleanupInterval)
		api = &http.Server{
			Addr:              config.Server.APIAddr,
			Handler:           core.NewAPI(sessions, l).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("[api] listening on %s", api.Addr)
			if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("API server error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		if api != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = api.Shutdown(ctx)
			cancel()
			sessions.Stop()
		}
		os.Exit(0)
	}()

	log.Printf("Starting mazecrawl server %q on port %d (tick rate: %d/s, version: %s, maze: %s %dx%d)",
		config.Server.Name, config.Server.Port, config.Server.TickRate, config.Server.Version,
		l.Name, l.Maze.Width, l.Maze.Height)
	if err := server.Start(config.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
