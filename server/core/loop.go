package core

import (
	"log"
	"sync"
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
)

// slowTickLogEvery limits how often overrunning ticks are reported.
const slowTickLogEvery = 100

// GameLoop drives the server at a fixed network tick rate. Each tick steps
// every crawler and then pushes a snapshot to the clients.
type GameLoop struct {
	server   *Server
	interval time.Duration
	stopOnce sync.Once
	stopChan chan struct{}

	ticks     uint64
	slowTicks uint64
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		interval: time.Second / time.Duration(tickRate),
		stopChan: make(chan struct{}),
	}
}

// Run blocks until Stop is called.
func (g *GameLoop) Run() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	log.Printf("[server] game loop started, one tick every %v", g.interval)

	for {
		select {
		case <-g.stopChan:
			log.Printf("[server] game loop stopped after %d ticks (%d over budget)", g.ticks, g.slowTicks)
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// Stop ends Run. Calling it more than once is harmless.
func (g *GameLoop) Stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
}

func (g *GameLoop) tick() {
	start := time.Now()
	g.ticks++

	g.server.update()
	if err := srvsync.DoSync(); err != nil {
		log.Printf("[server] sync error: %v", err)
	}

	if took := time.Since(start); took > g.interval {
		g.slowTicks++
		if g.slowTicks%slowTickLogEvery == 1 {
			log.Printf("[server] tick %d took %v, budget %v (%d slow so far)", g.ticks, took, g.interval, g.slowTicks)
		}
	}
}
