package core

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/mazedata"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
	"github.com/google/uuid"
)

// apiSession is one REST crawl. Its lock overlay and trap status mirror what
// the client sees so locked doors and frozen moves are refused here too.
type apiSession struct {
	Token    string
	rooms    *provider.Local
	locks    *doorlock.Overlay
	traps    trap.Status
	lastSeen time.Time
	mu       sync.Mutex
}

// Sessions is an in-memory store of REST sessions with TTL-based expiry.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*apiSession
	maze     *maze.Maze
	lockSrc  doorlock.StaticSource
	traps    *trap.Set
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessions starts the cleanup loop when interval is positive. Every
// session crawls the layout's maze and shares its traps.
func NewSessions(l *mazedata.Layout, ttl, interval time.Duration) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*apiSession),
		maze:     l.Maze,
		lockSrc:  l.Locks,
		traps:    l.Traps,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	if interval > 0 {
		go s.cleanupLoop(interval)
	}
	return s
}

func (s *Sessions) Stop() {
	close(s.stopCh)
}

// Start opens a session in the maze's start room.
func (s *Sessions) Start() *apiSession {
	sess := &apiSession{
		Token:    uuid.NewString(),
		rooms:    provider.NewLocal(s.maze, provider.WithTraps(s.traps)),
		locks:    doorlock.NewOverlay(),
		lastSeen: s.now(),
	}
	start := sess.rooms.Position()
	st, _ := s.lockSrc.DoorStatus(context.Background(), start.X, start.Y, doorlock.NoEntry)
	sess.locks.Start(st, s.now())

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a live session and marks it as seen.
func (s *Sessions) Get(token string) (*apiSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// expire drops sessions idle for at least the TTL and returns how many.
func (s *Sessions) expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for token, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			log.Printf("[api] expired session %s (last seen %s ago)",
				token, now.Sub(sess.lastSeen).Round(time.Second))
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

func (s *Sessions) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.expire()
		}
	}
}
