package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Client manages a WebSocket connection to the crawl server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state      ClientState
	lastError  error
	networkID  esync.NetworkId
	serverName string
	tickRate   int
	mazeSize   provider.Size
	conn       *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
	presenceCh chan messages.RoomPresence
	locksCh    chan messages.RoomLocks

	joinedCh   chan messages.PlayerJoinedRoom
	leftCh     chan messages.PlayerLeftRoom
	rejectedCh chan messages.MoveRejected
	quizCh     chan messages.QuizResult
	trapCh     chan messages.TrapSprung
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		presenceCh: make(chan messages.RoomPresence, 1),
		locksCh:    make(chan messages.RoomLocks, 1),
		joinedCh:   make(chan messages.PlayerJoinedRoom, 8),
		leftCh:     make(chan messages.PlayerLeftRoom, 8),
		rejectedCh: make(chan messages.MoveRejected, 4),
		quizCh:     make(chan messages.QuizResult, 4),
		trapCh:     make(chan messages.TrapSprung, 4),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: networkID=%d server=%s tickRate=%d maze=%dx%d",
			msg.NetworkID, msg.ServerName, msg.TickRate, msg.MazeWidth, msg.MazeHeight)
		c.mu.Lock()
		c.networkID = msg.NetworkID
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.mazeSize = provider.Size{Width: msg.MazeWidth, Height: msg.MazeHeight}
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		pushLatest(c.snapshotCh, snapshot)
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomPresence) {
		pushLatest(c.presenceCh, msg)
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomLocks) {
		pushLatest(c.locksCh, msg)
	})

	router.On(func(_ *router.NetworkClient, evt messages.PlayerJoinedRoom) {
		pushOrDrop(c.joinedCh, evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.PlayerLeftRoom) {
		pushOrDrop(c.leftCh, evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.MoveRejected) {
		log.Printf("[client] move rejected: %s %s", evt.Code, evt.Message)
		pushOrDrop(c.rejectedCh, evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.QuizResult) {
		pushOrDrop(c.quizCh, evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.TrapSprung) {
		log.Printf("[client] trap sprung: %s", evt.Kind)
		pushOrDrop(c.trapCh, evt)
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) NetworkID() esync.NetworkId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// MazeSize is known once the join was accepted.
func (c *Client) MazeSize() (provider.Size, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mazeSize, c.state == StateJoinedGame
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

// LatestPresence returns the newest occupant list of the local player's room,
// or nil when none arrived since the last call. Non-blocking.
func (c *Client) LatestPresence() *messages.RoomPresence {
	select {
	case p := <-c.presenceCh:
		return &p
	default:
		return nil
	}
}

// LatestLocks returns the lock description of the last room entered, or nil
// when none arrived since the last call. Non-blocking.
func (c *Client) LatestLocks() *messages.RoomLocks {
	select {
	case l := <-c.locksCh:
		return &l
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// SendInput sends one input message once the join was accepted.
func (c *Client) SendInput(input messages.PlayerInput) error {
	if c.State() != StateJoinedGame {
		return nil
	}
	return c.SendMessage(input)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainJoinedEvents returns all pending arrivals in the local player's room, non-blocking.
func (c *Client) DrainJoinedEvents() []messages.PlayerJoinedRoom {
	return drainChan(c.joinedCh)
}

// DrainLeftEvents returns all pending departures from the local player's room, non-blocking.
func (c *Client) DrainLeftEvents() []messages.PlayerLeftRoom {
	return drainChan(c.leftCh)
}

// DrainRejections returns all pending move rejections, non-blocking.
func (c *Client) DrainRejections() []messages.MoveRejected {
	return drainChan(c.rejectedCh)
}

// DrainQuizResults returns all pending quiz verdicts, non-blocking.
func (c *Client) DrainQuizResults() []messages.QuizResult {
	return drainChan(c.quizCh)
}

// DrainTraps returns all pending trap notices, non-blocking.
func (c *Client) DrainTraps() []messages.TrapSprung {
	return drainChan(c.trapCh)
}

// pushLatest replaces whatever is buffered in a size-1 channel with v.
func pushLatest[T any](ch chan T, v T) {
	select { // drain stale, push latest
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

func pushOrDrop[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
