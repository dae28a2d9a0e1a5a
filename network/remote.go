package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/netconfig"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
)

// DefaultTimeout bounds every session API request.
const DefaultTimeout = 5 * time.Second

// Remote is a room provider and lock source backed by the session REST API.
// The session is opened lazily by the first call that needs it.
type Remote struct {
	baseURL string
	client  *http.Client

	mu      sync.RWMutex
	token   string
	current provider.RoomData
	size    provider.Size
	hasSize bool
	visited map[maze.Coord]provider.RoomData
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		visited: make(map[maze.Coord]provider.RoomData),
	}
}

type startResponse struct {
	SessionToken string            `json:"session_token"`
	Room         provider.RoomData `json:"room"`
	MazeSize     provider.Size     `json:"maze_size"`
}

type moveResponse struct {
	Success bool              `json:"success"`
	Room    provider.RoomData `json:"room"`
	Trap    *trap.Effect      `json:"trap"`
}

type portalResponse struct {
	Success      bool              `json:"success"`
	TeleportedTo maze.Coord        `json:"teleported_to"`
	Room         provider.RoomData `json:"room"`
}

type visitedResponse struct {
	Rooms []provider.RoomData `json:"rooms"`
}

type quizAnswerRequest struct {
	QuestionID  string `json:"question_id"`
	AnswerIndex int    `json:"answer_index"`
}

type quizAnswerResponse struct {
	Correct         bool `json:"correct"`
	CooldownSeconds int  `json:"cooldown_seconds"`
}

// Token returns the session token, or "" before the session is opened.
func (r *Remote) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.token
}

func (r *Remote) ensureSession(ctx context.Context) error {
	if r.Token() != "" {
		return nil
	}
	var res startResponse
	if err := r.do(ctx, http.MethodPost, netconfig.RouteStart, nil, &res); err != nil {
		return err
	}
	if res.SessionToken == "" {
		return &provider.MoveError{Code: provider.CodeNetwork, Message: "server returned no session token"}
	}

	r.mu.Lock()
	r.token = res.SessionToken
	r.size, r.hasSize = res.MazeSize, res.MazeSize.Width > 0 && res.MazeSize.Height > 0
	r.enterLocked(res.Room)
	r.mu.Unlock()
	return nil
}

func (r *Remote) StartPosition(ctx context.Context) (maze.Coord, error) {
	if err := r.ensureSession(ctx); err != nil {
		return maze.Coord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Coord(), nil
}

func (r *Remote) CurrentRoom(ctx context.Context) (provider.RoomData, error) {
	if err := r.ensureSession(ctx); err != nil {
		return provider.RoomData{}, err
	}
	var room provider.RoomData
	if err := r.do(ctx, http.MethodGet, netconfig.RouteCurrent, nil, &room); err != nil {
		return provider.RoomData{}, err
	}
	r.mu.Lock()
	r.enterLocked(room)
	r.mu.Unlock()
	return room, nil
}

// MoveToRoom leaves the cached position untouched when the server refuses.
func (r *Remote) MoveToRoom(ctx context.Context, d maze.Direction) (provider.MoveResult, error) {
	if !d.Valid() {
		return provider.MoveResult{}, provider.NewMoveError(provider.CodeInvalidInput, "invalid direction")
	}
	if err := r.ensureSession(ctx); err != nil {
		return provider.MoveResult{}, err
	}
	var res moveResponse
	if err := r.do(ctx, http.MethodPost, netconfig.RouteMove, map[string]string{"direction": d.String()}, &res); err != nil {
		return provider.MoveResult{}, err
	}
	r.mu.Lock()
	r.enterLocked(res.Room)
	r.mu.Unlock()
	return provider.MoveResult{Room: res.Room, Trap: res.Trap}, nil
}

// UsePortal teleports the session to a random room. The server refuses with
// NO_PORTAL unless the current room holds a portal.
func (r *Remote) UsePortal(ctx context.Context) (provider.RoomData, error) {
	if err := r.ensureSession(ctx); err != nil {
		return provider.RoomData{}, err
	}
	var res portalResponse
	if err := r.do(ctx, http.MethodPost, netconfig.RoutePortal, nil, &res); err != nil {
		return provider.RoomData{}, err
	}
	r.mu.Lock()
	r.enterLocked(res.Room)
	r.mu.Unlock()
	return res.Room, nil
}

// MazeSize is known once the session is open.
func (r *Remote) MazeSize() (provider.Size, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size, r.hasSize
}

// VisitedRooms returns the locally cached visits in row-major order.
func (r *Remote) VisitedRooms() []provider.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]provider.RoomData, 0, len(r.visited))
	for _, room := range r.visited {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// SyncVisited replaces the cache with the server's visited list.
func (r *Remote) SyncVisited(ctx context.Context) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}
	var res visitedResponse
	if err := r.do(ctx, http.MethodGet, netconfig.RouteVisited, nil, &res); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.visited)
	for _, room := range res.Rooms {
		r.visited[room.Coord()] = room
	}
	return nil
}

func (r *Remote) enterLocked(room provider.RoomData) {
	r.current = room
	r.visited[room.Coord()] = room
}

// DoorStatus fetches the lock set of a room. entry may be doorlock.NoEntry.
func (r *Remote) DoorStatus(ctx context.Context, x, y int, entry maze.Direction) (doorlock.Status, error) {
	path := roomPath(netconfig.RouteDoorStatus, x, y)
	if entry.Valid() {
		path += "?" + url.Values{netconfig.EntryDoorParam: {entry.String()}}.Encode()
	}
	var st doorlock.Status
	if err := r.do(ctx, http.MethodGet, path, nil, &st); err != nil {
		return doorlock.Status{}, err
	}
	return st, nil
}

// AnswerQuiz has the server grade an answer; the client never holds the
// correct option.
func (r *Remote) AnswerQuiz(ctx context.Context, x, y int, questionID string, idx int) (bool, time.Duration, error) {
	if err := r.ensureSession(ctx); err != nil {
		return false, 0, err
	}
	var res quizAnswerResponse
	err := r.do(ctx, http.MethodPost, roomPath(netconfig.RouteQuizAnswer, x, y),
		quizAnswerRequest{QuestionID: questionID, AnswerIndex: idx}, &res)
	switch provider.CodeOf(err) {
	case "":
	case netconfig.CodeCooldown:
		return false, 0, doorlock.ErrCooldown
	case netconfig.CodeNoQuiz:
		return false, 0, doorlock.ErrNoQuiz
	default:
		return false, 0, err
	}
	return res.Correct, time.Duration(res.CooldownSeconds) * time.Second, nil
}

func roomPath(route string, x, y int) string {
	return strings.NewReplacer("{x}", strconv.Itoa(x), "{y}", strconv.Itoa(y)).Replace(route)
}

// do sends one request. Transport failures become NETWORK_ERROR; a refused
// request keeps the server's code.
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, rd)
	if err != nil {
		return &provider.MoveError{Code: provider.CodeNetwork, Message: "build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := r.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &provider.MoveError{Code: provider.CodeNetwork, Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var me provider.MoveError
		if err := json.NewDecoder(resp.Body).Decode(&me); err != nil || me.Code == "" {
			return &provider.MoveError{Code: provider.CodeNetwork, Message: fmt.Sprintf("unexpected status: %d", resp.StatusCode)}
		}
		return &me
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &provider.MoveError{Code: provider.CodeNetwork, Message: "decode response", Err: err}
	}
	return nil
}
