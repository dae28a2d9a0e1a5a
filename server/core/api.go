package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/mazedata"
	"github.com/automoto/mazecrawl/shared/netconfig"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/shared/trap"
	"github.com/gorilla/mux"
)

const maxRequestBody = 1 << 16 // 64 KB

type startResponse struct {
	SessionToken string            `json:"session_token"`
	Room         provider.RoomData `json:"room"`
	MazeSize     provider.Size     `json:"maze_size"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type moveResponse struct {
	Success bool              `json:"success"`
	Room    provider.RoomData `json:"room"`
	Trap    *trap.Effect      `json:"trap,omitempty"`
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
	CooldownSeconds int  `json:"cooldown_seconds,omitempty"`
}

// API serves the session REST routes over the hosted maze.
type API struct {
	sessions *Sessions
	maze     *maze.Maze
	locks    doorlock.StaticSource
}

func NewAPI(sessions *Sessions, l *mazedata.Layout) *API {
	return &API{
		sessions: sessions,
		maze:     l.Maze,
		locks:    l.Locks,
	}
}

// Routes returns the router with every session route mounted.
func (a *API) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(jsonHeaders)

	r.HandleFunc(netconfig.RouteHealth, a.health).Methods(http.MethodGet)
	r.HandleFunc(netconfig.RouteStart, a.start).Methods(http.MethodPost)
	r.HandleFunc(netconfig.RouteMove, a.withSession(a.move)).Methods(http.MethodPost)
	r.HandleFunc(netconfig.RouteCurrent, a.withSession(a.current)).Methods(http.MethodGet)
	r.HandleFunc(netconfig.RouteVisited, a.withSession(a.visited)).Methods(http.MethodGet)
	r.HandleFunc(netconfig.RoutePortal, a.withSession(a.portal)).Methods(http.MethodPost)
	r.HandleFunc(netconfig.RouteDoorStatus, a.doorStatus).Methods(http.MethodGet)
	r.HandleFunc(netconfig.RouteQuizAnswer, a.withSession(a.quizAnswer)).Methods(http.MethodPost)
	return r
}

func jsonHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *apiSession)

// withSession resolves the bearer token, falling back to the session_token
// query parameter, and serializes requests of the same session.
func (a *API) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get(netconfig.SessionParam)
		}
		sess, ok := a.sessions.Get(token)
		if !ok {
			writeError(w, provider.NewMoveError(provider.CodeNoSession, "invalid or expired session"))
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		h(w, r, sess)
	}
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": a.sessions.Len()})
}

func (a *API) start(w http.ResponseWriter, r *http.Request) {
	sess := a.sessions.Start()
	room, err := sess.rooms.CurrentRoom(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[api] started session %s", sess.Token)
	writeJSON(w, http.StatusCreated, startResponse{
		SessionToken: sess.Token,
		Room:         room,
		MazeSize:     provider.Size{Width: a.maze.Width, Height: a.maze.Height},
	})
}

func (a *API) move(w http.ResponseWriter, r *http.Request, sess *apiSession) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, "invalid json"))
		return
	}
	d, err := maze.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, err.Error()))
		return
	}

	now := a.sessions.now()
	if sess.traps.Frozen(now) {
		left := cooldownSeconds(sess.traps.FrozenUntil.Sub(now))
		writeError(w, provider.NewMoveError(provider.CodeFrozen, fmt.Sprintf("you are frozen for another %ds", left)))
		return
	}
	sess.locks.Advance(now)
	if !sess.locks.Permits(d) {
		writeError(w, provider.NewMoveError(provider.CodeLocked, "the "+d.String()+" door is locked"))
		return
	}

	res, err := sess.rooms.MoveToRoom(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	entry := d.Opposite()
	if res.Trap != nil {
		sess.traps.Apply(*res.Trap, now)
		log.Printf("[api] session %s sprung a %s trap in %s", sess.Token, res.Trap.Kind, res.Room.Coord())
		if res.Trap.TeleportTo != nil {
			entry = doorlock.NoEntry
		}
	}
	st, _ := a.locks.DoorStatus(r.Context(), res.Room.X, res.Room.Y, entry)
	if entry == doorlock.NoEntry {
		sess.locks.Start(st, now)
	} else {
		sess.locks.Enter(st, entry, now)
	}

	writeJSON(w, http.StatusOK, moveResponse{Success: true, Room: res.Room, Trap: res.Trap})
}

func (a *API) current(w http.ResponseWriter, r *http.Request, sess *apiSession) {
	room, err := sess.rooms.CurrentRoom(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (a *API) visited(w http.ResponseWriter, _ *http.Request, sess *apiSession) {
	writeJSON(w, http.StatusOK, visitedResponse{Rooms: sess.rooms.VisitedRooms()})
}

// portal teleports the session to a random room through the portal of its
// current room.
func (a *API) portal(w http.ResponseWriter, r *http.Request, sess *apiSession) {
	room, err := sess.rooms.UsePortal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	st, _ := a.locks.DoorStatus(r.Context(), room.X, room.Y, doorlock.NoEntry)
	sess.locks.Start(st, a.sessions.now())

	log.Printf("[api] session %s used a portal to %s", sess.Token, room.Coord())
	writeJSON(w, http.StatusOK, portalResponse{Success: true, TeleportedTo: room.Coord(), Room: room})
}

func (a *API) doorStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := a.roomVars(w, r)
	if !ok {
		return
	}
	entry := doorlock.NoEntry
	if v := r.URL.Query().Get(netconfig.EntryDoorParam); v != "" {
		d, err := maze.ParseDirection(v)
		if err != nil {
			writeError(w, provider.NewMoveError(provider.CodeInvalidInput, err.Error()))
			return
		}
		entry = d
	}
	st, err := a.locks.DoorStatus(r.Context(), c.X, c.Y, entry)
	if err != nil {
		writeError(w, err)
		return
	}
	if st.Locks == nil {
		st.Locks = []doorlock.Lock{}
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) quizAnswer(w http.ResponseWriter, r *http.Request, sess *apiSession) {
	c, ok := a.roomVars(w, r)
	if !ok {
		return
	}
	if c != sess.rooms.Position() {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, "not in room "+c.String()))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, "invalid json"))
		return
	}

	now := a.sessions.now()
	if q := sess.locks.Quiz(); q != nil && req.QuestionID != "" && q.ID != req.QuestionID {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, "unknown question "+req.QuestionID))
		return
	}
	correct, err := sess.locks.Answer(req.AnswerIndex, now)
	switch {
	case errors.Is(err, doorlock.ErrCooldown):
		w.Header().Set("Retry-After", strconv.Itoa(cooldownSeconds(sess.locks.Cooldown(now))))
		writeJSON(w, http.StatusTooManyRequests, provider.MoveError{Code: netconfig.CodeCooldown, Message: err.Error()})
		return
	case errors.Is(err, doorlock.ErrNoQuiz):
		writeJSON(w, http.StatusNotFound, provider.MoveError{Code: netconfig.CodeNoQuiz, Message: err.Error()})
		return
	case err != nil:
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizAnswerResponse{
		Correct:         correct,
		CooldownSeconds: cooldownSeconds(sess.locks.Cooldown(now)),
	})
}

// roomVars parses and bounds-checks the {x} and {y} path values.
func (a *API) roomVars(w http.ResponseWriter, r *http.Request) (maze.Coord, bool) {
	vars := mux.Vars(r)
	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		writeError(w, provider.NewMoveError(provider.CodeInvalidInput, "room coordinates must be integers"))
		return maze.Coord{}, false
	}
	c := maze.Coord{X: x, Y: y}
	if !a.maze.InBounds(x, y) {
		writeError(w, provider.NewMoveError(provider.CodeOutOfBounds, "no room at "+c.String()))
		return maze.Coord{}, false
	}
	return c, true
}

func cooldownSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// statusFor maps a move code to its HTTP status.
func statusFor(code provider.Code) int {
	switch code {
	case provider.CodeNoDoor, provider.CodeOutOfBounds:
		return http.StatusConflict
	case provider.CodeLocked:
		return http.StatusLocked
	case provider.CodeNoSession:
		return http.StatusUnauthorized
	case provider.CodeInvalidInput, provider.CodeNoPortal:
		return http.StatusBadRequest
	case provider.CodeFrozen:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	var me *provider.MoveError
	if !errors.As(err, &me) {
		log.Printf("[api] internal error: %v", err)
		me = provider.NewMoveError(provider.CodeNetwork, "internal error")
	}
	writeJSON(w, statusFor(me.Code), me)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}
