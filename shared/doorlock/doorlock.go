// Package doorlock is the session-level overlay that can hold doors of the
// current room shut even though the maze has them open. The door the player
// came in through is never held.
package doorlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/automoto/mazecrawl/shared/maze"
)

// Kind is how a lock is opened.
type Kind string

const (
	KindTimer Kind = "timer"
	KindQuiz  Kind = "quiz"
)

// NoEntry is passed as the entry door for the spawn room.
const NoEntry = maze.Direction(-1)

const (
	DefaultTimerSeconds = 10
	QuizCooldownSeconds = 10
)

var (
	ErrCooldown    = errors.New("quiz is cooling down after a wrong answer")
	ErrNoQuiz      = errors.New("room has no quiz lock")
	ErrUnknownKind = errors.New("unknown lock kind")
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTimer, KindQuiz:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Quiz is a multiple choice question. Correct is never sent to clients.
type Quiz struct {
	ID       string   `json:"question_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"-"`
}

// Lock holds one door shut.
type Lock struct {
	Direction maze.Direction `json:"direction"`
	Kind      Kind           `json:"lock_type"`
	Seconds   int            `json:"remaining_seconds,omitempty"`
	Quiz      *Quiz          `json:"quiz,omitempty"`
}

// Status is the lock set of one room as seen from a given entry door.
type Status struct {
	Locks []Lock `json:"doors"`
}

// Lock returns the lock on door d, if any.
func (s Status) Lock(d maze.Direction) (Lock, bool) {
	for _, l := range s.Locks {
		if l.Direction == d {
			return l, true
		}
	}
	return Lock{}, false
}

func (s Status) Empty() bool {
	return len(s.Locks) == 0
}

// Source serves per-room lock status. entry may be NoEntry.
type Source interface {
	DoorStatus(ctx context.Context, x, y int, entry maze.Direction) (Status, error)
}

// Grader checks quiz answers on behalf of clients that do not hold the
// correct option, such as a remote session.
type Grader interface {
	AnswerQuiz(ctx context.Context, x, y int, questionID string, idx int) (correct bool, cooldown time.Duration, err error)
}

// StaticSource is an in-memory lock table, loaded from authored maps or built in tests.
type StaticSource map[maze.Coord][]Lock

// Add appends a lock to a room.
func (s StaticSource) Add(x, y int, l Lock) {
	c := maze.Coord{X: x, Y: y}
	s[c] = append(s[c], l)
}

// DoorStatus returns the room's locks minus any lock on the entry door.
func (s StaticSource) DoorStatus(_ context.Context, x, y int, entry maze.Direction) (Status, error) {
	var st Status
	for _, l := range s[maze.Coord{X: x, Y: y}] {
		if l.Direction == entry {
			continue
		}
		st.Locks = append(st.Locks, l)
	}
	return st, nil
}

// CheckAnswer grades a quiz answer for a room. It returns the correct index
// so a wrong answer can be revealed.
func (s StaticSource) CheckAnswer(x, y int, questionID string, idx int) (correct bool, correctIdx int, err error) {
	for _, l := range s[maze.Coord{X: x, Y: y}] {
		if l.Kind != KindQuiz || l.Quiz == nil {
			continue
		}
		if questionID != "" && l.Quiz.ID != questionID {
			continue
		}
		return idx == l.Quiz.Correct, l.Quiz.Correct, nil
	}
	return false, 0, ErrNoQuiz
}
