package doorlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/automoto/mazecrawl/shared/maze"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestOverlay_NoStatusPermitsAll(t *testing.T) {
	o := NewOverlay()
	for _, d := range maze.Directions {
		if !o.Permits(d) {
			t.Errorf("expected %s permitted", d)
		}
	}
}

func TestOverlay_TimerLock(t *testing.T) {
	o := NewOverlay()
	o.Enter(Status{Locks: []Lock{
		{Direction: maze.East, Kind: KindTimer, Seconds: 5},
		{Direction: maze.West, Kind: KindTimer, Seconds: 5},
	}}, maze.West, t0)

	if o.Permits(maze.East) {
		t.Fatal("east should be locked")
	}
	if !o.Permits(maze.West) {
		t.Fatal("entry door must stay open")
	}
	if !o.Permits(maze.North) {
		t.Fatal("unlocked door should be permitted")
	}
	if got := o.Remaining(t0.Add(2 * time.Second)); got != 3*time.Second {
		t.Fatalf("Remaining = %v, want 3s", got)
	}
	if o.Advance(t0.Add(4 * time.Second)) {
		t.Fatal("timer fired early")
	}
	if !o.Advance(t0.Add(5 * time.Second)) {
		t.Fatal("timer did not fire")
	}
	if !o.Permits(maze.East) || o.Locked() {
		t.Fatal("doors should be open after the timer")
	}
	if o.Advance(t0.Add(6 * time.Second)) {
		t.Fatal("Advance must report the unlock only once")
	}
}

func TestOverlay_DefaultTimer(t *testing.T) {
	o := NewOverlay()
	o.Start(Status{Locks: []Lock{{Direction: maze.South, Kind: KindTimer}}}, t0)
	if got := o.Remaining(t0); got != DefaultTimerSeconds*time.Second {
		t.Fatalf("Remaining = %v", got)
	}
}

func TestOverlay_Quiz(t *testing.T) {
	q := &Quiz{ID: "q1", Question: "2+2?", Options: []string{"3", "4"}, Correct: 1}
	o := NewOverlay()
	o.Enter(Status{Locks: []Lock{{Direction: maze.North, Kind: KindQuiz, Quiz: q}}}, maze.South, t0)

	ok, err := o.Answer(0, t0)
	if err != nil || ok {
		t.Fatalf("wrong answer: got %v, %v", ok, err)
	}
	if _, err := o.Answer(1, t0.Add(9*time.Second)); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}
	if o.Permits(maze.North) {
		t.Fatal("north should still be locked")
	}
	ok, err = o.Answer(1, t0.Add(10*time.Second))
	if err != nil || !ok {
		t.Fatalf("right answer: got %v, %v", ok, err)
	}
	if !o.Permits(maze.North) {
		t.Fatal("north should open after a correct answer")
	}
	if _, err := o.Answer(1, t0.Add(11*time.Second)); !errors.Is(err, ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz once unlocked, got %v", err)
	}
}

func TestOverlay_LeaveClears(t *testing.T) {
	o := NewOverlay()
	o.Start(Status{Locks: []Lock{{Direction: maze.East, Kind: KindTimer}}}, t0)
	o.Leave()
	if !o.Permits(maze.East) {
		t.Fatal("expected all doors permitted after Leave")
	}
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{}
	src.Add(1, 1, Lock{Direction: maze.East, Kind: KindTimer})
	src.Add(1, 1, Lock{Direction: maze.West, Kind: KindQuiz, Quiz: &Quiz{ID: "a", Correct: 2}})

	st, err := src.DoorStatus(context.Background(), 1, 1, maze.West)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Locks) != 1 || st.Locks[0].Direction != maze.East {
		t.Fatalf("expected only the east lock, got %+v", st.Locks)
	}

	correct, idx, err := src.CheckAnswer(1, 1, "a", 2)
	if err != nil || !correct || idx != 2 {
		t.Fatalf("CheckAnswer = %v, %d, %v", correct, idx, err)
	}
	if _, _, err := src.CheckAnswer(0, 0, "", 0); !errors.Is(err, ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("quiz"); err != nil || k != KindQuiz {
		t.Fatalf("ParseKind(quiz) = %v, %v", k, err)
	}
	if _, err := ParseKind("laser"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
