package doorlock

import (
	"time"

	"github.com/automoto/mazecrawl/shared/maze"
)

// Overlay tracks the lock state of the room the player is in. It satisfies
// kinematics.Gate. Not safe for concurrent use.
type Overlay struct {
	status   Status
	active   bool
	entry    maze.Direction
	hasEntry bool
	unlocked bool

	timing      bool
	timerEnd    time.Time
	cooldownEnd time.Time
}

func NewOverlay() *Overlay {
	return &Overlay{}
}

// Start loads the status of the spawn room, which has no entry door.
func (o *Overlay) Start(status Status, now time.Time) {
	o.Enter(status, NoEntry, now)
}

// Enter loads the status of a room entered through its entry wall. An
// invalid entry such as NoEntry exempts no door.
func (o *Overlay) Enter(status Status, entry maze.Direction, now time.Time) {
	o.reset()
	o.entry = entry
	o.hasEntry = entry.Valid()
	o.load(status, now)
}

func (o *Overlay) load(status Status, now time.Time) {
	o.status = status
	o.active = !status.Empty()
	for _, l := range status.Locks {
		if l.Kind != KindTimer {
			continue
		}
		secs := l.Seconds
		if secs <= 0 {
			secs = DefaultTimerSeconds
		}
		o.timing = true
		o.timerEnd = now.Add(time.Duration(secs) * time.Second)
		break
	}
}

// Leave drops all state; every door is permitted until the next Enter.
func (o *Overlay) Leave() {
	o.reset()
}

func (o *Overlay) reset() {
	*o = Overlay{}
}

// Permits reports whether door d may be used.
func (o *Overlay) Permits(d maze.Direction) bool {
	if !o.active || o.unlocked {
		return true
	}
	if o.hasEntry && d == o.entry {
		return true
	}
	_, locked := o.status.Lock(d)
	return !locked
}

// Locked reports whether any door is currently held shut.
func (o *Overlay) Locked() bool {
	return o.active && !o.unlocked
}

// Advance opens every door once a running timer has elapsed. It reports
// whether this call unlocked the room.
func (o *Overlay) Advance(now time.Time) bool {
	if !o.timing || o.unlocked || now.Before(o.timerEnd) {
		return false
	}
	o.timing = false
	o.unlocked = true
	return true
}

// Remaining returns the time left on the timer lock, or 0.
func (o *Overlay) Remaining(now time.Time) time.Duration {
	if !o.timing || o.unlocked {
		return 0
	}
	if d := o.timerEnd.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Quiz returns the question of the first quiz lock, or nil.
func (o *Overlay) Quiz() *Quiz {
	if !o.Locked() {
		return nil
	}
	for _, l := range o.status.Locks {
		if l.Kind == KindQuiz && l.Quiz != nil {
			return l.Quiz
		}
	}
	return nil
}

// Answer grades an answer against the locally held quiz. A wrong answer
// starts the cooldown.
func (o *Overlay) Answer(idx int, now time.Time) (bool, error) {
	if now.Before(o.cooldownEnd) {
		return false, ErrCooldown
	}
	q := o.Quiz()
	if q == nil {
		return false, ErrNoQuiz
	}
	correct := idx == q.Correct
	o.ApplyAnswer(correct, 0, now)
	return correct, nil
}

// ApplyAnswer records a verdict graded elsewhere, such as by the room server.
// A zero cooldown uses QuizCooldownSeconds.
func (o *Overlay) ApplyAnswer(correct bool, cooldown time.Duration, now time.Time) {
	if correct {
		o.unlocked = true
		o.timing = false
		return
	}
	if cooldown <= 0 {
		cooldown = QuizCooldownSeconds * time.Second
	}
	o.cooldownEnd = now.Add(cooldown)
}

// Cooldown returns how long until another answer is accepted.
func (o *Overlay) Cooldown(now time.Time) time.Duration {
	if d := o.cooldownEnd.Sub(now); d > 0 {
		return d
	}
	return 0
}
