package messages

import "github.com/leap-fish/necs/esync"

// PresenceEntry is one player seen in a room.
type PresenceEntry struct {
	NetworkID esync.NetworkId
	Name      string
	X, Z      float64
}

// RoomPresence is sent to every client in a room whenever its occupants change.
type RoomPresence struct {
	RoomX, RoomY int
	Players      []PresenceEntry
}

// PlayerJoinedRoom is sent to the occupants of a room someone walked into.
type PlayerJoinedRoom struct {
	NetworkID    esync.NetworkId
	Name         string
	RoomX, RoomY int
}

// PlayerLeftRoom is sent to the occupants of a room someone walked out of.
type PlayerLeftRoom struct {
	NetworkID    esync.NetworkId
	RoomX, RoomY int
}

// MoveRejected is sent when the server refused a room transition.
type MoveRejected struct {
	Code    string
	Message string
}

// QuizAnswer is sent by a client answering the quiz of its current room.
type QuizAnswer struct {
	Index int
}

// QuizResult is the server's verdict on a QuizAnswer.
type QuizResult struct {
	Correct         bool
	CooldownSeconds int
	Error           string
}

// TrapSprung tells a player it set off the trap of the room it walked into.
type TrapSprung struct {
	Kind    string
	Seconds int
	Message string
}

// UsePortal asks the server to teleport the player to a random room.
type UsePortal struct{}

// QuizPrompt is a quiz as shown to players, without the correct option.
type QuizPrompt struct {
	ID       string
	Question string
	Options  []string
}

// RoomLocks is sent to a player whenever it enters a room, describing the
// locks holding its doors. Locked is false when every door is free.
type RoomLocks struct {
	RoomX, RoomY int
	Locked       bool
	Seconds      int // remaining on a timer lock, 0 when none
	Quiz         *QuizPrompt
}
