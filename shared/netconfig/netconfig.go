// Package netconfig defines lightweight values shared between client and
// server for the wire protocol. It must have zero dependencies on ebiten or
// any graphics library so the dedicated server binary stays headless.
package netconfig

// ProtocolVersion is bumped whenever a message or synced component changes shape.
const ProtocolVersion = "mazecrawl/1"

// MaxNameLength bounds player display names.
const MaxNameLength = 24

// REST routes of the session API. Room routes take {x} and {y} path values.
const (
	RouteHealth     = "/health"
	RouteStart      = "/api/maze/start"
	RouteMove       = "/api/maze/move"
	RouteCurrent    = "/api/maze/current"
	RouteVisited    = "/api/maze/visited"
	RoutePortal     = "/api/maze/use-portal"
	RouteDoorStatus = "/api/room/{x}/{y}/door-status"
	RouteQuizAnswer = "/api/room/{x}/{y}/quiz-answer"
)

// EntryDoorParam is the query parameter naming the wall the player came in through.
const EntryDoorParam = "entry_door"

// Error codes of quiz answers, alongside the provider's move codes.
const (
	CodeCooldown = "COOLDOWN"
	CodeNoQuiz   = "NO_QUIZ"
)

// SessionParam is the query fallback for the bearer session token.
const SessionParam = "session_token"
