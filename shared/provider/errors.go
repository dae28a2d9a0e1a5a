package provider

import (
	"errors"
	"fmt"
)

// Code classifies a failed move. The string values are the wire codes.
type Code string

const (
	CodeNoDoor       Code = "NO_DOOR"
	CodeOutOfBounds  Code = "OUT_OF_BOUNDS"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeLocked       Code = "LOCKED"
	CodeNoSession    Code = "NO_SESSION"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNoPortal     Code = "NO_PORTAL"
	CodeFrozen       Code = "FROZEN"
)

var (
	ErrNoDoor       = errors.New("no door in that direction")
	ErrOutOfBounds  = errors.New("destination is outside the maze")
	ErrNetwork      = errors.New("room server unreachable")
	ErrLocked       = errors.New("door is locked")
	ErrNoSession    = errors.New("no active session")
	ErrInvalidInput = errors.New("invalid request")
	ErrNoPortal     = errors.New("no portal in current room")
	ErrFrozen       = errors.New("player is frozen")
)

var sentinels = map[Code]error{
	CodeNoDoor:       ErrNoDoor,
	CodeOutOfBounds:  ErrOutOfBounds,
	CodeNetwork:      ErrNetwork,
	CodeLocked:       ErrLocked,
	CodeNoSession:    ErrNoSession,
	CodeInvalidInput: ErrInvalidInput,
	CodeNoPortal:     ErrNoPortal,
	CodeFrozen:       ErrFrozen,
}

// MoveError is the distinguishable failure of a provider call.
type MoveError struct {
	Code    Code   `json:"error"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func NewMoveError(code Code, msg string) *MoveError {
	return &MoveError{Code: code, Message: msg}
}

func (e *MoveError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

// Is matches the sentinel for the error's code, so errors.Is(err, ErrNoDoor) works.
func (e *MoveError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of a *MoveError in err's chain, or "".
func CodeOf(err error) Code {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}
