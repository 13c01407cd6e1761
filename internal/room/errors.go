package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room full")
	ErrNotInRoom        = errors.New("not in a room")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNoCodeAvailable  = errors.New("no room code available")
	ErrInvalidCodeRange = errors.New("invalid room code range")
)
