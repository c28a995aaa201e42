package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room full")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrEmptyGuess       = errors.New("empty guess")
	ErrSampling         = errors.New("word sampling failed")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotInRoom        = errors.New("connection is not in a room")
	ErrNotDrawer        = errors.New("only the drawer can choose a word")
	ErrInvalidWord      = errors.New("word was not offered")
	ErrBadRequest       = errors.New("malformed event")
)

// errorCode maps an error onto the code sent to clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "roomNotFound"
	case errors.Is(err, ErrRoomFull):
		return "roomFull"
	case errors.Is(err, ErrInvalidSettings):
		return "invalidSettings"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "notEnoughPlayers"
	case errors.Is(err, ErrGameInProgress):
		return "gameInProgress"
	case errors.Is(err, ErrNotInRoom):
		return "notInRoom"
	case errors.Is(err, ErrNotDrawer):
		return "notDrawer"
	case errors.Is(err, ErrInvalidWord):
		return "invalidWord"
	case errors.Is(err, ErrBadRequest):
		return "badRequest"
	default:
		return "internal"
	}
}
