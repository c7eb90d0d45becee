package maze

import "errors"

// Generation errors
var (
	ErrNoStations        = errors.New("station counts must sum to at least one")
	ErrUnreachableLayout = errors.New("could not generate a fully connected board")
)

// Session errors. Unknown ids are integration bugs in the caller, distinct
// from user-facing "not found" outcomes.
var (
	ErrStationNotFound  = errors.New("station not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerNotPlaced  = errors.New("player is not on any station")
	ErrNoCurrentPlayer  = errors.New("current player is not set")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrGameInProgress   = errors.New("game already in progress")
)
