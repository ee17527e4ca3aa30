package core

import "errors"

var (
	ErrUnknownTerritory   = errors.New("unknown territory id")
	ErrNotOwner           = errors.New("territory not owned by player")
	ErrOwnTarget          = errors.New("cannot attack own territory")
	ErrInsufficientTroops = errors.New("not enough troops to attack")
	ErrNotAdjacent        = errors.New("territories are not adjacent")
	ErrNotYourTurn        = errors.New("not this player's turn")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameOver           = errors.New("game is over")
)
