package rules

import "github.com/rs/zerolog"

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver determines if the game is over based on the number of alive players.
// Returns (isGameOver, winnerID); winnerID is empty on a draw.
func (wc *WinConditionChecker) CheckGameOver(players []Player) (bool, string) {
	aliveCount := 0
	var lastAliveID string

	for _, p := range players {
		if p.IsAlive() {
			aliveCount++
			lastAliveID = p.GetID()
		}
	}

	gameOver := aliveCount <= 1

	winnerID := ""
	if gameOver && aliveCount == 1 {
		winnerID = lastAliveID
		wc.logger.Info().Str("winner_player_id", winnerID).Msg("Winner determined")
	} else if gameOver {
		wc.logger.Info().Msg("No winner found (draw, all players eliminated)")
	}

	return gameOver, winnerID
}

// Player interface to avoid circular imports
type Player interface {
	GetID() string
	IsAlive() bool
}
