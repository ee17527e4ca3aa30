package game

import (
	"time"

	"github.com/maxhemmerich/dominion/internal/game/core"
)

// Phase is the match lifecycle stage. Transitions are monotonic:
// lobby -> playing -> ended, with no reverse edge.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// Player is one roster entry. TerritoriesOwned and TotalTroops are cached
// aggregates, recomputed from the territories after every mutation rather
// than updated incrementally. Alive is derived: TerritoriesOwned > 0.
// Eliminated players stay on the roster; turn rotation skips them.
type Player struct {
	ID               string
	Name             string
	Color            string
	IsAI             bool
	Alive            bool
	TerritoriesOwned int
	TotalTroops      int
}

// GetID implements rules.Player.
func (p *Player) GetID() string { return p.ID }

// IsAlive implements rules.Player.
func (p *Player) IsAlive() bool { return p.Alive }

// GameState is the aggregate root for one match. Territory index equals
// territory id; player insertion order is turn order. The engine is the
// sole mutator; everything else gets a read-only view or a snapshot.
type GameState struct {
	Territories     []core.Territory
	Players         []Player
	Turn            int
	TurnStarted     time.Time
	TurnTimeLimit   time.Duration
	Phase           Phase
	Winner          string
	MapWidth        int
	MapHeight       int
	TerritoryTarget int
}
