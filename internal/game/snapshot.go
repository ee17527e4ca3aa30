package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/game/core"
)

// SnapshotVersion tags the wire schema. Deserialization rejects any
// other version.
const SnapshotVersion = 1

// ErrInvalidSnapshot is the distinct error kind for malformed snapshots;
// concrete causes wrap it.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// TerritorySnapshot is the wire form of one territory.
type TerritorySnapshot struct {
	ID        int          `json:"id"`
	Vertices  []core.Point `json:"vertices"`
	Center    core.Point   `json:"center"`
	Owner     string       `json:"owner"`
	Troops    int          `json:"troops"`
	Neighbors []int        `json:"neighbors"`
}

// PlayerSnapshot is the wire form of one roster entry.
type PlayerSnapshot struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Color            string `json:"color"`
	IsAI             bool   `json:"isAI"`
	IsAlive          bool   `json:"isAlive"`
	TerritoriesOwned int    `json:"territoriesOwned"`
	TotalTroops      int    `json:"totalTroops"`
}

// Snapshot is the transmissible form of the full authoritative state.
// It round-trips losslessly through NewSnapshot and GameState.
type Snapshot struct {
	Version       int                 `json:"version"`
	Territories   []TerritorySnapshot `json:"territories"`
	Players       []PlayerSnapshot    `json:"players"`
	CurrentTurn   int                 `json:"currentTurn"`
	TurnTimeLimit int64               `json:"turnTimeLimit"` // milliseconds
	TurnStartTime int64               `json:"turnStartTime"` // unix milliseconds
	GamePhase     string              `json:"gamePhase"`
	Winner        string              `json:"winner"`
	MapWidth      int                 `json:"mapWidth"`
	MapHeight     int                 `json:"mapHeight"`
}

// NewSnapshot converts the authoritative state into its wire form. All
// slices are copied; the snapshot shares nothing with the live state.
func NewSnapshot(gs *GameState) Snapshot {
	s := Snapshot{
		Version:       SnapshotVersion,
		Territories:   make([]TerritorySnapshot, len(gs.Territories)),
		Players:       make([]PlayerSnapshot, len(gs.Players)),
		CurrentTurn:   gs.Turn,
		TurnTimeLimit: gs.TurnTimeLimit.Milliseconds(),
		TurnStartTime: gs.TurnStarted.UnixMilli(),
		GamePhase:     string(gs.Phase),
		Winner:        gs.Winner,
		MapWidth:      gs.MapWidth,
		MapHeight:     gs.MapHeight,
	}
	for i := range gs.Territories {
		t := &gs.Territories[i]
		s.Territories[i] = TerritorySnapshot{
			ID:        t.ID,
			Vertices:  append([]core.Point(nil), t.Vertices...),
			Center:    t.Center,
			Owner:     t.Owner,
			Troops:    t.Troops,
			Neighbors: append([]int(nil), t.Neighbors...),
		}
	}
	for i, p := range gs.Players {
		s.Players[i] = PlayerSnapshot{
			ID:               p.ID,
			Name:             p.Name,
			Color:            p.Color,
			IsAI:             p.IsAI,
			IsAlive:          p.Alive,
			TerritoriesOwned: p.TerritoriesOwned,
			TotalTroops:      p.TotalTroops,
		}
	}
	return s
}

// Snapshot returns the current state in wire form.
func (e *Engine) Snapshot() Snapshot {
	return NewSnapshot(e.gs)
}

// GameState validates the snapshot and rebuilds the authoritative state
// from it. Malformed snapshots are rejected with an error wrapping
// ErrInvalidSnapshot instead of silently producing a corrupt state.
func (s Snapshot) GameState() (*GameState, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	gs := &GameState{
		Territories:     make([]core.Territory, len(s.Territories)),
		Players:         make([]Player, len(s.Players)),
		Turn:            s.CurrentTurn,
		TurnStarted:     time.UnixMilli(s.TurnStartTime),
		TurnTimeLimit:   time.Duration(s.TurnTimeLimit) * time.Millisecond,
		Phase:           Phase(s.GamePhase),
		Winner:          s.Winner,
		MapWidth:        s.MapWidth,
		MapHeight:       s.MapHeight,
		TerritoryTarget: len(s.Territories),
	}
	for i, t := range s.Territories {
		gs.Territories[i] = core.Territory{
			ID:        t.ID,
			Vertices:  append([]core.Point(nil), t.Vertices...),
			Center:    t.Center,
			Owner:     t.Owner,
			Troops:    t.Troops,
			Neighbors: append([]int(nil), t.Neighbors...),
		}
	}
	for i, p := range s.Players {
		gs.Players[i] = Player{
			ID:               p.ID,
			Name:             p.Name,
			Color:            p.Color,
			IsAI:             p.IsAI,
			Alive:            p.IsAlive,
			TerritoriesOwned: p.TerritoriesOwned,
			TotalTroops:      p.TotalTroops,
		}
	}
	return gs, nil
}

func (s Snapshot) validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}

	switch Phase(s.GamePhase) {
	case PhaseLobby, PhasePlaying, PhaseEnded:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, s.GamePhase)
	}

	playerIDs := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player with empty id", ErrInvalidSnapshot)
		}
		if playerIDs[p.ID] {
			return fmt.Errorf("%w: duplicate player id %q", ErrInvalidSnapshot, p.ID)
		}
		playerIDs[p.ID] = true
	}

	for i, t := range s.Territories {
		if t.ID != i {
			return fmt.Errorf("%w: territory ids not dense (index %d has id %d)", ErrInvalidSnapshot, i, t.ID)
		}
		if t.Troops < 0 {
			return fmt.Errorf("%w: territory %d has negative troops", ErrInvalidSnapshot, t.ID)
		}
		if t.Owner != core.NeutralOwner && !playerIDs[t.Owner] {
			return fmt.Errorf("%w: territory %d owned by unknown player %q", ErrInvalidSnapshot, t.ID, t.Owner)
		}
		for _, n := range t.Neighbors {
			if n < 0 || n >= len(s.Territories) {
				return fmt.Errorf("%w: territory %d has out-of-range neighbor %d", ErrInvalidSnapshot, t.ID, n)
			}
			if n == t.ID {
				return fmt.Errorf("%w: territory %d neighbors itself", ErrInvalidSnapshot, t.ID)
			}
		}
	}

	// Adjacency must be symmetric.
	for _, t := range s.Territories {
		for _, n := range t.Neighbors {
			back := false
			for _, m := range s.Territories[n].Neighbors {
				if m == t.ID {
					back = true
					break
				}
			}
			if !back {
				return fmt.Errorf("%w: adjacency %d->%d is not symmetric", ErrInvalidSnapshot, t.ID, n)
			}
		}
	}

	return nil
}

// Restore rebuilds an engine around a deserialized snapshot. The
// snapshot's own time limit takes precedence over the option value.
func Restore(s Snapshot, opts Options, rng *rand.Rand, logger zerolog.Logger) (*Engine, error) {
	gs, err := s.GameState()
	if err != nil {
		return nil, err
	}
	e := NewEngine(opts, rng, logger)
	e.gs = gs
	return e, nil
}
