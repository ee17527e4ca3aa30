package rules

import "github.com/maxhemmerich/dominion/internal/game/core"

// ValidateAttack checks a proposed attack against the movement rules.
// territories must be indexed by territory id. A nil return means the
// attack is legal; otherwise one of the core sentinel errors is returned
// and the caller must not mutate any state.
func ValidateAttack(territories []core.Territory, fromID, toID int, playerID string) error {
	if fromID < 0 || fromID >= len(territories) || toID < 0 || toID >= len(territories) {
		return core.ErrUnknownTerritory
	}
	from := &territories[fromID]
	to := &territories[toID]

	if from.Owner != playerID {
		return core.ErrNotOwner
	}
	if to.Owner == playerID {
		return core.ErrOwnTarget
	}
	if from.Troops <= 1 {
		return core.ErrInsufficientTroops
	}
	if !from.HasNeighbor(toID) {
		return core.ErrNotAdjacent
	}
	return nil
}

// AttackOption is one legal (from, to) pair for a player.
type AttackOption struct {
	FromID int
	ToID   int
}

// LegalAttacks enumerates every legal attack for the player: owned
// territories with more than one troop against adjacent territories the
// player does not hold.
func LegalAttacks(territories []core.Territory, playerID string) []AttackOption {
	var options []AttackOption
	for _, t := range territories {
		if t.Owner != playerID || t.Troops <= 1 {
			continue
		}
		for _, n := range t.Neighbors {
			if territories[n].Owner == playerID {
				continue
			}
			options = append(options, AttackOption{FromID: t.ID, ToID: n})
		}
	}
	return options
}
