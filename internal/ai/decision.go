package ai

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/game"
	"github.com/maxhemmerich/dominion/internal/game/core"
	"github.com/maxhemmerich/dominion/internal/game/rules"
)

// Difficulty selects the bot's risk appetite and pick policy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a config/wire string onto a difficulty, defaulting
// to Medium for anything unrecognized.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s)
	default:
		return Medium
	}
}

// Aggressiveness is the per-difficulty scalar dampening attacks with an
// unfavorable troop differential.
func (d Difficulty) Aggressiveness() float64 {
	switch d {
	case Easy:
		return 0.3
	case Hard:
		return 0.8
	default:
		return 0.5
	}
}

// ProposedAttack is the engine's suggestion for one player's move. It is
// a proposal, not a side effect: the caller feeds it back through the
// game engine's attack entry point.
type ProposedAttack struct {
	FromID int
	ToID   int
	Score  float64
}

// Engine scores every legal attack for a player and picks one according
// to the difficulty's selection policy. Stateless between calls apart
// from the rng used for tie-breaking.
type Engine struct {
	rng    *rand.Rand
	logger zerolog.Logger
}

// New creates an AI decision engine. A nil rng falls back to a
// time-seeded source.
func New(rng *rand.Rand, logger zerolog.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		rng:    rng,
		logger: logger.With().Str("component", "ai").Logger(),
	}
}

// MakeDecision proposes an attack for the player, or ok=false when the
// player owns nothing or no legal attack exists. The view is never
// mutated.
func (e *Engine) MakeDecision(view *game.GameState, playerID string, difficulty Difficulty) (ProposedAttack, bool) {
	owned := 0
	for i := range view.Territories {
		if view.Territories[i].Owner == playerID {
			owned++
		}
	}
	if owned == 0 {
		return ProposedAttack{}, false
	}

	options := rules.LegalAttacks(view.Territories, playerID)
	if len(options) == 0 {
		return ProposedAttack{}, false
	}

	scored := make([]ProposedAttack, len(options))
	for i, opt := range options {
		scored[i] = ProposedAttack{
			FromID: opt.FromID,
			ToID:   opt.ToID,
			Score:  e.scoreAttack(view, opt, playerID, difficulty),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	choice := e.pick(scored, difficulty)
	e.logger.Debug().
		Str("player_id", playerID).
		Str("difficulty", string(difficulty)).
		Int("candidates", len(scored)).
		Int("from", choice.FromID).
		Int("to", choice.ToID).
		Float64("score", choice.Score).
		Msg("Attack proposed")
	return choice, true
}

// scoreAttack rates one candidate: favorable troop differentials, cheap
// neutral expansion, piling onto weakened opponents, well-connected
// targets and consolidation of contiguous territory all score up; a
// thinly garrisoned border source scores down. Negative-differential
// attacks are dampened by (1 - aggressiveness).
func (e *Engine) scoreAttack(view *game.GameState, opt rules.AttackOption, playerID string, difficulty Difficulty) float64 {
	from := &view.Territories[opt.FromID]
	to := &view.Territories[opt.ToID]

	diff := from.Troops - to.Troops
	score := 10 * float64(diff)

	if to.Owner == core.NeutralOwner {
		score += 20
	} else if owner := playerByID(view, to.Owner); owner != nil {
		score += 5 * float64(10-owner.TerritoriesOwned)
	}

	score += 3 * float64(len(to.Neighbors))

	if from.Troops < 5 && isBorderTerritory(view, from, playerID) {
		score -= 30
	}

	friendly := 0
	for _, n := range to.Neighbors {
		if view.Territories[n].Owner == playerID {
			friendly++
		}
	}
	score += 8 * float64(friendly)

	if diff < 0 {
		score *= 1 - difficulty.Aggressiveness()
	}
	return score
}

// pick applies the per-difficulty selection policy to the
// descending-sorted candidates.
func (e *Engine) pick(scored []ProposedAttack, difficulty Difficulty) ProposedAttack {
	switch difficulty {
	case Easy:
		// Uniform over the top half.
		n := (len(scored) + 1) / 2
		return scored[e.rng.Intn(n)]
	case Hard:
		// Top choice 80% of the time, otherwise second best.
		if len(scored) == 1 || e.rng.Float64() < 0.8 {
			return scored[0]
		}
		return scored[1]
	default:
		// Medium: uniform over the top 30%.
		n := len(scored) * 3 / 10
		if n < 1 {
			n = 1
		}
		return scored[e.rng.Intn(n)]
	}
}

func playerByID(view *game.GameState, id string) *game.Player {
	for i := range view.Players {
		if view.Players[i].ID == id {
			return &view.Players[i]
		}
	}
	return nil
}

func isBorderTerritory(view *game.GameState, t *core.Territory, playerID string) bool {
	for _, n := range t.Neighbors {
		if view.Territories[n].Owner != playerID {
			return true
		}
	}
	return false
}
