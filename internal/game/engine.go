package game

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/game/core"
	"github.com/maxhemmerich/dominion/internal/game/mapgen"
	"github.com/maxhemmerich/dominion/internal/game/rules"
)

// Options carries the engine knobs recognized at construction time.
type Options struct {
	TurnTimeLimit       time.Duration
	MapWidth            int
	MapHeight           int
	TerritoryCount      int
	TroopGenerationRate int

	// Map overrides the derived map generation config when set.
	Map *mapgen.Config
}

// DefaultOptions returns the standard match configuration.
func DefaultOptions() Options {
	return Options{
		TurnTimeLimit:       45 * time.Second,
		MapWidth:            1200,
		MapHeight:           800,
		TerritoryCount:      60,
		TroopGenerationRate: 1,
	}
}

// PlayerInfo is the lobby's view of one participant.
type PlayerInfo struct {
	ID   string
	Name string
	IsAI bool
}

const (
	initialOwnedTroops   = 15
	initialNeutralTroops = 5
)

// playerPalette is the fixed color rotation; roster index wraps around it.
var playerPalette = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f",
	"#9b59b6", "#1abc9c", "#e67e22", "#95a5a6",
}

// Engine owns the authoritative mutable state of one match and exposes
// the only mutation entry points. Callers must serialize access; the
// engine itself holds no locks.
type Engine struct {
	gs         *GameState
	opts       Options
	rng        *rand.Rand
	winChecker *rules.WinConditionChecker
	logger     zerolog.Logger

	// Injectable for deterministic tests.
	now        func() time.Time
	combatRoll func() float64
}

// NewEngine creates an engine in the lobby phase. A nil rng falls back to
// a time-seeded source.
func NewEngine(opts Options, rng *rand.Rand, logger zerolog.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		gs: &GameState{
			Phase:           PhaseLobby,
			TurnTimeLimit:   opts.TurnTimeLimit,
			MapWidth:        opts.MapWidth,
			MapHeight:       opts.MapHeight,
			TerritoryTarget: opts.TerritoryCount,
		},
		opts:       opts,
		rng:        rng,
		winChecker: rules.NewWinConditionChecker(logger),
		logger:     logger.With().Str("component", "engine").Logger(),
		now:        time.Now,
	}
	e.combatRoll = func() float64 { return 0.8 + e.rng.Float64()*0.4 }
	return e
}

// InitializeGame builds the roster, generates the map and deals starting
// territories. Each player receives floor(territories/players/2)
// territories at 15 troops in turn order; the remainder stays unowned at
// 5 troops. The lobby layer must guarantee at least two players. A roster
// the map cannot seat (a zero-territory share) leaves everyone without
// holdings and the win check ends the game immediately as a draw rather
// than leaving it stuck in the playing phase.
func (e *Engine) InitializeGame(roster []PlayerInfo) {
	players := make([]Player, len(roster))
	for i, info := range roster {
		players[i] = Player{
			ID:    info.ID,
			Name:  info.Name,
			Color: playerPalette[i%len(playerPalette)],
			IsAI:  info.IsAI,
			Alive: true,
		}
	}

	mapCfg := mapgen.DefaultConfig(e.opts.TerritoryCount, e.opts.MapWidth, e.opts.MapHeight)
	if e.opts.Map != nil {
		mapCfg = *e.opts.Map
	}
	territories := mapgen.NewGenerator(mapCfg, e.rng).Generate()

	for i := range territories {
		territories[i].Owner = core.NeutralOwner
		territories[i].Troops = initialNeutralTroops
	}
	if len(players) > 0 {
		share := len(territories) / len(players) / 2
		order := e.rng.Perm(len(territories))
		dealt := 0
		for p := range players {
			for k := 0; k < share; k++ {
				t := &territories[order[dealt]]
				t.Owner = players[p].ID
				t.Troops = initialOwnedTroops
				dealt++
			}
		}
	}

	e.gs.Territories = territories
	e.gs.Players = players
	e.gs.Turn = 0
	e.gs.Winner = ""
	e.gs.Phase = PhasePlaying
	e.gs.TurnStarted = e.now()
	e.refreshPlayerStats()
	e.checkWinCondition()

	e.logger.Info().
		Int("territories", len(territories)).
		Int("players", len(players)).
		Msg("Game initialized")
}

// AttackResult reports the outcome of one attack attempt.
type AttackResult struct {
	Success        bool   `json:"success"`
	Conquered      bool   `json:"conquered"`
	AttackerLosses int    `json:"attackerLosses"`
	DefenderLosses int    `json:"defenderLosses"`
	FromID         int    `json:"fromId"`
	ToID           int    `json:"toId"`
	Error          string `json:"error,omitempty"`
}

// ProcessAttack resolves an attack from one territory onto an adjacent
// one. Any validation failure yields a failure result with no state
// mutation. Attack power is (troops-1) x U(0.8,1.2) against the
// defender's troops x U(0.8,1.2); on conquest 70% of the source garrison
// moves out and 60% of the movers survive into the target (minimum one).
// If the defender holds, losses are taken from the un-rolled base powers:
// 50% for the attacker, 30% for the defender, defender floored at one.
func (e *Engine) ProcessAttack(fromID, toID int, playerID string) AttackResult {
	result := AttackResult{FromID: fromID, ToID: toID}

	if err := e.validateAttack(fromID, toID, playerID); err != nil {
		e.logger.Debug().
			Err(err).
			Int("from", fromID).
			Int("to", toID).
			Str("player_id", playerID).
			Msg("Attack rejected")
		result.Error = err.Error()
		return result
	}

	from := &e.gs.Territories[fromID]
	to := &e.gs.Territories[toID]

	attackBase := float64(from.Troops - 1)
	defenseBase := float64(to.Troops)
	attackPower := attackBase * e.combatRoll()
	defensePower := defenseBase * e.combatRoll()

	result.Success = true
	if attackPower > defensePower {
		moved := int(float64(from.Troops) * 0.7)
		survivors := max(1, int(float64(moved)*0.6))

		from.Troops -= moved
		to.Owner = playerID
		to.Troops = survivors

		result.Conquered = true
		result.AttackerLosses = moved - survivors
		result.DefenderLosses = int(defenseBase)
	} else {
		attackerLoss := int(attackBase * 0.5)
		defenderLoss := int(defenseBase * 0.3)

		from.Troops -= attackerLoss
		remaining := max(1, to.Troops-defenderLoss)
		result.AttackerLosses = attackerLoss
		result.DefenderLosses = to.Troops - remaining
		to.Troops = remaining
	}

	e.refreshPlayerStats()
	e.checkWinCondition()

	e.logger.Debug().
		Int("from", fromID).
		Int("to", toID).
		Str("player_id", playerID).
		Bool("conquered", result.Conquered).
		Int("attacker_losses", result.AttackerLosses).
		Int("defender_losses", result.DefenderLosses).
		Msg("Attack resolved")
	return result
}

func (e *Engine) validateAttack(fromID, toID int, playerID string) error {
	switch e.gs.Phase {
	case PhaseLobby:
		return core.ErrGameNotStarted
	case PhaseEnded:
		return core.ErrGameOver
	}
	if current := e.CurrentPlayer(); current == nil || current.ID != playerID {
		return core.ErrNotYourTurn
	}
	return rules.ValidateAttack(e.gs.Territories, fromID, toID, playerID)
}

// NextTurn advances the turn counter, resets the turn clock, applies
// troop generation to every owned territory and skips eliminated players
// (bounded by one full roster pass). A no-op unless the game is playing;
// the hosting collaborator guarantees at most one call per turn boundary.
func (e *Engine) NextTurn() {
	if e.gs.Phase != PhasePlaying {
		return
	}

	e.gs.Turn++
	e.gs.TurnStarted = e.now()

	for i := range e.gs.Territories {
		t := &e.gs.Territories[i]
		if !t.IsNeutral() {
			t.Troops += e.opts.TroopGenerationRate
		}
	}

	for i := 0; i < len(e.gs.Players); i++ {
		if e.gs.Players[e.gs.Turn%len(e.gs.Players)].Alive {
			break
		}
		e.gs.Turn++
	}

	e.refreshPlayerStats()
	e.checkWinCondition()
}

// CurrentPlayer is a pure function of turn mod player count. Nil before
// initialization.
func (e *Engine) CurrentPlayer() *Player {
	if len(e.gs.Players) == 0 {
		return nil
	}
	return &e.gs.Players[e.gs.Turn%len(e.gs.Players)]
}

// TurnTimeRemaining returns how long the current player has left, never
// negative.
func (e *Engine) TurnTimeRemaining() time.Duration {
	remaining := e.gs.TurnTimeLimit - e.now().Sub(e.gs.TurnStarted)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// State returns the authoritative state. Callers must treat it as
// read-only; all mutation goes through the engine's entry points.
func (e *Engine) State() *GameState { return e.gs }

// IsGameOver reports whether the match has ended.
func (e *Engine) IsGameOver() bool { return e.gs.Phase == PhaseEnded }

// Winner returns the winning player id, empty while the game runs or on
// a draw.
func (e *Engine) Winner() string { return e.gs.Winner }

// refreshPlayerStats recalculates the cached per-player aggregates from
// the territories and derives alive status.
func (e *Engine) refreshPlayerStats() {
	byID := make(map[string]*Player, len(e.gs.Players))
	for i := range e.gs.Players {
		p := &e.gs.Players[i]
		p.TerritoriesOwned = 0
		p.TotalTroops = 0
		byID[p.ID] = p
	}

	for _, t := range e.gs.Territories {
		if t.IsNeutral() {
			continue
		}
		if p, ok := byID[t.Owner]; ok {
			p.TerritoriesOwned++
			p.TotalTroops += t.Troops
		}
	}

	for i := range e.gs.Players {
		e.gs.Players[i].Alive = e.gs.Players[i].TerritoriesOwned > 0
	}
}

func (e *Engine) checkWinCondition() {
	if e.gs.Phase != PhasePlaying {
		return
	}
	players := make([]rules.Player, len(e.gs.Players))
	for i := range e.gs.Players {
		players[i] = &e.gs.Players[i]
	}
	if over, winner := e.winChecker.CheckGameOver(players); over {
		e.gs.Phase = PhaseEnded
		e.gs.Winner = winner
		e.logger.Info().Str("winner", winner).Msg("Game ended")
	}
}
