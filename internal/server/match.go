package server

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/ai"
	"github.com/maxhemmerich/dominion/internal/game"
	"github.com/maxhemmerich/dominion/internal/game/core"
)

const maxPlayersPerMatch = 8

var (
	ErrMatchStarted     = errors.New("match already started")
	ErrMatchFull        = errors.New("match is full")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrNotEnoughPlayers = errors.New("at least two players required")
	ErrMatchNotPlaying  = errors.New("match is not in play")
)

// MatchSettings bundle the per-match knobs the transport layer applies
// when creating engines.
type MatchSettings struct {
	Engine            game.Options
	DefaultDifficulty ai.Difficulty
	AITurnDelay       time.Duration
	MaxAIAttacks      int
}

// Match owns one engine instance and serializes every mutation into it
// behind a single mutex, as the engine itself holds no locks. It also
// runs the turn timer that races the current player's explicit end-turn.
type Match struct {
	ID  string
	hub *Hub

	mu           sync.Mutex
	engine       *game.Engine
	ai           *ai.Engine
	roster       []game.PlayerInfo
	aiDifficulty map[string]ai.Difficulty
	turnTimer    *time.Timer
	settings     MatchSettings
	closed       bool
	createdAt    time.Time
	// lastActive tracks player-initiated actions only. Timer and AI
	// advances do not refresh it, so abandoned matches age out of the
	// registry even while the turn clock keeps running.
	lastActive time.Time
	logger     zerolog.Logger
}

// NewMatch creates a match in the lobby phase with its own hub.
func NewMatch(id string, settings MatchSettings, logger zerolog.Logger) *Match {
	logger = logger.With().Str("component", "match").Str("match_id", id).Logger()
	m := &Match{
		ID:           id,
		hub:          NewHub(logger),
		engine:       game.NewEngine(settings.Engine, nil, logger),
		ai:           ai.New(nil, logger),
		aiDifficulty: make(map[string]ai.Difficulty),
		settings:     settings,
		createdAt:    time.Now(),
		lastActive:   time.Now(),
		logger:       logger,
	}
	go m.hub.Run()
	return m
}

// Join adds a participant while the match is still in the lobby.
func (m *Match) Join(info game.PlayerInfo, difficulty ai.Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine.State().Phase != game.PhaseLobby {
		return ErrMatchStarted
	}
	if len(m.roster) >= maxPlayersPerMatch {
		return ErrMatchFull
	}
	for _, p := range m.roster {
		if p.ID == info.ID {
			return ErrDuplicatePlayer
		}
	}

	m.roster = append(m.roster, info)
	if info.IsAI {
		if difficulty == "" {
			difficulty = m.settings.DefaultDifficulty
		}
		m.aiDifficulty[info.ID] = difficulty
	}
	m.lastActive = time.Now()
	m.logger.Info().Str("player_id", info.ID).Bool("is_ai", info.IsAI).Msg("Player joined")
	return nil
}

// Start validates the roster and initializes the game. The two-player
// minimum is enforced here at the transport boundary; the engine does
// not defend against it.
func (m *Match) Start() error {
	m.mu.Lock()

	if m.engine.State().Phase != game.PhaseLobby {
		m.mu.Unlock()
		return ErrMatchStarted
	}
	if len(m.roster) < 2 {
		m.mu.Unlock()
		return ErrNotEnoughPlayers
	}

	m.engine.InitializeGame(m.roster)
	m.lastActive = time.Now()
	m.scheduleTurnTimerLocked()
	m.broadcastStateLocked()
	m.mu.Unlock()

	go m.runAITurns()
	return nil
}

// Attack resolves one attack command from a player.
func (m *Match) Attack(fromID, toID int, playerID string) game.AttackResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := m.engine.ProcessAttack(fromID, toID, playerID)
	m.lastActive = time.Now()
	if result.Success {
		m.broadcastStateLocked()
		if m.engine.IsGameOver() {
			m.stopTurnTimerLocked()
		}
	}
	return result
}

// EndTurn is the current player's explicit turn handoff. It cancels the
// pending timeout so the timer cannot advance the same boundary twice.
func (m *Match) EndTurn(playerID string) error {
	m.mu.Lock()

	if m.engine.State().Phase != game.PhasePlaying {
		m.mu.Unlock()
		return ErrMatchNotPlaying
	}
	current := m.engine.CurrentPlayer()
	if current == nil || current.ID != playerID {
		m.mu.Unlock()
		return core.ErrNotYourTurn
	}

	m.lastActive = time.Now()
	m.advanceTurnLocked()
	m.mu.Unlock()

	go m.runAITurns()
	return nil
}

// Snapshot returns the current wire-form state.
func (m *Match) Snapshot() game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Snapshot()
}

// Finished reports whether the underlying game has ended.
func (m *Match) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.IsGameOver()
}

// LastActive returns the time of the last player-initiated action.
func (m *Match) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActive
}

// Close stops the turn timer and shuts the hub down. Idempotent; the
// match rejects no further engine calls but schedules no new work.
func (m *Match) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTurnTimerLocked()
	m.mu.Unlock()
	m.hub.Stop()
}

// advanceTurnLocked performs one turn boundary: cancel the timer,
// advance the engine, broadcast, rearm. Callers hold m.mu.
func (m *Match) advanceTurnLocked() {
	m.stopTurnTimerLocked()
	m.engine.NextTurn()
	m.broadcastStateLocked()
	if m.engine.State().Phase == game.PhasePlaying {
		m.scheduleTurnTimerLocked()
	}
}

// scheduleTurnTimerLocked arms the timeout-based auto-advance for the
// current turn. The callback carries the turn number it was armed for;
// if an explicit end-turn won the race the numbers no longer match and
// the callback is a no-op, keeping advancement to one per boundary.
func (m *Match) scheduleTurnTimerLocked() {
	if m.closed {
		return
	}
	turn := m.engine.State().Turn
	remaining := m.engine.TurnTimeRemaining()
	m.turnTimer = time.AfterFunc(remaining, func() {
		m.timeoutAdvance(turn)
	})
}

func (m *Match) stopTurnTimerLocked() {
	if m.turnTimer != nil {
		m.turnTimer.Stop()
		m.turnTimer = nil
	}
}

func (m *Match) timeoutAdvance(turn int) {
	m.mu.Lock()
	if m.closed || m.engine.State().Phase != game.PhasePlaying || m.engine.State().Turn != turn {
		m.mu.Unlock()
		return
	}
	m.logger.Debug().Int("turn", turn).Msg("Turn timed out")
	m.advanceTurnLocked()
	m.mu.Unlock()

	go m.runAITurns()
}

// runAITurns plays every consecutive AI turn: decide, attack, repeat up
// to the per-turn cap, then advance. The delay between turns is
// presentation pacing only; each engine call is synchronous under the
// match mutex.
func (m *Match) runAITurns() {
	for {
		m.mu.Lock()
		state := m.engine.State()
		if m.closed || state.Phase != game.PhasePlaying {
			m.mu.Unlock()
			return
		}
		current := m.engine.CurrentPlayer()
		if current == nil || !current.IsAI {
			m.mu.Unlock()
			return
		}

		playerID := current.ID
		difficulty := m.aiDifficulty[playerID]
		for attacks := 0; attacks < m.settings.MaxAIAttacks; attacks++ {
			proposal, ok := m.ai.MakeDecision(state, playerID, difficulty)
			if !ok {
				break
			}
			result := m.engine.ProcessAttack(proposal.FromID, proposal.ToID, playerID)
			if !result.Success {
				break
			}
			m.hub.Broadcast(Message{Type: "attack_result", Payload: result})
			if m.engine.IsGameOver() {
				break
			}
		}
		m.broadcastStateLocked()
		if state.Phase == game.PhasePlaying {
			m.advanceTurnLocked()
		} else {
			m.stopTurnTimerLocked()
		}
		m.mu.Unlock()

		if m.settings.AITurnDelay > 0 {
			time.Sleep(m.settings.AITurnDelay)
		}
	}
}

func (m *Match) broadcastStateLocked() {
	m.hub.Broadcast(Message{Type: "state", Payload: m.engine.Snapshot()})
}
