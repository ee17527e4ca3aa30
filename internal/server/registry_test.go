package server

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxhemmerich/dominion/internal/ai"
	"github.com/maxhemmerich/dominion/internal/game"
	"github.com/maxhemmerich/dominion/internal/game/mapgen"
)

// testSettings keeps maps tiny so match tests stay fast.
func testSettings() MatchSettings {
	mapCfg := mapgen.DefaultConfig(12, 300, 200)
	opts := game.DefaultOptions()
	opts.TerritoryCount = 12
	opts.MapWidth = 300
	opts.MapHeight = 200
	opts.Map = &mapCfg
	return MatchSettings{
		Engine:            opts,
		DefaultDifficulty: ai.Medium,
		MaxAIAttacks:      4,
	}
}

func newTestRegistry(maxMatches int) *Registry {
	return NewRegistry(maxMatches, 30*time.Minute, zerolog.Nop())
}

// timedSettings shortens the turn clock for timer tests.
func timedSettings(limit time.Duration) MatchSettings {
	s := testSettings()
	s.Engine.TurnTimeLimit = limit
	return s
}

func TestRegistryLifecycle(t *testing.T) {
	r := newTestRegistry(10)

	m, err := r.CreateMatch(testSettings())
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	assert.Equal(t, 1, r.Count())

	got, ok := r.Get(m.ID)
	require.True(t, ok)
	assert.Same(t, m, got)

	r.Remove(m.ID)
	assert.Equal(t, 0, r.Count())
	_, ok = r.Get(m.ID)
	assert.False(t, ok)
}

func TestRegistryCapacity(t *testing.T) {
	r := newTestRegistry(2)

	_, err := r.CreateMatch(testSettings())
	require.NoError(t, err)
	_, err = r.CreateMatch(testSettings())
	require.NoError(t, err)

	_, err = r.CreateMatch(testSettings())
	assert.ErrorContains(t, err, "capacity")
	assert.Equal(t, 2, r.Count())
}

func TestRegistryCleanup(t *testing.T) {
	r := newTestRegistry(10)

	fresh, err := r.CreateMatch(testSettings())
	require.NoError(t, err)
	stale, err := r.CreateMatch(testSettings())
	require.NoError(t, err)

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	r.cleanupOnce(time.Now())

	_, ok := r.Get(fresh.ID)
	assert.True(t, ok, "active match survives cleanup")
	_, ok = r.Get(stale.ID)
	assert.False(t, ok, "abandoned match is removed")
}

func TestMatchLobbyFlow(t *testing.T) {
	m := NewMatch("m1", testSettings(), zerolog.Nop())

	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))

	assert.ErrorIs(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Again"}, ""), ErrDuplicatePlayer)

	require.NoError(t, m.Start())
	snap := m.Snapshot()
	assert.Equal(t, string(game.PhasePlaying), snap.GamePhase)
	require.Len(t, snap.Players, 2)
	require.Len(t, snap.Territories, 12)

	assert.ErrorIs(t, m.Start(), ErrMatchStarted)
	assert.ErrorIs(t, m.Join(game.PlayerInfo{ID: "p3", Name: "Late"}, ""), ErrMatchStarted)
}

func TestMatchStartRequiresTwoPlayers(t *testing.T) {
	m := NewMatch("m2", testSettings(), zerolog.Nop())

	assert.ErrorIs(t, m.Start(), ErrNotEnoughPlayers)

	require.NoError(t, m.Join(game.PlayerInfo{ID: "solo", Name: "Solo"}, ""))
	assert.ErrorIs(t, m.Start(), ErrNotEnoughPlayers)
}

func TestMatchFull(t *testing.T) {
	m := NewMatch("m3", testSettings(), zerolog.Nop())
	for i := 0; i < maxPlayersPerMatch; i++ {
		require.NoError(t, m.Join(game.PlayerInfo{ID: string(rune('a' + i)), Name: "p"}, ""))
	}
	assert.ErrorIs(t, m.Join(game.PlayerInfo{ID: "extra", Name: "p"}, ""), ErrMatchFull)
}

func TestMatchEndTurnOnlyCurrentPlayer(t *testing.T) {
	m := NewMatch("m4", testSettings(), zerolog.Nop())
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())

	assert.Error(t, m.EndTurn("p2"), "only the current player may end the turn")

	require.NoError(t, m.EndTurn("p1"))
	assert.Equal(t, 1, m.Snapshot().CurrentTurn)
}

func TestMatchEndTurnBeforeStart(t *testing.T) {
	m := NewMatch("m5", testSettings(), zerolog.Nop())
	assert.ErrorIs(t, m.EndTurn("p1"), ErrMatchNotPlaying)
}

func TestMatchTimeoutAdvancesOnce(t *testing.T) {
	m := NewMatch("m6", testSettings(), zerolog.Nop())
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())
	defer m.Close()
	require.Equal(t, 0, m.Snapshot().CurrentTurn)

	m.timeoutAdvance(0)
	assert.Equal(t, 1, m.Snapshot().CurrentTurn, "timeout advances the boundary it was armed for")

	m.timeoutAdvance(0)
	assert.Equal(t, 1, m.Snapshot().CurrentTurn, "a stale callback must not advance a second time")
}

func TestMatchEndTurnWinsTimerRace(t *testing.T) {
	// The explicit end-turn lands first; the timer callback armed for the
	// old turn number must then be a no-op.
	m := NewMatch("m7", testSettings(), zerolog.Nop())
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())
	defer m.Close()

	require.NoError(t, m.EndTurn("p1"))
	require.Equal(t, 1, m.Snapshot().CurrentTurn)

	m.timeoutAdvance(0)
	assert.Equal(t, 1, m.Snapshot().CurrentTurn, "only one advance per boundary")
}

func TestMatchTurnTimerFires(t *testing.T) {
	m := NewMatch("m8", timedSettings(20*time.Millisecond), zerolog.Nop())
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())
	defer m.Close()

	assert.Eventually(t, func() bool {
		return m.Snapshot().CurrentTurn >= 1
	}, 2*time.Second, 5*time.Millisecond, "an idle turn must time out and advance")
}

func TestAbandonedMatchAgesOut(t *testing.T) {
	// Timer-driven advances are not player activity: a match both players
	// walked away from must look idle and get reaped, even though its
	// turn clock keeps cycling.
	r := NewRegistry(10, 50*time.Millisecond, zerolog.Nop())
	m, err := r.CreateMatch(timedSettings(15 * time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())
	joined := m.LastActive()

	time.Sleep(120 * time.Millisecond)

	assert.True(t, m.LastActive().Equal(joined), "timeouts must not refresh activity")
	require.GreaterOrEqual(t, m.Snapshot().CurrentTurn, 1, "the turn clock kept running")

	r.cleanupOnce(time.Now())
	_, ok := r.Get(m.ID)
	assert.False(t, ok, "abandoned playing match is removed")
}

func TestRemoveStopsMatch(t *testing.T) {
	r := newTestRegistry(10)
	m, err := r.CreateMatch(testSettings())
	require.NoError(t, err)
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p1", Name: "Alice"}, ""))
	require.NoError(t, m.Join(game.PlayerInfo{ID: "p2", Name: "Bob"}, ""))
	require.NoError(t, m.Start())

	r.Remove(m.ID)

	m.mu.Lock()
	assert.True(t, m.closed)
	assert.Nil(t, m.turnTimer, "pending timer must be cancelled")
	m.mu.Unlock()

	select {
	case <-m.hub.done:
	default:
		t.Fatal("hub must be stopped when the match is removed")
	}

	// Idempotent close and post-close broadcasts must not block or panic.
	m.Close()
	m.hub.Broadcast(Message{Type: "state"})
}
