package game

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxhemmerich/dominion/internal/game/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(21)
	e.InitializeGame([]PlayerInfo{
		{ID: "p0", Name: "Alice"},
		{ID: "p1", Name: "Bob", IsAI: true},
		{ID: "p2", Name: "Carol"},
	})
	e.NextTurn()

	snap := e.Snapshot()
	gs, err := snap.GameState()
	require.NoError(t, err)

	assert.Equal(t, e.State().Turn, gs.Turn)
	assert.Equal(t, e.State().Phase, gs.Phase)
	assert.Equal(t, e.State().Winner, gs.Winner)
	assert.Equal(t, e.State().Players, gs.Players)
	require.Len(t, gs.Territories, len(e.State().Territories))
	for i, tr := range e.State().Territories {
		assert.Equal(t, tr.Owner, gs.Territories[i].Owner)
		assert.Equal(t, tr.Troops, gs.Territories[i].Troops)
		assert.Equal(t, tr.Neighbors, gs.Territories[i].Neighbors)
	}

	// The wire form itself must be stable through a second conversion.
	assert.Equal(t, snap, NewSnapshot(gs))
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	e := newTestEngine(22)
	setBattlefield(e, duelTerritories(), "a", "b")
	snap := e.Snapshot()

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestSnapshotSharesNothingWithLiveState(t *testing.T) {
	e := newTestEngine(23)
	setBattlefield(e, duelTerritories(), "a", "b")

	snap := e.Snapshot()
	snap.Territories[0].Neighbors[0] = 99

	assert.Equal(t, 1, e.State().Territories[0].Neighbors[0])
}

func TestSnapshotValidation(t *testing.T) {
	valid := func() Snapshot {
		e := newTestEngine(24)
		setBattlefield(e, duelTerritories(), "a", "b")
		return e.Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"UnsupportedVersion", func(s *Snapshot) { s.Version = 99 }},
		{"UnknownPhase", func(s *Snapshot) { s.GamePhase = "paused" }},
		{"NonDenseIDs", func(s *Snapshot) { s.Territories[1].ID = 7 }},
		{"NegativeTroops", func(s *Snapshot) { s.Territories[0].Troops = -1 }},
		{"UnknownOwner", func(s *Snapshot) { s.Territories[0].Owner = "ghost" }},
		{"SelfNeighbor", func(s *Snapshot) { s.Territories[0].Neighbors = []int{0} }},
		{"OutOfRangeNeighbor", func(s *Snapshot) { s.Territories[0].Neighbors = []int{9} }},
		{"AsymmetricAdjacency", func(s *Snapshot) { s.Territories[2].Neighbors = nil }},
		{"DuplicatePlayer", func(s *Snapshot) { s.Players[1].ID = s.Players[0].ID }},
		{"EmptyPlayerID", func(s *Snapshot) { s.Players[0].ID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			_, err := s.GameState()
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestRestore(t *testing.T) {
	e := newTestEngine(25)
	setBattlefield(e, duelTerritories(), "a", "b")
	fixedRoll(e, 1.0)
	e.ProcessAttack(0, 1, "a")

	restored, err := Restore(e.Snapshot(), DefaultOptions(), nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, e.State().Turn, restored.State().Turn)
	assert.Equal(t, "a", restored.State().Territories[1].Owner)
	assert.Equal(t, e.CurrentPlayer().ID, restored.CurrentPlayer().ID)

	// The restored engine keeps playing.
	restored.NextTurn()
	assert.Equal(t, e.State().Turn+1, restored.State().Turn)
}

func TestRestoreRejectsMalformed(t *testing.T) {
	_, err := Restore(Snapshot{Version: 3}, DefaultOptions(), nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestSnapshotNeutralOwnerAllowed(t *testing.T) {
	e := newTestEngine(26)
	setBattlefield(e, duelTerritories(), "a", "b")
	snap := e.Snapshot()

	require.Equal(t, core.NeutralOwner, snap.Territories[2].Owner)
	_, err := snap.GameState()
	assert.NoError(t, err)
}
