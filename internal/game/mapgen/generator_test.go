package mapgen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRNG provides a random number generator with a fixed seed for deterministic tests.
func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(12345))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig(60, 1200, 800)

	assert.Equal(t, 60, config.TerritoryCount)
	assert.Equal(t, 1200, config.Width)
	assert.Equal(t, 800, config.Height)
	assert.Equal(t, 10.0, config.CellSize)
	assert.Equal(t, 0.7, config.MinDistanceFactor)
	assert.Equal(t, 1.5, config.AdjacencyFactor)
	assert.Equal(t, 30, config.MaxSeedAttempts)
	assert.Equal(t, 8, config.HullThreshold)
}

func TestGenerateInvariants(t *testing.T) {
	generator := NewGenerator(DefaultConfig(60, 1200, 800), newTestRNG())
	territories := generator.Generate()

	require.Len(t, territories, 60)

	for i, tr := range territories {
		assert.Equal(t, i, tr.ID, "ids must be dense 0..N-1")
		assert.GreaterOrEqual(t, len(tr.Vertices), 3, "territory %d needs a polygon", i)
		assert.NotEmpty(t, tr.Neighbors, "territory %d must have at least one neighbor", i)
		assert.True(t, tr.IsNeutral(), "generated territories start unowned")

		assert.GreaterOrEqual(t, tr.Center.X, 0.0)
		assert.LessOrEqual(t, tr.Center.X, 1200.0)
		assert.GreaterOrEqual(t, tr.Center.Y, 0.0)
		assert.LessOrEqual(t, tr.Center.Y, 800.0)
	}
}

func TestGenerateAdjacencySymmetric(t *testing.T) {
	generator := NewGenerator(DefaultConfig(40, 1000, 600), newTestRNG())
	territories := generator.Generate()

	for _, tr := range territories {
		for _, n := range tr.Neighbors {
			require.True(t, n >= 0 && n < len(territories))
			assert.True(t, territories[n].HasNeighbor(tr.ID),
				"adjacency %d->%d must be symmetric", tr.ID, n)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(DefaultConfig(30, 800, 600), rand.New(rand.NewSource(7))).Generate()
	b := NewGenerator(DefaultConfig(30, 800, 600), rand.New(rand.NewSource(7))).Generate()

	assert.Equal(t, a, b, "same seed must produce the same map")
}

func TestGenerateDenseConfigurationTerminates(t *testing.T) {
	// Far more seeds than the spacing rule can satisfy; the attempt cap
	// must still let generation finish.
	generator := NewGenerator(DefaultConfig(200, 100, 100), newTestRNG())
	territories := generator.Generate()

	require.Len(t, territories, 200)
	for _, tr := range territories {
		assert.GreaterOrEqual(t, len(tr.Vertices), 3)
		assert.NotEmpty(t, tr.Neighbors)
	}
}

func TestGenerateTwoTerritories(t *testing.T) {
	generator := NewGenerator(DefaultConfig(2, 400, 400), newTestRNG())
	territories := generator.Generate()

	require.Len(t, territories, 2)
	assert.Equal(t, []int{1}, territories[0].Neighbors)
	assert.Equal(t, []int{0}, territories[1].Neighbors)
}

func TestGenerateSingleTerritory(t *testing.T) {
	// Degenerate config: nothing to connect to, but it must not crash.
	generator := NewGenerator(DefaultConfig(1, 200, 200), newTestRNG())
	territories := generator.Generate()

	require.Len(t, territories, 1)
	assert.GreaterOrEqual(t, len(territories[0].Vertices), 3)
}
