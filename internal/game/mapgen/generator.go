package mapgen

import (
	"math"
	"math/rand"

	"github.com/maxhemmerich/dominion/internal/game/core"
)

// Config holds configuration for map generation.
type Config struct {
	TerritoryCount    int
	Width             int
	Height            int
	CellSize          float64 // grid discretization step for region assignment
	MinDistanceFactor float64 // seed spacing as a fraction of sqrt(area/count)
	AdjacencyFactor   float64 // neighbor threshold as a fraction of sqrt(area/count)
	MaxSeedAttempts   int     // rejection sampling cap per seed
	HullThreshold     int     // boundary cell count above which the outline is hulled
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig(count, w, h int) Config {
	return Config{
		TerritoryCount:    count,
		Width:             w,
		Height:            h,
		CellSize:          10,
		MinDistanceFactor: 0.7,
		AdjacencyFactor:   1.5,
		MaxSeedAttempts:   30,
		HullThreshold:     8,
	}
}

// regionScale is the base length sqrt(area/count) that both seed spacing
// and the adjacency threshold derive from.
func (c Config) regionScale() float64 {
	count := c.TerritoryCount
	if count < 1 {
		count = 1
	}
	return math.Sqrt(float64(c.Width*c.Height) / float64(count))
}

// Generator handles map generation with deterministic RNG.
type Generator struct {
	config Config
	rng    *rand.Rand
}

// NewGenerator creates a new map generator.
func NewGenerator(config Config, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// Generate produces the full territory set: seed placement, grid region
// assignment, boundary extraction and adjacency inference. Territory ids
// are dense 0..count-1 and every territory ends up with at least one
// neighbor.
func (g *Generator) Generate() []core.Territory {
	seeds := g.placeSeeds()
	grid := g.assignCells(seeds)

	territories := make([]core.Territory, len(seeds))
	for i, seed := range seeds {
		territories[i] = core.Territory{
			ID:       i,
			Vertices: g.regionOutline(grid, i, seed),
			Center:   seed,
			Owner:    core.NeutralOwner,
		}
	}

	g.connectTerritories(territories)
	return territories
}

// placeSeeds spreads territory centers over the rectangle by rejection
// sampling against a minimum pairwise distance. After MaxSeedAttempts
// the last candidate is taken as-is so dense configurations still
// terminate; the first seed is always accepted unconditionally.
func (g *Generator) placeSeeds() []core.Point {
	minDist := g.config.regionScale() * g.config.MinDistanceFactor
	seeds := make([]core.Point, 0, g.config.TerritoryCount)

	for len(seeds) < g.config.TerritoryCount {
		var candidate core.Point
		for attempt := 0; attempt < g.config.MaxSeedAttempts; attempt++ {
			candidate = core.Point{
				X: g.rng.Float64() * float64(g.config.Width),
				Y: g.rng.Float64() * float64(g.config.Height),
			}
			if g.farEnough(candidate, seeds, minDist) {
				break
			}
		}
		seeds = append(seeds, candidate)
	}
	return seeds
}

func (g *Generator) farEnough(p core.Point, seeds []core.Point, minDist float64) bool {
	for _, s := range seeds {
		if p.DistanceTo(s) < minDist {
			return false
		}
	}
	return true
}

// cellGrid records, for every discretized cell, the index of the nearest
// seed. Not a true Voronoi construction: a plain O(cells x seeds) scan,
// acceptable as a one-time setup cost.
type cellGrid struct {
	cols, rows int
	owner      []int
}

func (g *Generator) assignCells(seeds []core.Point) *cellGrid {
	cols := int(math.Ceil(float64(g.config.Width) / g.config.CellSize))
	rows := int(math.Ceil(float64(g.config.Height) / g.config.CellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	grid := &cellGrid{cols: cols, rows: rows, owner: make([]int, cols*rows)}
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			center := g.cellCenter(cx, cy)
			nearest, best := 0, math.MaxFloat64
			for i, s := range seeds {
				if d := center.DistanceTo(s); d < best {
					best, nearest = d, i
				}
			}
			grid.owner[cy*cols+cx] = nearest
		}
	}
	return grid
}

func (g *Generator) cellCenter(cx, cy int) core.Point {
	return core.Point{
		X: (float64(cx) + 0.5) * g.config.CellSize,
		Y: (float64(cy) + 0.5) * g.config.CellSize,
	}
}

// regionOutline collects the region's boundary cells (any cell touching a
// differently-owned cell or the grid edge) and reduces them to a convex
// hull when there are more than HullThreshold of them. Degenerate regions
// fall back to a unit square around the seed rather than crashing.
func (g *Generator) regionOutline(grid *cellGrid, region int, seed core.Point) []core.Point {
	var boundary []core.Point
	for cy := 0; cy < grid.rows; cy++ {
		for cx := 0; cx < grid.cols; cx++ {
			if grid.owner[cy*grid.cols+cx] != region {
				continue
			}
			if g.onRegionEdge(grid, cx, cy, region) {
				boundary = append(boundary, g.cellCenter(cx, cy))
			}
		}
	}

	if len(boundary) > g.config.HullThreshold {
		boundary = core.ConvexHull(boundary)
	}
	if len(boundary) < 3 {
		return unitSquare(seed)
	}
	return boundary
}

func (g *Generator) onRegionEdge(grid *cellGrid, cx, cy, region int) bool {
	dx := []int{0, 1, 0, -1}
	dy := []int{-1, 0, 1, 0}
	for dir := 0; dir < 4; dir++ {
		nx, ny := cx+dx[dir], cy+dy[dir]
		if nx < 0 || nx >= grid.cols || ny < 0 || ny >= grid.rows {
			return true
		}
		if grid.owner[ny*grid.cols+nx] != region {
			return true
		}
	}
	return false
}

func unitSquare(center core.Point) []core.Point {
	return []core.Point{
		{X: center.X - 0.5, Y: center.Y - 0.5},
		{X: center.X + 0.5, Y: center.Y - 0.5},
		{X: center.X + 0.5, Y: center.Y + 0.5},
		{X: center.X - 0.5, Y: center.Y + 0.5},
	}
}

// connectTerritories infers adjacency from seed-center distance, then
// force-connects any territory left without neighbors to its nearest
// other territory so no territory is isolated.
func (g *Generator) connectTerritories(territories []core.Territory) {
	threshold := g.config.regionScale() * g.config.AdjacencyFactor
	for i := range territories {
		for j := i + 1; j < len(territories); j++ {
			if territories[i].Center.DistanceTo(territories[j].Center) < threshold {
				territories[i].AddNeighbor(j)
				territories[j].AddNeighbor(i)
			}
		}
	}

	for i := range territories {
		if len(territories[i].Neighbors) > 0 {
			continue
		}
		nearest := g.nearestTerritory(territories, i)
		if nearest < 0 {
			continue
		}
		territories[i].AddNeighbor(nearest)
		territories[nearest].AddNeighbor(i)
	}
}

func (g *Generator) nearestTerritory(territories []core.Territory, from int) int {
	nearest, best := -1, math.MaxFloat64
	for i := range territories {
		if i == from {
			continue
		}
		if d := territories[from].Center.DistanceTo(territories[i].Center); d < best {
			best, nearest = d, i
		}
	}
	return nearest
}
