package core

// NeutralOwner marks a territory not held by any player.
const NeutralOwner = ""

// Territory is one polygonal region of the map. Territories are created
// once by the map generator; owner and troops are mutated only by the
// game engine. ID doubles as the index into the map's territory slice.
type Territory struct {
	ID        int
	Vertices  []Point
	Center    Point
	Owner     string
	Troops    int
	Neighbors []int
}

// IsNeutral reports whether the territory is unowned.
func (t *Territory) IsNeutral() bool {
	return t.Owner == NeutralOwner
}

// HasNeighbor reports whether id is adjacent to this territory.
func (t *Territory) HasNeighbor(id int) bool {
	for _, n := range t.Neighbors {
		if n == id {
			return true
		}
	}
	return false
}

// AddNeighbor records an adjacency edge. Idempotent; callers are
// responsible for adding the reverse edge to keep adjacency symmetric.
func (t *Territory) AddNeighbor(id int) {
	if id == t.ID || t.HasNeighbor(id) {
		return
	}
	t.Neighbors = append(t.Neighbors, id)
}

// Clone returns a deep copy of the territory.
func (t *Territory) Clone() Territory {
	c := *t
	c.Vertices = append([]Point(nil), t.Vertices...)
	c.Neighbors = append([]int(nil), t.Neighbors...)
	return c
}
