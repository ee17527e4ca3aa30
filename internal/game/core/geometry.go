package core

import (
	"math"
	"sort"
)

// Point is a position on the map plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Centroid returns the arithmetic mean of the points. Returns the zero
// point for an empty slice.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: sum.X / n, Y: sum.Y / n}
}

// ConvexHull reduces a point cloud to its convex hull using a Graham scan:
// pivot on the lowest-then-leftmost point, sort the rest by polar angle
// around it, then sweep keeping only left turns. Inputs with fewer than
// three points are returned unchanged.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		return points
	}

	pts := make([]Point, len(points))
	copy(pts, points)

	pivot := 0
	for i, p := range pts {
		if p.Y < pts[pivot].Y || (p.Y == pts[pivot].Y && p.X < pts[pivot].X) {
			pivot = i
		}
	}
	pts[0], pts[pivot] = pts[pivot], pts[0]
	p0 := pts[0]

	rest := pts[1:]
	sort.Slice(rest, func(i, j int) bool {
		ai := math.Atan2(rest[i].Y-p0.Y, rest[i].X-p0.X)
		aj := math.Atan2(rest[j].Y-p0.Y, rest[j].X-p0.X)
		if ai != aj {
			return ai < aj
		}
		return p0.DistanceTo(rest[i]) < p0.DistanceTo(rest[j])
	})

	hull := make([]Point, 0, len(pts))
	hull = append(hull, pts[0], pts[1])
	for _, p := range pts[2:] {
		for len(hull) > 1 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

// cross returns the z component of (a-o) x (b-o). Positive means the
// turn o->a->b is counterclockwise.
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
