package world

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// RoadHalfWidth is how far a road's corridor extends beyond its centerline
// and its endpoints.
const RoadHalfWidth = 0.4

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

func (p Point) Orb() orb.Point { return orb.Point{float64(p.X), float64(p.Y)} }

// GridPoint rounds a continuous position to the nearest grid point.
func GridPoint(p orb.Point) Point {
	return Point{X: int(math.Round(p.X())), Y: int(math.Round(p.Y()))}
}

// RoadID indexes a road within its map. Stable for the map's lifetime.
type RoadID int

// Road is an axis-aligned segment. A zero-length road is both horizontal
// and vertical.
type Road struct {
	Start Point
	End   Point
}

func HorizontalRoad(start Point, endX int) Road {
	return Road{Start: start, End: Point{X: endX, Y: start.Y}}
}

func VerticalRoad(start Point, endY int) Road {
	return Road{Start: start, End: Point{X: start.X, Y: endY}}
}

func (r Road) Horizontal() bool { return r.Start.Y == r.End.Y }
func (r Road) Vertical() bool   { return r.Start.X == r.End.X }

// alignedWith reports whether the road runs along the given axis.
func (r Road) alignedWith(ax axis) bool {
	if ax == axisX {
		return r.Horizontal()
	}
	return r.Vertical()
}

// extent returns the road's span on an axis, without the corridor margin.
func (r Road) extent(ax axis) (lo, hi float64) {
	a, b := r.Start.X, r.End.X
	if ax == axisY {
		a, b = r.Start.Y, r.End.Y
	}
	if a > b {
		a, b = b, a
	}
	return float64(a), float64(b)
}

// Contains reports whether p lies inside the road's corridor: the span
// widened by RoadHalfWidth on both axes.
func (r Road) Contains(p orb.Point) bool {
	xlo, xhi := r.extent(axisX)
	ylo, yhi := r.extent(axisY)
	return p.X() >= xlo-RoadHalfWidth && p.X() <= xhi+RoadHalfWidth &&
		p.Y() >= ylo-RoadHalfWidth && p.Y() <= yhi+RoadHalfWidth
}

// points enumerates every grid point of the road span, inclusive.
func (r Road) points() []Point {
	if r.Horizontal() {
		lo, hi := r.Start.X, r.End.X
		if lo > hi {
			lo, hi = hi, lo
		}
		pts := make([]Point, 0, hi-lo+1)
		for x := lo; x <= hi; x++ {
			pts = append(pts, Point{X: x, Y: r.Start.Y})
		}
		return pts
	}
	lo, hi := r.Start.Y, r.End.Y
	if lo > hi {
		lo, hi = hi, lo
	}
	pts := make([]Point, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		pts = append(pts, Point{X: r.Start.X, Y: y})
	}
	return pts
}

// RoadNetwork indexes every grid point covered by a road to the roads
// touching it. Buckets keep road declaration order.
type RoadNetwork struct {
	roads   []Road
	buckets map[Point][]RoadID
}

func NewRoadNetwork(roads []Road) *RoadNetwork {
	n := &RoadNetwork{
		roads:   roads,
		buckets: make(map[Point][]RoadID, len(roads)*8),
	}
	for i, r := range roads {
		for _, p := range r.points() {
			n.buckets[p] = append(n.buckets[p], RoadID(i))
		}
	}
	return n
}

// RoadsAt returns the roads touching p, or nil when p is off the network.
func (n *RoadNetwork) RoadsAt(p Point) []RoadID {
	return n.buckets[p]
}

// MustRoadsAt is RoadsAt for points known to be on a road. Dogs never leave
// the network, so a miss means the world state is broken.
func (n *RoadNetwork) MustRoadsAt(p Point) []RoadID {
	ids, ok := n.buckets[p]
	if !ok {
		panic(fmt.Sprintf("world: no road at (%d, %d)", p.X, p.Y))
	}
	return ids
}

// Find resolves a road by its endpoints.
func (n *RoadNetwork) Find(start, end Point) (RoadID, bool) {
	for _, id := range n.buckets[start] {
		r := n.roads[id]
		if r.Start == start && r.End == end {
			return id, true
		}
	}
	return 0, false
}

// next picks the first road at p, in declaration order, that runs along ax
// and is not the current road.
func (n *RoadNetwork) next(p Point, current RoadID, ax axis) (RoadID, bool) {
	for _, id := range n.MustRoadsAt(p) {
		if id != current && n.roads[id].alignedWith(ax) {
			return id, true
		}
	}
	return 0, false
}

func (n *RoadNetwork) Road(id RoadID) Road { return n.roads[id] }
func (n *RoadNetwork) Len() int            { return len(n.roads) }
