package world

import (
	"time"

	"github.com/paulmach/orb"
)

// maxRoadHops bounds how many road switches one move may make, so overlapping
// or degenerate topology ends in a dead-end stop instead of a loop.
const maxRoadHops = 3

type axis int

const (
	axisX axis = iota
	axisY
)

// Direction is a movement command. None stops the dog and keeps its facing.
type Direction uint8

const (
	None Direction = iota
	North
	South
	West
	East
)

func (d Direction) String() string {
	switch d {
	case North:
		return "U"
	case South:
		return "D"
	case West:
		return "L"
	case East:
		return "R"
	}
	return ""
}

// ParseDirection maps the wire letters U, D, L, R and "" (stop).
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "":
		return None, true
	case "U":
		return North, true
	case "D":
		return South, true
	case "L":
		return West, true
	case "R":
		return East, true
	}
	return None, false
}

// unit returns the unit velocity for the direction. Y grows southwards.
func (d Direction) unit() (dx, dy float64) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	case East:
		return 1, 0
	}
	return 0, 0
}

// Dog is a player's avatar on the road graph.
type Dog struct {
	Pos      orb.Point
	Road     RoadID
	Velocity orb.Point
	Speed    float64
	Dir      Direction
}

// Steer applies a direction command. Returns true when the dog is now moving.
func (d *Dog) Steer(dir Direction) bool {
	dx, dy := dir.unit()
	d.Velocity = orb.Point{dx * d.Speed, dy * d.Speed}
	if dir != None {
		d.Dir = dir
	}
	return d.Moving()
}

func (d *Dog) Moving() bool {
	return d.Velocity.X() != 0 || d.Velocity.Y() != 0
}

// Move advances the dog for elapsed time. Velocity is always axis-aligned.
func (d *Dog) Move(n *RoadNetwork, elapsed time.Duration) {
	secs := elapsed.Seconds()
	switch {
	case d.Velocity.X() != 0 && d.Velocity.Y() == 0:
		d.resolve(n, axisX, d.Velocity.X()*secs)
	case d.Velocity.Y() != 0 && d.Velocity.X() == 0:
		d.resolve(n, axisY, d.Velocity.Y()*secs)
	}
}

// resolve moves the dog by a signed distance along one axis, switching to
// adjoining roads at corridor bounds and stopping at dead ends.
func (d *Dog) resolve(n *RoadNetwork, ax axis, distance float64) {
	if distance == 0 {
		return
	}
	for hop := 0; ; hop++ {
		lo, hi := n.Road(d.Road).extent(ax)
		lo -= RoadHalfWidth
		hi += RoadHalfWidth

		desired := coord(d.Pos, ax) + distance
		if desired >= lo && desired <= hi {
			d.Pos = withCoord(d.Pos, ax, desired)
			return
		}

		bound := hi
		if desired < lo {
			bound = lo
		}
		d.Pos = withCoord(d.Pos, ax, bound)
		distance = desired - bound

		if hop < maxRoadHops {
			if next, ok := n.next(GridPoint(d.Pos), d.Road, ax); ok {
				d.Road = next
				continue
			}
		}
		d.Velocity = withCoord(d.Velocity, ax, 0)
		return
	}
}

func coord(p orb.Point, ax axis) float64 {
	if ax == axisX {
		return p.X()
	}
	return p.Y()
}

func withCoord(p orb.Point, ax axis, v float64) orb.Point {
	if ax == axisX {
		return orb.Point{v, p.Y()}
	}
	return orb.Point{p.X(), v}
}
