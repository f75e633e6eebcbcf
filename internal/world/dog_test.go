package world

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func newDog(pos orb.Point, road RoadID, dir Direction) *Dog {
	d := &Dog{Pos: pos, Road: road, Speed: 1}
	d.Steer(dir)
	return d
}

func TestDog_DeadEndClamp(t *testing.T) {
	n := NewRoadNetwork([]Road{HorizontalRoad(Point{0, 0}, 10)})
	d := newDog(orb.Point{0, 0}, 0, East)

	d.Move(n, 20*time.Second)
	assert.InDelta(t, 10.4, d.Pos.X(), 1e-9)
	assert.Zero(t, d.Velocity.X())
	assert.False(t, d.Moving())

	d.Move(n, 5*time.Second)
	assert.InDelta(t, 10.4, d.Pos.X(), 1e-9)
}

func TestDog_StaysInsideCorridor(t *testing.T) {
	n := NewRoadNetwork([]Road{HorizontalRoad(Point{0, 0}, 10)})
	d := newDog(orb.Point{2, 0}, 0, West)

	d.Move(n, 2200*time.Millisecond)
	assert.InDelta(t, -0.2, d.Pos.X(), 1e-9)
	assert.True(t, d.Moving())
}

func TestDog_ContinuesOntoNextRoad(t *testing.T) {
	n := NewRoadNetwork([]Road{
		HorizontalRoad(Point{0, 0}, 10),
		HorizontalRoad(Point{10, 0}, 20),
	})
	d := newDog(orb.Point{9, 0}, 0, East)

	d.Move(n, 5*time.Second)
	assert.InDelta(t, 14, d.Pos.X(), 1e-9)
	assert.Equal(t, RoadID(1), d.Road)
	assert.True(t, d.Moving())
}

func TestDog_TurnsAtCorner(t *testing.T) {
	n := NewRoadNetwork([]Road{
		HorizontalRoad(Point{0, 0}, 10),
		VerticalRoad(Point{10, 0}, 10),
	})
	d := newDog(orb.Point{10, 0}, 0, South)

	d.Move(n, 5*time.Second)
	assert.InDelta(t, 10, d.Pos.X(), 1e-9)
	assert.InDelta(t, 5, d.Pos.Y(), 1e-9)
	assert.Equal(t, RoadID(1), d.Road)
	assert.Equal(t, South, d.Dir)
}

func TestDog_CrossingRoadIsNotAnExit(t *testing.T) {
	n := NewRoadNetwork([]Road{
		HorizontalRoad(Point{0, 5}, 20),
		VerticalRoad(Point{10, 0}, 10),
	})
	d := newDog(orb.Point{10, 2}, 1, East)

	d.Move(n, time.Second)
	assert.InDelta(t, 10.4, d.Pos.X(), 1e-9)
	assert.Equal(t, RoadID(1), d.Road)
	assert.Zero(t, d.Velocity.X())
}

func TestDog_JunctionPicksFirstDeclaredRoad(t *testing.T) {
	n := NewRoadNetwork([]Road{
		HorizontalRoad(Point{0, 0}, 10),
		HorizontalRoad(Point{10, 0}, 30),
		HorizontalRoad(Point{10, 0}, 15),
	})
	d := newDog(orb.Point{10, 0}, 0, East)

	d.Move(n, 10*time.Second)
	assert.Equal(t, RoadID(1), d.Road)
	assert.InDelta(t, 20, d.Pos.X(), 1e-9)
}

func TestDog_HopBudgetEndsInDeadEnd(t *testing.T) {
	// identical overlapping roads would otherwise bounce between each other
	n := NewRoadNetwork([]Road{
		HorizontalRoad(Point{0, 0}, 1),
		HorizontalRoad(Point{0, 0}, 1),
		HorizontalRoad(Point{0, 0}, 1),
	})
	d := newDog(orb.Point{0, 0}, 0, East)

	d.Move(n, 100*time.Second)
	assert.InDelta(t, 1.4, d.Pos.X(), 1e-9)
	assert.False(t, d.Moving())
}

func TestDog_SteerNoneKeepsFacing(t *testing.T) {
	d := &Dog{Speed: 2.5}
	assert.True(t, d.Steer(West))
	assert.Equal(t, orb.Point{-2.5, 0}, d.Velocity)

	assert.False(t, d.Steer(None))
	assert.Equal(t, orb.Point{0, 0}, d.Velocity)
	assert.Equal(t, West, d.Dir)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"U", North, true},
		{"D", South, true},
		{"L", West, true},
		{"R", East, true},
		{"", None, true},
		{"X", None, false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if ok {
			assert.Equal(t, tt.in, got.String())
		}
	}
}
