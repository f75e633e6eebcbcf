// Package collision finds pickup interactions between moving gatherers and
// static items within one tick.
package collision

import (
	"sort"

	"github.com/paulmach/orb"
)

// Item is a static pickup target.
type Item struct {
	Position orb.Point
	Radius   float64
}

// Gatherer is a capture circle swept from Start to End during one tick.
type Gatherer struct {
	Start  orb.Point
	End    orb.Point
	Radius float64
}

// Provider exposes the items and gatherers of one map to FindGatherEvents.
type Provider interface {
	ItemsCount() int
	GetItem(idx int) Item
	GatherersCount() int
	GetGatherer(idx int) Gatherer
}

// Event is one detected pickup. GathererID and ItemID are provider indices.
type Event struct {
	ItemID     int
	GathererID int
	SqDistance float64
	Time       float64
}

// Result is the projection of a point onto the line through a segment.
type Result struct {
	SqDistance float64
	ProjRatio  float64
}

// IsCollected reports whether the projection falls on the segment and within
// collectRadius of the line.
func (r Result) IsCollected(collectRadius float64) bool {
	return r.ProjRatio >= 0 && r.ProjRatio <= 1 && r.SqDistance <= collectRadius*collectRadius
}

// TryCollect projects c onto the line through a and b. a and b must differ.
func TryCollect(a, b, c orb.Point) Result {
	ux := c.X() - a.X()
	uy := c.Y() - a.Y()
	vx := b.X() - a.X()
	vy := b.Y() - a.Y()
	uDotV := ux*vx + uy*vy
	uLen2 := ux*ux + uy*uy
	vLen2 := vx*vx + vy*vy

	return Result{
		SqDistance: uLen2 - (uDotV*uDotV)/vLen2,
		ProjRatio:  uDotV / vLen2,
	}
}

// FindGatherEvents returns every pickup of the tick ordered by time along the
// gatherer's path. Equal times keep discovery order (gatherer, then item).
func FindGatherEvents(p Provider) []Event {
	var events []Event
	for g := 0; g < p.GatherersCount(); g++ {
		gatherer := p.GetGatherer(g)
		if gatherer.Start == gatherer.End {
			continue
		}
		for i := 0; i < p.ItemsCount(); i++ {
			item := p.GetItem(i)
			res := TryCollect(gatherer.Start, gatherer.End, item.Position)
			if !res.IsCollected(item.Radius + gatherer.Radius) {
				continue
			}
			events = append(events, Event{
				ItemID:     i,
				GathererID: g,
				SqDistance: res.SqDistance,
				Time:       res.ProjRatio,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events
}

// SliceProvider is a Provider over plain slices.
type SliceProvider struct {
	Items     []Item
	Gatherers []Gatherer
}

func (s SliceProvider) ItemsCount() int              { return len(s.Items) }
func (s SliceProvider) GetItem(idx int) Item         { return s.Items[idx] }
func (s SliceProvider) GatherersCount() int          { return len(s.Gatherers) }
func (s SliceProvider) GetGatherer(idx int) Gatherer { return s.Gatherers[idx] }
