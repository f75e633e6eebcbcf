package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/dogloot/server/internal/collision"
	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/world"
)

// DefaultGathererRadius is half a dog's width.
const DefaultGathererRadius = 0.3

// GatherSystem moves loot crossed by a looter's path this tick into its bag.
// Pickups apply in path order; an item goes to the first looter that reaches
// it and full bags take nothing more. Phase 1 (Gather).
type GatherSystem struct {
	world  *world.State
	frame  *Frame
	radius float64
	log    *zap.Logger
}

func NewGatherSystem(ws *world.State, frame *Frame, radius float64, log *zap.Logger) *GatherSystem {
	return &GatherSystem{world: ws, frame: frame, radius: radius, log: log}
}

func (s *GatherSystem) Phase() coresys.Phase { return coresys.PhaseGather }

func (s *GatherSystem) Update(_ time.Duration) {
	for _, m := range s.world.Maps() {
		s.gatherMap(m)
	}
}

func (s *GatherSystem) gatherMap(m *world.Map) {
	if m.ItemCount() == 0 {
		return
	}

	// pair start and end positions by player; retired players drop out
	var (
		looters   []*world.Player
		gatherers []collision.Gatherer
	)
	for _, st := range s.frame.Starts(m.ID) {
		p, ok := s.world.Players.Get(st.Handle)
		if !ok || p.Retired {
			continue
		}
		looters = append(looters, p)
		gatherers = append(gatherers, collision.Gatherer{
			Start:  st.Pos,
			End:    p.Dog.Pos,
			Radius: s.radius,
		})
	}
	if len(gatherers) == 0 {
		return
	}

	items := append([]world.Item(nil), m.Items()...)
	targets := make([]collision.Item, len(items))
	for i, it := range items {
		targets[i] = collision.Item{Position: it.Pos, Radius: it.Radius}
	}

	events := collision.FindGatherEvents(collision.SliceProvider{
		Items:     targets,
		Gatherers: gatherers,
	})
	taken := make([]bool, len(items))
	for _, ev := range events {
		if taken[ev.ItemID] {
			continue
		}
		p := looters[ev.GathererID]
		if p.Bag.Full() {
			continue
		}
		it, ok := m.RemoveItem(items[ev.ItemID].ID)
		if !ok {
			continue
		}
		taken[ev.ItemID] = true
		p.Bag.Add(it)
		s.log.Debug("item collected",
			zap.String("map", string(m.ID)),
			zap.Uint32("player", uint32(p.ID)),
			zap.Int("item", it.ID),
			zap.Float64("t", ev.Time),
		)
	}
}
