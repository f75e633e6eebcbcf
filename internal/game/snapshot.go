package game

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/dogloot/server/internal/snapshot"
	"github.com/dogloot/server/internal/world"
)

// Snapshot captures every map's loot and every active player.
func (g *Game) Snapshot() *snapshot.SnapshotV1 {
	snap := &snapshot.SnapshotV1{
		Header:       snapshot.Header{SavedAt: time.Now().UTC()},
		NextPlayerID: uint32(g.state.Players.NextID()),
	}
	for _, m := range g.state.Maps() {
		snap.Maps = append(snap.Maps, snapshot.MapV1{
			ID:         string(m.ID),
			NextItemID: m.NextItemID(),
			Items:      itemsToV1(m.Items()),
		})
		roads := m.Network()
		for _, p := range g.state.Players.Roster(m.ID) {
			road := roads.Road(p.Dog.Road)
			snap.Players = append(snap.Players, snapshot.PlayerV1{
				ID:       uint32(p.ID),
				Name:     p.Name,
				MapID:    string(p.MapID),
				Token:    string(p.Token),
				Score:    p.Score,
				IdleTime: p.IdleTime,
				Age:      p.Age,
				BagCap:   p.Bag.Capacity,
				Bag:      itemsToV1(p.Bag.Items),
				Dog: snapshot.DogV1{
					X:     p.Dog.Pos.X(),
					Y:     p.Dog.Pos.Y(),
					VX:    p.Dog.Velocity.X(),
					VY:    p.Dog.Velocity.Y(),
					Speed: p.Dog.Speed,
					Dir:   p.Dog.Dir.String(),
					Road: snapshot.RoadV1{
						StartX: road.Start.X, StartY: road.Start.Y,
						EndX: road.End.X, EndY: road.End.Y,
					},
				},
			})
		}
	}
	return snap
}

// Save writes the world to the configured snapshot path. Without a path it
// does nothing.
func (g *Game) Save() error {
	if g.cfg.SnapshotPath == "" {
		return nil
	}
	if err := snapshot.Write(g.cfg.SnapshotPath, g.Snapshot()); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// Load restores the world from a snapshot file.
func (g *Game) Load(path string) error {
	snap, err := snapshot.Read(path)
	if err != nil {
		return err
	}
	return g.Restore(snap)
}

// Restore replaces the loot and players with the snapshot's. Maps missing
// from the snapshot lose their loot. Everything is validated before the
// world is touched; on error the world is unchanged.
func (g *Game) Restore(snap *snapshot.SnapshotV1) error {
	type mapItems struct {
		m      *world.Map
		items  []world.Item
		nextID int
	}
	staged := make([]mapItems, 0, len(snap.Maps))
	for _, mv := range snap.Maps {
		m, err := g.state.Map(world.MapID(mv.ID))
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		items, err := itemsFromV1(mv.Items, m)
		if err != nil {
			return fmt.Errorf("restore map %s: %w", mv.ID, err)
		}
		staged = append(staged, mapItems{m: m, items: items, nextID: mv.NextItemID})
	}

	reg := g.state.NewRegistry()
	for _, pv := range snap.Players {
		p, err := g.playerFromV1(pv)
		if err != nil {
			return fmt.Errorf("restore player %d: %w", pv.ID, err)
		}
		if _, err := reg.Insert(p); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	reg.SetNextID(world.PlayerID(snap.NextPlayerID))

	restored := make(map[world.MapID]bool, len(staged))
	for _, s := range staged {
		s.m.SetItems(s.items, s.nextID)
		restored[s.m.ID] = true
	}
	// maps the save does not mention start empty; ids keep counting up
	for _, m := range g.state.Maps() {
		if !restored[m.ID] {
			m.SetItems(nil, m.NextItemID())
		}
	}
	g.state.ReplacePlayers(reg)

	g.log.Info("world restored",
		zap.Int("maps", len(snap.Maps)),
		zap.Int("players", len(snap.Players)),
		zap.Time("saved_at", snap.Header.SavedAt),
	)
	return nil
}

func (g *Game) playerFromV1(pv snapshot.PlayerV1) (world.Player, error) {
	m, err := g.state.Map(world.MapID(pv.MapID))
	if err != nil {
		return world.Player{}, err
	}
	road, ok := m.Network().Find(
		world.Point{X: pv.Dog.Road.StartX, Y: pv.Dog.Road.StartY},
		world.Point{X: pv.Dog.Road.EndX, Y: pv.Dog.Road.EndY},
	)
	if !ok {
		return world.Player{}, world.ErrRoadNotFound
	}
	pos := orb.Point{pv.Dog.X, pv.Dog.Y}
	if !m.Network().Road(road).Contains(pos) {
		return world.Player{}, fmt.Errorf("dog at (%g, %g) off its road: %w", pos.X(), pos.Y(), snapshot.ErrCorrupt)
	}
	dir, ok := world.ParseDirection(pv.Dog.Dir)
	if !ok || dir == world.None {
		return world.Player{}, fmt.Errorf("direction %q: %w", pv.Dog.Dir, snapshot.ErrCorrupt)
	}
	name, err := world.NormalizeName(pv.Name)
	if err != nil {
		return world.Player{}, err
	}
	tok := world.ParseToken(pv.Token)
	if len(tok) == 0 {
		return world.Player{}, fmt.Errorf("empty token: %w", snapshot.ErrCorrupt)
	}
	bagCap := pv.BagCap
	if bagCap == 0 {
		bagCap = m.BagCapacity
	}
	if len(pv.Bag) > bagCap {
		return world.Player{}, fmt.Errorf("bag holds %d of %d: %w", len(pv.Bag), bagCap, snapshot.ErrCorrupt)
	}
	bagItems, err := itemsFromV1(pv.Bag, nil)
	if err != nil {
		return world.Player{}, err
	}
	bag := world.NewBag(bagCap)
	bag.Items = append(bag.Items, bagItems...)

	return world.Player{
		ID:    world.PlayerID(pv.ID),
		Name:  name,
		MapID: m.ID,
		Token: tok,
		Dog: world.Dog{
			Pos:      pos,
			Road:     road,
			Velocity: orb.Point{pv.Dog.VX, pv.Dog.VY},
			Speed:    pv.Dog.Speed,
			Dir:      dir,
		},
		Bag:      bag,
		Score:    pv.Score,
		IdleTime: pv.IdleTime,
		Age:      pv.Age,
	}, nil
}

func itemsToV1(items []world.Item) []snapshot.ItemV1 {
	out := make([]snapshot.ItemV1, len(items))
	for i, it := range items {
		out[i] = snapshot.ItemV1{
			ID:     it.ID,
			X:      it.Pos.X(),
			Y:      it.Pos.Y(),
			Radius: it.Radius,
			Type:   it.Type,
			Value:  it.Value,
		}
	}
	return out
}

// itemsFromV1 converts saved items. With a map, item ids must be unique and
// types must exist in its loot table.
func itemsFromV1(in []snapshot.ItemV1, m *world.Map) ([]world.Item, error) {
	out := make([]world.Item, len(in))
	seen := make(map[int]bool, len(in))
	for i, iv := range in {
		if m != nil {
			if seen[iv.ID] {
				return nil, fmt.Errorf("item %d: %w", iv.ID, world.ErrDuplicateID)
			}
			seen[iv.ID] = true
			if iv.Type < 0 || iv.Type >= len(m.LootTypes) {
				return nil, fmt.Errorf("item %d type %d: %w", iv.ID, iv.Type, snapshot.ErrCorrupt)
			}
		}
		out[i] = world.Item{
			ID:     iv.ID,
			Pos:    orb.Point{iv.X, iv.Y},
			Radius: iv.Radius,
			Type:   iv.Type,
			Value:  iv.Value,
		}
	}
	return out, nil
}
