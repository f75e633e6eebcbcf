package game

import (
	"github.com/paulmach/orb"

	"github.com/dogloot/server/internal/world"
)

type BagItemView struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

type PlayerView struct {
	ID    world.PlayerID `json:"id"`
	Name  string         `json:"name"`
	Pos   orb.Point      `json:"pos"`
	Speed orb.Point      `json:"speed"`
	Dir   string         `json:"dir"`
	Bag   []BagItemView  `json:"bag"`
	Score int64          `json:"score"`
}

type ItemView struct {
	ID   int       `json:"id"`
	Type int       `json:"type"`
	Pos  orb.Point `json:"pos"`
}

// WorldView is what one player sees: everyone on its map and the loot
// lying there. Views are copies and safe to hand to other goroutines.
type WorldView struct {
	MapID   world.MapID  `json:"map"`
	Players []PlayerView `json:"players"`
	Items   []ItemView   `json:"lostObjects"`
}

// View builds the world view for the token's player.
func (g *Game) View(tok world.Token) (WorldView, error) {
	self, ok := g.state.Players.FindByToken(tok)
	if !ok {
		return WorldView{}, world.ErrUnknownToken
	}
	m, err := g.state.Map(self.MapID)
	if err != nil {
		return WorldView{}, err
	}

	v := WorldView{MapID: m.ID}
	for _, p := range g.state.Players.Roster(m.ID) {
		bag := make([]BagItemView, len(p.Bag.Items))
		for i, it := range p.Bag.Items {
			bag[i] = BagItemView{ID: it.ID, Type: it.Type}
		}
		v.Players = append(v.Players, PlayerView{
			ID:    p.ID,
			Name:  p.Name,
			Pos:   p.Dog.Pos,
			Speed: p.Dog.Velocity,
			Dir:   p.Dog.Dir.String(),
			Bag:   bag,
			Score: p.Score,
		})
	}
	for _, it := range m.Items() {
		v.Items = append(v.Items, ItemView{ID: it.ID, Type: it.Type, Pos: it.Pos})
	}
	return v, nil
}

type MapInfo struct {
	ID   world.MapID `json:"id"`
	Name string      `json:"name"`
}

// MapList lists the maps players can join.
func (g *Game) MapList() []MapInfo {
	maps := g.state.Maps()
	out := make([]MapInfo, len(maps))
	for i, m := range maps {
		out[i] = MapInfo{ID: m.ID, Name: m.Name}
	}
	return out
}
