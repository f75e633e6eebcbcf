package world

import "github.com/paulmach/orb"

// DefaultItemRadius is the pickup radius of spawned loot.
const DefaultItemRadius = 0.3

// Item is a piece of loot lying on a map or carried in a bag.
type Item struct {
	ID     int
	Pos    orb.Point
	Radius float64
	Type   int
	Value  int64
}

// LootType is one entry of a map's loot table.
type LootType struct {
	Name  string
	Value int64
}
