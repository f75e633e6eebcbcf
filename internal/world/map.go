package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
)

type MapID string

type Size struct {
	Width, Height int
}

// Building is static scenery. It does not take part in movement or pickups.
type Building struct {
	Pos  Point
	Size Size
}

// Office is a depot where carried loot turns into score.
type Office struct {
	ID     string
	Pos    Point
	Offset Point
}

// Map is one independent playing field. Roads are fixed at construction;
// items change every tick.
type Map struct {
	ID   MapID
	Name string

	DogSpeed     float64
	BagCapacity  int
	AFKThreshold time.Duration
	LootTypes    []LootType

	network   *RoadNetwork
	buildings []Building
	offices   []Office
	officeIdx map[string]int

	items      []Item
	nextItemID int
}

// NewMap builds a map and its road network. A map needs at least one road
// because dogs spawn on and never leave the network.
func NewMap(id MapID, name string, roads []Road) (*Map, error) {
	if len(roads) == 0 {
		return nil, fmt.Errorf("map %s: %w", id, ErrNoRoads)
	}
	return &Map{
		ID:          id,
		Name:        name,
		DogSpeed:    1,
		BagCapacity: 3,
		network:     NewRoadNetwork(roads),
		officeIdx:   make(map[string]int),
	}, nil
}

func (m *Map) Network() *RoadNetwork { return m.network }
func (m *Map) Buildings() []Building { return m.buildings }
func (m *Map) Offices() []Office     { return m.offices }

func (m *Map) AddBuilding(b Building) {
	m.buildings = append(m.buildings, b)
}

// AddOffice registers a depot. Office ids are unique per map.
func (m *Map) AddOffice(o Office) error {
	if _, ok := m.officeIdx[o.ID]; ok {
		return fmt.Errorf("office %q on map %s: %w", o.ID, m.ID, ErrDuplicateID)
	}
	m.officeIdx[o.ID] = len(m.offices)
	m.offices = append(m.offices, o)
	return nil
}

// RandomSpot picks a random road and a random grid point along it.
func (m *Map) RandomSpot(rng *rand.Rand) (orb.Point, RoadID) {
	id := RoadID(rng.Intn(m.network.Len()))
	road := m.network.Road(id)
	if road.Horizontal() {
		lo, hi := road.extent(axisX)
		x := lo + float64(rng.Intn(int(hi-lo)+1))
		return orb.Point{x, float64(road.Start.Y)}, id
	}
	lo, hi := road.extent(axisY)
	y := lo + float64(rng.Intn(int(hi-lo)+1))
	return orb.Point{float64(road.Start.X), y}, id
}

// SpawnPoint is where a new dog appears: the start of the first road, or a
// random road spot when randomize is set.
func (m *Map) SpawnPoint(rng *rand.Rand, randomize bool) (orb.Point, RoadID) {
	if randomize {
		return m.RandomSpot(rng)
	}
	return m.network.Road(0).Start.Orb(), 0
}

// Items returns the loot lying on the map in spawn order. The slice is
// owned by the map; callers must not keep it across mutations.
func (m *Map) Items() []Item { return m.items }

func (m *Map) ItemCount() int  { return len(m.items) }
func (m *Map) NextItemID() int { return m.nextItemID }

// AddItem places loot on the map under a fresh id.
func (m *Map) AddItem(pos orb.Point, lootType int) Item {
	it := Item{
		ID:     m.nextItemID,
		Pos:    pos,
		Radius: DefaultItemRadius,
		Type:   lootType,
		Value:  m.LootTypes[lootType].Value,
	}
	m.nextItemID++
	m.items = append(m.items, it)
	return it
}

// RemoveItem takes an item off the map, keeping the order of the rest.
func (m *Map) RemoveItem(id int) (Item, bool) {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

// SetItems replaces the map's loot. nextID is raised past every restored id.
func (m *Map) SetItems(items []Item, nextID int) {
	m.items = append(make([]Item, 0, len(items)), items...)
	for _, it := range items {
		if it.ID >= nextID {
			nextID = it.ID + 1
		}
	}
	m.nextItemID = nextID
}
