package world

// Bag is a player's loot, in pickup order, bounded by the map's capacity.
type Bag struct {
	Items    []Item
	Capacity int
}

func NewBag(capacity int) Bag {
	return Bag{Items: make([]Item, 0, capacity), Capacity: capacity}
}

func (b *Bag) Full() bool { return len(b.Items) >= b.Capacity }
func (b *Bag) Len() int   { return len(b.Items) }

// Add puts an item in the bag. Returns false when the bag is full.
func (b *Bag) Add(it Item) bool {
	if b.Full() {
		return false
	}
	b.Items = append(b.Items, it)
	return true
}

// Value is the score the bag is worth at a depot.
func (b *Bag) Value() int64 {
	var sum int64
	for _, it := range b.Items {
		sum += it.Value
	}
	return sum
}

// Empty drops every item and returns their total value.
func (b *Bag) Empty() int64 {
	v := b.Value()
	b.Items = b.Items[:0]
	return v
}
