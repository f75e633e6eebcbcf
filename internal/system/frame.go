package system

import (
	"github.com/paulmach/orb"

	"github.com/dogloot/server/internal/core/arena"
	"github.com/dogloot/server/internal/world"
)

// LooterStart is where a looter stood before this tick's movement.
type LooterStart struct {
	Handle arena.Handle
	Pos    orb.Point
}

// Frame carries data between the phases of one tick.
type Frame struct {
	starts map[world.MapID][]LooterStart
}

func NewFrame() *Frame {
	return &Frame{starts: make(map[world.MapID][]LooterStart)}
}

func (f *Frame) reset() {
	for id := range f.starts {
		delete(f.starts, id)
	}
}

// Starts returns the looters of a map in roster order, as recorded before
// movement.
func (f *Frame) Starts(id world.MapID) []LooterStart { return f.starts[id] }
