package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/world"
)

// MovementSystem moves every dog, tracks idle time and retires players who
// stood still past their map's AFK threshold. It also records the looter
// start positions the gather phase pairs with the post-move positions.
// Phase 0 (Update).
type MovementSystem struct {
	world *world.State
	frame *Frame
	log   *zap.Logger
}

func NewMovementSystem(ws *world.State, frame *Frame, log *zap.Logger) *MovementSystem {
	return &MovementSystem{world: ws, frame: frame, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.frame.reset()
	for _, m := range s.world.Maps() {
		s.updateMap(m, dt)
	}
}

func (s *MovementSystem) updateMap(m *world.Map, dt time.Duration) {
	players := s.world.Players
	roster := players.Roster(m.ID)

	starts := make([]LooterStart, 0, len(roster))
	for _, p := range roster {
		if p.Looter() {
			starts = append(starts, LooterStart{Handle: p.Handle, Pos: p.Dog.Pos})
		}
	}
	s.frame.starts[m.ID] = starts

	for _, p := range roster {
		moving := p.Dog.Moving()
		p.Dog.Move(m.Network(), dt)
		p.Age += dt
		if moving {
			p.IdleTime = 0
			continue
		}
		p.IdleTime += dt
		if m.AFKThreshold > 0 && p.IdleTime > m.AFKThreshold {
			// play time stops counting at the threshold
			p.Age -= p.IdleTime - m.AFKThreshold
			players.Retire(p.Handle)
		}
	}
}
