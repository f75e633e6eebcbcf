package system

import (
	"time"

	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/world"
)

// DepositRadius is how close to an office a dog must stand to hand in loot.
const DepositRadius = 0.55

// depositSlack absorbs float error for dogs exactly on the radius.
const depositSlack = 1e-9

// DepositSystem turns the bags of players standing at an office into score.
// Phase 2 (Deposit).
type DepositSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewDepositSystem(ws *world.State, log *zap.Logger) *DepositSystem {
	return &DepositSystem{world: ws, log: log}
}

func (s *DepositSystem) Phase() coresys.Phase { return coresys.PhaseDeposit }

func (s *DepositSystem) Update(_ time.Duration) {
	for _, m := range s.world.Maps() {
		offices := m.Offices()
		if len(offices) == 0 {
			continue
		}
		for _, p := range s.world.Players.Roster(m.ID) {
			if p.Bag.Len() == 0 {
				continue
			}
			for _, o := range offices {
				if planar.Distance(p.Dog.Pos, o.Pos.Orb()) > DepositRadius+depositSlack {
					continue
				}
				n := p.Bag.Len()
				v := p.Bag.Empty()
				p.Score += v
				s.log.Debug("loot deposited",
					zap.String("map", string(m.ID)),
					zap.Uint32("player", uint32(p.ID)),
					zap.String("office", o.ID),
					zap.Int("items", n),
					zap.Int64("value", v),
				)
				break
			}
		}
	}
}
