package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/world"
)

// CleanupSystem releases the arena slots of players retired this tick.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.Players.Flush(); n > 0 {
		s.log.Debug("released retired players", zap.Int("count", n))
	}
}
