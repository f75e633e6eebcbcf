package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
)

// Saver writes the world to durable storage.
type Saver interface {
	Save() error
}

// AutosaveSystem saves the world every period of game time. A zero period
// disables it. Phase 4 (Persist).
type AutosaveSystem struct {
	saver   Saver
	period  time.Duration
	elapsed time.Duration
	log     *zap.Logger
}

func NewAutosaveSystem(saver Saver, period time.Duration, log *zap.Logger) *AutosaveSystem {
	return &AutosaveSystem{saver: saver, period: period, log: log}
}

func (s *AutosaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutosaveSystem) Update(dt time.Duration) {
	if s.period <= 0 {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.period {
		return
	}
	s.elapsed = 0
	start := time.Now()
	if err := s.saver.Save(); err != nil {
		s.log.Error("autosave failed", zap.Error(err))
		return
	}
	s.log.Info("autosave complete", zap.Duration("took", time.Since(start)))
}
