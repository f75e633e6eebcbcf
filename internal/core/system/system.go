package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseUpdate  Phase = iota // 0: movement, idle time, retirement
	PhaseGather               // 1: pickups along this tick's paths
	PhaseDeposit              // 2: bags emptied at offices
	PhaseSpawn                // 3: loot top-up
	PhasePersist              // 4: autosave
	PhaseCleanup              // 5: release retired players
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseGather:
		return "gather"
	case PhaseDeposit:
		return "deposit"
	case PhaseSpawn:
		return "spawn"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
