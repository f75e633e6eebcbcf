package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/scripting"
	"github.com/dogloot/server/internal/world"
)

// Generator decides how many items to spawn on a map this tick.
type Generator interface {
	Generate(elapsed time.Duration, items, looters int) (int, error)
}

// LootCalculator evaluates the loot formula. *scripting.Engine implements it.
type LootCalculator interface {
	CalcLootCount(ctx scripting.LootContext) (int, error)
}

// LootGenerator tracks how long its map has gone without new loot and asks
// the calculator for a count.
type LootGenerator struct {
	calc        LootCalculator
	period      time.Duration
	probability float64
	sinceLoot   time.Duration
}

func NewLootGenerator(calc LootCalculator, period time.Duration, probability float64) *LootGenerator {
	return &LootGenerator{calc: calc, period: period, probability: probability}
}

func (g *LootGenerator) Generate(elapsed time.Duration, items, looters int) (int, error) {
	g.sinceLoot += elapsed
	n, err := g.calc.CalcLootCount(scripting.LootContext{
		Looters:         looters,
		Items:           items,
		Probability:     g.probability,
		Period:          g.period,
		TimeWithoutLoot: g.sinceLoot,
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		g.sinceLoot = 0
	}
	return n, nil
}

// LootSystem tops up every map's loot. Each new item gets a uniformly drawn
// type from the map's loot table and a random spot on a random road.
// Phase 3 (Spawn).
type LootSystem struct {
	world      *world.State
	generators map[world.MapID]Generator
	rng        *rand.Rand
	log        *zap.Logger
}

func NewLootSystem(ws *world.State, generators map[world.MapID]Generator, rng *rand.Rand, log *zap.Logger) *LootSystem {
	return &LootSystem{world: ws, generators: generators, rng: rng, log: log}
}

func (s *LootSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *LootSystem) Update(dt time.Duration) {
	for _, m := range s.world.Maps() {
		gen, ok := s.generators[m.ID]
		if !ok || len(m.LootTypes) == 0 {
			continue
		}
		n, err := gen.Generate(dt, m.ItemCount(), s.world.Players.Count(m.ID))
		if err != nil {
			s.log.Error("loot generator failed", zap.String("map", string(m.ID)), zap.Error(err))
			continue
		}
		for i := 0; i < n; i++ {
			pos, _ := m.RandomSpot(s.rng)
			it := m.AddItem(pos, s.rng.Intn(len(m.LootTypes)))
			s.log.Debug("item generated",
				zap.String("map", string(m.ID)),
				zap.Int("item", it.ID),
				zap.Int("type", it.Type),
				zap.Float64("x", it.Pos.X()),
				zap.Float64("y", it.Pos.Y()),
			)
		}
	}
}
