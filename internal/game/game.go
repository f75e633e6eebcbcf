// Package game wires the world state and tick systems into one Game and
// serializes access to it through Loop.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	coresys "github.com/dogloot/server/internal/core/system"
	"github.com/dogloot/server/internal/system"
	"github.com/dogloot/server/internal/world"
)

type Config struct {
	RandomizeSpawn  bool
	GathererRadius  float64
	LootPeriod      time.Duration
	LootProbability float64
	SnapshotPath    string
	AutosavePeriod  time.Duration
	Seed            int64
}

// Game is the whole simulation. It is not safe for concurrent use; Loop
// owns it and runs every call on one goroutine.
type Game struct {
	cfg    Config
	state  *world.State
	runner *coresys.Runner
	rng    *rand.Rand
	log    *zap.Logger
}

// New builds a game over already loaded maps. calc evaluates the loot
// formula for every map; retirer receives retired players.
func New(cfg Config, maps []*world.Map, calc system.LootCalculator, retirer world.Retirer, log *zap.Logger) (*Game, error) {
	if cfg.GathererRadius <= 0 {
		cfg.GathererRadius = system.DefaultGathererRadius
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:   cfg,
		state: world.NewState(retirer, log),
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
	}
	gens := make(map[world.MapID]system.Generator, len(maps))
	for _, m := range maps {
		if err := g.state.AddMap(m); err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
		gens[m.ID] = system.NewLootGenerator(calc, cfg.LootPeriod, cfg.LootProbability)
	}

	frame := system.NewFrame()
	g.runner = coresys.NewRunner()
	g.runner.Register(system.NewMovementSystem(g.state, frame, log))
	g.runner.Register(system.NewGatherSystem(g.state, frame, cfg.GathererRadius, log))
	g.runner.Register(system.NewDepositSystem(g.state, log))
	g.runner.Register(system.NewLootSystem(g.state, gens, g.rng, log))
	g.runner.Register(system.NewAutosaveSystem(g, cfg.AutosavePeriod, log))
	g.runner.Register(system.NewCleanupSystem(g.state, log))
	return g, nil
}

// Join adds a player to a map and returns its token.
func (g *Game) Join(name string, mapID world.MapID) (world.Token, world.PlayerID, error) {
	m, err := g.state.Map(mapID)
	if err != nil {
		return "", 0, err
	}
	pos, road := m.SpawnPoint(g.rng, g.cfg.RandomizeSpawn)
	p, err := g.state.Players.MakePlayer(name, m, pos, road)
	if err != nil {
		return "", 0, fmt.Errorf("join %s: %w", mapID, err)
	}
	g.log.Info("player joined",
		zap.Uint32("player", uint32(p.ID)),
		zap.String("name", p.Name),
		zap.String("map", string(mapID)),
	)
	return p.Token, p.ID, nil
}

// SetDirection steers the token's dog. None stops it.
func (g *Game) SetDirection(tok world.Token, dir world.Direction) error {
	p, ok := g.state.Players.FindByToken(tok)
	if !ok {
		return world.ErrUnknownToken
	}
	if p.Dog.Steer(dir) {
		p.IdleTime = 0
	}
	return nil
}

// Tick advances every map by dt.
func (g *Game) Tick(dt time.Duration) {
	g.runner.Tick(dt)
}

// State exposes the world for read-only inspection on the loop goroutine.
func (g *Game) State() *world.State { return g.state }
