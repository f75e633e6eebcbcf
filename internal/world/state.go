package world

import (
	"fmt"

	"go.uber.org/zap"
)

// State is the whole mutable world: every map and the player registry.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	maps    []*Map
	byID    map[MapID]*Map
	Players *Registry

	retirer Retirer
	log     *zap.Logger
}

func NewState(retirer Retirer, log *zap.Logger) *State {
	return &State{
		byID:    make(map[MapID]*Map),
		Players: NewRegistry(retirer, log),
		retirer: retirer,
		log:     log,
	}
}

// NewRegistry returns an empty registry wired like the live one. Restore
// fills it off to the side and then swaps it in with ReplacePlayers.
func (s *State) NewRegistry() *Registry {
	return NewRegistry(s.retirer, s.log)
}

func (s *State) ReplacePlayers(r *Registry) {
	s.Players = r
}

// AddMap registers a map. Map ids are unique.
func (s *State) AddMap(m *Map) error {
	if _, ok := s.byID[m.ID]; ok {
		return fmt.Errorf("add map %s: %w", m.ID, ErrDuplicateID)
	}
	s.byID[m.ID] = m
	s.maps = append(s.maps, m)
	return nil
}

func (s *State) Map(id MapID) (*Map, error) {
	m, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("map %s: %w", id, ErrMapNotFound)
	}
	return m, nil
}

// Maps returns every map in load order.
func (s *State) Maps() []*Map { return s.maps }
