package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/dogloot/server/internal/core/arena"
)

// RetiredPlayer is handed to the leaderboard when a player retires.
type RetiredPlayer struct {
	ID       uuid.UUID
	Name     string
	Score    int64
	PlayTime time.Duration
}

// Retirer persists retired players. Implementations must not block the
// game loop.
type Retirer interface {
	RetirePlayer(rp RetiredPlayer)
}

type nopRetirer struct{}

func (nopRetirer) RetirePlayer(RetiredPlayer) {}

// Registry owns every active player. Lookups by token and by id, and the
// per-map rosters, always hold the same set of players.
type Registry struct {
	arena   *arena.Arena
	players *arena.Store[Player]

	byToken map[Token]arena.Handle
	byID    map[PlayerID]arena.Handle
	rosters map[MapID][]arena.Handle
	nextID  PlayerID

	retirer Retirer
	log     *zap.Logger
}

func NewRegistry(retirer Retirer, log *zap.Logger) *Registry {
	if retirer == nil {
		retirer = nopRetirer{}
	}
	a := arena.New()
	players := arena.NewStore[Player]()
	a.Register(players)
	return &Registry{
		arena:   a,
		players: players,
		byToken: make(map[Token]arena.Handle),
		byID:    make(map[PlayerID]arena.Handle),
		rosters: make(map[MapID][]arena.Handle),
		retirer: retirer,
		log:     log,
	}
}

// MakePlayer creates a player and its dog at pos on road.
func (r *Registry) MakePlayer(name string, m *Map, pos orb.Point, road RoadID) (*Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	tok := NewToken()
	for {
		if _, dup := r.byToken[tok]; !dup {
			break
		}
		tok = NewToken()
	}
	p := Player{
		ID:    r.nextID,
		Name:  name,
		MapID: m.ID,
		Token: tok,
		Dog: Dog{
			Pos:   pos,
			Road:  road,
			Speed: m.DogSpeed,
			Dir:   North,
		},
		Bag: NewBag(m.BagCapacity),
	}
	return r.Insert(p)
}

// Insert adds a fully built player, as restored from a snapshot.
func (r *Registry) Insert(p Player) (*Player, error) {
	if _, dup := r.byToken[p.Token]; dup {
		return nil, fmt.Errorf("insert player %d token: %w", p.ID, ErrDuplicateID)
	}
	if _, dup := r.byID[p.ID]; dup {
		return nil, fmt.Errorf("insert player %d: %w", p.ID, ErrDuplicateID)
	}
	h := r.arena.Create()
	p.Handle = h
	p.Retired = false
	r.players.Set(h, &p)
	r.byToken[p.Token] = h
	r.byID[p.ID] = h
	r.rosters[p.MapID] = append(r.rosters[p.MapID], h)
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	return &p, nil
}

func (r *Registry) FindByToken(tok Token) (*Player, bool) {
	h, ok := r.byToken[ParseToken(string(tok))]
	if !ok {
		return nil, false
	}
	return r.players.Get(h)
}

func (r *Registry) FindByID(id PlayerID) (*Player, bool) {
	h, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.players.Get(h)
}

// Get resolves a handle. Retired players stay reachable until cleanup.
func (r *Registry) Get(h arena.Handle) (*Player, bool) {
	if !r.arena.Alive(h) {
		return nil, false
	}
	return r.players.Get(h)
}

// Retire removes the player from every index and hands it to the Retirer.
// Retiring an already retired player does nothing.
func (r *Registry) Retire(h arena.Handle) bool {
	p, ok := r.Get(h)
	if !ok || p.Retired {
		return false
	}
	p.Retired = true
	delete(r.byToken, p.Token)
	delete(r.byID, p.ID)
	roster := r.rosters[p.MapID]
	for i, rh := range roster {
		if rh == h {
			r.rosters[p.MapID] = append(roster[:i], roster[i+1:]...)
			break
		}
	}
	r.arena.MarkForRelease(h)

	r.log.Info("player retired",
		zap.Uint32("player", uint32(p.ID)),
		zap.String("name", p.Name),
		zap.Int64("score", p.Score),
		zap.Duration("age", p.Age),
	)
	r.retirer.RetirePlayer(RetiredPlayer{
		ID:       uuid.New(),
		Name:     p.Name,
		Score:    p.Score,
		PlayTime: p.Age,
	})
	return true
}

// Roster returns the active players of a map in join order.
func (r *Registry) Roster(id MapID) []*Player {
	hs := r.rosters[id]
	out := make([]*Player, 0, len(hs))
	for _, h := range hs {
		if p, ok := r.players.Get(h); ok {
			out = append(out, p)
		}
	}
	return out
}

// Looters returns the map's players whose bag still has room.
func (r *Registry) Looters(id MapID) []*Player {
	var out []*Player
	for _, p := range r.Roster(id) {
		if p.Looter() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) LooterPositions(id MapID) []orb.Point {
	looters := r.Looters(id)
	out := make([]orb.Point, len(looters))
	for i, p := range looters {
		out[i] = p.Dog.Pos
	}
	return out
}

func (r *Registry) Count(id MapID) int { return len(r.rosters[id]) }
func (r *Registry) Len() int           { return len(r.byToken) }

// Flush releases the arena slots of players retired since the last flush.
func (r *Registry) Flush() int { return r.arena.Flush() }

// PendingRelease reports retired players whose slots are not yet released.
func (r *Registry) PendingRelease() int { return r.arena.PendingRelease() }

// NextID is the id the next joining player gets.
func (r *Registry) NextID() PlayerID { return r.nextID }

// SetNextID raises the id counter, used when restoring a snapshot.
func (r *Registry) SetNextID(id PlayerID) {
	if id > r.nextID {
		r.nextID = id
	}
}
