package world

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRetirer struct {
	mock.Mock
}

func (m *mockRetirer) RetirePlayer(rp RetiredPlayer) {
	m.Called(rp)
}

func TestRegistry_MakePlayer(t *testing.T) {
	m := testMap(t)
	m.DogSpeed = 3
	m.BagCapacity = 2
	r := NewRegistry(nil, zap.NewNop())

	p, err := r.MakePlayer("  Rex ", m, orb.Point{0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Rex", p.Name)
	assert.Equal(t, 3.0, p.Dog.Speed)
	assert.Equal(t, 2, p.Bag.Capacity)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), string(p.Token))

	got, ok := r.FindByToken(Token(strings.ToUpper(string(p.Token))))
	require.True(t, ok)
	assert.Same(t, p, got)

	byID, ok := r.FindByID(p.ID)
	require.True(t, ok)
	assert.Same(t, p, byID)

	q, err := r.MakePlayer("Fido", m, orb.Point{0, 0}, 0)
	require.NoError(t, err)
	assert.NotEqual(t, p.Token, q.Token)
	assert.Equal(t, p.ID+1, q.ID)
	assert.Equal(t, []*Player{p, q}, r.Roster(m.ID))
}

func TestRegistry_MakePlayerRejectsBlankName(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())
	_, err := r.MakePlayer(" ", testMap(t), orb.Point{}, 0)
	assert.True(t, errors.Is(err, ErrInvalidName))
	assert.Zero(t, r.Len())
}

func TestRegistry_RetireIsIdempotent(t *testing.T) {
	m := testMap(t)
	ret := &mockRetirer{}
	r := NewRegistry(ret, zap.NewNop())

	p, err := r.MakePlayer("Rex", m, orb.Point{}, 0)
	require.NoError(t, err)
	p.Score = 42
	p.Age = 3 * time.Second

	ret.On("RetirePlayer", mock.MatchedBy(func(rp RetiredPlayer) bool {
		return rp.Name == "Rex" && rp.Score == 42 && rp.PlayTime == 3*time.Second
	})).Once()

	assert.True(t, r.Retire(p.Handle))
	assert.False(t, r.Retire(p.Handle))
	ret.AssertExpectations(t)

	_, ok := r.FindByToken(p.Token)
	assert.False(t, ok)
	assert.Empty(t, r.Roster(m.ID))
	assert.Zero(t, r.Count(m.ID))

	// the slot survives until cleanup so the tick can still read it
	_, ok = r.Get(p.Handle)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Flush())
	_, ok = r.Get(p.Handle)
	assert.False(t, ok)
}

func TestRegistry_InsertRejectsDuplicates(t *testing.T) {
	m := testMap(t)
	r := NewRegistry(nil, zap.NewNop())
	p, err := r.MakePlayer("Rex", m, orb.Point{}, 0)
	require.NoError(t, err)

	_, err = r.Insert(Player{ID: 77, Name: "Dup", MapID: m.ID, Token: p.Token})
	assert.True(t, errors.Is(err, ErrDuplicateID))
	_, err = r.Insert(Player{ID: p.ID, Name: "Dup", MapID: m.ID, Token: NewToken()})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []*Player{p}, r.Roster(m.ID))
}

func TestRegistry_Looters(t *testing.T) {
	m := testMap(t)
	m.BagCapacity = 1
	r := NewRegistry(nil, zap.NewNop())
	a, _ := r.MakePlayer("A", m, orb.Point{1, 0}, 0)
	b, _ := r.MakePlayer("B", m, orb.Point{2, 0}, 0)
	b.Bag.Add(Item{ID: 1})

	assert.Equal(t, []*Player{a}, r.Looters(m.ID))
	assert.Equal(t, []orb.Point{{1, 0}}, r.LooterPositions(m.ID))
}
