package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dogloot/server/internal/world"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upsert(ctx context.Context, row RetiredRow) error {
	return m.Called(row).Error(0)
}

func (m *mockStore) Top(ctx context.Context, start, maxItems int) ([]RetiredRow, error) {
	args := m.Called(start, maxItems)
	return args.Get(0).([]RetiredRow), args.Error(1)
}

func TestRetiredWriter_PersistsToSQLite(t *testing.T) {
	repo := openTestSQLite(t)
	w := NewRetiredWriter(repo, 8, zap.NewNop())

	w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "rex", Score: 10, PlayTime: 3 * time.Second})
	w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "fido", Score: 20, PlayTime: time.Second})
	w.Close()

	rows, err := repo.Top(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fido", "rex"}, names(rows))
}

func TestRetiredWriter_StoreErrorIsLoggedNotFatal(t *testing.T) {
	store := &mockStore{}
	store.On("Upsert", mock.MatchedBy(func(r RetiredRow) bool { return r.Name == "bad" })).Return(errors.New("db down"))
	store.On("Upsert", mock.MatchedBy(func(r RetiredRow) bool { return r.Name == "good" })).Return(nil)

	w := NewRetiredWriter(store, 4, zap.NewNop())
	w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "bad"})
	w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "good"})
	w.Close()

	store.AssertNumberOfCalls(t, "Upsert", 2)
}

type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	rows    []RetiredRow
}

func (s *blockingStore) Upsert(_ context.Context, row RetiredRow) error {
	<-s.release
	s.mu.Lock()
	s.rows = append(s.rows, row)
	s.mu.Unlock()
	return nil
}

func (s *blockingStore) Top(context.Context, int, int) ([]RetiredRow, error) { return nil, nil }

func TestRetiredWriter_FullQueueDropsWithoutBlocking(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	w := NewRetiredWriter(store, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "dog"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RetirePlayer blocked on a slow store")
	}

	close(store.release)
	w.Close()
	assert.LessOrEqual(t, len(store.rows), 2)
	assert.NotEmpty(t, store.rows)
}

func TestRetiredWriter_AfterCloseDrops(t *testing.T) {
	store := &mockStore{}
	w := NewRetiredWriter(store, 1, zap.NewNop())
	w.Close()
	w.Close()

	w.RetirePlayer(world.RetiredPlayer{ID: uuid.New(), Name: "late"})
	store.AssertNotCalled(t, "Upsert", mock.Anything)
}
