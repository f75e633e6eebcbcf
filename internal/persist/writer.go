package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dogloot/server/internal/world"
)

const writeTimeout = 5 * time.Second

// RetiredWriter queues retired players for a worker goroutine so a slow
// store never stalls the game loop. When the queue is full the record is
// dropped and logged.
type RetiredWriter struct {
	store RetiredStore
	log   *zap.Logger

	ch     chan RetiredRow
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
	mu     sync.RWMutex
}

func NewRetiredWriter(store RetiredStore, queueSize int, log *zap.Logger) *RetiredWriter {
	if queueSize <= 0 {
		queueSize = 1
	}
	w := &RetiredWriter{
		store: store,
		log:   log,
		ch:    make(chan RetiredRow, queueSize),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	return w
}

// RetirePlayer implements world.Retirer. It never blocks.
func (w *RetiredWriter) RetirePlayer(rp world.RetiredPlayer) {
	row := RetiredRow{ID: rp.ID, Name: rp.Name, Score: rp.Score, PlayTime: rp.PlayTime}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		w.log.Warn("retired player dropped: writer closed", zap.String("name", rp.Name))
		return
	}
	select {
	case w.ch <- row:
	default:
		w.log.Error("retired player dropped: queue full",
			zap.String("name", rp.Name),
			zap.Int64("score", rp.Score),
		)
	}
}

func (w *RetiredWriter) loop() {
	for row := range w.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.store.Upsert(ctx, row)
		cancel()
		if err != nil {
			w.log.Error("persist retired player failed",
				zap.String("id", row.ID.String()),
				zap.String("name", row.Name),
				zap.Error(err),
			)
			continue
		}
		w.log.Debug("retired player persisted", zap.String("name", row.Name), zap.Int64("score", row.Score))
	}
}

// Close stops accepting records and waits until the queue is drained.
func (w *RetiredWriter) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed.Store(true)
		close(w.ch)
		w.mu.Unlock()
	})
	w.wg.Wait()
}
