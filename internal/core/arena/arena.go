package arena

// Arena owns the handle pool, the registered stores, and a deferred release
// queue flushed by the cleanup system at the end of each tick.
type Arena struct {
	pool         *Pool
	stores       []Removable
	releaseQueue []Handle
}

func New() *Arena {
	return &Arena{
		pool:         NewPool(),
		stores:       make([]Removable, 0, 4),
		releaseQueue: make([]Handle, 0, 16),
	}
}

// Register adds a store whose entries are dropped when a handle is released.
func (a *Arena) Register(s Removable) {
	a.stores = append(a.stores, s)
}

func (a *Arena) Create() Handle      { return a.pool.Create() }
func (a *Arena) Alive(h Handle) bool { return a.pool.Alive(h) }
func (a *Arena) PendingRelease() int { return len(a.releaseQueue) }

// MarkForRelease queues a handle for end-of-tick release.
func (a *Arena) MarkForRelease(h Handle) {
	a.releaseQueue = append(a.releaseQueue, h)
}

// Flush releases every queued handle and clears its store entries.
func (a *Arena) Flush() int {
	n := len(a.releaseQueue)
	for _, h := range a.releaseQueue {
		for _, s := range a.stores {
			s.Remove(h)
		}
		a.pool.Release(h)
	}
	a.releaseQueue = a.releaseQueue[:0]
	return n
}
