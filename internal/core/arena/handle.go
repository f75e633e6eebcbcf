package arena

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale refs.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// Pool manages slot allocation with generational indices and a free list.
type Pool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

func (p *Pool) Create() Handle {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewHandle(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewHandle(idx, p.generations[idx])
}

func (p *Pool) Alive(h Handle) bool {
	idx := h.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == h.Generation()
}

// Release frees the slot. Releasing a stale handle is a no-op.
func (p *Pool) Release(h Handle) {
	idx := h.Index()
	if idx >= p.nextIndex {
		return
	}
	if p.generations[idx] != h.Generation() {
		return
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
