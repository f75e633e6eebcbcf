package arena

// Removable is implemented by all stores so the Arena can bulk-remove a
// handle's data from every store on release.
type Removable interface {
	Remove(h Handle)
}

// Store is a generic typed map store keyed by Handle.
type Store[T any] struct {
	data map[Handle]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[Handle]*T, 64),
	}
}

func (s *Store[T]) Set(h Handle, v *T) {
	s.data[h] = v
}

func (s *Store[T]) Get(h Handle) (*T, bool) {
	v, ok := s.data[h]
	return v, ok
}

func (s *Store[T]) Remove(h Handle) {
	delete(s.data, h)
}
