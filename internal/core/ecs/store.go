package ecs

import "errors"

var (
	// ErrAlreadyAttached is returned by Attach when the entity already carries
	// a bundle of this type. The prior value is left untouched.
	ErrAlreadyAttached = errors.New("ecs: bundle type already attached")
	// ErrDeadEntity is returned when attaching to a despawned or stale ID.
	ErrDeadEntity = errors.New("ecs: entity is not alive")
)

// Store holds all bundles of one type, keyed by entity. No reflect and no
// interface{} on the lookup path, just one generic store per type.
type Store[T any] struct {
	world   *World
	data    map[EntityID]*T
	pending map[EntityID]struct{}
}

// NewStore creates the store for bundle type T and registers it with the
// world so despawn clears its row.
func NewStore[T any](w *World) *Store[T] {
	s := &Store[T]{
		world:   w,
		data:    make(map[EntityID]*T, 256),
		pending: make(map[EntityID]struct{}),
	}
	w.register(s)
	return s
}

// Attach binds a bundle value to an entity. At most one bundle per type per
// entity: a second Attach without an intervening Detach fails. Requested
// during a query, the insert is deferred to the query boundary; a buffered
// insert already counts as attached for the duplicate check.
func (s *Store[T]) Attach(id EntityID, value T) error {
	if !s.world.Alive(id) {
		return ErrDeadEntity
	}
	if _, ok := s.data[id]; ok {
		return ErrAlreadyAttached
	}
	if _, ok := s.pending[id]; ok {
		return ErrAlreadyAttached
	}
	v := &value
	if s.world.deferCmd(func(w *World) {
		delete(s.pending, id)
		if !w.pool.alive(id) {
			return
		}
		s.data[id] = v
	}) {
		s.pending[id] = struct{}{}
		return nil
	}
	s.data[id] = v
	return nil
}

// Get returns the entity's bundle of type T. A missing bundle is not an
// error; the second return is false.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	v, ok := s.data[id]
	return v, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Detach removes the bundle from the entity. Deferred while a query runs;
// a detach ordered after a buffered insert frees the slot for re-attach
// because the commands apply in request order.
func (s *Store[T]) Detach(id EntityID) {
	if s.world.deferCmd(func(*World) { delete(s.data, id) }) {
		delete(s.pending, id)
		return
	}
	delete(s.data, id)
}

// Each iterates all (entity, bundle) rows. Structural changes requested by fn
// are buffered and applied once the outermost iteration completes, so the
// sequence stays stable for the duration of the pass.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	s.world.beginIter()
	defer s.world.endIter()
	for id, v := range s.data {
		fn(id, v)
	}
}

func (s *Store[T]) removeRaw(id EntityID) {
	delete(s.data, id)
}
