// Package resource holds process-lifetime singleton values keyed by type:
// configuration, game flow, timers, score. Exactly one instance per type.
package resource

import (
	"fmt"
	"reflect"
)

// Store maps each registered type to its single instance. Exclusive-write /
// shared-read discipline is proven by the scheduler's static access analysis
// at build time, not by locks here: a routine may call GetMut only for types
// it declared as writes.
type Store struct {
	items map[reflect.Type]any
}

func NewStore() *Store {
	return &Store{items: make(map[reflect.Type]any, 16)}
}

// Register binds the initial value for type T. Registering the same type
// twice is a configuration error.
func Register[T any](s *Store, initial *T) error {
	if initial == nil {
		return fmt.Errorf("resource: nil %s", reflect.TypeOf((*T)(nil)).Elem())
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := s.items[t]; ok {
		return fmt.Errorf("resource: %s already registered", t)
	}
	s.items[t] = initial
	return nil
}

// Get returns shared read access to the T instance.
func Get[T any](s *Store) (*T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := s.items[t]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// GetMut returns exclusive write access to the T instance. Callers must have
// declared a write on T in their access signature; the schedule builder keeps
// conflicting routines out of the same wave.
func GetMut[T any](s *Store) (*T, bool) {
	return Get[T](s)
}

// Has reports whether a T instance is registered.
func Has[T any](s *Store) bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	_, ok := s.items[t]
	return ok
}
