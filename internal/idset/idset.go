// Package idset is a small set-of-ids type used for in-flight requests and
// expanded UI rows.
package idset

import (
	"cmp"
	"slices"
	"sync"
)

// Set is safe for concurrent use. The zero value is ready to use.
type Set[T cmp.Ordered] struct {
	mu    sync.Mutex
	items map[T]struct{}
}

func New[T cmp.Ordered](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add reports whether id was newly added.
func (s *Set[T]) Add(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[T]struct{})
	}
	if _, ok := s.items[id]; ok {
		return false
	}
	s.items[id] = struct{}{}
	return true
}

// Remove reports whether id was present.
func (s *Set[T]) Remove(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// Toggle flips membership and reports whether id is now present.
func (s *Set[T]) Toggle(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		delete(s.items, id)
		return false
	}
	if s.items == nil {
		s.items = make(map[T]struct{})
	}
	s.items[id] = struct{}{}
	return true
}

func (s *Set[T]) Contains(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok
}

func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns the members in ascending order.
func (s *Set[T]) Items() []T {
	s.mu.Lock()
	out := make([]T, 0, len(s.items))
	for id := range s.items {
		out = append(out, id)
	}
	s.mu.Unlock()
	slices.Sort(out)
	return out
}

func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Drain empties the set and returns what it held, in ascending order.
func (s *Set[T]) Drain() []T {
	s.mu.Lock()
	out := make([]T, 0, len(s.items))
	for id := range s.items {
		out = append(out, id)
	}
	s.items = nil
	s.mu.Unlock()
	slices.Sort(out)
	return out
}
