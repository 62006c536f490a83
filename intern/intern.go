// Package intern canonicalizes account and commodity names.
//
// Every distinct name is stored once in a store-owned arena and referred to
// by a small Handle. Two handles from the same store are equal exactly when
// they denote the same canonical name, so handles can be compared with ==
// and used as map keys. Aliases resolve to the handle of their canonical
// name.
//
// Handles are only meaningful for the store that produced them. A handle
// remembers its store, and Name panics when given a foreign one.
package intern

import (
	"fmt"
	"sync/atomic"
)

// Kind distinguishes the namespaces at the type level.
type Kind interface {
	AccountKind | CommodityKind
}

// AccountKind tags handles of account names.
type AccountKind struct{}

// CommodityKind tags handles of commodity names.
type CommodityKind struct{}

// Handle refers to a canonical name inside a Store.
// The zero Handle refers to nothing.
type Handle[K Kind] struct {
	store uint64
	index uint32
}

type (
	Account   = Handle[AccountKind]
	Commodity = Handle[CommodityKind]
)

// IsZero reports whether h was never assigned.
func (h Handle[K]) IsZero() bool {
	return h.store == 0
}

// Compare orders handles of one store by registration order.
func (h Handle[K]) Compare(o Handle[K]) int {
	switch {
	case h.index < o.index:
		return -1
	case h.index > o.index:
		return 1
	}
	return 0
}

var storeIDs atomic.Uint64

type slot struct {
	index uint32
	alias bool
}

// Store is the arena plus lookup table for one namespace. It is not safe for
// concurrent use.
type Store[K Kind] struct {
	id    uint64
	arena []string
	names map[string]slot
}

// NewStore creates an empty store.
func NewStore[K Kind]() *Store[K] {
	return &Store[K]{
		id:    storeIDs.Add(1),
		names: make(map[string]slot),
	}
}

// Len returns the number of canonical names.
func (s *Store[K]) Len() int {
	return len(s.arena)
}

// Ensure returns the canonical handle for name, registering name as a new
// canonical entry when it is unknown. Aliases resolve to their canonical name.
func (s *Store[K]) Ensure(name string) Handle[K] {
	if sl, ok := s.names[name]; ok {
		return s.handle(sl.index)
	}
	return s.allocate(name)
}

// Resolve looks name up without registering it.
func (s *Store[K]) Resolve(name string) (Handle[K], bool) {
	sl, ok := s.names[name]
	if !ok {
		return Handle[K]{}, false
	}
	return s.handle(sl.index), true
}

// InsertCanonical registers name as a canonical entry. Registering an
// existing canonical name again returns its handle. It fails with
// ErrAlreadyAlias when name is an alias.
func (s *Store[K]) InsertCanonical(name string) (Handle[K], error) {
	if sl, ok := s.names[name]; ok {
		if sl.alias {
			return Handle[K]{}, &Error{Name: name, Existing: s.arena[sl.index], Err: ErrAlreadyAlias}
		}
		return s.handle(sl.index), nil
	}
	return s.allocate(name), nil
}

// InsertAlias registers alias as another name for canonical. The canonical
// name is registered when unknown, and if it is itself an alias the new
// alias points at its target. Fails with ErrAlreadyCanonical when alias is a
// distinct canonical entry, and with ErrAlreadyAlias when alias already
// points at a different name.
func (s *Store[K]) InsertAlias(alias, canonical string) error {
	target := s.Ensure(canonical)
	if sl, ok := s.names[alias]; ok {
		if sl.index == target.index {
			return nil
		}
		if sl.alias {
			return &Error{Name: alias, Existing: s.arena[sl.index], Err: ErrAlreadyAlias}
		}
		return &Error{Name: alias, Existing: s.arena[sl.index], Err: ErrAlreadyCanonical}
	}
	s.names[alias] = slot{index: target.index, alias: true}
	return nil
}

// Name returns the canonical name of h.
func (s *Store[K]) Name(h Handle[K]) string {
	if h.store != s.id {
		panic(fmt.Sprintf("intern: handle of store %d used with store %d", h.store, s.id))
	}
	return s.arena[h.index]
}

// IsAlias reports whether name is registered as an alias.
func (s *Store[K]) IsAlias(name string) bool {
	return s.names[name].alias
}

// Canonicals returns all canonical handles in registration order.
func (s *Store[K]) Canonicals() []Handle[K] {
	out := make([]Handle[K], len(s.arena))
	for i := range s.arena {
		out[i] = s.handle(uint32(i))
	}
	return out
}

func (s *Store[K]) allocate(name string) Handle[K] {
	index := uint32(len(s.arena))
	s.arena = append(s.arena, name)
	s.names[name] = slot{index: index}
	return s.handle(index)
}

func (s *Store[K]) handle(index uint32) Handle[K] {
	return Handle[K]{store: s.id, index: index}
}

// Session groups the stores used by one evaluation pass.
type Session struct {
	Accounts    *Store[AccountKind]
	Commodities *Store[CommodityKind]
}

// NewSession creates empty account and commodity stores.
func NewSession() *Session {
	return &Session{
		Accounts:    NewStore[AccountKind](),
		Commodities: NewStore[CommodityKind](),
	}
}
