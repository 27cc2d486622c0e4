package cache

import (
	"errors"
	"fmt"
)

// Programming errors surfaced by the cache machinery.
var (
	// ErrWrongType indicates an entry read against a slot holding a
	// different value type.
	ErrWrongType = errors.New("cache: slot value type mismatch")

	// ErrUnknownEntry indicates an entry evaluated against a store that
	// was not realized from its registry.
	ErrUnknownEntry = errors.New("cache: entry not present in store")

	// ErrSealed indicates a declaration after the registry was sealed.
	ErrSealed = errors.New("cache: registry is sealed")
)

// Registry collects entry declarations during host finalize. The host
// calls Seal once its declarations are in place; from then on the
// registry is read-only and safe to Realize from any number of
// goroutines concurrently.
type Registry struct {
	decls  []decl
	sealed bool
}

type decl struct {
	name  string
	alloc func() any
	deps  []Ticket
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Len reports the number of declared entries.
func (r *Registry) Len() int { return len(r.decls) }

// Names lists declared entries in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.decls))
	for i, d := range r.decls {
		names[i] = d.name
	}
	return names
}

// Entry is a typed handle to one declared slot. C is the evaluation
// context type, V the cached value type. The handle, not the slot,
// carries the type, so reads never inspect slot contents at runtime.
type Entry[C any, V any] struct {
	name  string
	index int
	calc  func(C, *V) error
	deps  []Ticket
}

func (e *Entry[C, V]) Name() string    { return e.name }
func (e *Entry[C, V]) Tickets() []Ticket { return append([]Ticket(nil), e.deps...) }

// Declare registers a memoized entry. alloc produces the default value a
// fresh context starts with; calc fills the caller-owned buffer from the
// context's current state, recomputing in full every time it runs.
func Declare[C any, V any](r *Registry, name string, alloc func() V, calc func(C, *V) error, deps ...Ticket) (*Entry[C, V], error) {
	if r.sealed {
		return nil, fmt.Errorf("%w: cannot declare %q", ErrSealed, name)
	}
	index := len(r.decls)
	r.decls = append(r.decls, decl{
		name: name,
		alloc: func() any {
			v := alloc()
			return &v
		},
		deps: append([]Ticket(nil), deps...),
	})
	return &Entry[C, V]{
		name:  name,
		index: index,
		calc:  calc,
		deps:  append([]Ticket(nil), deps...),
	}, nil
}

// Store holds one context's realized slots and ticket serials. A store
// belongs to exactly one context and is never shared.
type Store struct {
	graph   *Graph
	serials [numTickets]uint64
	slots   []slot
	byName  map[string]int
}

type slot struct {
	name     string
	value    any
	deps     []Ticket
	stamp    uint64
	valid    bool
	computes uint64
}

// Seal closes the registry to further declarations. Sealing before any
// store is realized keeps Realize free of writes to shared state.
func (r *Registry) Seal() { r.sealed = true }

// Realize allocates a fresh store: every declared entry gets its default
// value, every slot starts invalid, every serial starts at zero. Realize
// never mutates the registry, so concurrent realizations of a sealed
// registry are safe.
func (r *Registry) Realize(g *Graph) *Store {
	s := &Store{
		graph:  g,
		slots:  make([]slot, len(r.decls)),
		byName: make(map[string]int, len(r.decls)),
	}
	for i, d := range r.decls {
		s.slots[i] = slot{
			name:  d.name,
			value: d.alloc(),
			deps:  d.deps,
		}
		s.byName[d.name] = i
	}
	return s
}

// Note records a change to ticket t, staling t and everything downstream
// of it in the graph.
func (s *Store) Note(t Ticket) {
	s.graph.fanout(t, func(tk Ticket) {
		s.serials[tk]++
	})
}

// NoteAll stales every ticket, forcing full recomputation on next read.
func (s *Store) NoteAll() {
	for t := Ticket(0); t < numTickets; t++ {
		s.serials[t]++
	}
}

// Computes reports how many times the named entry has recomputed in this
// store. Unknown names report zero.
func (s *Store) Computes(name string) uint64 {
	if i, ok := s.byName[name]; ok {
		return s.slots[i].computes
	}
	return 0
}

func (s *Store) stampFor(deps []Ticket) uint64 {
	var sum uint64
	for _, t := range deps {
		sum += s.serials[t]
	}
	return sum
}

// Eval returns the memoized value for e, recomputing at most once per
// distinct dependency stamp. The returned pointer aliases the slot's
// storage and stays valid until the next invalidating read; callers
// treat it as read-only.
func Eval[C any, V any](e *Entry[C, V], c C, s *Store) (*V, error) {
	if e.index >= len(s.slots) || s.slots[e.index].name != e.name {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntry, e.name)
	}
	sl := &s.slots[e.index]
	v, ok := sl.value.(*V)
	if !ok {
		return nil, fmt.Errorf("%w: entry %q holds %T", ErrWrongType, e.name, sl.value)
	}
	stamp := s.stampFor(sl.deps)
	if !sl.valid || sl.stamp != stamp {
		if err := e.calc(c, v); err != nil {
			return nil, fmt.Errorf("cache: computing %q: %w", e.name, err)
		}
		sl.valid = true
		sl.stamp = stamp
		sl.computes++
	}
	return v, nil
}
