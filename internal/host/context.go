package host

import (
	"fmt"

	"github.com/san-kum/kinhost/internal/cache"
	"github.com/san-kum/kinhost/internal/scalar"
)

// Context is one run's container: a concrete state vector plus realized
// cache slots. Contexts from the same host are fully independent; a
// context is owned by a single execution flow and is not safe for
// concurrent mutation.
type Context[T scalar.Num[T]] struct {
	owner  *Host[T]
	layout StateLayout
	state  []T
	store  *cache.Store
}

// Layout is the owning host's state layout.
func (c *Context[T]) Layout() StateLayout { return c.layout }

// State returns a copy of the full state vector.
func (c *Context[T]) State() []T {
	return append([]T(nil), c.state...)
}

// SetState replaces the full state vector and stales every kinematic
// input. For discrete layouts the whole vector is configuration.
func (c *Context[T]) SetState(x []T) error {
	if len(x) != c.layout.Size() {
		return fmt.Errorf("%w: got %d, layout size %d", ErrBadStateSize, len(x), c.layout.Size())
	}
	copy(c.state, x)
	c.store.Note(cache.TicketConfiguration)
	if !c.layout.Discrete() {
		c.store.Note(cache.TicketVelocities)
	}
	return nil
}

// Positions returns a copy of the position block.
func (c *Context[T]) Positions() ([]T, error) {
	lo, hi, err := c.layout.PositionBlock()
	if err != nil {
		return nil, err
	}
	return append([]T(nil), c.state[lo:hi]...), nil
}

// SetPositions writes the position block and notes the configuration
// ticket.
func (c *Context[T]) SetPositions(q []T) error {
	lo, hi, err := c.layout.PositionBlock()
	if err != nil {
		return err
	}
	if len(q) != hi-lo {
		return fmt.Errorf("%w: got %d positions, want %d", ErrBadStateSize, len(q), hi-lo)
	}
	copy(c.state[lo:hi], q)
	c.store.Note(cache.TicketConfiguration)
	return nil
}

// SetPosition writes one generalized position.
func (c *Context[T]) SetPosition(i int, v T) error {
	lo, hi, err := c.layout.PositionBlock()
	if err != nil {
		return err
	}
	if i < 0 || lo+i >= hi {
		return fmt.Errorf("%w: position %d of %d", ErrIndexRange, i, hi-lo)
	}
	c.state[lo+i] = v
	c.store.Note(cache.TicketConfiguration)
	return nil
}

// Velocities returns a copy of the velocity block.
func (c *Context[T]) Velocities() ([]T, error) {
	lo, hi, err := c.layout.VelocityBlock()
	if err != nil {
		return nil, err
	}
	return append([]T(nil), c.state[lo:hi]...), nil
}

// SetVelocities writes the velocity block and notes the velocities
// ticket.
func (c *Context[T]) SetVelocities(v []T) error {
	lo, hi, err := c.layout.VelocityBlock()
	if err != nil {
		return err
	}
	if len(v) != hi-lo {
		return fmt.Errorf("%w: got %d velocities, want %d", ErrBadStateSize, len(v), hi-lo)
	}
	copy(c.state[lo:hi], v)
	c.store.Note(cache.TicketVelocities)
	return nil
}

// Raw returns the state value at index i, regardless of layout.
func (c *Context[T]) Raw(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(c.state) {
		return zero, fmt.Errorf("%w: index %d of %d", ErrIndexRange, i, len(c.state))
	}
	return c.state[i], nil
}

// SetRaw writes the state value at index i. For discrete layouts the
// whole vector counts as configuration; for continuous layouts the
// ticket follows the block the index falls in.
func (c *Context[T]) SetRaw(i int, v T) error {
	if i < 0 || i >= len(c.state) {
		return fmt.Errorf("%w: index %d of %d", ErrIndexRange, i, len(c.state))
	}
	c.state[i] = v
	if c.layout.Discrete() || i < c.layout.NumPositions() {
		c.store.Note(cache.TicketConfiguration)
	} else {
		c.store.Note(cache.TicketVelocities)
	}
	return nil
}

// Recomputes reports how many times the named cache entry has recomputed
// in this context.
func (c *Context[T]) Recomputes(name string) uint64 {
	return c.store.Computes(name)
}
