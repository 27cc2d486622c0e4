package host

import (
	"fmt"

	"github.com/san-kum/kinhost/internal/cache"
	"github.com/san-kum/kinhost/internal/scalar"
)

// Names of the cache entries every finalized host registers.
const (
	EntryPositionKinematics = "position kinematics"
	EntryVelocityKinematics = "velocity kinematics"
)

// Host owns a model, its state layout, and its cache entry declarations.
// It is mutable while building and immutable once finalized; a finalized
// host is safe for concurrent read-only use by any number of contexts.
type Host[T scalar.Num[T]] struct {
	model     Model[T]
	discrete  bool
	finalized bool
	layout    StateLayout

	registry *cache.Registry
	graph    *cache.Graph
	posEntry *cache.Entry[*Context[T], PositionKinematics[T]]
	velEntry *cache.Entry[*Context[T], VelocityKinematics[T]]
}

// New constructs a building-phase host around a model. The model must be
// present; deferred building goes through NewEmpty instead.
func New[T scalar.Num[T]](m Model[T], discrete bool) (*Host[T], error) {
	if m == nil {
		return nil, ErrNilModel
	}
	return &Host[T]{model: m, discrete: discrete}, nil
}

// NewEmpty constructs a host with no model yet. The caller must opt in
// explicitly; a nil model is otherwise a contract violation.
func NewEmpty[T scalar.Num[T]](allowNil bool, discrete bool) (*Host[T], error) {
	if !allowNil {
		return nil, fmt.Errorf("%w: empty construction requires explicit opt-in", ErrNilModel)
	}
	return &Host[T]{discrete: discrete}, nil
}

// AdoptModel installs the model into an empty, unfinalized host.
func (h *Host[T]) AdoptModel(m Model[T]) error {
	if h.finalized {
		return ErrAlreadyFinalized
	}
	if h.model != nil {
		return ErrModelPresent
	}
	if m == nil {
		return ErrNilModel
	}
	h.model = m
	return nil
}

// Finalize locks the model's topology, derives the state layout, and
// registers the default kinematics cache entries. It may be called once;
// the transition is irreversible.
func (h *Host[T]) Finalize() error {
	if h.finalized {
		return ErrAlreadyFinalized
	}
	if h.model == nil {
		return fmt.Errorf("%w: cannot finalize", ErrNilModel)
	}
	if !h.model.TopologyLocked() {
		h.model.LockTopology()
	}

	layout, err := NewStateLayout(h.model.Topology(), h.discrete)
	if err != nil {
		return err
	}
	h.layout = layout

	h.graph = cache.NewGraph()
	h.graph.Subscribe(cache.TicketKinematics, cache.TicketConfiguration)
	h.graph.Subscribe(cache.TicketKinematics, cache.TicketVelocities)

	h.registry = cache.NewRegistry()
	top := h.model.Topology()
	model := h.model

	h.posEntry, err = cache.Declare(h.registry, EntryPositionKinematics,
		func() PositionKinematics[T] { return NewPositionKinematics[T](top) },
		func(c *Context[T], out *PositionKinematics[T]) error {
			return model.CalcPositionKinematics(c, out)
		},
		cache.TicketConfiguration)
	if err != nil {
		return err
	}

	// The velocity calculator pulls position kinematics first, so a
	// velocity read always observes positions consistent with the
	// context's current configuration.
	h.velEntry, err = cache.Declare(h.registry, EntryVelocityKinematics,
		func() VelocityKinematics[T] { return NewVelocityKinematics[T](top) },
		func(c *Context[T], out *VelocityKinematics[T]) error {
			pos, err := h.EvalPositionKinematics(c)
			if err != nil {
				return err
			}
			return model.CalcVelocityKinematics(c, pos, out)
		},
		cache.TicketKinematics)
	if err != nil {
		return err
	}

	// Seal here, not in Realize: CreateContext must stay read-only on
	// the host so contexts can be minted concurrently.
	h.registry.Seal()
	h.finalized = true
	return nil
}

// Finalized reports whether Finalize has run.
func (h *Host[T]) Finalized() bool { return h.finalized }

// IsDiscrete reports whether the state is a single opaque block.
func (h *Host[T]) IsDiscrete() bool { return h.discrete }

// Model is the read-only accessor; it is available in every phase.
// Structural edits must go through MutableModel.
func (h *Host[T]) Model() Model[T] { return h.model }

// MutableModel grants builder access. It fails once the topology is
// locked, protecting against structural edits while contexts may exist.
func (h *Host[T]) MutableModel() (Model[T], error) {
	if h.model == nil {
		return nil, ErrNilModel
	}
	if h.model.TopologyLocked() {
		return nil, fmt.Errorf("%w: structural edits are no longer possible", ErrTopologyLocked)
	}
	return h.model, nil
}

// Topology reports the model's structural counts (zero when empty).
func (h *Host[T]) Topology() Topology {
	if h.model == nil {
		return Topology{}
	}
	return h.model.Topology()
}

// Layout is the state layout derived at finalize.
func (h *Host[T]) Layout() StateLayout { return h.layout }

// CacheEntries lists the registered cache entry names.
func (h *Host[T]) CacheEntries() []string {
	if h.registry == nil {
		return nil
	}
	return h.registry.Names()
}

// CreateContext mints an independent per-run container: a default state
// vector per the layout plus freshly allocated cache slots wired to the
// host's ticket graph.
func (h *Host[T]) CreateContext() (*Context[T], error) {
	if !h.finalized {
		return nil, fmt.Errorf("%w: cannot create context", ErrNotFinalized)
	}
	return &Context[T]{
		owner:  h,
		layout: h.layout,
		state:  scalar.Zeros[T](h.layout.Size()),
		store:  h.registry.Realize(h.graph),
	}, nil
}

// SetDefaultState applies the host's base default-state population and
// then asks the model to fill in its own defaults. The model composes
// with, never overrides, the base step.
func (h *Host[T]) SetDefaultState(c *Context[T]) error {
	if err := h.checkContext(c); err != nil {
		return err
	}
	// The state is mutated below even when the model errors out, so the
	// caches are invalidated on every path.
	defer c.store.NoteAll()
	for i := range c.state {
		c.state[i] = scalar.From[T](0)
	}
	if err := h.model.ComputeDefaultState(c, c.state); err != nil {
		return fmt.Errorf("host: model default state: %w", err)
	}
	return nil
}

// EvalPositionKinematics returns the memoized position kinematics,
// recomputing only if the configuration changed since the last read.
func (h *Host[T]) EvalPositionKinematics(c *Context[T]) (*PositionKinematics[T], error) {
	if err := h.checkContext(c); err != nil {
		return nil, err
	}
	return cache.Eval(h.posEntry, c, c.store)
}

// EvalVelocityKinematics returns the memoized velocity kinematics. The
// position cache is brought up to date first.
func (h *Host[T]) EvalVelocityKinematics(c *Context[T]) (*VelocityKinematics[T], error) {
	if err := h.checkContext(c); err != nil {
		return nil, err
	}
	return cache.Eval(h.velEntry, c, c.store)
}

func (h *Host[T]) checkContext(c *Context[T]) error {
	if !h.finalized {
		return ErrNotFinalized
	}
	if c == nil || c.owner != h {
		return ErrForeignContext
	}
	return nil
}
