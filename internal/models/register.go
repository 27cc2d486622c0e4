package models

import (
	"fmt"

	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/scalar"
)

// Register is a discrete model: n opaque state values, no positions or
// velocities. It exercises the discrete layout path; its kinematics
// caches are zero-frame and recompute trivially.
type Register[T scalar.Num[T]] struct {
	states   int
	defaults []float64
	locked   bool
}

// NewRegister builds an n-slot register bank.
func NewRegister[T scalar.Num[T]](states int) (*Register[T], error) {
	if states < 0 {
		return nil, fmt.Errorf("models: negative state count %d", states)
	}
	return &Register[T]{states: states, defaults: make([]float64, states)}, nil
}

// SetDefaults sets the values default-state population writes.
func (r *Register[T]) SetDefaults(vals []float64) error {
	if len(vals) != r.states {
		return fmt.Errorf("models: got %d defaults, want %d", len(vals), r.states)
	}
	copy(r.defaults, vals)
	return nil
}

func (r *Register[T]) Topology() host.Topology {
	return host.Topology{NumStates: r.states}
}

func (r *Register[T]) LockTopology()        { r.locked = true }
func (r *Register[T]) TopologyLocked() bool { return r.locked }

func (r *Register[T]) CloneForScalar(k scalar.Kind) (any, error) {
	switch k {
	case scalar.KindReal:
		return cloneRegister[scalar.Real](r), nil
	case scalar.KindDual:
		return cloneRegister[scalar.Dual](r), nil
	default:
		return nil, fmt.Errorf("%w: %s", scalar.ErrUnsupportedKind, k)
	}
}

func cloneRegister[D scalar.Num[D], S scalar.Num[S]](src *Register[S]) *Register[D] {
	return &Register[D]{
		states:   src.states,
		defaults: append([]float64(nil), src.defaults...),
	}
}

func (r *Register[T]) ComputeDefaultState(_ *host.Context[T], state []T) error {
	if len(state) != r.states {
		return fmt.Errorf("%w: got %d, want %d", host.ErrBadStateSize, len(state), r.states)
	}
	for i, v := range r.defaults {
		state[i] = scalar.From[T](v)
	}
	return nil
}

func (r *Register[T]) CalcPositionKinematics(_ *host.Context[T], _ *host.PositionKinematics[T]) error {
	return nil
}

func (r *Register[T]) CalcVelocityKinematics(_ *host.Context[T], _ *host.PositionKinematics[T], _ *host.VelocityKinematics[T]) error {
	return nil
}
