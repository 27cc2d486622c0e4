package host

import "fmt"

// StateLayout maps the raw state vector into sub-blocks. Continuous
// layouts expose a position block [0,p) and a velocity block [p,p+v);
// discrete layouts are a single opaque vector with raw indexing only.
// A layout is computed exactly once, during Finalize, after the topology
// lock, and is fixed for the life of the host.
type StateLayout struct {
	discrete      bool
	numPositions  int
	numVelocities int
	size          int
}

// NewStateLayout derives a layout from locked topology counts.
func NewStateLayout(top Topology, discrete bool) (StateLayout, error) {
	if top.NumPositions < 0 || top.NumVelocities < 0 || top.NumStates < 0 {
		return StateLayout{}, fmt.Errorf("%w: %+v", ErrBadTopology, top)
	}
	if discrete {
		return StateLayout{discrete: true, size: top.NumStates}, nil
	}
	return StateLayout{
		numPositions:  top.NumPositions,
		numVelocities: top.NumVelocities,
		size:          top.NumPositions + top.NumVelocities,
	}, nil
}

// Size is the raw state vector length.
func (l StateLayout) Size() int { return l.size }

// Discrete reports whether the state is a single opaque block.
func (l StateLayout) Discrete() bool { return l.discrete }

// NumPositions is the position block width (zero for discrete layouts).
func (l StateLayout) NumPositions() int { return l.numPositions }

// NumVelocities is the velocity block width (zero for discrete layouts).
func (l StateLayout) NumVelocities() int { return l.numVelocities }

// PositionBlock returns the [lo,hi) index range of the position block.
func (l StateLayout) PositionBlock() (lo, hi int, err error) {
	if l.discrete {
		return 0, 0, ErrDiscreteState
	}
	return 0, l.numPositions, nil
}

// VelocityBlock returns the [lo,hi) index range of the velocity block.
func (l StateLayout) VelocityBlock() (lo, hi int, err error) {
	if l.discrete {
		return 0, 0, ErrDiscreteState
	}
	return l.numPositions, l.numPositions + l.numVelocities, nil
}
