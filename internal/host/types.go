package host

import (
	"github.com/san-kum/kinhost/internal/scalar"
)

// Topology is the immutable structural descriptor a model reports. It is
// read once, after the topology lock, and never changes afterwards.
type Topology struct {
	NumPositions  int
	NumVelocities int
	NumStates     int
}

// Model is the external collaborator a host wraps. It owns the entity
// graph (bodies, joints, or whatever the concrete model represents) and
// supplies topology plus the kinematics computations; the host owns
// lifecycle, state layout, and caching.
//
// Structural mutation of a model is only legal while its topology is
// unlocked; the host enforces this through MutableModel.
type Model[T scalar.Num[T]] interface {
	// Topology reports structural counts. Stable once locked.
	Topology() Topology

	// LockTopology freezes the structure. Idempotent.
	LockTopology()

	// TopologyLocked reports whether the structure is frozen.
	TopologyLocked() bool

	// CloneForScalar deep-copies the model into the requested scalar
	// kind. The result must be a Model of the matching scalar type with
	// identical topology; the convert package performs the checked
	// assertion.
	CloneForScalar(k scalar.Kind) (any, error)

	// ComputeDefaultState fills the context's state vector with the
	// model's default positions and velocities. Called after the host's
	// own base population, never instead of it.
	ComputeDefaultState(c *Context[T], state []T) error

	// CalcPositionKinematics recomputes position kinematics in full from
	// the context's current configuration.
	CalcPositionKinematics(c *Context[T], out *PositionKinematics[T]) error

	// CalcVelocityKinematics recomputes velocity kinematics from the
	// context's velocities and an up-to-date position kinematics value.
	CalcVelocityKinematics(c *Context[T], pos *PositionKinematics[T], out *VelocityKinematics[T]) error
}

// PositionKinematics holds the configuration-derived frame data, one
// planar frame per generalized position. Its shape is fixed by topology
// at allocation and never changes.
type PositionKinematics[T scalar.Num[T]] struct {
	X       []T
	Y       []T
	Heading []T
}

// NewPositionKinematics allocates a topology-shaped zero value.
func NewPositionKinematics[T scalar.Num[T]](top Topology) PositionKinematics[T] {
	return PositionKinematics[T]{
		X:       make([]T, top.NumPositions),
		Y:       make([]T, top.NumPositions),
		Heading: make([]T, top.NumPositions),
	}
}

// Frames reports the number of frames the cache holds.
func (k *PositionKinematics[T]) Frames() int { return len(k.X) }

// VelocityKinematics holds frame velocities, shaped like its position
// counterpart.
type VelocityKinematics[T scalar.Num[T]] struct {
	VX    []T
	VY    []T
	Omega []T
}

// NewVelocityKinematics allocates a topology-shaped zero value.
func NewVelocityKinematics[T scalar.Num[T]](top Topology) VelocityKinematics[T] {
	return VelocityKinematics[T]{
		VX:    make([]T, top.NumPositions),
		VY:    make([]T, top.NumPositions),
		Omega: make([]T, top.NumPositions),
	}
}

// Frames reports the number of frames the cache holds.
func (k *VelocityKinematics[T]) Frames() int { return len(k.VX) }
