package models

import (
	"fmt"

	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/scalar"
)

// Chain is a planar serial linkage: n revolute joints, one link each.
// Generalized positions are joint angles, velocities are joint rates.
// Topology is n positions, n velocities, 2n states.
type Chain[T scalar.Num[T]] struct {
	lengths    []float64
	masses     []float64
	initAngles []float64
	locked     bool
}

// NewChain builds a chain of n unit links.
func NewChain[T scalar.Num[T]](links int) (*Chain[T], error) {
	if links < 0 {
		return nil, fmt.Errorf("models: negative link count %d", links)
	}
	c := &Chain[T]{
		lengths:    make([]float64, links),
		masses:     make([]float64, links),
		initAngles: make([]float64, links),
	}
	for i := 0; i < links; i++ {
		c.lengths[i] = 1
		c.masses[i] = 1
	}
	return c, nil
}

// Links reports the number of links.
func (c *Chain[T]) Links() int { return len(c.lengths) }

// AddLink appends a link. Structural edits require an unlocked topology.
func (c *Chain[T]) AddLink(length, mass float64) error {
	if c.locked {
		return host.ErrTopologyLocked
	}
	if length <= 0 || mass <= 0 {
		return fmt.Errorf("models: link length and mass must be positive, got %v, %v", length, mass)
	}
	c.lengths = append(c.lengths, length)
	c.masses = append(c.masses, mass)
	c.initAngles = append(c.initAngles, 0)
	return nil
}

// SetLink replaces link i's parameters. Parameter changes are not
// structural and stay legal after the lock.
func (c *Chain[T]) SetLink(i int, length, mass float64) error {
	if i < 0 || i >= len(c.lengths) {
		return fmt.Errorf("models: link %d of %d", i, len(c.lengths))
	}
	if length <= 0 || mass <= 0 {
		return fmt.Errorf("models: link length and mass must be positive, got %v, %v", length, mass)
	}
	c.lengths[i] = length
	c.masses[i] = mass
	return nil
}

// SetInitAngles sets the default joint angles used by default-state
// population.
func (c *Chain[T]) SetInitAngles(angles []float64) error {
	if len(angles) != len(c.initAngles) {
		return fmt.Errorf("models: got %d init angles, want %d", len(angles), len(c.initAngles))
	}
	copy(c.initAngles, angles)
	return nil
}

// GetParams exposes tunable parameters as a flat name to value map.
func (c *Chain[T]) GetParams() map[string]float64 {
	p := map[string]float64{"links": float64(len(c.lengths))}
	for i := range c.lengths {
		p[fmt.Sprintf("length%d", i)] = c.lengths[i]
		p[fmt.Sprintf("mass%d", i)] = c.masses[i]
	}
	return p
}

// SetParam updates one named parameter.
func (c *Chain[T]) SetParam(name string, value float64) error {
	for i := range c.lengths {
		switch name {
		case fmt.Sprintf("length%d", i):
			return c.SetLink(i, value, c.masses[i])
		case fmt.Sprintf("mass%d", i):
			return c.SetLink(i, c.lengths[i], value)
		}
	}
	return fmt.Errorf("models: unknown param: %s", name)
}

func (c *Chain[T]) Topology() host.Topology {
	n := len(c.lengths)
	return host.Topology{NumPositions: n, NumVelocities: n, NumStates: 2 * n}
}

func (c *Chain[T]) LockTopology()        { c.locked = true }
func (c *Chain[T]) TopologyLocked() bool { return c.locked }

// CloneForScalar deep-copies the chain into the requested scalar kind.
// The clone starts unlocked; the converting host re-runs the full
// build-finalize sequence on it.
func (c *Chain[T]) CloneForScalar(k scalar.Kind) (any, error) {
	switch k {
	case scalar.KindReal:
		return cloneChain[scalar.Real](c), nil
	case scalar.KindDual:
		return cloneChain[scalar.Dual](c), nil
	default:
		return nil, fmt.Errorf("%w: %s", scalar.ErrUnsupportedKind, k)
	}
}

func cloneChain[D scalar.Num[D], S scalar.Num[S]](src *Chain[S]) *Chain[D] {
	return &Chain[D]{
		lengths:    append([]float64(nil), src.lengths...),
		masses:     append([]float64(nil), src.masses...),
		initAngles: append([]float64(nil), src.initAngles...),
	}
}

// ComputeDefaultState writes the default joint angles into the position
// block and zero rates into the velocity block.
func (c *Chain[T]) ComputeDefaultState(_ *host.Context[T], state []T) error {
	n := len(c.lengths)
	if len(state) != 2*n {
		return fmt.Errorf("%w: got %d, want %d", host.ErrBadStateSize, len(state), 2*n)
	}
	for i, a := range c.initAngles {
		state[i] = scalar.From[T](a)
	}
	for i := n; i < 2*n; i++ {
		state[i] = scalar.From[T](0)
	}
	return nil
}

// CalcPositionKinematics walks the chain root to tip, accumulating joint
// angles into headings and link offsets into frame origins. Always a
// full recomputation from the context's configuration.
func (c *Chain[T]) CalcPositionKinematics(ctx *host.Context[T], out *host.PositionKinematics[T]) error {
	q, err := ctx.Positions()
	if err != nil {
		return err
	}
	var heading, x, y T
	for i := range q {
		heading = heading.Add(q[i])
		x = x.Add(heading.Cos().Scale(c.lengths[i]))
		y = y.Add(heading.Sin().Scale(c.lengths[i]))
		out.Heading[i] = heading
		out.X[i] = x
		out.Y[i] = y
	}
	return nil
}

// CalcVelocityKinematics differentiates the frame origins with respect
// to time using the joint rates and the already-current position
// kinematics.
func (c *Chain[T]) CalcVelocityKinematics(ctx *host.Context[T], pos *host.PositionKinematics[T], out *host.VelocityKinematics[T]) error {
	v, err := ctx.Velocities()
	if err != nil {
		return err
	}
	var omega, vx, vy T
	for i := range v {
		omega = omega.Add(v[i])
		sin := pos.Heading[i].Sin()
		cos := pos.Heading[i].Cos()
		vx = vx.Sub(sin.Mul(omega).Scale(c.lengths[i]))
		vy = vy.Add(cos.Mul(omega).Scale(c.lengths[i]))
		out.Omega[i] = omega
		out.VX[i] = vx
		out.VY[i] = vy
	}
	return nil
}
