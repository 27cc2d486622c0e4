package host

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/kinhost/internal/scalar"
)

// fakeModel is a minimal continuous Model: position kinematics copies the
// configuration into the heading slots, velocity kinematics copies the
// velocities into omega and echoes the position heading into X so the
// position-before-velocity ordering is observable.
type fakeModel struct {
	top        Topology
	locked     bool
	defaults   []float64
	defaultErr error
}

func newFakeModel(p, v int) *fakeModel {
	return &fakeModel{top: Topology{NumPositions: p, NumVelocities: v, NumStates: p + v}}
}

func (m *fakeModel) Topology() Topology   { return m.top }
func (m *fakeModel) LockTopology()        { m.locked = true }
func (m *fakeModel) TopologyLocked() bool { return m.locked }

func (m *fakeModel) CloneForScalar(k scalar.Kind) (any, error) {
	return nil, fmt.Errorf("fakeModel: no scalar cloning")
}

func (m *fakeModel) ComputeDefaultState(c *Context[scalar.Real], state []scalar.Real) error {
	for i, v := range m.defaults {
		if i < len(state) {
			state[i] = scalar.Real(v)
		}
	}
	return m.defaultErr
}

func (m *fakeModel) CalcPositionKinematics(c *Context[scalar.Real], out *PositionKinematics[scalar.Real]) error {
	q, err := c.Positions()
	if err != nil {
		return err
	}
	for i := range out.Heading {
		out.Heading[i] = q[i]
		out.X[i] = q[i].Cos()
		out.Y[i] = q[i].Sin()
	}
	return nil
}

func (m *fakeModel) CalcVelocityKinematics(c *Context[scalar.Real], pos *PositionKinematics[scalar.Real], out *VelocityKinematics[scalar.Real]) error {
	v, err := c.Velocities()
	if err != nil {
		return err
	}
	for i := range out.Omega {
		out.Omega[i] = v[i]
		out.VX[i] = pos.Heading[i].Mul(v[i])
	}
	return nil
}

func newFinalized(t *testing.T, p, v int) *Host[scalar.Real] {
	t.Helper()
	h, err := New[scalar.Real](newFakeModel(p, v), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Finalize(); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestFinalize_SecondCallFails(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	g.Expect(h.Finalized()).To(BeTrue())
	g.Expect(h.Finalize()).To(MatchError(ErrAlreadyFinalized))
}

func TestFinalize_LocksTopologyAndLayout(t *testing.T) {
	g := NewWithT(t)

	m := newFakeModel(2, 2)
	h, err := New[scalar.Real](m, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m.TopologyLocked()).To(BeFalse())

	g.Expect(h.Finalize()).To(Succeed())
	g.Expect(m.TopologyLocked()).To(BeTrue())
	g.Expect(h.Layout().Size()).To(Equal(4))
	g.Expect(h.CacheEntries()).To(Equal([]string{EntryPositionKinematics, EntryVelocityKinematics}))
}

func TestNew_NilModelFails(t *testing.T) {
	g := NewWithT(t)

	_, err := New[scalar.Real](nil, false)
	g.Expect(err).To(MatchError(ErrNilModel))

	_, err = NewEmpty[scalar.Real](false, false)
	g.Expect(err).To(MatchError(ErrNilModel))
}

func TestNewEmpty_DeferredBuild(t *testing.T) {
	g := NewWithT(t)

	h, err := NewEmpty[scalar.Real](true, false)
	g.Expect(err).NotTo(HaveOccurred())

	// Finalizing without a model is still a violation.
	g.Expect(h.Finalize()).To(MatchError(ErrNilModel))

	g.Expect(h.AdoptModel(newFakeModel(1, 1))).To(Succeed())
	g.Expect(h.AdoptModel(newFakeModel(1, 1))).To(MatchError(ErrModelPresent))
	g.Expect(h.Finalize()).To(Succeed())
	g.Expect(h.Layout().Size()).To(Equal(2))
}

func TestMutableModel_FailsOnceLocked(t *testing.T) {
	g := NewWithT(t)

	m := newFakeModel(2, 2)
	h, _ := New[scalar.Real](m, false)

	got, err := h.MutableModel()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(BeIdenticalTo(Model[scalar.Real](m)))

	g.Expect(h.Finalize()).To(Succeed())
	_, err = h.MutableModel()
	g.Expect(err).To(MatchError(ErrTopologyLocked))

	// Read-only access stays available after finalize.
	g.Expect(h.Model()).NotTo(BeNil())
}

func TestCreateContext_RequiresFinalize(t *testing.T) {
	g := NewWithT(t)

	h, _ := New[scalar.Real](newFakeModel(2, 2), false)
	_, err := h.CreateContext()
	g.Expect(err).To(MatchError(ErrNotFinalized))

	g.Expect(h.Finalize()).To(Succeed())
	c, err := h.CreateContext()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.State()).To(HaveLen(4))
}

func TestEval_MemoizedUntilMutation(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	c, _ := h.CreateContext()

	first, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	second, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(second).To(BeIdenticalTo(first), "repeat read must return the memoized object")
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))
}

func TestEval_TransitiveInvalidation(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	c, _ := h.CreateContext()

	_, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = h.EvalVelocityKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))
	g.Expect(c.Recomputes(EntryVelocityKinematics)).To(Equal(uint64(1)))

	// A configuration change stales position directly and velocity
	// through the kinematics ticket.
	g.Expect(c.SetPositions([]scalar.Real{0.3, 0.4})).To(Succeed())
	pos, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pos.Heading[0]).To(Equal(scalar.Real(0.3)))

	_, err = h.EvalVelocityKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(2)))
	g.Expect(c.Recomputes(EntryVelocityKinematics)).To(Equal(uint64(2)))

	// A velocity change leaves the position cache alone.
	g.Expect(c.SetVelocities([]scalar.Real{1, 2})).To(Succeed())
	vel, err := h.EvalVelocityKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vel.Omega[1]).To(Equal(scalar.Real(2)))
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(2)))
	g.Expect(c.Recomputes(EntryVelocityKinematics)).To(Equal(uint64(3)))
}

func TestEval_VelocityObservesCurrentConfiguration(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 1, 1)
	c, _ := h.CreateContext()

	g.Expect(c.SetPositions([]scalar.Real{2})).To(Succeed())
	g.Expect(c.SetVelocities([]scalar.Real{3})).To(Succeed())

	// Reading velocity without touching position first must still see
	// heading=2 through the position cache.
	vel, err := h.EvalVelocityKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vel.VX[0]).To(Equal(scalar.Real(6)))
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))
}

func TestContexts_AreIndependent(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	c1, _ := h.CreateContext()
	c2, _ := h.CreateContext()

	g.Expect(c1.SetPositions([]scalar.Real{1, 1})).To(Succeed())
	g.Expect(c2.SetPositions([]scalar.Real{5, 5})).To(Succeed())

	p1, err := h.EvalPositionKinematics(c1)
	g.Expect(err).NotTo(HaveOccurred())
	p2, err := h.EvalPositionKinematics(c2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p1.Heading[0]).To(Equal(scalar.Real(1)))
	g.Expect(p2.Heading[0]).To(Equal(scalar.Real(5)))

	// Mutating c1 never disturbs c2's cache.
	g.Expect(c1.SetPositions([]scalar.Real{9, 9})).To(Succeed())
	_, err = h.EvalPositionKinematics(c1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c2.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))
}

func TestEval_ShapeIsStable(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	c, _ := h.CreateContext()

	pos, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pos.Frames()).To(Equal(2))

	g.Expect(c.SetPositions([]scalar.Real{0.7, -0.2})).To(Succeed())
	pos2, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pos2.Frames()).To(Equal(2), "shape never changes, only contents")
	g.Expect(pos2).To(BeIdenticalTo(pos), "recompute reuses the same storage")
}

func TestSetDefaultState_ComposesWithModel(t *testing.T) {
	g := NewWithT(t)

	m := newFakeModel(2, 2)
	m.defaults = []float64{0.1, 0.2}
	h, _ := New[scalar.Real](m, false)
	g.Expect(h.Finalize()).To(Succeed())

	c, _ := h.CreateContext()
	g.Expect(c.SetState([]scalar.Real{9, 9, 9, 9})).To(Succeed())

	g.Expect(h.SetDefaultState(c)).To(Succeed())
	// Base population zeroes everything, then the model fills its own
	// defaults on top.
	g.Expect(c.State()).To(Equal([]scalar.Real{0.1, 0.2, 0, 0}))

	// Default population invalidates previously memoized values.
	_, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))
}

func TestSetDefaultState_FailureStillInvalidates(t *testing.T) {
	g := NewWithT(t)

	m := newFakeModel(1, 1)
	h, _ := New[scalar.Real](m, false)
	g.Expect(h.Finalize()).To(Succeed())

	c, _ := h.CreateContext()
	g.Expect(c.SetPositions([]scalar.Real{0.5})).To(Succeed())
	_, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(1)))

	// The base population zeroes the state before the model runs, so a
	// model failure leaves a mutated state behind. The memoized
	// kinematics must not survive it.
	m.defaultErr = fmt.Errorf("fakeModel: defaults unavailable")
	g.Expect(h.SetDefaultState(c)).To(MatchError(m.defaultErr))

	pos, err := h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pos.Heading[0]).To(Equal(scalar.Real(0)))
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(2)))
}

func TestCreateContext_ConcurrentFromSharedHost(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)

	// A finalized host is read-only shared state; many goroutines may
	// mint and use contexts from it at once.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := h.CreateContext()
			if err != nil {
				errs <- err
				return
			}
			if err := c.SetPositions([]scalar.Real{scalar.Real(i), 0}); err != nil {
				errs <- err
				return
			}
			pos, err := h.EvalPositionKinematics(c)
			if err != nil {
				errs <- err
				return
			}
			if pos.Heading[0] != scalar.Real(i) {
				errs <- fmt.Errorf("context %d read heading %v", i, pos.Heading[0])
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		g.Expect(err).NotTo(HaveOccurred())
	}
}

func TestContext_StateWriteValidation(t *testing.T) {
	g := NewWithT(t)

	h := newFinalized(t, 2, 2)
	c, _ := h.CreateContext()

	g.Expect(c.SetState([]scalar.Real{1, 2, 3})).To(MatchError(ErrBadStateSize))
	g.Expect(c.SetPositions([]scalar.Real{1})).To(MatchError(ErrBadStateSize))
	g.Expect(c.SetVelocities([]scalar.Real{1, 2, 3})).To(MatchError(ErrBadStateSize))
	g.Expect(c.SetPosition(2, 1)).To(MatchError(ErrIndexRange))

	_, err := c.Raw(4)
	g.Expect(err).To(MatchError(ErrIndexRange))
}

// fakeDiscrete reports an opaque state of n values and mirrors the whole
// vector into heading-less kinematics (zero frames).
type fakeDiscrete struct {
	fakeModel
}

func newFakeDiscrete(n int) *fakeDiscrete {
	return &fakeDiscrete{fakeModel{top: Topology{NumStates: n}}}
}

func (m *fakeDiscrete) CalcPositionKinematics(c *Context[scalar.Real], out *PositionKinematics[scalar.Real]) error {
	return nil
}

func (m *fakeDiscrete) CalcVelocityKinematics(c *Context[scalar.Real], pos *PositionKinematics[scalar.Real], out *VelocityKinematics[scalar.Real]) error {
	return nil
}

func TestDiscreteHost_OpaqueState(t *testing.T) {
	g := NewWithT(t)

	h, err := New[scalar.Real](newFakeDiscrete(6), true)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h.Finalize()).To(Succeed())
	g.Expect(h.IsDiscrete()).To(BeTrue())

	c, err := h.CreateContext()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.State()).To(HaveLen(6))

	_, err = c.Positions()
	g.Expect(err).To(MatchError(ErrDiscreteState))
	g.Expect(c.SetVelocities([]scalar.Real{1})).To(MatchError(ErrDiscreteState))

	// Whole-vector and raw writes still invalidate the kinematics caches.
	_, err = h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.SetRaw(3, 1)).To(Succeed())
	_, err = h.EvalPositionKinematics(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Recomputes(EntryPositionKinematics)).To(Equal(uint64(2)))
}

func TestEval_ForeignContextFails(t *testing.T) {
	g := NewWithT(t)

	h1 := newFinalized(t, 2, 2)
	h2 := newFinalized(t, 2, 2)
	c1, _ := h1.CreateContext()

	_, err := h2.EvalPositionKinematics(c1)
	g.Expect(err).To(MatchError(ErrForeignContext))
}
