package convert_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinhost/internal/convert"
	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/models"
	"github.com/san-kum/kinhost/internal/scalar"
)

func finalizedRealChain(links int) *host.Host[scalar.Real] {
	m, err := models.NewChain[scalar.Real](links)
	Expect(err).NotTo(HaveOccurred())
	Expect(m.SetLink(0, 1.5, 2)).To(Succeed())
	h, err := host.New[scalar.Real](m, false)
	Expect(err).NotTo(HaveOccurred())
	Expect(h.Finalize()).To(Succeed())
	return h
}

var _ = Describe("scalar conversion", func() {
	It("clones a finalized real host into an independent dual host", func() {
		src := finalizedRealChain(3)

		dst, err := convert.To[scalar.Dual](src)
		Expect(err).NotTo(HaveOccurred())
		Expect(dst.Finalized()).To(BeTrue())
		Expect(dst.Topology()).To(Equal(src.Topology()))
		Expect(dst.Layout().Size()).To(Equal(src.Layout().Size()))
		Expect(dst.IsDiscrete()).To(Equal(src.IsDiscrete()))
	})

	It("shares no mutable state between source and target", func() {
		src := finalizedRealChain(2)
		dst, err := convert.To[scalar.Dual](src)
		Expect(err).NotTo(HaveOccurred())

		srcCtx, err := src.CreateContext()
		Expect(err).NotTo(HaveOccurred())
		dstCtx, err := dst.CreateContext()
		Expect(err).NotTo(HaveOccurred())

		Expect(srcCtx.SetPositions([]scalar.Real{1, 1})).To(Succeed())
		_, err = src.EvalPositionKinematics(srcCtx)
		Expect(err).NotTo(HaveOccurred())

		Expect(dstCtx.Recomputes(host.EntryPositionKinematics)).To(BeZero())
		q, err := dstCtx.Positions()
		Expect(err).NotTo(HaveOccurred())
		Expect(q).To(Equal([]scalar.Dual{{}, {}}))
	})

	It("round-trips real→dual→real with identical topology and parameters", func() {
		src := finalizedRealChain(2)

		mid, err := convert.To[scalar.Dual](src)
		Expect(err).NotTo(HaveOccurred())
		back, err := convert.To[scalar.Real](mid)
		Expect(err).NotTo(HaveOccurred())

		Expect(back.Topology()).To(Equal(src.Topology()))
		srcChain := src.Model().(*models.Chain[scalar.Real])
		backChain := back.Model().(*models.Chain[scalar.Real])
		Expect(backChain.GetParams()).To(Equal(srcChain.GetParams()))
	})

	It("computes gradients on the converted host that match the real evaluation", func() {
		src := finalizedRealChain(1)
		dst, err := convert.To[scalar.Dual](src)
		Expect(err).NotTo(HaveOccurred())

		c, err := dst.CreateContext()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.SetPositions([]scalar.Dual{scalar.Seed(0.4)})).To(Succeed())

		pos, err := dst.EvalPositionKinematics(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(pos.Y[0].V).To(BeNumerically("~", 1.5*math.Sin(0.4), 1e-12))
		Expect(pos.Y[0].D).To(BeNumerically("~", 1.5*math.Cos(0.4), 1e-12))
	})

	It("rejects a non-finalized host", func() {
		m, err := models.NewChain[scalar.Real](2)
		Expect(err).NotTo(HaveOccurred())
		h, err := host.New[scalar.Real](m, false)
		Expect(err).NotTo(HaveOccurred())

		_, err = convert.To[scalar.Dual](h)
		Expect(err).To(MatchError(host.ErrNotFinalized))
	})

	It("rejects a nil host", func() {
		_, err := convert.To[scalar.Dual, scalar.Real](nil)
		Expect(err).To(MatchError(host.ErrNilModel))
	})

	It("converts discrete hosts, preserving the opaque layout", func() {
		m, err := models.NewRegister[scalar.Real](5)
		Expect(err).NotTo(HaveOccurred())
		h, err := host.New[scalar.Real](m, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Finalize()).To(Succeed())

		dst, err := convert.To[scalar.Dual](h)
		Expect(err).NotTo(HaveOccurred())
		Expect(dst.IsDiscrete()).To(BeTrue())
		Expect(dst.Layout().Size()).To(Equal(5))
	})
})
