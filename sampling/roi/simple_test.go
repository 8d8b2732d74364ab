package roi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roisim/sampling"
	"github.com/sarchlab/roisim/sampling/roi"
)

var _ = Describe("SimpleManager", func() {
	var (
		m *roi.SimpleManager
		h *harness
	)

	BeforeEach(func() {
		m = roi.NewSimpleManager()

		var err error
		h, err = newHarness(m)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should request no wakeup", func() {
		_, ok := m.NextWakeup().Instruction()
		Expect(ok).To(BeFalse())
		Expect(h.engine.hasPending).To(BeFalse())
	})

	It("should switch and reset on workbegin, in that order", func() {
		verdict, err := h.fire(sampling.WorkBegin)
		Expect(err).ToNot(HaveOccurred())
		Expect(verdict).To(Equal(sampling.VerdictContinue))

		Expect(h.engine.ops).To(Equal([]string{"switch", "reset"}))
	})

	It("should dump, reset, and switch back on workend, in that order", func() {
		_, err := h.fire(sampling.WorkBegin)
		Expect(err).ToNot(HaveOccurred())

		h.engine.ops = nil

		verdict, err := h.fire(sampling.WorkEnd)
		Expect(err).ToNot(HaveOccurred())
		Expect(verdict).To(Equal(sampling.VerdictContinue))

		Expect(h.engine.ops).To(Equal([]string{"dump", "reset", "switch"}))
	})

	It("should pair one switch and one reset with every workbegin", func() {
		for i := 0; i < 3; i++ {
			h.engine.ops = nil

			_, err := h.fire(sampling.WorkBegin)
			Expect(err).ToNot(HaveOccurred())
			Expect(h.engine.count("switch")).To(Equal(1))
			Expect(h.engine.count("reset")).To(Equal(1))

			_, err = h.fire(sampling.WorkEnd)
			Expect(err).ToNot(HaveOccurred())
		}
	})

	It("should dump once and stop on exit", func() {
		verdict, err := h.fire(sampling.Exit)
		Expect(err).ToNot(HaveOccurred())
		Expect(verdict).To(Equal(sampling.VerdictStop))

		Expect(h.engine.ops).To(Equal([]string{"dump"}))
	})
})
