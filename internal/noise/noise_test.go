package noise_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcelab/internal/noise"
)

var _ = Describe("Smooth", func() {
	It("stays within [0,1]", func() {
		s := noise.NewSmooth(42)
		for i := 0; i < 5000; i++ {
			v := s.Sample(float64(i) * 0.173)
			Expect(v).To(BeNumerically(">=", 0.0))
			Expect(v).To(BeNumerically("<=", 1.0))
		}
	})

	It("is deterministic per seed", func() {
		a := noise.NewSmooth(7)
		b := noise.NewSmooth(7)
		for i := 0; i < 200; i++ {
			x := float64(i) * 0.31
			Expect(a.Sample(x)).To(Equal(b.Sample(x)))
		}
	})

	It("differs across seeds", func() {
		a := noise.NewSmooth(1)
		b := noise.NewSmooth(2)
		same := true
		for i := 0; i < 50; i++ {
			x := float64(i) * 0.31
			if a.Sample(x) != b.Sample(x) {
				same = false
				break
			}
		}
		Expect(same).To(BeFalse())
	})

	It("has no discontinuities at small scale", func() {
		s := noise.NewSmooth(9)
		const eps = 1e-3
		for i := 0; i < 2000; i++ {
			x := float64(i) * 0.05
			delta := math.Abs(s.Sample(x+eps) - s.Sample(x))
			Expect(delta).To(BeNumerically("<", 0.05))
		}
	})

	It("is not constant", func() {
		s := noise.NewSmooth(3)
		min, max := 1.0, 0.0
		for i := 0; i < 1000; i++ {
			v := s.Sample(float64(i) * 0.17)
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		Expect(max - min).To(BeNumerically(">", 0.2))
	})
})

var _ = Describe("Octaves", func() {
	It("stays within [0,1] for several layer counts", func() {
		for _, oct := range []int{1, 2, 4, 6} {
			s := noise.NewOctaves(11, oct, 0.5)
			for i := 0; i < 2000; i++ {
				v := s.Sample(float64(i) * 0.093)
				Expect(v).To(BeNumerically(">=", 0.0))
				Expect(v).To(BeNumerically("<=", 1.0))
			}
		}
	})

	It("is deterministic per seed", func() {
		a := noise.NewOctaves(5, 3, 0.6)
		b := noise.NewOctaves(5, 3, 0.6)
		for i := 0; i < 200; i++ {
			x := float64(i) * 0.21
			Expect(a.Sample(x)).To(Equal(b.Sample(x)))
		}
	})

	It("clamps octave count to at least one", func() {
		s := noise.NewOctaves(1, 0, 0.5)
		Expect(s.Sample(0.5)).To(BeNumerically(">=", 0.0))
		Expect(s.Sample(0.5)).To(BeNumerically("<=", 1.0))
	})
})

var _ = Describe("Constant", func() {
	It("returns its value everywhere", func() {
		c := noise.Constant(0.75)
		Expect(c.Sample(0)).To(Equal(0.75))
		Expect(c.Sample(-100)).To(Equal(0.75))
		Expect(c.Sample(1e9)).To(Equal(0.75))
	})
})
