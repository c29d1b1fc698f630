package wind_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
	"github.com/san-kum/forcelab/internal/noise"
	"github.com/san-kum/forcelab/internal/wind"
)

var _ = Describe("Zone", func() {
	Context("without variation", func() {
		It("applies a constant base force across all steps of overlap", func() {
			z := wind.NewZone("gale", wind.Config{BaseForce: 30}, nil, nil)
			body := &stayBody{}

			for step := 0; step < 50; step++ {
				t := float64(step) * 0.02
				z.Advance(t)
				Expect(z.CurrentForce()).To(Equal(30.0))
				_, ok := z.HandleBodyStay("crate", body, step, t)
				Expect(ok).To(BeTrue())
			}

			Expect(body.forces).To(HaveLen(50))
			for _, f := range body.forces {
				Expect(f).To(Equal(mgl64.Vec3{0, 0, 30}))
			}
			for _, m := range body.modes {
				Expect(m).To(Equal(kinetic.Continuous))
			}
		})

		It("treats a nil sampler with variation enabled as variation off", func() {
			z := wind.NewZone("gale", wind.Config{
				BaseForce:          30,
				UseVariation:       true,
				VariationFrequency: 2,
				MinForce:           5,
			}, nil, nil)
			z.Advance(3.7)
			Expect(z.CurrentForce()).To(Equal(30.0))
		})
	})

	Context("with variation", func() {
		It("keeps the force within [MinForce, BaseForce]", func() {
			z := wind.NewZone("gusts", wind.Config{
				BaseForce:          30,
				UseVariation:       true,
				VariationFrequency: 0.8,
				MinForce:           10,
			}, nil, noise.NewSmooth(42))

			for step := 0; step < 2000; step++ {
				z.Advance(float64(step) * 0.02)
				Expect(z.CurrentForce()).To(BeNumerically(">=", 10.0))
				Expect(z.CurrentForce()).To(BeNumerically("<=", 30.0))
			}
		})

		It("maps sample endpoints to MinForce and BaseForce", func() {
			cfg := wind.Config{
				BaseForce:          30,
				UseVariation:       true,
				VariationFrequency: 1,
				MinForce:           10,
			}

			low := wind.NewZone("low", cfg, nil, noise.Constant(0))
			low.Advance(1)
			Expect(low.CurrentForce()).To(Equal(10.0))

			high := wind.NewZone("high", cfg, nil, noise.Constant(1))
			high.Advance(1)
			Expect(high.CurrentForce()).To(Equal(30.0))

			mid := wind.NewZone("mid", cfg, nil, noise.Constant(0.5))
			mid.Advance(1)
			Expect(mid.CurrentForce()).To(Equal(20.0))
		})

		It("samples elapsed time scaled by the variation frequency", func() {
			rec := &recSampler{value: 0.5}
			z := wind.NewZone("gusts", wind.Config{
				BaseForce:          30,
				UseVariation:       true,
				VariationFrequency: 0.8,
				MinForce:           10,
			}, nil, rec)

			z.Advance(2.0)
			Expect(rec.got).To(HaveLen(1))
			Expect(rec.got[0]).To(BeNumerically("~", 1.6, 1e-12))

			z.Advance(5.0)
			Expect(rec.got[1]).To(BeNumerically("~", 4.0, 1e-12))
		})

		It("samples once per advance regardless of overlapping bodies", func() {
			rec := &recSampler{value: 0.5}
			z := wind.NewZone("gusts", wind.Config{
				BaseForce:          30,
				UseVariation:       true,
				VariationFrequency: 1,
				MinForce:           10,
			}, nil, rec)

			z.Advance(1.0)
			for i := 0; i < 5; i++ {
				z.HandleBodyStay("b", &stayBody{}, 0, 1.0)
			}
			Expect(rec.got).To(HaveLen(1))
		})
	})

	It("blows along the pose's rotated forward axis", func() {
		pose := kinetic.Pose{
			Pos: mgl64.Vec3{0, 1, 5},
			Rot: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
		}
		z := wind.NewZone("side", wind.Config{BaseForce: 10}, pose, nil)
		z.Advance(0)

		body := &stayBody{pos: mgl64.Vec3{1, 1, 5}}
		ev, ok := z.HandleBodyStay("crate", body, 0, 0)
		Expect(ok).To(BeTrue())

		Expect(body.forces[0].Sub(mgl64.Vec3{10, 0, 0}).Len()).To(BeNumerically("<", 1e-9))
		Expect(ev.Direction.Sub(mgl64.Vec3{1, 0, 0}).Len()).To(BeNumerically("<", 1e-9))
		Expect(ev.Origin).To(Equal(body.pos))
	})

	It("pushes every overlapping body with the same magnitude", func() {
		z := wind.NewZone("gale", wind.Config{BaseForce: 12}, nil, nil)
		z.Advance(0)

		a := &stayBody{pos: mgl64.Vec3{0, 0, 0}}
		b := &stayBody{pos: mgl64.Vec3{2, 0, 1}}
		z.HandleBodyStay("a", a, 0, 0)
		z.HandleBodyStay("b", b, 0, 0)

		Expect(a.forces[0]).To(Equal(b.forces[0]))
	})

	It("ignores a nil body", func() {
		z := wind.NewZone("gale", wind.Config{BaseForce: 12}, nil, nil)
		z.Advance(0)
		_, ok := z.HandleBodyStay("ghost", nil, 0, 0)
		Expect(ok).To(BeFalse())
	})

	It("stamps events with its name and the overlapping body", func() {
		z := wind.NewZone("gale", wind.Config{BaseForce: 12}, nil, nil)
		z.Advance(0.5)
		ev, _ := z.HandleBodyStay("crate", &stayBody{}, 7, 0.5)

		Expect(ev.Source).To(Equal("gale"))
		Expect(ev.Body).To(Equal("crate"))
		Expect(ev.Step).To(Equal(7))
		Expect(ev.Time).To(Equal(0.5))
		Expect(ev.Kind).To(Equal(kinetic.Directional))
		Expect(ev.Mode).To(Equal(kinetic.Continuous))
		Expect(ev.Magnitude).To(Equal(12.0))
	})
})
