package transport

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/profugus/mctransport/rng"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Handlers", func() {
	var (
		mockCtrl     *gomock.Controller
		geometry     *MockGeometry
		physics      *MockPhysics
		varReduction *MockVarianceReduction
		tallier      *MockTallier
		source       *MockSource
		t            *Transporter
		p            *Particle
		bank         *Bank
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		geometry = NewMockGeometry(mockCtrl)
		physics = NewMockPhysics(mockCtrl)
		varReduction = NewMockVarianceReduction(mockCtrl)
		tallier = NewMockTallier(mockCtrl)
		source = NewMockSource(mockCtrl)

		t = MakeBuilder().
			WithGeometry(geometry).
			WithPhysics(physics).
			WithVarianceReduction(varReduction).
			WithTallier(tallier).
			WithSource(source).
			WithBatchSize(4).
			Build("Transporter")

		p = &Particle{
			Geo:     "state",
			DistMFP: 2,
			Alive:   true,
			Weight:  1,
			RNG:     rng.NewStream(1, 1),
			History: 7,
		}
		bank = &Bank{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("classify", func() {
		It("should pick the collision when it is closer", func() {
			physics.EXPECT().TotalXS(p).Return(4.0)
			geometry.EXPECT().DistanceToBoundary("state").Return(1.0)
			tallier.EXPECT().PathLength(0.5, p)

			e := t.classify(p)

			Expect(e).To(Equal(Collision))
			Expect(p.Step).To(Equal(0.5))
			Expect(p.DistMFP).To(Equal(0.0))
		})

		It("should pick the boundary when it is closer", func() {
			p.DistMFP = 3
			physics.EXPECT().TotalXS(p).Return(1.0)
			geometry.EXPECT().DistanceToBoundary("state").Return(1.0)
			tallier.EXPECT().PathLength(1.0, p)

			e := t.classify(p)

			Expect(e).To(Equal(Boundary))
			Expect(p.Step).To(Equal(1.0))
			Expect(p.DistMFP).To(BeNumerically("~", 2.0, 1e-12))
		})

		It("should let the boundary win ties", func() {
			p.DistMFP = 1
			physics.EXPECT().TotalXS(p).Return(1.0)
			geometry.EXPECT().DistanceToBoundary("state").Return(1.0)
			tallier.EXPECT().PathLength(1.0, p)

			e := t.classify(p)

			Expect(e).To(Equal(Boundary))
			Expect(p.DistMFP).To(BeNumerically(">", 0))
		})

		It("should always reach the boundary without cross section", func() {
			physics.EXPECT().TotalXS(p).Return(0.0)
			geometry.EXPECT().DistanceToBoundary("state").Return(1e30)
			tallier.EXPECT().PathLength(1e30, p)

			e := t.classify(p)

			Expect(e).To(Equal(Boundary))
			Expect(p.DistMFP).To(Equal(2.0))
		})

		It("should treat an infinite boundary as a boundary without cross section", func() {
			physics.EXPECT().TotalXS(p).Return(0.0)
			geometry.EXPECT().DistanceToBoundary("state").Return(math.Inf(1))
			tallier.EXPECT().PathLength(math.Inf(1), p)

			Expect(t.classify(p)).To(Equal(Boundary))
		})

		It("should give the same answer for the same input", func() {
			physics.EXPECT().TotalXS(gomock.Any()).Return(1.5).Times(2)
			geometry.EXPECT().DistanceToBoundary("state").Return(1.0).Times(2)
			tallier.EXPECT().PathLength(gomock.Any(), gomock.Any()).Times(2)

			q := *p
			e1 := t.classify(p)
			e2 := t.classify(&q)

			Expect(e1).To(Equal(e2))
			Expect(p.Step).To(Equal(q.Step))
			Expect(p.DistMFP).To(Equal(q.DistMFP))
		})

		It("should panic on dead particles", func() {
			p.Alive = false
			Expect(func() { t.classify(p) }).To(Panic())
		})

		It("should panic on exhausted budgets", func() {
			p.DistMFP = 0
			Expect(func() { t.classify(p) }).To(Panic())
		})
	})

	Context("boundary", func() {
		It("should kill particles leaving the domain", func() {
			geometry.EXPECT().MoveToSurface("state")
			geometry.EXPECT().BoundaryState("state").Return(Outside)

			e := t.processBoundary(p, Boundary, bank)

			Expect(e).To(Equal(Escape))
			Expect(p.Alive).To(BeFalse())
			Expect(t.Diagnostics().Escapes).To(Equal(int64(1)))
		})

		It("should reflect", func() {
			geometry.EXPECT().MoveToSurface("state")
			geometry.EXPECT().BoundaryState("state").Return(Reflect)
			geometry.EXPECT().Reflect("state").Return(true)

			e := t.processBoundary(p, Boundary, bank)

			Expect(e).To(Equal(Boundary))
			Expect(p.Alive).To(BeTrue())
			Expect(t.Diagnostics().Reflections).To(Equal(int64(1)))
		})

		It("should panic if reflection fails", func() {
			geometry.EXPECT().MoveToSurface("state")
			geometry.EXPECT().BoundaryState("state").Return(Reflect)
			geometry.EXPECT().Reflect("state").Return(false)

			Expect(func() { t.processBoundary(p, Boundary, bank) }).To(Panic())
		})

		It("should enter the next region", func() {
			geometry.EXPECT().MoveToSurface("state")
			geometry.EXPECT().BoundaryState("state").Return(Inside)
			geometry.EXPECT().Matid("state").Return(3)
			varReduction.EXPECT().PostSurface(p, Boundary, bank)

			e := t.processBoundary(p, Boundary, bank)

			Expect(e).To(Equal(Boundary))
			Expect(p.Matid).To(Equal(3))
			Expect(t.Diagnostics().SurfaceCrossings).To(Equal(int64(1)))
		})

		It("should report particles killed at the surface", func() {
			geometry.EXPECT().MoveToSurface("state")
			geometry.EXPECT().BoundaryState("state").Return(Inside)
			geometry.EXPECT().Matid("state").Return(3)
			varReduction.EXPECT().PostSurface(p, Boundary, bank).
				Do(func(p *Particle, _ Event, _ *Bank) { p.Kill() })

			Expect(t.processBoundary(p, Boundary, bank)).To(Equal(Killed))
		})

		It("should panic on wrong events", func() {
			Expect(func() { t.processBoundary(p, Collision, bank) }).To(Panic())
		})
	})

	Context("collision", func() {
		BeforeEach(func() {
			p.Step = 0.25
			p.DistMFP = 0
		})

		It("should collide and resample the budget", func() {
			geometry.EXPECT().MoveToPoint(0.25, "state")
			physics.EXPECT().Collide(p, Collision, bank)
			varReduction.EXPECT().PostCollision(p, Collision, bank)

			e := t.processCollision(p, Collision, bank)

			Expect(e).To(Equal(Collision))
			Expect(p.DistMFP).To(BeNumerically(">", 0))
			Expect(t.Diagnostics().Collisions).To(Equal(int64(1)))
		})

		It("should retire absorbed particles", func() {
			geometry.EXPECT().MoveToPoint(0.25, "state")
			physics.EXPECT().Collide(p, Collision, bank).
				Do(func(p *Particle, _ Event, _ *Bank) { p.Kill() })

			e := t.processCollision(p, Collision, bank)

			Expect(e).To(Equal(Killed))
			Expect(p.DistMFP).To(Equal(0.0))
		})

		It("should retire rouletted particles", func() {
			geometry.EXPECT().MoveToPoint(0.25, "state")
			physics.EXPECT().Collide(p, Collision, bank)
			varReduction.EXPECT().PostCollision(p, Collision, bank).
				Do(func(p *Particle, _ Event, _ *Bank) { p.Kill() })

			Expect(t.processCollision(p, Collision, bank)).To(Equal(Killed))
		})
	})

	Context("closure", func() {
		BeforeEach(func() {
			t.particles = make([]Particle, 1)
			t.banks = make([]Bank, 1)
			t.particles[0] = *p
			t.particles[0].Alive = false
			t.numToRun = 5
		})

		It("should respawn while histories remain", func() {
			t.numRunCheck.Store(3)
			t.numRun.Store(3)
			tallier.EXPECT().EndHistory(&t.particles[0])
			source.EXPECT().GetParticle(int64(3)).Return(Particle{
				Geo:     "fresh",
				Alive:   true,
				Weight:  1,
				RNG:     rng.NewStream(1, 3),
				History: 3,
			})

			s := &slot{index: 0, event: Escape}
			t.closeOrRespawn(s)

			Expect(s.event).To(Equal(Born))
			Expect(t.particles[0].History).To(Equal(int64(3)))
			Expect(t.particles[0].DistMFP).To(BeNumerically(">", 0))
			Expect(t.numRun.Load()).To(Equal(int64(4)))
			Expect(t.numRunCheck.Load()).To(Equal(int64(4)))
		})

		It("should retire when the source is exhausted", func() {
			t.numRunCheck.Store(5)
			t.numRun.Store(5)
			tallier.EXPECT().EndHistory(&t.particles[0])

			s := &slot{index: 0, event: Killed}
			t.closeOrRespawn(s)

			Expect(s.event).To(Equal(EndEvent))
			Expect(t.numRun.Load()).To(Equal(int64(5)))
		})

		It("should drop banked secondaries by default", func() {
			t.numRunCheck.Store(5)
			t.banks[0].Push(Particle{Alive: true})
			tallier.EXPECT().EndHistory(&t.particles[0])

			s := &slot{index: 0, event: Killed}
			t.closeOrRespawn(s)

			Expect(s.event).To(Equal(EndEvent))
			Expect(t.banks[0].Empty()).To(BeTrue())
			Expect(t.Diagnostics().DroppedBanked).To(Equal(int64(1)))
		})

		It("should continue with banked secondaries when enabled", func() {
			t.transportSecondaries = true
			t.numRunCheck.Store(5)
			t.banks[0].Push(Particle{
				Alive:   true,
				RNG:     rng.NewStream(1, 9),
				History: 7,
			})

			s := &slot{index: 0, event: Killed}
			t.closeOrRespawn(s)

			Expect(s.event).To(Equal(Born))
			Expect(t.particles[0].Alive).To(BeTrue())
			Expect(t.numRunCheck.Load()).To(Equal(int64(5)))
			Expect(t.Diagnostics().Secondaries).To(Equal(int64(1)))
		})

		It("should panic on slots that are still in flight", func() {
			s := &slot{index: 0, event: Collision}
			Expect(func() { t.closeOrRespawn(s) }).To(Panic())
		})
	})
})
