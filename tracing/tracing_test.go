package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/profugus/mctransport/geometry"
	"github.com/profugus/mctransport/physics"
	"github.com/profugus/mctransport/source"
	"github.com/profugus/mctransport/tally"
	"github.com/profugus/mctransport/transport"
	"github.com/profugus/mctransport/variance"
)

func buildTransporter(histories int64) *transport.Transporter {
	slab, err := geometry.NewSlab(
		[]float64{0, 1, 2},
		[]int{1, 2},
		transport.Vector{0, -1, -1},
		transport.Vector{0, 1, 1},
		[6]geometry.Condition{},
	)
	Expect(err).ToNot(HaveOccurred())

	phys, err := physics.New(map[int]physics.Material{
		1: {SigmaT: 1, SigmaS: 0.5},
		2: {SigmaT: 2, SigmaS: 1.5},
	}, slab)
	Expect(err).ToNot(HaveOccurred())

	src, err := source.NewUniformSource(slab,
		transport.Vector{0, -1, -1}, transport.Vector{2, 1, 1},
		histories, 7)
	Expect(err).ToNot(HaveOccurred())

	return transport.MakeBuilder().
		WithGeometry(slab).
		WithPhysics(phys).
		WithVarianceReduction(variance.None{}).
		WithTallier(tally.NewFlux()).
		WithSource(src).
		WithBatchSize(16).
		WithNumWorkers(2).
		Build("Slab")
}

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *transport.Transporter
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = buildTransporter(40)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should attach a hook", func() {
		CollectTrace(domain, tracer)

		Expect(domain.NumHooks()).To(Equal(1))
	})

	It("should panic when the tracer is attached twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should forward rounds and the summary", func() {
		var starts, ends int64

		tracer.EXPECT().
			StartRound("Slab", gomock.Any()).
			Do(func(_ string, _ transport.RoundStats) { starts++ }).
			AnyTimes()
		tracer.EXPECT().
			EndRound("Slab", gomock.Any()).
			Do(func(_ string, _ transport.RoundStats) { ends++ }).
			AnyTimes()
		tracer.EXPECT().
			EndTransport("Slab", gomock.Any()).
			Do(func(_ string, s transport.Summary) {
				Expect(s.Histories).To(Equal(int64(40)))
			})

		CollectTrace(domain, tracer)
		summary := domain.Transport()

		Expect(starts).To(Equal(summary.Rounds))
		Expect(ends).To(Equal(summary.Rounds))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		t        *DBTracer
		clock    time.Time
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable("rounds", RoundEntry{})
		backend.EXPECT().CreateTable("summary", SummaryEntry{})
		backend.EXPECT().CreateTable("flux", FluxEntry{})

		t = NewDBTracer(backend)
		clock = time.Unix(100, 0)
		t.now = func() time.Time { return clock }
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should have a run ID", func() {
		Expect(t.RunID()).ToNot(BeEmpty())
	})

	It("should write a round with its duration", func() {
		stats := transport.RoundStats{
			Round:            3,
			Active:           10,
			Collisions:       4,
			Boundaries:       5,
			Closures:         1,
			Retired:          2,
			Remaining:        14,
			HistoriesStarted: 12,
		}

		backend.EXPECT().InsertData("rounds", RoundEntry{
			Run:              t.RunID(),
			Transporter:      "Slab",
			Round:            3,
			Active:           10,
			Collisions:       4,
			Boundaries:       5,
			Closures:         1,
			Retired:          2,
			Remaining:        14,
			HistoriesStarted: 12,
			Seconds:          0.5,
		})

		t.StartRound("Slab", stats)
		clock = clock.Add(500 * time.Millisecond)
		t.EndRound("Slab", stats)
	})

	It("should write the summary and flush", func() {
		backend.EXPECT().InsertData("rounds", gomock.Any())
		backend.EXPECT().
			InsertData("summary", gomock.Any()).
			Do(func(_ string, entry any) {
				e := entry.(SummaryEntry)
				Expect(e.Run).To(Equal(t.RunID()))
				Expect(e.Histories).To(Equal(int64(8)))
				Expect(e.Rounds).To(Equal(int64(1)))
				Expect(e.Escapes).To(Equal(int64(6)))
				Expect(e.Seconds).To(Equal(2.0))
			})
		backend.EXPECT().Flush()

		t.StartRound("Slab", transport.RoundStats{})
		clock = clock.Add(time.Second)
		t.EndRound("Slab", transport.RoundStats{})
		clock = clock.Add(time.Second)
		t.EndTransport("Slab", transport.Summary{
			Histories:   8,
			Rounds:      1,
			BatchSize:   8,
			Diagnostics: transport.Diagnostics{Escapes: 6},
		})
	})

	It("should write flux results", func() {
		backend.EXPECT().InsertData("flux", FluxEntry{
			Run: t.RunID(), Matid: 1, Mean: 0.25, RelErr: 0.1,
		})
		backend.EXPECT().InsertData("flux", FluxEntry{
			Run: t.RunID(), Matid: 2, Mean: 0.75, RelErr: 0.05,
		})
		backend.EXPECT().Flush()

		t.AddFlux([]tally.Result{
			{Matid: 1, Mean: 0.25, RelErr: 0.1},
			{Matid: 2, Mean: 0.75, RelErr: 0.05},
		})
	})
})

var _ = Describe("RoundCountTracer", func() {
	It("should agree with the transporter", func() {
		domain := buildTransporter(100)
		t := NewRoundCountTracer()
		CollectTrace(domain, t)

		summary := domain.Transport()

		Expect(t.Rounds()).To(Equal(summary.Rounds))
		Expect(t.Collisions()).To(Equal(summary.Diagnostics.Collisions))
		Expect(t.PeakActive()).To(Equal(16))

		recorded, ok := t.Summary("Slab")
		Expect(ok).To(BeTrue())
		Expect(recorded).To(Equal(summary))
	})

	It("should report unknown transporters", func() {
		t := NewRoundCountTracer()

		_, ok := t.Summary("Nothing")
		Expect(ok).To(BeFalse())
	})
})
