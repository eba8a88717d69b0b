package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profugus/mctransport/geometry"
	"github.com/profugus/mctransport/physics"
	"github.com/profugus/mctransport/source"
	"github.com/profugus/mctransport/tally"
	"github.com/profugus/mctransport/transport"
	"github.com/profugus/mctransport/variance"
)

func newSampleTransporter(name string, histories int64) *transport.Transporter {
	slab, err := geometry.NewSlab(
		[]float64{0, 1},
		[]int{1},
		transport.Vector{0, -1, -1},
		transport.Vector{0, 1, 1},
		[6]geometry.Condition{},
	)
	Expect(err).ToNot(HaveOccurred())

	phys, err := physics.New(map[int]physics.Material{
		1: {SigmaT: 1, SigmaS: 0.7},
	}, slab)
	Expect(err).ToNot(HaveOccurred())

	src, err := source.NewUniformSource(slab,
		transport.Vector{0, -1, -1}, transport.Vector{1, 1, 1},
		histories, 3)
	Expect(err).ToNot(HaveOccurred())

	return transport.MakeBuilder().
		WithGeometry(slab).
		WithPhysics(phys).
		WithVarianceReduction(variance.None{}).
		WithTallier(tally.NewFlux()).
		WithSource(src).
		WithBatchSize(8).
		WithNumWorkers(2).
		Build(name)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		t *transport.Transporter
		h http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		t = newSampleTransporter("Slab", 50)
		m.RegisterTransporter(t)
		h = m.Handler()
	})

	It("should hook progress and metrics to a transporter", func() {
		Expect(m.transporters).To(HaveLen(1))
		Expect(t.NumHooks()).To(Equal(2))
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list transporters", func() {
		rec := get(h, "/api/list_transporters")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"Slab"}))
	})

	It("should report the current round", func() {
		summary := t.Transport()

		rec := get(h, "/api/now")

		var rsp struct {
			Rounds map[string]int64 `json:"rounds"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Rounds).To(HaveKeyWithValue("Slab", summary.Rounds))
	})

	It("should serialize a transporter", func() {
		t.Transport()

		rec := get(h, "/api/transporter/Slab")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown transporters", func() {
		rec := get(h, "/api/transporter/Nothing")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		rec := get(h, "/api/field/"+url.PathEscape("{not json"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for fields of unknown transporters", func() {
		req := url.PathEscape(
			`{"transporter_name":"Nothing","field_name":"Diagnostics"}`)

		rec := get(h, "/api/field/"+req)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should pause and continue transport", func() {
		get(h, "/api/pause")

		done := make(chan transport.Summary)
		go func() {
			done <- t.Transport()
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

		get(h, "/api/continue")

		var summary transport.Summary
		Eventually(done, 5*time.Second).Should(Receive(&summary))
		Expect(summary.Histories).To(Equal(int64(50)))
	})

	It("should export round metrics", func() {
		summary := t.Transport()

		rec := get(h, "/metrics")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(
			`mctransport_rounds_total{transporter="Slab"}`))
		Expect(rec.Body.String()).To(ContainSubstring(
			`mctransport_histories_started{transporter="Slab"} 50`))
		Expect(summary.Rounds).To(BeNumerically(">", 0))
	})

	It("should remove the progress bar when transport ends", func() {
		var seen int
		t.AcceptHook(transport.HookFunc(func(ctx transport.HookCtx) {
			if ctx.Pos == transport.HookPosAfterRound {
				seen = len(m.progressBars)
			}
		}))

		t.Transport()

		Expect(seen).To(Equal(1))
		Expect(m.progressBars).To(BeEmpty())
	})
})

var _ = Describe("ProgressBar", func() {
	It("should be created and completed", func() {
		m := NewMonitor()
		bar := m.CreateProgressBar("bar", 10)

		bar.Set(1, 5)

		rec := get(m.Handler(), "/api/progress")

		var bars []ProgressBar
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("bar"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))
		Expect(bars[0].Finished).To(Equal(uint64(5)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
