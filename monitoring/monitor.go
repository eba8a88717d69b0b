// Package monitoring serves the state of running transporters over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/profugus/mctransport/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor turns a run into a server that allows external monitoring and
// controlling of its transporters.
type Monitor struct {
	transportersLock sync.Mutex
	transporters     []*transport.Transporter
	portNumber       int
	registry         *prometheus.Registry
	metrics          *roundMetrics

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	registry := prometheus.NewRegistry()

	return &Monitor{
		registry: registry,
		metrics:  newRoundMetrics(registry),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// Registry returns the registry the round metrics are registered in.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterTransporter registers a transporter to be monitored. A progress bar
// and the round metrics are hooked to it.
func (m *Monitor) RegisterTransporter(t *transport.Transporter) {
	m.transportersLock.Lock()
	m.transporters = append(m.transporters, t)
	m.transportersLock.Unlock()

	t.AcceptHook(&progressHook{monitor: m})
	t.AcceptHook(&metricsHook{metrics: m.metrics})
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the monitoring API.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.resume)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_transporters", m.listTransporters)
	r.HandleFunc("/api/transporter/{name}", m.transporterDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring transport with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	for _, t := range m.snapshotTransporters() {
		t.Pause()
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) {
	for _, t := range m.snapshotTransporters() {
		t.Continue()
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rounds := make(map[string]int64)
	for _, t := range m.snapshotTransporters() {
		rounds[t.Name()] = t.CurrentRound()
	}

	writeJSON(w, map[string]any{"rounds": rounds})
}

func (m *Monitor) listTransporters(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for _, t := range m.snapshotTransporters() {
		names = append(names, t.Name())
	}

	writeJSON(w, names)
}

// transporterStatus is the part of a transporter exposed to the API.
type transporterStatus struct {
	Name               string
	BatchSize          int
	Round              int64
	HistoriesStarted   int64
	HistoriesRequested int64
	Diagnostics        transport.Diagnostics
}

func statusOf(t *transport.Transporter) *transporterStatus {
	return &transporterStatus{
		Name:               t.Name(),
		BatchSize:          t.BatchSize(),
		Round:              t.CurrentRound(),
		HistoriesStarted:   t.HistoriesStarted(),
		HistoriesRequested: t.HistoriesRequested(),
		Diagnostics:        t.Diagnostics(),
	}
}

func (m *Monitor) transporterDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	t := m.findTransporterOr404(w, name)
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(statusOf(t))
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	TransporterName string `json:"transporter_name,omitempty"`
	FieldName       string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	t := m.findTransporterOr404(w, req.TransporterName)
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(statusOf(t))
	serializer.SetMaxDepth(2)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) snapshotTransporters() []*transport.Transporter {
	m.transportersLock.Lock()
	defer m.transportersLock.Unlock()

	return append([]*transport.Transporter(nil), m.transporters...)
}

func (m *Monitor) findTransporterOr404(
	w http.ResponseWriter,
	name string,
) *transport.Transporter {
	for _, t := range m.snapshotTransporters() {
		if t.Name() == name {
			return t
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Transporter not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
