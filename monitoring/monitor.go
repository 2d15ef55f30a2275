// Package monitoring turns a running simulation into a small web server for
// external observation: run progress, the derived execution order, device
// internals, process resources, and CPU profiles. The monitor only reads
// the engine, plus pause/continue; it never takes part in the execution
// order.
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
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/hydrosim/hydronet/sim"
)

// Monitor exposes a StepRunner and its DeviceGraph over HTTP.
type Monitor struct {
	runner      *sim.StepRunner
	graph       *sim.DeviceGraph
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitoring server listens on. Ports
// below 1000 are rejected and replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithDashboard makes StartServer open the monitoring page in the local
// browser.
func (m *Monitor) WithDashboard() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterRunner registers the runner to be monitored and hooks a progress
// bar onto its steps.
func (m *Monitor) RegisterRunner(r *sim.StepRunner) {
	m.runner = r
	r.AcceptHook(&runProgressHook{monitor: m})
}

// RegisterGraph registers the device graph behind the runner.
func (m *Monitor) RegisterGraph(g *sim.DeviceGraph) {
	m.graph = g
}

// CreateProgressBar creates a new progress bar shown by the progress
// endpoint.
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

// CompleteProgressBar removes a bar from the progress endpoint.
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

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseRunner)
	r.HandleFunc("/api/continue", m.continueRunner)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/order", m.listOrder)
	r.HandleFunc("/api/list_devices", m.listDevices)
	r.HandleFunc("/api/device/{name}", m.deviceDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		_ = browser.OpenURL(url + "/api/progress")
	}
}

func (m *Monitor) pauseRunner(w http.ResponseWriter, _ *http.Request) {
	m.runner.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueRunner(w http.ResponseWriter, _ *http.Request) {
	m.runner.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"step\":%d,\"horizon\":%d}",
		m.runner.CurrentStep(), m.runner.Horizon())
}

func (m *Monitor) listOrder(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, d := range m.runner.Order() {
		if i > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprintf(w, "%q", d.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	if m.graph != nil {
		for _, p := range m.graph.Producers() {
			names = append(names, p.Name())
		}
		for _, r := range m.graph.Routers() {
			names = append(names, r.Name())
		}
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) deviceDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	device := m.findDeviceOr404(w, name)
	if device == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(device)
	serializer.SetMaxDepth(1)

	dieOnErr(serializer.Serialize(w))
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) sim.Device {
	if m.graph != nil {
		if p := m.graph.ProducerByName(name); p != nil {
			return p
		}
		if r := m.graph.RouterByName(name); r != nil {
			return r
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Device not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bytes, err := json.Marshal(m.progressBars)
	m.progressBarsLock.Unlock()
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

// runProgressHook advances the runner's progress bar after every step.
type runProgressHook struct {
	monitor *Monitor
	bar     *ProgressBar
}

func (h *runProgressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRunStart:
		h.bar = h.monitor.CreateProgressBar(
			"Run", uint64(ctx.Item.(int)))
	case sim.HookPosAfterStep:
		if h.bar != nil {
			h.bar.IncrementFinished(1)
		}
	case sim.HookPosRunEnd:
		if h.bar != nil {
			// The run may finish before the full horizon; the bar settles
			// on the number of steps that actually completed.
			h.bar.SetFinished(uint64(ctx.Item.(int)))
			h.monitor.CompleteProgressBar(h.bar)
			h.bar = nil
		}
	}
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
