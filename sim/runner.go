package sim

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/xid"

	"github.com/hydrosim/hydronet/series"
)

// RunnerState is the lifecycle state of a StepRunner.
type RunnerState int

// The runner lifecycle: Idle until Start, Running between Start and Finish,
// Closed afterwards. Closed is terminal.
const (
	StateIdle RunnerState = iota
	StateRunning
	StateClosed
)

// A RunConfig carries the run-wide settings threaded through Start. There
// is no ambient global configuration; everything a run needs is in here or
// declared on the variables themselves.
type RunConfig struct {
	// Horizon is the number of time steps of the run.
	Horizon int

	// DefaultMode is the storage mode for variables without a preferred
	// mode of their own.
	DefaultMode series.StorageMode

	// StorageDir, when set, supplies file paths for paged variables that
	// have none declared, as <StorageDir>/<variable name>.bin. Paged
	// variables without a path and without a StorageDir fail activation.
	StorageDir string
}

// A StepRunner drives a selected subgraph of a DeviceGraph through a
// discretized time axis. It activates storage and derives the execution
// order once per run, then replays the order for every step index handed to
// Step, and finally releases storage in Finish.
//
// Execution is strictly serial: within one step no two devices overlap,
// because a router must observe the finalized output of every upstream
// producer before forwarding it downstream in the same step.
type StepRunner struct {
	HookableBase

	id    string
	graph *DeviceGraph
	sel   *Selection

	state   RunnerState
	horizon int
	order   []Device

	variables []*series.Variable
	states    []*series.StateBuffer

	currentStep int

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
}

// NewStepRunner creates a StepRunner over the whole graph. Narrow the run
// with Select before Start.
func NewStepRunner(graph *DeviceGraph) *StepRunner {
	return &StepRunner{
		id:    xid.New().String(),
		graph: graph,
	}
}

// ID returns the run identifier.
func (r *StepRunner) ID() string {
	return r.id
}

// Select narrows the run to a device subset. Must be called before Start.
func (r *StepRunner) Select(sel *Selection) {
	if r.state != StateIdle {
		panic("cannot change the device selection after Start")
	}
	r.sel = sel
}

// State returns the runner's lifecycle state.
func (r *StepRunner) State() RunnerState {
	return r.state
}

// Horizon returns the number of steps configured by Start.
func (r *StepRunner) Horizon() int {
	return r.horizon
}

// CurrentStep returns the number of fully completed steps.
func (r *StepRunner) CurrentStep() int {
	return r.currentStep
}

// Order returns the execution order derived by Start.
func (r *StepRunner) Order() []Device {
	return r.order
}

// Variables returns every series activated by Start. Reporting adapters
// read finished series through it, after the last step and before Finish
// releases the backends.
func (r *StepRunner) Variables() []*series.Variable {
	return r.variables
}

// Start derives the execution order, wires the process models, and
// activates every declared series over the horizon. Storage modes are
// chosen once per run: each variable's preferred mode if declared,
// otherwise the config default.
func (r *StepRunner) Start(cfg RunConfig) error {
	switch r.state {
	case StateRunning:
		return fmt.Errorf("step runner %s already started", r.id)
	case StateClosed:
		return ErrAlreadyClosed
	}

	if cfg.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", cfg.Horizon)
	}

	if r.sel == nil {
		r.sel = r.graph.SelectAll()
	}

	order, err := BuildExecutionOrder(r.graph, r.sel)
	if err != nil {
		return err
	}

	// Wiring is rebuilt from scratch on every Start. A failed Start leaves
	// the runner idle for a retry, and a retry must not stack a second
	// LinkSlot for a connection that is already bound.
	for _, router := range r.graph.routers {
		if r.sel.routers[router] {
			router.inputs = router.inputs[:0]
		}
	}

	for _, p := range r.graph.producers {
		if !r.sel.producers[p] {
			continue
		}
		if err := p.model.Wire(p); err != nil {
			return fmt.Errorf("wiring producer %s: %w", p.name, err)
		}
	}

	r.collectVariables()

	for i, v := range r.variables {
		if err := r.activateVariable(v, cfg); err != nil {
			for _, active := range r.variables[:i] {
				_ = active.Deactivate()
			}
			return err
		}
	}

	r.order = order
	r.horizon = cfg.Horizon
	r.state = StateRunning

	r.InvokeHook(HookCtx{Domain: r, Pos: HookPosRunStart, Item: cfg.Horizon})

	return nil
}

func (r *StepRunner) collectVariables() {
	r.variables = r.variables[:0]
	r.states = r.states[:0]

	for _, router := range r.graph.routers {
		if !r.sel.routers[router] {
			continue
		}

		r.variables = append(r.variables, router.sim)
		if router.observed {
			r.variables = append(r.variables, router.obs)
		}
	}

	for _, p := range r.graph.producers {
		if !r.sel.producers[p] {
			continue
		}

		r.variables = append(r.variables, p.model.Variables()...)
		r.states = append(r.states, p.model.StateBuffers()...)
	}
}

func (r *StepRunner) activateVariable(
	v *series.Variable,
	cfg RunConfig,
) error {
	mode := cfg.DefaultMode
	if preferred, ok := v.PreferredMode(); ok {
		mode = preferred
	}

	if mode == series.Paged && v.Path() == "" && cfg.StorageDir != "" {
		v.SetPath(filepath.Join(cfg.StorageDir, v.Name()+".bin"))
	}

	return v.Activate(mode, cfg.Horizon)
}

// Step replays the execution order once for step index i: observed routers
// load their external value, producers run load-compute-store, routers
// aggregate their bound inputs, and finally every state buffer commits.
//
// Any device error aborts the run. The runner still releases already-open
// storage before propagating, so a failed run leaks no file handles, and
// the runner is Closed afterwards.
func (r *StepRunner) Step(i int) error {
	switch r.state {
	case StateIdle:
		return fmt.Errorf("step runner %s is not started", r.id)
	case StateClosed:
		return ErrAlreadyClosed
	}

	r.pauseLock.Lock()
	defer r.pauseLock.Unlock()

	r.InvokeHook(HookCtx{Domain: r, Pos: HookPosBeforeStep, Item: i})

	for _, d := range r.order {
		r.InvokeHook(HookCtx{
			Domain: r,
			Pos:    HookPosBeforeDevice,
			Item:   d,
			Detail: i,
		})

		if err := r.runDevice(d, i); err != nil {
			r.close()
			return fmt.Errorf("run failed at step %d: %w", i, err)
		}

		r.InvokeHook(HookCtx{
			Domain: r,
			Pos:    HookPosAfterDevice,
			Item:   d,
			Detail: i,
		})
	}

	for _, s := range r.states {
		s.Commit()
	}

	r.currentStep = i + 1

	r.InvokeHook(HookCtx{Domain: r, Pos: HookPosAfterStep, Item: i})

	return nil
}

func (r *StepRunner) runDevice(d Device, step int) error {
	switch d := d.(type) {
	case *Router:
		return d.runStep(step)
	case *Producer:
		m := d.model
		if err := m.Load(step); err != nil {
			return fmt.Errorf("producer %s: load: %w", d.name, err)
		}
		if err := m.Compute(step); err != nil {
			return fmt.Errorf("producer %s: compute: %w", d.name, err)
		}
		if err := m.Store(step); err != nil {
			return fmt.Errorf("producer %s: store: %w", d.name, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown device type %T", d)
	}
}

// Finish flushes and releases every activated series and closes the runner.
// It is safe to call on an already-closed runner, so drivers can defer it
// unconditionally.
func (r *StepRunner) Finish() error {
	if r.state == StateClosed {
		return nil
	}

	if r.state == StateRunning {
		r.InvokeHook(HookCtx{Domain: r, Pos: HookPosRunEnd, Item: r.currentStep})
	}

	return r.close()
}

func (r *StepRunner) close() error {
	var errs []error

	for _, v := range r.variables {
		if err := v.Deactivate(); err != nil {
			errs = append(errs, err)
		}
	}

	r.state = StateClosed

	return errors.Join(errs...)
}

// Run is the convenience driver: Start, Step over the whole horizon, and
// Finish.
func (r *StepRunner) Run(cfg RunConfig) error {
	if err := r.Start(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Horizon; i++ {
		if err := r.Step(i); err != nil {
			return err
		}
	}

	return r.Finish()
}

// Pause blocks the runner before its next step, until Continue is called.
// Used by external monitors; the engine itself never pauses.
func (r *StepRunner) Pause() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if r.isPaused {
		return
	}

	r.pauseLock.Lock()
	r.isPaused = true
}

// Continue resumes a paused runner.
func (r *StepRunner) Continue() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if !r.isPaused {
		return
	}

	r.pauseLock.Unlock()
	r.isPaused = false
}
