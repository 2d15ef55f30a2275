package sim

import (
	"fmt"

	"github.com/hydrosim/hydronet/series"
)

// A Device is an executable unit of a network, either a Producer or a
// Router.
type Device interface {
	Name() string
}

// A QuantityKind tags the physical quantity a Router carries, such as
// discharge or temperature. The engine treats it as an opaque compatibility
// tag and never computes with it.
type QuantityKind string

// Role identifies one of the four typed adjacency roles of a Producer.
type Role int

// The four connection roles.
const (
	RoleInlet Role = iota
	RoleOutlet
	RoleReceiver
	RoleSender
)

func (r Role) String() string {
	switch r {
	case RoleInlet:
		return "inlet"
	case RoleOutlet:
		return "outlet"
	case RoleReceiver:
		return "receiver"
	case RoleSender:
		return "sender"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// consuming reports whether the role reads router values. The other two
// roles feed router values.
func (r Role) consuming() bool {
	return r == RoleInlet || r == RoleReceiver
}

// Arity declares how many routers a process model accepts on one role.
type Arity int

// The supported role arities.
const (
	// NoPeer forbids any connection on the role.
	NoPeer Arity = iota

	// SinglePeer allows exactly one router on the role.
	SinglePeer

	// MultiPeer allows any number of routers on the role.
	MultiPeer
)

// A ProcessModel is the numeric function block attached to a Producer. The
// engine never inspects what a model computes; it only drives the
// load-compute-store sequence and activates the variables the model
// declares.
type ProcessModel interface {
	// Wire binds the model's input slots to the producer's connected
	// routers and registers the model's outputs with the downstream
	// routers. Called once per run, before the first step.
	Wire(p *Producer) error

	// Load reads the model's inputs for a step.
	Load(step int) error

	// Compute advances the model by one step.
	Compute(step int) error

	// Store records the model's outputs for a step.
	Store(step int) error

	// Variables lists the variables whose series the runner must activate.
	Variables() []*series.Variable

	// StateBuffers lists the double-buffered state pairs the runner commits
	// at the end of every step.
	StateBuffers() []*series.StateBuffer

	// RoleArity declares how many routers the model accepts on a role.
	RoleArity(role Role) Arity
}

// A Producer computes outputs from inputs each step. It owns exactly one
// process model and up to four typed sets of connected routers.
type Producer struct {
	name  string
	model ProcessModel

	inlets    []*Router
	outlets   []*Router
	receivers []*Router
	senders   []*Router
}

// Name returns the producer's name.
func (p *Producer) Name() string {
	return p.name
}

// Model returns the attached process model.
func (p *Producer) Model() ProcessModel {
	return p.model
}

// Inlets returns the routers feeding the producer's main input.
func (p *Producer) Inlets() []*Router {
	return p.inlets
}

// Outlets returns the routers consuming the producer's main output.
func (p *Producer) Outlets() []*Router {
	return p.outlets
}

// Receivers returns the routers feeding the producer's secondary input.
func (p *Producer) Receivers() []*Router {
	return p.receivers
}

// Senders returns the routers consuming the producer's secondary output.
func (p *Producer) Senders() []*Router {
	return p.senders
}

// Peers returns the routers connected on one role.
func (p *Producer) Peers(role Role) []*Router {
	switch role {
	case RoleInlet:
		return p.inlets
	case RoleOutlet:
		return p.outlets
	case RoleReceiver:
		return p.receivers
	case RoleSender:
		return p.senders
	default:
		return nil
	}
}

func (p *Producer) addPeer(role Role, r *Router) {
	switch role {
	case RoleInlet:
		p.inlets = append(p.inlets, r)
	case RoleOutlet:
		p.outlets = append(p.outlets, r)
	case RoleReceiver:
		p.receivers = append(p.receivers, r)
	case RoleSender:
		p.senders = append(p.senders, r)
	}
}

// A Router aggregates and forwards one scalar between producers each step.
// It never computes. In observed mode its value is replaced by an
// externally supplied series instead of the sum of its bound inputs.
type Router struct {
	name     string
	kind     QuantityKind
	observed bool

	entries []*Producer
	exits   []*Producer

	sim    *series.Variable
	obs    *series.Variable
	inputs []LinkSlot
}

func newRouter(name string, kind QuantityKind) *Router {
	return &Router{
		name: name,
		kind: kind,
		sim:  series.NewVariable(name + ".Sim"),
		obs:  series.NewVariable(name + ".Obs"),
	}
}

// Name returns the router's name.
func (r *Router) Name() string {
	return r.name
}

// Kind returns the quantity tag the router carries.
func (r *Router) Kind() QuantityKind {
	return r.kind
}

// SetObserved switches the router to externally-overridden mode: each step
// it forwards the value recorded in its Obs series instead of aggregating
// its bound inputs.
func (r *Router) SetObserved(observed bool) {
	r.observed = observed
}

// IsObserved reports whether the router is in externally-overridden mode.
func (r *Router) IsObserved() bool {
	return r.observed
}

// Entries returns the producers feeding the router.
func (r *Router) Entries() []*Producer {
	return r.entries
}

// Exits returns the producers consuming the router.
func (r *Router) Exits() []*Producer {
	return r.exits
}

// Sim returns the router's simulated series variable. Its working value is
// the router's current-step scalar; downstream producers alias it through
// LinkSlots.
func (r *Router) Sim() *series.Variable {
	return r.sim
}

// Obs returns the router's externally supplied series variable, consulted
// only in observed mode.
func (r *Router) Obs() *series.Variable {
	return r.obs
}

// AddInput binds one producer output as an input of the router. Called by
// process models while wiring; the router sums all bound inputs each step.
func (r *Router) AddInput(slot LinkSlot) {
	r.inputs = append(r.inputs, slot)
}

// runStep computes the router's value for one step and records it.
func (r *Router) runStep(step int) error {
	if r.observed {
		if err := r.obs.Load(step); err != nil {
			return fmt.Errorf("router %s: loading observed value: %w",
				r.name, err)
		}
		r.sim.SetScalar(r.obs.Scalar())
	} else {
		sum := 0.0
		for _, slot := range r.inputs {
			sum += slot.Get()
		}
		r.sim.SetScalar(sum)
	}

	if err := r.sim.Store(step); err != nil {
		return fmt.Errorf("router %s: storing value: %w", r.name, err)
	}

	return nil
}
