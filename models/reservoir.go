package models

import (
	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

// A LinearReservoir stores the summed inflow of any number of inlet routers
// and releases a fixed fraction of its content into its single outlet each
// step:
//
//	outflow(t) = k * (storage(t-1) + inflow(t))
//	storage(t) = storage(t-1) + inflow(t) - outflow(t)
type LinearReservoir struct {
	k float64

	slots   []sim.LinkSlot
	inflow  *series.Variable
	outflow *series.Variable
	storage *series.StateBuffer
}

// NewLinearReservoir creates a LinearReservoir with release coefficient k
// in (0, 1].
func NewLinearReservoir(name string, k float64) *LinearReservoir {
	return &LinearReservoir{
		k:       k,
		inflow:  series.NewVariable(sim.BuildName(name, "Inflow")),
		outflow: series.NewVariable(sim.BuildName(name, "Outflow")),
		storage: series.NewStateBuffer(sim.BuildName(name, "Storage")),
	}
}

// Inflow returns the aggregated-inflow flux variable.
func (m *LinearReservoir) Inflow() *series.Variable { return m.inflow }

// Outflow returns the release flux variable.
func (m *LinearReservoir) Outflow() *series.Variable { return m.outflow }

// Storage returns the reservoir's state buffer.
func (m *LinearReservoir) Storage() *series.StateBuffer { return m.storage }

// Wire aliases every inlet router and registers the release with the
// outlet router.
func (m *LinearReservoir) Wire(p *sim.Producer) error {
	m.slots = m.slots[:0]
	for _, r := range p.Inlets() {
		m.slots = append(m.slots, sim.Bind(r.Sim()))
	}

	for _, r := range p.Outlets() {
		r.AddInput(sim.Bind(m.outflow))
	}

	return nil
}

// Load sums the bound inlet values into the inflow flux.
func (m *LinearReservoir) Load(step int) error {
	sum := 0.0
	for _, s := range m.slots {
		sum += s.Get()
	}
	m.inflow.SetScalar(sum)

	return nil
}

// Compute advances the water balance by one step, reading last step's
// storage from the previous side of the state buffer.
func (m *LinearReservoir) Compute(step int) error {
	stored := m.storage.Previous().Scalar()
	available := stored + m.inflow.Scalar()

	release := m.k * available

	m.outflow.SetScalar(release)
	m.storage.Current().SetScalar(available - release)

	return nil
}

// Store records the step's fluxes and state.
func (m *LinearReservoir) Store(step int) error {
	if err := m.inflow.Store(step); err != nil {
		return err
	}
	if err := m.outflow.Store(step); err != nil {
		return err
	}
	return m.storage.Current().Store(step)
}

// Variables lists the series the runner activates.
func (m *LinearReservoir) Variables() []*series.Variable {
	return []*series.Variable{m.inflow, m.outflow, m.storage.Current()}
}

// StateBuffers lists the storage state committed at step end.
func (m *LinearReservoir) StateBuffers() []*series.StateBuffer {
	return []*series.StateBuffer{m.storage}
}

// RoleArity accepts any number of inlets and exactly one outlet.
func (m *LinearReservoir) RoleArity(role sim.Role) sim.Arity {
	switch role {
	case sim.RoleInlet:
		return sim.MultiPeer
	case sim.RoleOutlet:
		return sim.SinglePeer
	default:
		return sim.NoPeer
	}
}
