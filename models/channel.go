package models

import (
	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

// A Channel forwards its single inlet to its single outlet unchanged. It is
// the identity routing element, useful for naming points along a reach.
type Channel struct {
	slot    sim.LinkSlot
	inflow  *series.Variable
	outflow *series.Variable
}

// NewChannel creates a Channel.
func NewChannel(name string) *Channel {
	return &Channel{
		inflow:  series.NewVariable(sim.BuildName(name, "Inflow")),
		outflow: series.NewVariable(sim.BuildName(name, "Outflow")),
	}
}

// Outflow returns the model's output variable.
func (m *Channel) Outflow() *series.Variable { return m.outflow }

// Wire aliases the inlet router and registers the outflow downstream.
func (m *Channel) Wire(p *sim.Producer) error {
	m.slot = sim.Bind(p.Inlets()[0].Sim())

	for _, r := range p.Outlets() {
		r.AddInput(sim.Bind(m.outflow))
	}

	return nil
}

// Load reads the inlet value.
func (m *Channel) Load(step int) error {
	m.inflow.SetScalar(m.slot.Get())
	return nil
}

// Compute forwards the inflow.
func (m *Channel) Compute(step int) error {
	m.outflow.SetScalar(m.inflow.Scalar())
	return nil
}

// Store records the step's fluxes.
func (m *Channel) Store(step int) error {
	if err := m.inflow.Store(step); err != nil {
		return err
	}
	return m.outflow.Store(step)
}

// Variables lists the series the runner activates.
func (m *Channel) Variables() []*series.Variable {
	return []*series.Variable{m.inflow, m.outflow}
}

// StateBuffers returns nil; the model is stateless.
func (m *Channel) StateBuffers() []*series.StateBuffer { return nil }

// RoleArity accepts exactly one inlet and one outlet.
func (m *Channel) RoleArity(role sim.Role) sim.Arity {
	switch role {
	case sim.RoleInlet, sim.RoleOutlet:
		return sim.SinglePeer
	default:
		return sim.NoPeer
	}
}
