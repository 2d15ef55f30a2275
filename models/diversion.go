package models

import (
	"fmt"

	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

// A Diversion splits its single inlet between its single outlet and any
// number of sender routers. A fixed fraction is diverted and distributed
// evenly over the senders; the remainder continues through the outlet.
// Diverted amounts are exposed per sender through a vector variable, one
// slot per sender in connection order.
type Diversion struct {
	fraction float64

	slot     sim.LinkSlot
	inflow   *series.Variable
	outflow  *series.Variable
	diverted *series.Variable
}

// NewDiversion creates a Diversion taking fraction in [0, 1] away from the
// main course.
func NewDiversion(name string, fraction float64) *Diversion {
	return &Diversion{
		fraction: fraction,
		inflow:   series.NewVariable(sim.BuildName(name, "Inflow")),
		outflow:  series.NewVariable(sim.BuildName(name, "Outflow")),
		diverted: series.NewVariable(sim.BuildName(name, "Diverted"), 1),
	}
}

// Outflow returns the main-course output variable.
func (m *Diversion) Outflow() *series.Variable { return m.outflow }

// Diverted returns the per-sender diverted amounts.
func (m *Diversion) Diverted() *series.Variable { return m.diverted }

// Wire aliases the inlet router, sizes the diverted vector to the number of
// connected senders, and registers one slot of it with each sender router.
func (m *Diversion) Wire(p *sim.Producer) error {
	m.slot = sim.Bind(p.Inlets()[0].Sim())

	n := len(p.Senders())
	if n > 0 {
		if err := m.diverted.Reshape(n); err != nil {
			return fmt.Errorf("sizing diverted vector: %w", err)
		}
	}

	for i, r := range p.Senders() {
		r.AddInput(sim.BindIndexed(m.diverted, i))
	}
	for _, r := range p.Outlets() {
		r.AddInput(sim.Bind(m.outflow))
	}

	return nil
}

// Load reads the inlet value.
func (m *Diversion) Load(step int) error {
	m.inflow.SetScalar(m.slot.Get())
	return nil
}

// Compute splits the inflow.
func (m *Diversion) Compute(step int) error {
	in := m.inflow.Scalar()
	taken := m.fraction * in

	m.outflow.SetScalar(in - taken)

	shares := m.diverted.Value()
	n := float64(len(shares))
	for i := range shares {
		shares[i] = taken / n
	}

	return nil
}

// Store records the step's fluxes.
func (m *Diversion) Store(step int) error {
	if err := m.inflow.Store(step); err != nil {
		return err
	}
	if err := m.outflow.Store(step); err != nil {
		return err
	}
	return m.diverted.Store(step)
}

// Variables lists the series the runner activates.
func (m *Diversion) Variables() []*series.Variable {
	return []*series.Variable{m.inflow, m.outflow, m.diverted}
}

// StateBuffers returns nil; the model is stateless.
func (m *Diversion) StateBuffers() []*series.StateBuffer { return nil }

// RoleArity accepts one inlet, one outlet, and any number of senders.
func (m *Diversion) RoleArity(role sim.Role) sim.Arity {
	switch role {
	case sim.RoleInlet, sim.RoleOutlet:
		return sim.SinglePeer
	case sim.RoleSender:
		return sim.MultiPeer
	default:
		return sim.NoPeer
	}
}
