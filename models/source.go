package models

import (
	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

// A ConstantInflow is a source producer releasing a fixed rate into its
// single outlet every step. It has no inputs and no state.
type ConstantInflow struct {
	rate float64
	out  *series.Variable
}

// NewConstantInflow creates a ConstantInflow releasing rate per step. The
// name prefixes the model's variable names.
func NewConstantInflow(name string, rate float64) *ConstantInflow {
	return &ConstantInflow{
		rate: rate,
		out:  series.NewVariable(sim.BuildName(name, "Outflow")),
	}
}

// Outflow returns the model's output variable.
func (m *ConstantInflow) Outflow() *series.Variable {
	return m.out
}

// Wire registers the output with the downstream router.
func (m *ConstantInflow) Wire(p *sim.Producer) error {
	for _, r := range p.Outlets() {
		r.AddInput(sim.Bind(m.out))
	}
	return nil
}

// Load does nothing; the model has no inputs.
func (m *ConstantInflow) Load(step int) error { return nil }

// Compute sets the fixed release.
func (m *ConstantInflow) Compute(step int) error {
	m.out.SetScalar(m.rate)
	return nil
}

// Store records the release.
func (m *ConstantInflow) Store(step int) error {
	return m.out.Store(step)
}

// Variables lists the series the runner activates.
func (m *ConstantInflow) Variables() []*series.Variable {
	return []*series.Variable{m.out}
}

// StateBuffers returns nil; the model is stateless.
func (m *ConstantInflow) StateBuffers() []*series.StateBuffer { return nil }

// RoleArity accepts exactly one outlet and nothing else.
func (m *ConstantInflow) RoleArity(role sim.Role) sim.Arity {
	if role == sim.RoleOutlet {
		return sim.SinglePeer
	}
	return sim.NoPeer
}
