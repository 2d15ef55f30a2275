// Package models provides ready-made process models for network
// simulations: a constant inflow source, a linear storage reservoir, a
// pass-through channel, and a flow diversion.
//
// The engine treats process models as opaque function blocks; everything in
// this package talks to the engine exclusively through the
// sim.ProcessModel interface and could live in a downstream project.
package models
