package sim

import (
	"log"

	"github.com/hydrosim/hydronet/series"
)

// A LinkSlot aliases one producer-side value, a scalar variable or a single
// element of a vector variable, as a consumer-side input. It is pure
// wiring: no data is copied, and a read observes the latest value written
// to the producer side within the same step.
//
// Directionality is enforced by construction. A slot carries no setter, so
// the consumer can never write through it, and the fields are fixed at bind
// time. Multi-source aggregation is the consumer's responsibility, done by
// summing over a known-length collection of slots.
type LinkSlot struct {
	src   []float64
	index int
}

// Bind creates a LinkSlot aliasing a scalar producer variable.
func Bind(producer *series.Variable) LinkSlot {
	return BindIndexed(producer, 0)
}

// BindIndexed creates a LinkSlot aliasing one element of a producer
// variable, for collecting one of several scalar sources into one slot of a
// vector consumer.
func BindIndexed(producer *series.Variable, index int) LinkSlot {
	if index < 0 || index >= producer.Len() {
		log.Panicf("link slot index %d out of range for variable %s",
			index, producer.Name())
	}

	return LinkSlot{
		src:   producer.Value(),
		index: index,
	}
}

// Get reads the current producer-side value.
func (s LinkSlot) Get() float64 {
	return s.src[s.index]
}
