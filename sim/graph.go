package sim

import "log"

// A DeviceGraph is the bipartite adjacency of Producers and Routers. It is
// a plain registry with no algorithmic behavior; ordering lives in
// BuildExecutionOrder.
//
// Devices are held in declaration order in slice-backed arenas with name
// indices resolved at build time, so no name lookup happens on the per-step
// path and traversal order is deterministic for identical assembly
// sequences.
type DeviceGraph struct {
	producers     []*Producer
	routers       []*Router
	producerIndex map[string]int
	routerIndex   map[string]int
}

// NewDeviceGraph creates an empty DeviceGraph.
func NewDeviceGraph() *DeviceGraph {
	return &DeviceGraph{
		producerIndex: make(map[string]int),
		routerIndex:   make(map[string]int),
	}
}

// AddProducer registers a producer with its process model. It panics on a
// duplicate or invalid name, or a nil model.
func (g *DeviceGraph) AddProducer(name string, model ProcessModel) *Producer {
	NameMustBeValid(name)

	if model == nil {
		log.Panicf("producer %s must have a process model", name)
	}

	if _, exists := g.producerIndex[name]; exists {
		log.Panicf("producer %s already registered", name)
	}

	p := &Producer{name: name, model: model}
	g.producers = append(g.producers, p)
	g.producerIndex[name] = len(g.producers) - 1

	return p
}

// AddRouter registers a router carrying one quantity kind. It panics on a
// duplicate or invalid name.
func (g *DeviceGraph) AddRouter(name string, kind QuantityKind) *Router {
	NameMustBeValid(name)

	if _, exists := g.routerIndex[name]; exists {
		log.Panicf("router %s already registered", name)
	}

	r := newRouter(name, kind)
	g.routers = append(g.routers, r)
	g.routerIndex[name] = len(g.routers) - 1

	return r
}

// Connect attaches a router to one role of a producer and records the
// reverse adjacency on the router. It fails with a RoleArityError if the
// producer's process model declares the role as single-peer and a peer is
// already attached, or as accepting no peer at all.
func (g *DeviceGraph) Connect(p *Producer, r *Router, role Role) error {
	arity := p.model.RoleArity(role)

	switch arity {
	case NoPeer:
		return &RoleArityError{Producer: p.name, Router: r.name, Role: role}
	case SinglePeer:
		if len(p.Peers(role)) > 0 {
			return &RoleArityError{Producer: p.name, Router: r.name, Role: role}
		}
	}

	p.addPeer(role, r)

	if role.consuming() {
		r.exits = append(r.exits, p)
	} else {
		r.entries = append(r.entries, p)
	}

	return nil
}

// Producers returns all producers in declaration order.
func (g *DeviceGraph) Producers() []*Producer {
	return g.producers
}

// Routers returns all routers in declaration order.
func (g *DeviceGraph) Routers() []*Router {
	return g.routers
}

// ProducerByName returns the registered producer, or nil.
func (g *DeviceGraph) ProducerByName(name string) *Producer {
	i, found := g.producerIndex[name]
	if !found {
		return nil
	}
	return g.producers[i]
}

// RouterByName returns the registered router, or nil.
func (g *DeviceGraph) RouterByName(name string) *Router {
	i, found := g.routerIndex[name]
	if !found {
		return nil
	}
	return g.routers[i]
}
