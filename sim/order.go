package sim

// A Selection is the subset of a graph's devices that take part in a run.
type Selection struct {
	producers map[*Producer]bool
	routers   map[*Router]bool
}

// SelectAll returns a Selection covering every device in the graph.
func (g *DeviceGraph) SelectAll() *Selection {
	sel := newSelection()

	for _, p := range g.producers {
		sel.producers[p] = true
	}
	for _, r := range g.routers {
		sel.routers[r] = true
	}

	return sel
}

// SelectUpstream returns the Selection reachable upstream from the given
// terminal routers: the routers themselves, every producer feeding them,
// and so on through the producers' inlet and receiver sides.
func (g *DeviceGraph) SelectUpstream(terminals ...*Router) *Selection {
	sel := newSelection()

	var chaseRouter func(r *Router)
	var chaseProducer func(p *Producer)

	chaseRouter = func(r *Router) {
		if sel.routers[r] {
			return
		}
		sel.routers[r] = true

		for _, p := range r.entries {
			chaseProducer(p)
		}
	}

	chaseProducer = func(p *Producer) {
		if sel.producers[p] {
			return
		}
		sel.producers[p] = true

		for _, r := range p.inlets {
			chaseRouter(r)
		}
		for _, r := range p.receivers {
			chaseRouter(r)
		}
	}

	for _, r := range terminals {
		chaseRouter(r)
	}

	return sel
}

func newSelection() *Selection {
	return &Selection{
		producers: make(map[*Producer]bool),
		routers:   make(map[*Router]bool),
	}
}

// HasProducer reports whether the producer is part of the selection.
func (s *Selection) HasProducer(p *Producer) bool {
	return s.producers[p]
}

// HasRouter reports whether the router is part of the selection.
func (s *Selection) HasRouter(r *Router) bool {
	return s.routers[r]
}

// BuildExecutionOrder derives the causal replay sequence over the selected
// devices. A nil selection means the whole graph.
//
// The order satisfies, for every selected producer, that all its inlet and
// receiver routers appear earlier and all its outlet and sender routers
// appear later. The traversal is depth-first post-order from the terminal
// routers, chasing the exit direction first, reversed at the end. Neighbors
// are visited in declaration order, so identical assembly sequences yield
// identical orders.
//
// The selected subgraph is validated for acyclicity first; a directed cycle
// through producer/router edges fails with a CyclicGraphError and no order
// is returned.
func BuildExecutionOrder(
	g *DeviceGraph,
	sel *Selection,
) ([]Device, error) {
	if sel == nil {
		sel = g.SelectAll()
	}

	if err := checkAcyclic(g, sel); err != nil {
		return nil, err
	}

	b := &orderBuilder{
		sel:      sel,
		visitedP: make(map[*Producer]bool),
		visitedR: make(map[*Router]bool),
	}

	// Terminal routers first: selected routers without a selected
	// downstream producer.
	for _, r := range g.routers {
		if sel.routers[r] && !b.hasActiveExit(r) && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}

	// Disconnected remainders, in declaration order, so that a selection
	// not anchored on terminals still yields a complete order.
	for _, r := range g.routers {
		if sel.routers[r] && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}
	for _, p := range g.producers {
		if sel.producers[p] && !b.visitedP[p] {
			b.visitProducer(p)
		}
	}

	// Post-order collection yields consumers before producers; reversal
	// restores causal order.
	for i, j := 0, len(b.list)-1; i < j; i, j = i+1, j-1 {
		b.list[i], b.list[j] = b.list[j], b.list[i]
	}

	return b.list, nil
}

type orderBuilder struct {
	sel      *Selection
	visitedP map[*Producer]bool
	visitedR map[*Router]bool
	list     []Device
}

func (b *orderBuilder) hasActiveExit(r *Router) bool {
	for _, p := range r.exits {
		if b.sel.producers[p] {
			return true
		}
	}
	return false
}

func (b *orderBuilder) visitRouter(r *Router) {
	b.visitedR[r] = true

	for _, p := range r.exits {
		if b.sel.producers[p] && !b.visitedP[p] {
			b.visitProducer(p)
		}
	}

	b.list = append(b.list, r)

	for _, p := range r.entries {
		if b.sel.producers[p] && !b.visitedP[p] {
			b.visitProducer(p)
		}
	}
}

func (b *orderBuilder) visitProducer(p *Producer) {
	b.visitedP[p] = true

	for _, r := range p.outlets {
		if b.sel.routers[r] && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}
	for _, r := range p.senders {
		if b.sel.routers[r] && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}

	b.list = append(b.list, p)

	for _, r := range p.inlets {
		if b.sel.routers[r] && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}
	for _, r := range p.receivers {
		if b.sel.routers[r] && !b.visitedR[r] {
			b.visitRouter(r)
		}
	}
}

// checkAcyclic runs a three-color depth-first search over the directed
// producer/router edges of the selected subgraph and reports the first
// cycle found.
func checkAcyclic(g *DeviceGraph, sel *Selection) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[Device]int)
	var stack []Device

	successors := func(d Device) []Device {
		var next []Device

		switch d := d.(type) {
		case *Producer:
			for _, r := range d.outlets {
				if sel.routers[r] {
					next = append(next, r)
				}
			}
			for _, r := range d.senders {
				if sel.routers[r] {
					next = append(next, r)
				}
			}
		case *Router:
			for _, p := range d.exits {
				if sel.producers[p] {
					next = append(next, p)
				}
			}
		}

		return next
	}

	var visit func(d Device) *CyclicGraphError
	visit = func(d Device) *CyclicGraphError {
		color[d] = gray
		stack = append(stack, d)

		for _, next := range successors(d) {
			switch color[next] {
			case gray:
				return cycleFromStack(stack, next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[d] = black

		return nil
	}

	for _, r := range g.routers {
		if sel.routers[r] && color[r] == white {
			if err := visit(r); err != nil {
				return err
			}
		}
	}
	for _, p := range g.producers {
		if sel.producers[p] && color[p] == white {
			if err := visit(p); err != nil {
				return err
			}
		}
	}

	return nil
}

func cycleFromStack(stack []Device, entry Device) *CyclicGraphError {
	start := 0
	for i, d := range stack {
		if d == entry {
			start = i
			break
		}
	}

	cycle := make([]string, 0, len(stack)-start+1)
	for _, d := range stack[start:] {
		cycle = append(cycle, d.Name())
	}
	cycle = append(cycle, entry.Name())

	return &CyclicGraphError{Cycle: cycle}
}
