package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/hydrosim/hydronet/sim"
)

// multiPeerModel returns a mock model accepting any number of routers on
// every role, which is all the ordering tests care about.
func multiPeerModel(ctrl *gomock.Controller) *MockProcessModel {
	m := NewMockProcessModel(ctrl)
	m.EXPECT().RoleArity(gomock.Any()).Return(sim.MultiPeer).AnyTimes()
	return m
}

func orderNames(order []sim.Device) []string {
	names := make([]string, len(order))
	for i, d := range order {
		names[i] = d.Name()
	}
	return names
}

func position(order []sim.Device, d sim.Device) int {
	for i, o := range order {
		if o == d {
			return i
		}
	}
	return -1
}

var _ = Describe("BuildExecutionOrder", func() {
	var (
		mockCtrl *gomock.Controller
		graph    *sim.DeviceGraph
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		graph = sim.NewDeviceGraph()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should order a chain causally", func() {
		rA := graph.AddRouter("Spring", "discharge")
		p1 := graph.AddProducer("Headwater", multiPeerModel(mockCtrl))
		rB := graph.AddRouter("Junction", "discharge")
		p2 := graph.AddProducer("Reach", multiPeerModel(mockCtrl))
		rC := graph.AddRouter("Mouth", "discharge")

		Expect(graph.Connect(p1, rA, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p1, rB, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p2, rB, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p2, rC, sim.RoleOutlet)).To(Succeed())

		order, err := sim.BuildExecutionOrder(graph, nil)

		Expect(err).ToNot(HaveOccurred())
		Expect(orderNames(order)).To(Equal(
			[]string{"Spring", "Headwater", "Junction", "Reach", "Mouth"}))
	})

	It("should be deterministic", func() {
		rA := graph.AddRouter("Spring", "discharge")
		rB := graph.AddRouter("Creek", "discharge")
		rC := graph.AddRouter("Mouth", "discharge")
		p1 := graph.AddProducer("SubbasinWest", multiPeerModel(mockCtrl))
		p2 := graph.AddProducer("SubbasinEast", multiPeerModel(mockCtrl))
		p3 := graph.AddProducer("Confluence", multiPeerModel(mockCtrl))

		Expect(graph.Connect(p1, rA, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p2, rB, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p3, rA, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p3, rB, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p3, rC, sim.RoleOutlet)).To(Succeed())

		first, err := sim.BuildExecutionOrder(graph, nil)
		Expect(err).ToNot(HaveOccurred())

		for i := 0; i < 10; i++ {
			again, err := sim.BuildExecutionOrder(graph, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(orderNames(again)).To(Equal(orderNames(first)))
		}
	})

	It("should place inlet routers before and outlet routers after each producer", func() {
		rA := graph.AddRouter("Spring", "discharge")
		rB := graph.AddRouter("Creek", "discharge")
		rC := graph.AddRouter("Junction", "discharge")
		rD := graph.AddRouter("Mouth", "discharge")
		p1 := graph.AddProducer("SubbasinWest", multiPeerModel(mockCtrl))
		p2 := graph.AddProducer("SubbasinEast", multiPeerModel(mockCtrl))
		p3 := graph.AddProducer("Confluence", multiPeerModel(mockCtrl))

		Expect(graph.Connect(p1, rA, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p1, rC, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p2, rB, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p2, rC, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p3, rC, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p3, rD, sim.RoleOutlet)).To(Succeed())

		order, err := sim.BuildExecutionOrder(graph, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(order).To(HaveLen(7))

		for _, p := range graph.Producers() {
			pPos := position(order, p)
			Expect(pPos).To(BeNumerically(">=", 0))

			for _, r := range p.Inlets() {
				Expect(position(order, r)).To(BeNumerically("<", pPos),
					"inlet %s must precede %s", r.Name(), p.Name())
			}
			for _, r := range p.Outlets() {
				Expect(position(order, r)).To(BeNumerically(">", pPos),
					"outlet %s must follow %s", r.Name(), p.Name())
			}
		}
	})

	It("should report a cycle instead of a partial order", func() {
		rA := graph.AddRouter("Upper", "discharge")
		rB := graph.AddRouter("Lower", "discharge")
		p1 := graph.AddProducer("Downhill", multiPeerModel(mockCtrl))
		p2 := graph.AddProducer("PumpBack", multiPeerModel(mockCtrl))

		Expect(graph.Connect(p1, rA, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p1, rB, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p2, rB, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p2, rA, sim.RoleOutlet)).To(Succeed())

		order, err := sim.BuildExecutionOrder(graph, nil)

		Expect(order).To(BeNil())

		var cyclic *sim.CyclicGraphError
		Expect(err).To(BeAssignableToTypeOf(cyclic))

		cyclic = err.(*sim.CyclicGraphError)
		Expect(cyclic.Cycle).ToNot(BeEmpty())
		Expect(cyclic.Cycle[0]).To(Equal(cyclic.Cycle[len(cyclic.Cycle)-1]))
	})

	It("should honor a receiver/sender loop as a cycle", func() {
		r := graph.AddRouter("Feedback", "waterlevel")
		p := graph.AddProducer("Dam", multiPeerModel(mockCtrl))

		Expect(graph.Connect(p, r, sim.RoleReceiver)).To(Succeed())
		Expect(graph.Connect(p, r, sim.RoleSender)).To(Succeed())

		_, err := sim.BuildExecutionOrder(graph, nil)

		var cyclic *sim.CyclicGraphError
		Expect(err).To(BeAssignableToTypeOf(cyclic))
	})

	It("should restrict the order to an upstream selection", func() {
		rA := graph.AddRouter("Spring", "discharge")
		p1 := graph.AddProducer("Headwater", multiPeerModel(mockCtrl))
		rB := graph.AddRouter("Junction", "discharge")
		p2 := graph.AddProducer("Reach", multiPeerModel(mockCtrl))
		rC := graph.AddRouter("Mouth", "discharge")

		Expect(graph.Connect(p1, rA, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p1, rB, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(p2, rB, sim.RoleInlet)).To(Succeed())
		Expect(graph.Connect(p2, rC, sim.RoleOutlet)).To(Succeed())

		sel := graph.SelectUpstream(rB)
		Expect(sel.HasRouter(rB)).To(BeTrue())
		Expect(sel.HasProducer(p2)).To(BeFalse())
		Expect(sel.HasRouter(rC)).To(BeFalse())

		order, err := sim.BuildExecutionOrder(graph, sel)

		Expect(err).ToNot(HaveOccurred())
		Expect(orderNames(order)).To(Equal(
			[]string{"Spring", "Headwater", "Junction"}))
	})
})
