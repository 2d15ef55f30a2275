package sim_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

var _ = Describe("StepRunner", func() {
	var (
		mockCtrl *gomock.Controller
		graph    *sim.DeviceGraph
		model    *MockProcessModel
		producer *sim.Producer
		router   *sim.Router
		runner   *sim.StepRunner
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		graph = sim.NewDeviceGraph()

		model = NewMockProcessModel(mockCtrl)
		model.EXPECT().RoleArity(gomock.Any()).Return(sim.MultiPeer).AnyTimes()

		producer = graph.AddProducer("Headwater", model)
		router = graph.AddRouter("Outlet", "discharge")
		Expect(graph.Connect(producer, router, sim.RoleOutlet)).To(Succeed())

		runner = sim.NewStepRunner(graph)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectStartCalls := func() {
		model.EXPECT().Wire(producer).Return(nil)
		model.EXPECT().Variables().Return(nil)
		model.EXPECT().StateBuffers().Return(nil)
	}

	It("should refuse to step before starting", func() {
		err := runner.Step(0)

		Expect(err).To(HaveOccurred())
		Expect(runner.State()).To(Equal(sim.StateIdle))
	})

	It("should refuse a non-positive horizon", func() {
		err := runner.Start(sim.RunConfig{Horizon: 0})

		Expect(err).To(HaveOccurred())
	})

	It("should activate storage and derive the order on start", func() {
		expectStartCalls()

		err := runner.Start(sim.RunConfig{
			Horizon:     3,
			DefaultMode: series.Resident,
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(runner.State()).To(Equal(sim.StateRunning))
		Expect(runner.Horizon()).To(Equal(3))
		Expect(orderNames(runner.Order())).To(Equal(
			[]string{"Headwater", "Outlet"}))
		Expect(router.Sim().IsActive()).To(BeTrue())
	})

	It("should drive load, compute, store in sequence each step", func() {
		expectStartCalls()

		gomock.InOrder(
			model.EXPECT().Load(0).Return(nil),
			model.EXPECT().Compute(0).Return(nil),
			model.EXPECT().Store(0).Return(nil),
			model.EXPECT().Load(1).Return(nil),
			model.EXPECT().Compute(1).Return(nil),
			model.EXPECT().Store(1).Return(nil),
		)

		Expect(runner.Start(sim.RunConfig{
			Horizon:     2,
			DefaultMode: series.Resident,
		})).To(Succeed())

		Expect(runner.Step(0)).To(Succeed())
		Expect(runner.Step(1)).To(Succeed())
		Expect(runner.CurrentStep()).To(Equal(2))
	})

	It("should close on finish and refuse further steps", func() {
		expectStartCalls()

		Expect(runner.Start(sim.RunConfig{
			Horizon:     1,
			DefaultMode: series.Resident,
		})).To(Succeed())
		Expect(runner.Finish()).To(Succeed())

		Expect(runner.State()).To(Equal(sim.StateClosed))
		Expect(router.Sim().IsActive()).To(BeFalse())

		err := runner.Step(0)
		Expect(errors.Is(err, sim.ErrAlreadyClosed)).To(BeTrue())

		err = runner.Start(sim.RunConfig{Horizon: 1})
		Expect(errors.Is(err, sim.ErrAlreadyClosed)).To(BeTrue())
	})

	It("should tolerate a second finish", func() {
		expectStartCalls()

		Expect(runner.Start(sim.RunConfig{
			Horizon:     1,
			DefaultMode: series.Resident,
		})).To(Succeed())
		Expect(runner.Finish()).To(Succeed())
		Expect(runner.Finish()).To(Succeed())
	})

	It("should abort the run and release storage when a model fails", func() {
		expectStartCalls()

		model.EXPECT().Load(0).Return(nil)
		model.EXPECT().Compute(0).Return(errors.New("mass balance violated"))

		Expect(runner.Start(sim.RunConfig{
			Horizon:     4,
			DefaultMode: series.Resident,
		})).To(Succeed())

		err := runner.Step(0)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("mass balance violated"))

		Expect(runner.State()).To(Equal(sim.StateClosed))
		Expect(router.Sim().IsActive()).To(BeFalse())

		Expect(errors.Is(runner.Step(1), sim.ErrAlreadyClosed)).To(BeTrue())
	})

	It("should refuse to start over a cyclic graph", func() {
		other := NewMockProcessModel(mockCtrl)
		other.EXPECT().RoleArity(gomock.Any()).Return(sim.MultiPeer).AnyTimes()

		back := graph.AddProducer("PumpBack", other)
		Expect(graph.Connect(back, router, sim.RoleInlet)).To(Succeed())

		spring := graph.AddRouter("Spring", "discharge")
		Expect(graph.Connect(back, spring, sim.RoleOutlet)).To(Succeed())
		Expect(graph.Connect(producer, spring, sim.RoleInlet)).To(Succeed())

		err := runner.Start(sim.RunConfig{
			Horizon:     1,
			DefaultMode: series.Resident,
		})

		var cyclic *sim.CyclicGraphError
		Expect(errors.As(err, &cyclic)).To(BeTrue())
		Expect(runner.State()).To(Equal(sim.StateIdle))
	})

	It("should commit state buffers at the end of every step", func() {
		state := series.NewStateBuffer("Storage")
		out := series.NewVariable("Outflow")

		model.EXPECT().Wire(producer).Return(nil)
		model.EXPECT().Variables().
			Return([]*series.Variable{out, state.Current()})
		model.EXPECT().StateBuffers().
			Return([]*series.StateBuffer{state})

		model.EXPECT().Load(0).Return(nil)
		model.EXPECT().Compute(0).DoAndReturn(func(step int) error {
			state.Current().SetScalar(42)
			return nil
		})
		model.EXPECT().Store(0).Return(nil)

		Expect(runner.Start(sim.RunConfig{
			Horizon:     1,
			DefaultMode: series.Resident,
		})).To(Succeed())

		Expect(runner.Step(0)).To(Succeed())

		Expect(state.Previous().Scalar()).To(Equal(42.0))
	})
})
