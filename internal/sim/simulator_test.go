package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/sim"
)

// tiltedSurface rises toward +x and pushes every point that way.
type tiltedSurface struct{}

func (tiltedSurface) EnergyAt(p geom.Vec2) float64   { return p.X }
func (tiltedSurface) GradientAt(geom.Vec2) geom.Vec2 { return geom.V(1, 0) }

type nanSurface struct{}

func (nanSurface) EnergyAt(geom.Vec2) float64     { return 0 }
func (nanSurface) GradientAt(geom.Vec2) geom.Vec2 { return geom.V(math.NaN(), 0) }

type countingMetric struct{ n int }

func (c *countingMetric) Name() string          { return "count" }
func (c *countingMetric) Observe(sim.Iteration) { c.n++ }
func (c *countingMetric) Value() float64        { return float64(c.n) }
func (c *countingMetric) Reset()                { c.n = 0 }

func threeWells() *pes.Field {
	return pes.New(1.0,
		pes.Gaussian{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 5, SigmaY: 2},
		pes.Gaussian{Amplitude: -5, CenterX: 0, SigmaX: 2, CenterY: 5, SigmaY: 2},
		pes.Gaussian{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 0, SigmaY: 2},
	)
}

func sampleChain() *neb.Chain {
	return neb.New(neb.ChainConfig{
		PinEnds:  true,
		Start:    geom.V(7.5, 0),
		End:      geom.V(0, 7.5),
		Elements: 20,
	})
}

var _ = Describe("Simulator", func() {
	var (
		ctx context.Context
		cfg sim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.Config{ConvergenceLimit: 1e-4, MaxIterations: 100000}
	})

	Context("with three symmetric wells", func() {
		var (
			field  *pes.Field
			chain  *neb.Chain
			result *sim.Result
		)

		BeforeEach(func() {
			field = threeWells()
			chain = sampleChain()

			var err error
			result, err = sim.New(field).Run(ctx, chain, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("converges in a finite number of iterations", func() {
			Expect(result.Status).To(Equal(sim.StatusConverged))
			Expect(result.Iterations).To(BeNumerically(">", 1))
			Expect(result.Energies).To(HaveLen(result.Iterations + 1))
		})

		It("lowers the average energy below the straight line", func() {
			Expect(result.FinalEnergy).To(BeNumerically("<", result.InitialEnergy))
			Expect(chain.Energy(field)).To(Equal(result.FinalEnergy))
		})

		It("decreases the energy strictly until the stopping iteration", func() {
			for i := 1; i < len(result.Energies)-1; i++ {
				Expect(result.Energies[i]).To(BeNumerically("<", result.Energies[i-1]))
			}
		})

		It("keeps the pinned anchors in place", func() {
			Expect(chain.At(0)).To(Equal(geom.V(7.5, 0)))
			Expect(chain.At(chain.Len() - 1)).To(Equal(geom.V(0, 7.5)))
		})
	})

	It("stops on the first energy increase", func() {
		chain := neb.New(neb.ChainConfig{PinEnds: true, Start: geom.V(0, 0), End: geom.V(0, 10), Elements: 4})

		result, err := sim.New(tiltedSurface{}).Run(ctx, chain, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(sim.StatusConverged))
		Expect(result.Iterations).To(Equal(1))
		Expect(result.EnergyIncreased).To(BeTrue())
		Expect(result.FinalEnergy).To(BeNumerically(">", result.InitialEnergy))
	})

	It("reports the iteration bound without an error", func() {
		cfg.ConvergenceLimit = -1e9
		cfg.MaxIterations = 5

		result, err := sim.New(threeWells()).Run(ctx, sampleChain(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(sim.StatusMaxIterations))
		Expect(result.Converged()).To(BeFalse())
		Expect(result.Iterations).To(Equal(5))
	})

	It("returns the partial result when canceled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := sim.New(threeWells()).Run(cancelled, sampleChain(), cfg)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result.Status).To(Equal(sim.StatusCanceled))
		Expect(result.Iterations).To(BeZero())
	})

	It("detects divergence", func() {
		chain := neb.New(neb.ChainConfig{Start: geom.V(0, 0), End: geom.V(1, 1), Elements: 3})

		result, err := sim.New(nanSurface{}).Run(ctx, chain, cfg)
		Expect(errors.Is(err, sim.ErrDiverged)).To(BeTrue())
		Expect(result.Status).To(Equal(sim.StatusDiverged))

		var iterErr *sim.IterationError
		Expect(errors.As(err, &iterErr)).To(BeTrue())
		Expect(iterErr.Iteration).To(Equal(1))
	})

	It("rejects invalid configuration", func() {
		for _, bad := range []sim.Config{
			{ConvergenceLimit: math.NaN()},
			{ConvergenceLimit: 1e-4, MaxIterations: -1},
		} {
			_, err := sim.New(threeWells()).Run(ctx, sampleChain(), bad)
			Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())
		}
	})

	It("notifies observers and metrics for every iteration", func() {
		s := sim.New(threeWells())
		metric := &countingMetric{}
		s.AddMetric(metric)

		var seen []int
		s.AddObserver(sim.ObserverFunc(func(it sim.Iteration) {
			seen = append(seen, it.Index)
			Expect(it.Chain).NotTo(BeNil())
		}))

		result, err := s.Run(ctx, sampleChain(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(result.Iterations + 1))
		Expect(seen[0]).To(Equal(0))
		Expect(metric.n).To(Equal(result.Iterations))
		Expect(result.Metrics).To(HaveKeyWithValue("count", float64(result.Iterations)))
	})
})

var _ = Describe("Status", func() {
	DescribeTable("String",
		func(s sim.Status, want string) {
			Expect(s.String()).To(Equal(want))
		},
		Entry("converged", sim.StatusConverged, "converged"),
		Entry("bound", sim.StatusMaxIterations, "max_iterations"),
		Entry("canceled", sim.StatusCanceled, "canceled"),
		Entry("diverged", sim.StatusDiverged, "diverged"),
	)
})

var _ = Describe("Stepper", func() {
	It("matches Run iteration for iteration", func() {
		cfg := sim.Config{ConvergenceLimit: 1e-4}

		result, err := sim.New(threeWells()).Run(context.Background(), sampleChain(), cfg)
		Expect(err).NotTo(HaveOccurred())

		st, err := sim.NewStepper(threeWells(), sampleChain(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Current().Energy).To(Equal(result.InitialEnergy))

		var it sim.Iteration
		for st.Status() == sim.StatusRunning {
			it, _, err = st.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(it.Energy).To(Equal(result.Energies[it.Index]))
		}
		Expect(st.Status()).To(Equal(sim.StatusConverged))
		Expect(it.Index).To(Equal(result.Iterations))
	})

	It("does nothing once stopped", func() {
		st, err := sim.NewStepper(threeWells(), sampleChain(), sim.Config{ConvergenceLimit: 1e-4})
		Expect(err).NotTo(HaveOccurred())

		st.Stop()
		it, status, err := st.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusCanceled))
		Expect(it.Index).To(BeZero())
	})

	It("reports the bound before iterating past it", func() {
		st, err := sim.NewStepper(threeWells(), sampleChain(), sim.Config{ConvergenceLimit: -1e9, MaxIterations: 2})
		Expect(err).NotTo(HaveOccurred())

		for i := 1; i <= 2; i++ {
			it, status, err := st.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(sim.StatusRunning))
			Expect(it.Index).To(Equal(i))
		}
		it, status, _ := st.Step()
		Expect(status).To(Equal(sim.StatusMaxIterations))
		Expect(it.Index).To(Equal(2))
	})
})
