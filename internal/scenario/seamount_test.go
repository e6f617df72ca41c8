package scenario_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seamount/internal/ocean"
	"github.com/san-kum/seamount/internal/scenario"
)

type failingReducer struct{ err error }

func (f failingReducer) GlobalMin(context.Context, []float64) (float64, error) { return 0, f.err }
func (f failingReducer) GlobalMax(context.Context, []float64) (float64, error) { return 0, f.err }

func setup(opts scenario.Options, runnerOpts ...ocean.Option) (*scenario.Seamount, *ocean.Runner) {
	def := scenario.New(opts)
	r := ocean.NewRunner(def, runnerOpts...)
	Expect(r.Setup(context.Background())).To(Succeed())
	return def, r
}

var _ = Describe("Seamount", func() {
	Describe("Configure", func() {
		It("sets the channel grid and is idempotent", func() {
			def := scenario.New(scenario.DefaultOptions())
			s := ocean.NewState()

			def.Configure(s)
			first := s.Settings
			def.Configure(s)

			Expect(s.Settings).To(Equal(first))
			Expect(s.NX).To(Equal(50))
			Expect(s.NY).To(Equal(100))
			Expect(s.NZ).To(Equal(10))
			Expect(s.CoordDegree).To(BeTrue())
			Expect(s.EnableCyclicX).To(BeTrue())
		})
	})

	Context("with the default channel", func() {
		var (
			def *scenario.Seamount
			r   *ocean.Runner
			s   *ocean.State
		)

		BeforeEach(func() {
			def, r = setup(scenario.DefaultOptions())
			s = r.State()
		})

		It("places the grid origin on the first interior face with unit spacing", func() {
			Expect(s.XOrigin).To(Equal(0.0))
			Expect(s.YOrigin).To(Equal(0.0))
			Expect(s.Yu.At(ocean.Halo)).To(Equal(0.0))
			Expect(s.Xu.At(ocean.Halo)).To(Equal(0.0))
			Expect(s.Yt.At(ocean.Halo)).To(Equal(-0.5))
			Expect(s.Xt.At(ocean.Halo)).To(Equal(-0.5))
			for _, f := range []*ocean.Field{s.Dxt, s.Dyt, s.Dzt} {
				for _, v := range f.Data {
					Expect(v).To(Equal(1.0))
				}
			}
		})

		It("seeds u over the padded grid", func() {
			Expect(s.U.Shape).To(Equal([]int{54, 104, 10, ocean.TimeLevels}))
			nonZero := 0
			for i := 0; i < 54; i++ {
				for j := 0; j < 104; j++ {
					for k := 0; k < 10; k++ {
						v := s.U.At(i, j, k, s.Tau)
						Expect(v).To(BeNumerically(">=", 0))
						Expect(v).To(BeNumerically("<", 1))
						if v != 0 {
							nonZero++
						}
					}
				}
			}
			Expect(nonZero).To(BeNumerically(">", 50000))
		})

		It("marks exactly the island block as land", func() {
			nx, ny, _ := s.PaddedShape()
			for i := 0; i < nx; i++ {
				for j := 0; j < ny; j++ {
					inIsland := i >= 10 && i < 20 && j >= 10 && j < 20
					if inIsland {
						Expect(s.Kbot.At(i, j)).To(Equal(0.0), "cell %d,%d", i, j)
						Expect(s.IsWet(i, j)).To(BeFalse())
					} else {
						Expect(s.Kbot.At(i, j)).To(Equal(100.0), "cell %d,%d", i, j)
						Expect(s.IsWet(i, j)).To(BeTrue())
					}
				}
			}
		})

		It("has opposite Coriolis parameters either side of the equator", func() {
			for i := 0; i < 54; i++ {
				Expect(s.CoriolisT.At(i, ocean.Halo)).To(Equal(-s.CoriolisT.At(i, ocean.Halo+1)))
			}
			want := 2 * ocean.EarthOmega * math.Sin(44.5*math.Pi/180)
			Expect(s.CoriolisT.At(0, ocean.Halo+45)).To(BeNumerically("~", want, 1e-15))
		})

		It("records the global latitude bounds", func() {
			b := def.Bounds()
			Expect(b.YtMin).To(Equal(-2.5))
			Expect(b.YtMax).To(Equal(100.5))
			Expect(b.YuMin).To(Equal(-2.0))
			Expect(b.YuMax).To(Equal(101.0))
		})

		It("holds 15° between ±20° and ramps to zero at the northern edge", func() {
			tStar := def.TargetTemperature()
			Expect(tStar.Shape).To(Equal([]int{104}))
			prev := math.Inf(1)
			for j, lat := range s.Yt.Data {
				v := tStar.At(j)
				if lat > -20 && lat < 20 {
					Expect(v).To(Equal(15.0))
					continue
				}
				if lat > 20 {
					Expect(v).To(BeNumerically("<=", prev))
					prev = v
				}
			}
			Expect(tStar.At(103)).To(BeNumerically("~", 0, 1e-12))
		})

		It("restores wet surface cells over thirty days", func() {
			rate := def.RelaxationRate()
			Expect(rate.At(30, 50)).To(BeNumerically("~", 1/(30*86400.0), 1e-20))
			Expect(rate.At(15, 15)).To(Equal(0.0))
		})

		It("produces no forcing when the surface sits on its target", func() {
			tStar := def.TargetTemperature()
			nx, ny, _ := s.PaddedShape()
			for i := 0; i < nx; i++ {
				for j := 0; j < ny; j++ {
					s.Temp.Set(tStar.At(j), i, j, s.Top(), s.Tau)
				}
			}
			def.ApplyForcing(s)
			for _, v := range s.ForcTempSurface.Data {
				Expect(v).To(Equal(0.0))
			}
		})

		It("heats a cold surface toward the target", func() {
			def.ApplyForcing(s)
			Expect(s.ForcTempSurface.At(30, 50)).To(BeNumerically(">", 0))
			Expect(s.ForcTempSurface.At(15, 15)).To(Equal(0.0))
		})

		It("adds the tendency fields to the snapshot", func() {
			snap, err := s.Diagnostics.Lookup("snapshot")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.OutputVariables).To(ContainElements("dsalt", "dtemp"))
		})
	})

	Context("with the channel straddling the equator", func() {
		var (
			def *scenario.Seamount
			s   *ocean.State
		)

		BeforeEach(func() {
			opts := scenario.DefaultOptions()
			opts.YOrigin = -50
			var r *ocean.Runner
			def, r = setup(opts, ocean.WithReducer(ocean.NewChunkedReducer(4)))
			s = r.State()
		})

		It("has antisymmetric Coriolis parameter across the equator", func() {
			ny := len(s.Yt.Data)
			for j := 0; j < ny; j++ {
				for jj := 0; jj < ny; jj++ {
					if s.Yt.At(j) == -s.Yt.At(jj) {
						Expect(s.CoriolisT.At(5, j)).To(Equal(-s.CoriolisT.At(5, jj)))
					}
				}
			}
		})

		It("ramps monotonically on both sides of the tropical band", func() {
			tStar := def.TargetTemperature()
			b := def.Bounds()
			for j := 1; j < len(s.Yt.Data); j++ {
				lat, prevLat := s.Yt.At(j), s.Yt.At(j-1)
				v, prev := tStar.At(j), tStar.At(j-1)
				Expect(v).To(BeNumerically(">=", 0))
				Expect(v).To(BeNumerically("<=", 15))
				switch {
				case lat > -20 && lat < 20:
					Expect(v).To(Equal(15.0))
				case lat <= -20:
					Expect(v).To(BeNumerically(">=", prev))
				case prevLat >= 20:
					Expect(v).To(BeNumerically("<=", prev))
				}
			}
			Expect(tStar.At(0)).To(BeNumerically("~", 0, 1e-12))
			Expect(s.Yt.At(0)).To(Equal(b.YtMin))
		})

		It("drives the surface toward the target over a run", func() {
			var r *ocean.Runner
			opts := scenario.DefaultOptions()
			opts.YOrigin = -50
			def, r = setup(opts)
			s = r.State()

			cfg := ocean.Config{Dt: 86400, Runlen: 60 * 86400, SnapshotEvery: 30 * 86400}
			result, err := r.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Steps).To(Equal(60))

			sst := s.Temp.At(30, 52, s.Top(), s.Tau)
			Expect(sst).To(BeNumerically(">", 10))
			Expect(sst).To(BeNumerically("<", 15))

			vars := map[string]bool{}
			for _, snap := range result.Snapshots {
				vars[snap.Variable] = true
			}
			Expect(vars).To(HaveKey("dtemp"))
			Expect(vars).To(HaveKey("dsalt"))
			Expect(result.Psi).To(HaveLen(100))
		})
	})

	It("propagates reducer failures out of setup", func() {
		boom := errors.New("reduction failed")
		def := scenario.New(scenario.DefaultOptions())
		r := ocean.NewRunner(def, ocean.WithReducer(failingReducer{err: boom}))
		err := r.Setup(context.Background())
		Expect(err).To(MatchError(boom))
	})

	It("keeps the island block fixed", func() {
		i0, i1, j0, j1 := scenario.IslandBlock()
		Expect([]int{i0, i1, j0, j1}).To(Equal([]int{10, 20, 10, 20}))
	})

	It("can be set up twice without duplicating diagnostics", func() {
		def := scenario.New(scenario.DefaultOptions())
		r := ocean.NewRunner(def)
		Expect(r.Setup(context.Background())).To(Succeed())
		first := append([]float64(nil), r.State().U.Data...)
		Expect(r.Setup(context.Background())).To(Succeed())

		snap, err := r.State().Diagnostics.Lookup("snapshot")
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.OutputVariables).To(Equal([]string{"temp", "forc_temp_surface", "dsalt", "dtemp"}))
		Expect(r.State().U.Data).To(Equal(first))
	})

	It("reproduces the same initial velocity for the same seed", func() {
		_, r1 := setup(scenario.DefaultOptions())
		_, r2 := setup(scenario.DefaultOptions())
		Expect(r1.State().U.Data).To(Equal(r2.State().U.Data))
	})
})
