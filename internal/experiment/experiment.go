package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/integrators"
	"github.com/san-kum/oscreach/internal/metrics"
	"github.com/san-kum/oscreach/internal/physics"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/sets"
)

const (
	// containmentTol absorbs round-off in the transition matrix.
	containmentTol = 1e-9
	maxSamples     = 20000
)

// Result is everything one solve produces.
type Result struct {
	Config     config.Config
	Oscillator *physics.Oscillator
	Flowpipe   *reach.Flowpipe
	// Analytic is nil when the initial set is a region.
	Analytic  *dynamo.Trajectory
	Reference *dynamo.Trajectory
	Metrics   map[string]float64
	Elapsed   time.Duration
}

// Oscillator builds the problem described by cfg.
func Oscillator(cfg *config.Config) (*physics.Oscillator, error) {
	pos, vel := cfg.InitialPoint()

	var initial sets.Set = sets.NewSingleton(pos, vel)
	if cfg.IsRegion() {
		box, err := sets.NewHyperrectangle(
			dynamo.State{pos, vel},
			dynamo.State{cfg.Initial.RadiusPos, cfg.Initial.RadiusVel},
		)
		if err != nil {
			return nil, err
		}
		initial = box
	}

	return physics.NewOscillator(physics.Params{
		Period:    cfg.Period,
		Amplitude: cfg.Amplitude,
		Initial:   initial,
	})
}

// Run validates cfg, solves the reachability problem and checks the flowpipe
// against the closed-form solution and an RK4 reference trajectory.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	osc, err := Oscillator(cfg)
	if err != nil {
		return nil, err
	}

	model, err := reach.ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	alg := reach.Algorithm{
		Model:    model,
		StepSize: cfg.StepSize(),
		MaxOrder: cfg.MaxOrder,
	}
	span := reach.TimeSpan{Start: 0, End: cfg.Horizon}

	log.Debug().
		Float64("period", osc.Period()).
		Float64("omega", osc.AngularFrequency()).
		Float64("alpha", cfg.Alpha).
		Float64("step", alg.StepSize).
		Str("model", string(alg.Model)).
		Msg("solving")

	start := time.Now()
	fp, err := reach.Solve(ctx, osc.Problem(), span, alg)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	elapsed := time.Since(start)

	res := &Result{
		Config:     *cfg,
		Oscillator: osc,
		Flowpipe:   fp,
		Metrics:    make(map[string]float64),
		Elapsed:    elapsed,
	}

	spacing := math.Max(alg.StepSize/4, cfg.Horizon/maxSamples)

	if _, ok := sets.AsPoint(osc.InitialSet()); ok {
		res.Analytic, err = osc.AnalyticTrajectory(cfg.Horizon, spacing)
		if err != nil {
			return nil, err
		}
	}

	pos, vel := cfg.InitialPoint()
	res.Reference, err = integrators.Integrate(integrators.NewRK4(), osc, dynamo.State{pos, vel}, cfg.Horizon, spacing)
	if err != nil {
		return nil, fmt.Errorf("reference trajectory: %w", err)
	}

	res.collectMetrics()

	log.Info().
		Int("segments", fp.Len()).
		Dur("elapsed", elapsed).
		Float64("max_width_pos", res.Metrics["max_width_pos"]).
		Float64("max_width_vel", res.Metrics["max_width_vel"]).
		Msg("flowpipe computed")

	if model == reach.ModelForward {
		if c, ok := res.Metrics["analytic_containment"]; ok && c < 1 {
			log.Warn().Float64("containment", c).Msg("analytic solution leaves the flowpipe")
		}
	}

	return res, nil
}

func (r *Result) collectMetrics() {
	r.Metrics["segments"] = float64(r.Flowpipe.Len())
	r.Metrics["max_width_pos"] = r.Flowpipe.MaxWidth(0)
	r.Metrics["max_width_vel"] = r.Flowpipe.MaxWidth(1)

	// The discrete model is only defined at sample times, so containment of
	// continuous trajectories is meaningless there.
	if r.Flowpipe.Algorithm.Model == reach.ModelForward {
		if r.Analytic != nil {
			for k, v := range metrics.Collect(r.Analytic,
				metrics.NewContainment("analytic_containment", r.Flowpipe, containmentTol)) {
				r.Metrics[k] = v
			}
		}
		for k, v := range metrics.Collect(r.Reference,
			metrics.NewContainment("reference_containment", r.Flowpipe, containmentTol)) {
			r.Metrics[k] = v
		}
	}

	for k, v := range metrics.Collect(r.Reference, metrics.NewEnergyDrift(r.Oscillator)) {
		r.Metrics[k] = v
	}
}
