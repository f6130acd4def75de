package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/dynamo"
)

// Sweep runs the same problem once per step-size factor, concurrently.
// Results are returned in the order of alphas.
func Sweep(ctx context.Context, cfg *config.Config, alphas []float64, log zerolog.Logger) ([]*Result, error) {
	results := make([]*Result, len(alphas))
	errs := make([]error, len(alphas))

	dynamo.ParallelFor(len(alphas), 1, func(start, end int) {
		for i := start; i < end; i++ {
			c := *cfg
			c.Alpha = alphas[i]
			results[i], errs[i] = Run(ctx, &c, log.With().Float64("alpha", alphas[i]).Logger())
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("alpha %g: %w", alphas[i], err)
		}
	}
	return results, nil
}

// SliderAlphas lists every value the α slider can take.
func SliderAlphas() []float64 {
	var out []float64
	for i := 0; ; i++ {
		a := config.AlphaMin + float64(i)*config.AlphaStep
		if a > config.AlphaMax+1e-12 {
			break
		}
		out = append(out, a)
	}
	return out
}
