package sensor

import (
	"context"

	"github.com/2beens/fitstats/internal/detector"
)

// Sampler produces one distance sample per call. Implementations must never
// fail the sampling loop: a sensor that cannot answer yields an invalid
// sample, not an error.
type Sampler interface {
	Sample(ctx context.Context) detector.Sample
}
