package ports

import (
	"context"

	"tradestats/domain/comparison"
)

// SampleSource loads the two groups of a comparison from an external store.
// Implementations read only; they never modify the store.
type SampleSource interface {
	Name() string
	LoadSamples(ctx context.Context, query comparison.SampleQuery) (*comparison.SamplePair, error)
}
