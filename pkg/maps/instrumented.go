package maps

import (
	"context"
	"time"
)

// Observer receives one call per upstream request.
type Observer func(operation string, err error, elapsed time.Duration)

type instrumentedProvider struct {
	next    MapsProvider
	observe Observer
}

// WithObserver wraps a provider so every request is reported to observe.
func WithObserver(next MapsProvider, observe Observer) MapsProvider {
	if observe == nil {
		return next
	}
	return &instrumentedProvider{next: next, observe: observe}
}

func (p *instrumentedProvider) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	start := time.Now()
	res, err := p.next.Geocode(ctx, address)
	p.observe("geocode", err, time.Since(start))
	return res, err
}

func (p *instrumentedProvider) DistanceTime(ctx context.Context, origin, destination string) (*DistanceElement, error) {
	start := time.Now()
	res, err := p.next.DistanceTime(ctx, origin, destination)
	p.observe("distance_matrix", err, time.Since(start))
	return res, err
}

func (p *instrumentedProvider) Suggestions(ctx context.Context, input string) ([]string, error) {
	start := time.Now()
	res, err := p.next.Suggestions(ctx, input)
	p.observe("autocomplete", err, time.Since(start))
	return res, err
}
