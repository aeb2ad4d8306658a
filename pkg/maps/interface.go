package maps

import (
	"context"
	"errors"
)

var (
	ErrNoRoutes       = errors.New("No routes found")
	ErrNoCoordinates  = errors.New("Unable to fetch coordinates")
	ErrNoSuggestions  = errors.New("Unable to fetch suggestions")
	ErrInvalidRequest = errors.New("origin and destination are required")
)

// MapsProvider is the geographic oracle the ride flow depends on.
type MapsProvider interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
	DistanceTime(ctx context.Context, origin, destination string) (*DistanceElement, error)
	Suggestions(ctx context.Context, input string) ([]string, error)
}

// Coordinates keeps the client-facing ltd/lng spelling.
type Coordinates struct {
	Ltd float64 `json:"ltd"`
	Lng float64 `json:"lng"`
}

type Distance struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // in meters
}

type Duration struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // in seconds
}

type DistanceElement struct {
	Distance Distance `json:"distance"`
	Duration Duration `json:"duration"`
	Status   string   `json:"status"`
}
