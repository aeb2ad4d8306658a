package maps

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string, timeout time.Duration, opts ...maps.ClientOption) (*GoogleMapsProvider, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	options := append([]maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)

	client, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	req := &maps.GeocodingRequest{
		Address: address,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp) == 0 {
		return nil, ErrNoCoordinates
	}

	location := resp[0].Geometry.Location
	return &Coordinates{Ltd: location.Lat, Lng: location.Lng}, nil
}

func (g *GoogleMapsProvider) DistanceTime(ctx context.Context, origin, destination string) (*DistanceElement, error) {
	if origin == "" || destination == "" {
		return nil, ErrInvalidRequest
	}

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}

	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, ErrNoRoutes
	}

	element := resp.Rows[0].Elements[0]
	switch element.Status {
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, ErrNoRoutes
	}

	return &DistanceElement{
		Distance: Distance{
			Text:  element.Distance.HumanReadable,
			Value: element.Distance.Meters,
		},
		Duration: Duration{
			Text:  durationText(element.Duration),
			Value: int(element.Duration.Seconds()),
		},
		Status: element.Status,
	}, nil
}

func (g *GoogleMapsProvider) Suggestions(ctx context.Context, input string) ([]string, error) {
	req := &maps.PlaceAutocompleteRequest{
		Input: input,
	}

	resp, err := g.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSuggestions, err)
	}

	suggestions := make([]string, 0, len(resp.Predictions))
	for _, prediction := range resp.Predictions {
		if prediction.Description != "" {
			suggestions = append(suggestions, prediction.Description)
		}
	}

	return suggestions, nil
}

// durationText renders seconds the way the Distance Matrix API labels them,
// e.g. "1 hour 5 mins".
func durationText(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	hours := minutes / 60
	minutes %= 60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, plural(minutes, "min"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
