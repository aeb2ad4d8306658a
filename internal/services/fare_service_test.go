package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quickride/internal/models"
	"quickride/pkg/logger"
	"quickride/pkg/maps"
)

func TestCalculateFares(t *testing.T) {
	tests := []struct {
		name     string
		meters   int
		seconds  int
		expected models.FareTable
	}{
		{"five km ten minutes", 5000, 600, models.FareTable{Auto: 100, Car: 65, Bike: 25}},
		{"zero trip is base fare", 0, 0, models.FareTable{Auto: 30, Car: 30, Bike: 10}},
		{"fractional distance and time", 1500, 30, models.FareTable{Auto: 46, Car: 38, Bike: 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFares(tt.meters, tt.seconds)
			if got != tt.expected {
				t.Fatalf("expected %+v, got %+v", tt.expected, got)
			}
			if again := CalculateFares(tt.meters, tt.seconds); again != got {
				t.Fatalf("fare not deterministic: %+v vs %+v", got, again)
			}
		})
	}
}

func TestFareService_Quote(t *testing.T) {
	geo := &fakeMaps{element: &maps.DistanceElement{
		Distance: maps.Distance{Text: "5.0 km", Value: 5000},
		Duration: maps.Duration{Text: "10 mins", Value: 600},
		Status:   "OK",
	}}
	svc := NewFareService(geo, logger.NewNop())

	quote, err := svc.Quote(context.Background(), "MG Road", "Indiranagar")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Fare.Car != 65 {
		t.Fatalf("expected car fare 65, got %d", quote.Fare.Car)
	}
	if quote.DistanceTime.Distance.Text != "5.0 km" || quote.DistanceTime.Duration.Value != 600 {
		t.Fatalf("unexpected distanceTime %+v", quote.DistanceTime)
	}

	if _, err := svc.Quote(context.Background(), "", "Indiranagar"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFareService_QuoteUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no route", maps.ErrNoRoutes, "No routes found"},
		{"transport", fmt.Errorf("dial tcp: timeout"), "Unable to fetch distance and time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFareService(&fakeMaps{err: tt.err}, logger.NewNop())
			_, err := svc.Quote(context.Background(), "MG Road", "Atlantis")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if got := Message(err, ""); got != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, got)
			}
		})
	}
}
