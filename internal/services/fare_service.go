package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"quickride/internal/models"
	"quickride/pkg/logger"
	"quickride/pkg/maps"
)

type Tariff struct {
	Base      float64
	PerKm     float64
	PerMinute float64
}

var DefaultTariffs = map[models.VehicleType]Tariff{
	models.VehicleTypeAuto: {Base: 30, PerKm: 10, PerMinute: 2},
	models.VehicleTypeCar:  {Base: 30, PerKm: 5, PerMinute: 1},
	models.VehicleTypeBike: {Base: 10, PerKm: 2, PerMinute: 0.5},
}

type FareService interface {
	Quote(ctx context.Context, pickup, destination string) (*models.FareQuote, error)
}

type fareService struct {
	maps   maps.MapsProvider
	logger *logger.Logger
}

func NewFareService(mapsProvider maps.MapsProvider, logger *logger.Logger) FareService {
	return &fareService{
		maps:   mapsProvider,
		logger: logger,
	}
}

func (s *fareService) Quote(ctx context.Context, pickup, destination string) (*models.FareQuote, error) {
	if strings.TrimSpace(pickup) == "" || strings.TrimSpace(destination) == "" {
		return nil, newValidationError("Pickup and destination are required", nil)
	}

	element, err := s.maps.DistanceTime(ctx, pickup, destination)
	if err != nil {
		if errors.Is(err, maps.ErrNoRoutes) {
			return nil, newUpstreamError(maps.ErrNoRoutes.Error(), err)
		}
		return nil, newUpstreamError("Unable to fetch distance and time", err)
	}

	return &models.FareQuote{
		Fare: CalculateFares(element.Distance.Value, element.Duration.Value),
		DistanceTime: models.DistanceTime{
			Distance: models.TextValue{Text: element.Distance.Text, Value: element.Distance.Value},
			Duration: models.TextValue{Text: element.Duration.Text, Value: element.Duration.Value},
		},
	}, nil
}

// CalculateFares prices a trip of distanceMeters and durationSeconds for every
// vehicle class.
func CalculateFares(distanceMeters, durationSeconds int) models.FareTable {
	return models.FareTable{
		Auto: fareFor(DefaultTariffs[models.VehicleTypeAuto], distanceMeters, durationSeconds),
		Car:  fareFor(DefaultTariffs[models.VehicleTypeCar], distanceMeters, durationSeconds),
		Bike: fareFor(DefaultTariffs[models.VehicleTypeBike], distanceMeters, durationSeconds),
	}
}

func fareFor(t Tariff, distanceMeters, durationSeconds int) int {
	km := float64(distanceMeters) / 1000
	minutes := float64(durationSeconds) / 60
	return int(math.Round(t.Base + km*t.PerKm + minutes*t.PerMinute))
}
