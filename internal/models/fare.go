package models

// FareTable holds one price per vehicle class.
type FareTable struct {
	Auto int `json:"auto"`
	Car  int `json:"car"`
	Bike int `json:"bike"`
}

func (f FareTable) For(vehicle VehicleType) int {
	switch vehicle {
	case VehicleTypeAuto:
		return f.Auto
	case VehicleTypeCar:
		return f.Car
	case VehicleTypeBike:
		return f.Bike
	}
	return 0
}

type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type DistanceTime struct {
	Distance TextValue `json:"distance"` // meters
	Duration TextValue `json:"duration"` // seconds
}

type FareQuote struct {
	Fare         FareTable    `json:"fare"`
	DistanceTime DistanceTime `json:"distanceTime"`
}
