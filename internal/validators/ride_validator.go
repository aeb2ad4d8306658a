package validators

type CreateRideRequest struct {
	Pickup      string `json:"pickup" validate:"required,min=3"`
	Destination string `json:"destination" validate:"required,min=3"`
	VehicleType string `json:"vehicleType" validate:"required,vehicle_type"`
}

type FareQuery struct {
	Pickup      string `form:"pickup" validate:"required,min=3"`
	Destination string `form:"destination" validate:"required,min=3"`
}

type RideIDRequest struct {
	RideID string `json:"rideId" form:"rideId" validate:"required,object_id"`
}

// StartRideQuery leaves the otp unconstrained beyond presence; the
// comparison itself decides whether it matches.
type StartRideQuery struct {
	RideID string `form:"rideId" validate:"required,object_id"`
	OTP    string `form:"otp" validate:"required"`
}

type RideIDParam struct {
	ID string `uri:"id" validate:"required,object_id"`
}

type CoordinatesQuery struct {
	Address string `form:"address" validate:"required,min=3"`
}

type DistanceTimeQuery struct {
	Origin      string `form:"origin" validate:"required,min=3"`
	Destination string `form:"destination" validate:"required,min=3"`
}

type SuggestionsQuery struct {
	Input string `form:"input" validate:"required,min=3"`
}

func ValidateCreateRide(req *CreateRideRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateFareQuery(req *FareQuery) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateRideID(req *RideIDRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateStartRide(req *StartRideQuery) ValidationErrors {
	return ValidateStruct(req)
}
