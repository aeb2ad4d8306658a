package validators

type FullNameRequest struct {
	FirstName string `json:"firstname" validate:"required,min=2"`
	LastName  string `json:"lastname" validate:"omitempty,min=2"`
}

type VehicleRequest struct {
	Color    string `json:"color" validate:"required,min=3"`
	Number   string `json:"number" validate:"required,min=3"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Type     string `json:"type" validate:"required,vehicle_type"`
}

type RegisterUserRequest struct {
	FullName FullNameRequest `json:"fullname" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Phone    string          `json:"phone" validate:"required,numeric,len=10"`
}

type RegisterRiderRequest struct {
	FullName FullNameRequest `json:"fullname" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Phone    string          `json:"phone" validate:"required,numeric,len=10"`
	Vehicle  VehicleRequest  `json:"vehicle" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FullName FullNameRequest `json:"fullname" validate:"required"`
	Phone    string          `json:"phone" validate:"required,numeric,len=10"`
}

type RiderProfileData struct {
	FullName FullNameRequest `json:"fullname" validate:"required"`
	Phone    string          `json:"phone" validate:"required,numeric,len=10"`
	Vehicle  *VehicleRequest `json:"vehicle" validate:"omitempty"`
}

type UpdateRiderRequest struct {
	RiderData RiderProfileData `json:"riderData" validate:"required"`
}

func ValidateRegisterUser(req *RegisterUserRequest) ValidationErrors {
	return ValidateStruct(req)
}

// ValidateRegisterRider applies the stricter first-name rule riders have.
func ValidateRegisterRider(req *RegisterRiderRequest) ValidationErrors {
	errs := ValidateStruct(req)
	if len(req.FullName.FirstName) > 0 && len(req.FullName.FirstName) < 3 {
		errs = append(errs, ValidationError{
			Field:   "fullname.firstname",
			Tag:     "min",
			Value:   req.FullName.FirstName,
			Message: "First name must be at least 3 characters long",
		})
	}
	return errs
}

func ValidateLogin(req *LoginRequest) ValidationErrors {
	return ValidateStruct(req)
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
