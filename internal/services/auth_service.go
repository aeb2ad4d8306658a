package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"quickride/internal/config"
	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
	"quickride/pkg/mailer"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    primitive.ObjectID
	Type  models.UserType
	User  *models.User
	Rider *models.Rider
	Token string
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *models.User  `json:"user,omitempty"`
	Rider *models.Rider `json:"rider,omitempty"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, request *validators.RegisterUserRequest) (*AuthResponse, error)
	RegisterRider(ctx context.Context, request *validators.RegisterRiderRequest) (*AuthResponse, error)
	Login(ctx context.Context, userType models.UserType, request *validators.LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error

	UpdateUser(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateUserRequest) (*models.User, error)
	UpdateRider(ctx context.Context, riderID primitive.ObjectID, request *validators.RiderProfileData) (*models.Rider, error)

	// Authenticate resolves a bearer token to an account of one of the
	// allowed types.
	Authenticate(ctx context.Context, token string, allowed ...models.UserType) (*Principal, error)

	// SendVerificationEmail mails the caller a link that verifies their
	// address.
	SendVerificationEmail(ctx context.Context, principal *Principal) error
	VerifyEmail(ctx context.Context, userType models.UserType, token string) error
	// ForgotPassword mails a password reset link to the account with email.
	ForgotPassword(ctx context.Context, userType models.UserType, email string) error
	// ResetPassword sets a new password. Each reset link works once.
	ResetPassword(ctx context.Context, userType models.UserType, token, password string) error
}

type authService struct {
	users     interfaces.UserRepository
	riders    interfaces.RiderRepository
	cache     CacheService
	mail      mailer.Mailer
	clientURL string
	config    *config.SecurityConfig
	logger    *logger.Logger
}

// NewAuthService builds account links against clientURL, the frontend
// origin.
func NewAuthService(
	users interfaces.UserRepository,
	riders interfaces.RiderRepository,
	cache CacheService,
	mail mailer.Mailer,
	clientURL string,
	cfg *config.SecurityConfig,
	logger *logger.Logger,
) AuthService {
	return &authService{
		users:     users,
		riders:    riders,
		cache:     cache,
		mail:      mail,
		clientURL: strings.TrimRight(clientURL, "/"),
		config:    cfg,
		logger:    logger,
	}
}

func (s *authService) RegisterUser(ctx context.Context, request *validators.RegisterUserRequest) (*AuthResponse, error) {
	hash, err := hashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: models.FullName{FirstName: request.FullName.FirstName, LastName: request.FullName.LastName},
		Email:    normalizeEmail(request.Email),
		Password: hash,
		Phone:    request.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, newValidationError("User already exists", nil)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.Password = ""

	token, err := s.issueToken(user.ID, models.UserTypeUser)
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("User registered")
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) RegisterRider(ctx context.Context, request *validators.RegisterRiderRequest) (*AuthResponse, error) {
	hash, err := hashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	rider := &models.Rider{
		FullName: models.FullName{FirstName: request.FullName.FirstName, LastName: request.FullName.LastName},
		Email:    normalizeEmail(request.Email),
		Password: hash,
		Phone:    request.Phone,
		Vehicle: models.Vehicle{
			Color:    request.Vehicle.Color,
			Number:   request.Vehicle.Number,
			Capacity: request.Vehicle.Capacity,
			Type:     models.VehicleType(request.Vehicle.Type),
		},
	}

	if err := s.riders.Create(ctx, rider); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, newValidationError("Rider already exists", nil)
		}
		return nil, fmt.Errorf("failed to register rider: %w", err)
	}
	rider.Password = ""

	token, err := s.issueToken(rider.ID, models.UserTypeRider)
	if err != nil {
		return nil, err
	}

	s.logger.WithRiderID(rider.ID).Info("Rider registered")
	return &AuthResponse{Token: token, Rider: rider}, nil
}

func (s *authService) Login(ctx context.Context, userType models.UserType, request *validators.LoginRequest) (*AuthResponse, error) {
	invalid := newNotFoundError("Invalid email or password")
	email := normalizeEmail(request.Email)

	switch userType {
	case models.UserTypeUser:
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, invalid
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if !checkPassword(user.Password, request.Password) {
			return nil, invalid
		}
		user.Password = ""

		token, err := s.issueToken(user.ID, models.UserTypeUser)
		if err != nil {
			return nil, err
		}
		return &AuthResponse{Token: token, User: user}, nil

	case models.UserTypeRider:
		rider, err := s.riders.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, invalid
			}
			return nil, fmt.Errorf("failed to get rider: %w", err)
		}
		if !checkPassword(rider.Password, request.Password) {
			return nil, invalid
		}
		rider.Password = ""

		token, err := s.issueToken(rider.ID, models.UserTypeRider)
		if err != nil {
			return nil, err
		}
		return &AuthResponse{Token: token, Rider: rider}, nil
	}

	return nil, newValidationError("Invalid user type", nil)
}

// Logout revokes token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, token string) error {
	ttl := s.config.JWTAccessTokenTTL
	if claims, err := utils.ValidateToken(token, s.config.JWTSecret); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.BlacklistToken(ctx, token, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *authService) UpdateUser(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateUserRequest) (*models.User, error) {
	fullName := models.FullName{FirstName: request.FullName.FirstName, LastName: request.FullName.LastName}

	user, err := s.users.UpdateProfile(ctx, userID, fullName, request.Phone)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateRider(ctx context.Context, riderID primitive.ObjectID, request *validators.RiderProfileData) (*models.Rider, error) {
	fullName := models.FullName{FirstName: request.FullName.FirstName, LastName: request.FullName.LastName}

	var vehicle *models.Vehicle
	if request.Vehicle != nil {
		vehicle = &models.Vehicle{
			Color:    request.Vehicle.Color,
			Number:   request.Vehicle.Number,
			Capacity: request.Vehicle.Capacity,
			Type:     models.VehicleType(request.Vehicle.Type),
		}
	}

	rider, err := s.riders.UpdateProfile(ctx, riderID, fullName, request.Phone, vehicle)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("Rider not found")
		}
		return nil, fmt.Errorf("failed to update rider: %w", err)
	}
	return rider, nil
}

func (s *authService) Authenticate(ctx context.Context, token string, allowed ...models.UserType) (*Principal, error) {
	if token == "" {
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}

	revoked, err := s.cache.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}

	claims, err := utils.ValidateToken(token, s.config.JWTSecret)
	if err != nil {
		if utils.IsTokenExpired(err) {
			return nil, newUnauthorizedError(utils.ErrTokenExpired)
		}
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}

	if claims.Purpose != "" {
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}

	userType := models.UserType(claims.UserType)
	if !typeAllowed(userType, allowed) {
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}

	principal := &Principal{ID: claims.UserID, Type: userType, Token: token}
	switch userType {
	case models.UserTypeUser:
		principal.User, err = s.users.GetByID(ctx, claims.UserID)
	case models.UserTypeRider:
		principal.Rider, err = s.riders.GetByID(ctx, claims.UserID)
	default:
		return nil, newUnauthorizedError(utils.ErrUnauthorized)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newUnauthorizedError(utils.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return principal, nil
}

func (s *authService) issueToken(id primitive.ObjectID, userType models.UserType) (string, error) {
	token, err := utils.GenerateToken(id, string(userType), s.config.JWTSecret, s.config.JWTAccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func typeAllowed(userType models.UserType, allowed []models.UserType) bool {
	if len(allowed) == 0 {
		return userType.IsValid()
	}
	for _, t := range allowed {
		if t == userType {
			return true
		}
	}
	return false
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
