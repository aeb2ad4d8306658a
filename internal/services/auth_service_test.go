package services

import (
	"context"
	"errors"
	"html"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/config"
	"quickride/internal/models"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/cache"
	"quickride/pkg/logger"
)

const testSecret = "test-secret"

type authFixture struct {
	svc    AuthService
	users  *memUserRepo
	riders *memRiderRepo
	mail   *recordingMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &authFixture{users: newMemUserRepo(), riders: newMemRiderRepo(), mail: &recordingMailer{}}
	cfg := &config.SecurityConfig{JWTSecret: testSecret, JWTAccessTokenTTL: time.Hour}
	f.svc = NewAuthService(f.users, f.riders, cache.NewRedisCacheFromClient(client), f.mail, "https://app.quickride.in/", cfg, logger.NewNop())
	return f
}

func registerUser(t *testing.T, f *authFixture) *AuthResponse {
	t.Helper()
	resp, err := f.svc.RegisterUser(context.Background(), &validators.RegisterUserRequest{
		FullName: validators.FullNameRequest{FirstName: "Asha", LastName: "Rao"},
		Email:    "Asha@Example.com ",
		Password: "supersecret",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return resp
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)

	if registered.Token == "" || registered.User == nil || registered.User.Password != "" {
		t.Fatalf("unexpected register response %+v", registered)
	}
	if registered.User.Email != "asha@example.com" {
		t.Fatalf("expected normalized email, got %q", registered.User.Email)
	}

	resp, err := f.svc.Login(context.Background(), models.UserTypeUser, &validators.LoginRequest{Email: "asha@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != registered.User.ID {
		t.Fatalf("logged in as %v, want %v", resp.User.ID, registered.User.ID)
	}

	_, err = f.svc.Login(context.Background(), models.UserTypeUser, &validators.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	if Message(err, "") != "Invalid email or password" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = f.svc.Login(context.Background(), models.UserTypeRider, &validators.LoginRequest{Email: "asha@example.com", Password: "supersecret"})
	if Message(err, "") != "Invalid email or password" {
		t.Fatalf("user credentials must not log in as rider, got %v", err)
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	registerUser(t, f)

	_, err := f.svc.RegisterUser(context.Background(), &validators.RegisterUserRequest{
		FullName: validators.FullNameRequest{FirstName: "Asha"},
		Email:    "asha@example.com",
		Password: "supersecret",
		Phone:    "9876543210",
	})
	if !errors.Is(err, ErrValidation) || Message(err, "") != "User already exists" {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestAuthService_RegisterRiderCarriesVehicle(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.RegisterRider(context.Background(), &validators.RegisterRiderRequest{
		FullName: validators.FullNameRequest{FirstName: "Ravi", LastName: "Kumar"},
		Email:    "ravi@example.com",
		Password: "supersecret",
		Phone:    "9123456780",
		Vehicle:  validators.VehicleRequest{Color: "white", Number: "KA01AB1234", Capacity: 4, Type: "car"},
	})
	if err != nil {
		t.Fatalf("RegisterRider: %v", err)
	}
	if resp.Rider.Vehicle.Type != models.VehicleTypeCar || resp.Rider.Status != models.RiderStatusInactive {
		t.Fatalf("unexpected rider %+v", resp.Rider)
	}

	principal, err := f.svc.Authenticate(context.Background(), resp.Token, models.UserTypeRider)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.Rider == nil || principal.Rider.ID != resp.Rider.ID {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JWTClaims{
		UserID:   registered.User.ID,
		UserType: string(models.UserTypeUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	resetToken, err := utils.GeneratePurposeToken(registered.User.ID, string(models.UserTypeUser), utils.PurposePasswordReset, testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		allowed []models.UserType
		message string
	}{
		{"valid user", registered.Token, []models.UserType{models.UserTypeUser}, ""},
		{"either type", registered.Token, nil, ""},
		{"missing token", "", nil, utils.ErrUnauthorized},
		{"garbage token", "not-a-jwt", nil, utils.ErrUnauthorized},
		{"wrong account type", registered.Token, []models.UserType{models.UserTypeRider}, utils.ErrUnauthorized},
		{"expired", expiredToken, nil, utils.ErrTokenExpired},
		{"mailed link token", resetToken, nil, utils.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := f.svc.Authenticate(context.Background(), tt.token, tt.allowed...)
			if tt.message == "" {
				if err != nil {
					t.Fatalf("Authenticate: %v", err)
				}
				if principal.User == nil || principal.ID != registered.User.ID {
					t.Fatalf("unexpected principal %+v", principal)
				}
				return
			}
			if !errors.Is(err, ErrUnauthorized) || Message(err, "") != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, err)
			}
		})
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)

	if _, err := f.svc.Authenticate(context.Background(), registered.Token); err != nil {
		t.Fatalf("Authenticate before logout: %v", err)
	}
	if err := f.svc.Logout(context.Background(), registered.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), registered.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
}

func TestAuthService_UpdateProfiles(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)

	user, err := f.svc.UpdateUser(context.Background(), registered.User.ID, &validators.UpdateUserRequest{
		FullName: validators.FullNameRequest{FirstName: "Asha", LastName: "Menon"},
		Phone:    "9000000000",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.FullName.LastName != "Menon" || user.Phone != "9000000000" {
		t.Fatalf("unexpected user %+v", user)
	}

	_, err = f.svc.UpdateRider(context.Background(), registered.User.ID, &validators.RiderProfileData{
		FullName: validators.FullNameRequest{FirstName: "Nobody"},
		Phone:    "9000000000",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rider not found, got %v", err)
	}
}

var linkToken = regexp.MustCompile(`href="([^"]+)"`)

// mailedLink returns the link and token in the last mail sent.
func mailedLink(t *testing.T, m *recordingMailer) (string, string) {
	t.Helper()
	match := linkToken.FindStringSubmatch(m.last(t).HTML)
	if match == nil {
		t.Fatal("mail carries no link")
	}
	link, err := url.Parse(html.UnescapeString(match[1]))
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return link.Scheme + "://" + link.Host + link.Path, link.Query().Get("token")
}

func purposeToken(t *testing.T, id primitive.ObjectID, userType models.UserType, purpose string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JWTClaims{
		UserID:   id,
		UserType: string(userType),
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestAuthService_EmailVerification(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)
	ctx := context.Background()

	principal, err := f.svc.Authenticate(ctx, registered.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := f.svc.SendVerificationEmail(ctx, principal); err != nil {
		t.Fatalf("SendVerificationEmail: %v", err)
	}

	sent := f.mail.last(t)
	if sent.To != "asha@example.com" || !strings.Contains(sent.HTML, "Asha") {
		t.Fatalf("unexpected mail %+v", sent)
	}
	page, token := mailedLink(t, f.mail)
	if page != "https://app.quickride.in/user/verify-email" || token == "" {
		t.Fatalf("unexpected link %s token %q", page, token)
	}

	if err := f.svc.VerifyEmail(ctx, models.UserTypeRider, token); Message(err, "") != msgVerificationInvalid {
		t.Fatalf("user link used on the rider route: got %v", err)
	}
	if err := f.svc.VerifyEmail(ctx, models.UserTypeUser, registered.Token); Message(err, "") != msgVerificationInvalid {
		t.Fatalf("access token used as a link: got %v", err)
	}

	if err := f.svc.VerifyEmail(ctx, models.UserTypeUser, token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !f.users.get(registered.User.ID).EmailVerified {
		t.Fatal("expected emailVerified to be set")
	}

	if err := f.svc.VerifyEmail(ctx, models.UserTypeUser, token); !errors.Is(err, ErrValidation) || Message(err, "") != msgAlreadyVerified {
		t.Fatalf("expected already verified, got %v", err)
	}

	principal, _ = f.svc.Authenticate(ctx, registered.Token)
	if err := f.svc.SendVerificationEmail(ctx, principal); !errors.Is(err, ErrValidation) {
		t.Fatalf("verified account must not get another link, got %v", err)
	}

	unknown := purposeToken(t, primitive.NewObjectID(), models.UserTypeUser, utils.PurposeEmailVerification, time.Minute)
	if err := f.svc.VerifyEmail(ctx, models.UserTypeUser, unknown); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for an unknown account, got %v", err)
	}
}

func TestAuthService_SendVerificationEmailMailFailure(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)
	f.mail.err = errors.New("connection refused")

	principal, _ := f.svc.Authenticate(context.Background(), registered.Token)
	err := f.svc.SendVerificationEmail(context.Background(), principal)
	if err == nil || errors.Is(err, ErrValidation) {
		t.Fatalf("expected an internal failure, got %v", err)
	}
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	registered := registerUser(t, f)
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, models.UserTypeUser, "nobody@example.com"); !errors.Is(err, ErrNotFound) || Message(err, "") != msgAccountUnknown {
		t.Fatalf("expected unknown account, got %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, models.UserTypeRider, "asha@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user email on the rider route: got %v", err)
	}

	if err := f.svc.ForgotPassword(ctx, models.UserTypeUser, " ASHA@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	page, token := mailedLink(t, f.mail)
	if page != "https://app.quickride.in/user/reset-password" {
		t.Fatalf("unexpected link %s", page)
	}

	if err := f.svc.ResetPassword(ctx, models.UserTypeUser, token, "brandnew123"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, models.UserTypeUser, &validators.LoginRequest{Email: "asha@example.com", Password: "brandnew123"}); err != nil {
		t.Fatalf("login with the new password: %v", err)
	}
	if _, err := f.svc.Login(ctx, models.UserTypeUser, &validators.LoginRequest{Email: "asha@example.com", Password: "supersecret"}); err == nil {
		t.Fatal("old password still works")
	}

	if err := f.svc.ResetPassword(ctx, models.UserTypeUser, token, "another123"); Message(err, "") != msgResetInvalid {
		t.Fatalf("reset link reused: got %v", err)
	}

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"expired", purposeToken(t, registered.User.ID, models.UserTypeUser, utils.PurposePasswordReset, -time.Minute), msgResetExpired},
		{"verification link", purposeToken(t, registered.User.ID, models.UserTypeUser, utils.PurposeEmailVerification, time.Minute), msgResetInvalid},
		{"garbage", "not-a-jwt", msgResetInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ResetPassword(ctx, models.UserTypeUser, tt.token, "another123")
			if !errors.Is(err, ErrValidation) || Message(err, "") != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, err)
			}
		})
	}

	missing := purposeToken(t, primitive.NewObjectID(), models.UserTypeUser, utils.PurposePasswordReset, time.Minute)
	if err := f.svc.ResetPassword(ctx, models.UserTypeUser, missing, "another123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
