package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/internal/utils"
	"quickride/pkg/mailer"
)

const (
	msgAlreadyVerified     = "Email already verified"
	msgVerificationInvalid = "You're trying to use an invalid or expired verification link"
	msgVerifyUnknown       = "User not found. Please ask for another verification link."
	msgAccountUnknown      = "User not found. Please check your credentials and try again"
	msgResetExpired        = "This password reset link has expired or is no longer valid. Please request a new one to continue"
	msgResetInvalid        = "The password reset link is invalid or has already been used. Please request a new one to proceed"
)

var errWrongPurpose = errors.New("token issued for another purpose")

// account is the part of a user or rider the mail flows work with.
type account struct {
	ID        primitive.ObjectID
	Email     string
	FirstName string
	Verified  bool
}

// credentialStore is implemented by both account repositories.
type credentialStore interface {
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

func (s *authService) SendVerificationEmail(ctx context.Context, principal *Principal) error {
	var acct account
	switch {
	case principal.User != nil:
		acct = userAccount(principal.User)
	case principal.Rider != nil:
		acct = riderAccount(principal.Rider)
	default:
		return newValidationError("The email verification link is invalid for this account type", nil)
	}
	if acct.Verified {
		return newValidationError("Your email is already verified. You can keep using the app.", nil)
	}

	return s.sendLink(ctx, principal.Type, acct, utils.PurposeEmailVerification, "verify-email", "QuickRide - Email verification", mailer.Notice{
		Title:   "Email verification required",
		Message: "Thanks for signing up to QuickRide! Verify your email address to finish setting up your account.",
		Action:  "Verify email",
		Note:    "This link is valid for 15 minutes. If it expires you can request a new one from your profile. If you did not create a QuickRide account, ignore this email.",
	})
}

func (s *authService) VerifyEmail(ctx context.Context, userType models.UserType, token string) error {
	claims, err := s.purposeClaims(token, userType, utils.PurposeEmailVerification)
	if err != nil {
		return newValidationError(msgVerificationInvalid, nil)
	}

	acct, err := s.accountByID(ctx, userType, claims.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError(msgVerifyUnknown)
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if acct.Verified {
		return newValidationError(msgAlreadyVerified, nil)
	}

	if err := s.credentials(userType).MarkEmailVerified(ctx, acct.ID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError(msgVerifyUnknown)
		}
		return fmt.Errorf("failed to verify email: %w", err)
	}

	s.logger.WithField("account_id", acct.ID.Hex()).WithField("user_type", userType).Info("Email verified")
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, userType models.UserType, email string) error {
	acct, err := s.accountByEmail(ctx, userType, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError(msgAccountUnknown)
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	return s.sendLink(ctx, userType, acct, utils.PurposePasswordReset, "reset-password", "QuickRide - Reset password", mailer.Notice{
		Title:   "Reset your password",
		Message: "We received a request to reset the password of your QuickRide account. Use the button below to choose a new one.",
		Action:  "Reset password",
		Note:    "If you did not ask for a reset you can ignore this email and your password stays the same. This link is valid for 15 minutes.",
	})
}

func (s *authService) ResetPassword(ctx context.Context, userType models.UserType, token, password string) error {
	used, err := s.cache.IsBlacklisted(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to check token: %w", err)
	}
	if used {
		return newValidationError(msgResetInvalid, nil)
	}

	claims, err := s.purposeClaims(token, userType, utils.PurposePasswordReset)
	if err != nil {
		if utils.IsTokenExpired(err) {
			return newValidationError(msgResetExpired, nil)
		}
		return newValidationError(msgResetInvalid, nil)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.credentials(userType).UpdatePassword(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError(msgAccountUnknown)
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	ttl := utils.EmailTokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		if err := s.cache.BlacklistToken(ctx, token, ttl); err != nil {
			s.logger.WithError(err).Warn("Failed to retire password reset token")
		}
	}

	s.logger.WithField("account_id", claims.UserID.Hex()).WithField("user_type", userType).Info("Password reset")
	return nil
}

func (s *authService) sendLink(ctx context.Context, userType models.UserType, acct account, purpose, page, subject string, notice mailer.Notice) error {
	token, err := utils.GeneratePurposeToken(acct.ID, string(userType), purpose, s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	notice.Name = acct.FirstName
	notice.Link = fmt.Sprintf("%s/%s/%s?token=%s", s.clientURL, userType, page, url.QueryEscape(token))
	html, err := mailer.Render(notice)
	if err != nil {
		return err
	}

	if err := s.mail.Send(ctx, mailer.Message{To: acct.Email, Subject: subject, HTML: html}); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", purpose, err)
	}
	return nil
}

// purposeClaims validates a mailed token. Expiry is returned unwrapped so
// callers can tell it apart.
func (s *authService) purposeClaims(token string, userType models.UserType, purpose string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateToken(token, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose || claims.UserType != string(userType) {
		return nil, errWrongPurpose
	}
	return claims, nil
}

func (s *authService) accountByID(ctx context.Context, userType models.UserType, id primitive.ObjectID) (account, error) {
	switch userType {
	case models.UserTypeUser:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return account{}, err
		}
		return userAccount(user), nil
	case models.UserTypeRider:
		rider, err := s.riders.GetByID(ctx, id)
		if err != nil {
			return account{}, err
		}
		return riderAccount(rider), nil
	}
	return account{}, interfaces.ErrNotFound
}

func (s *authService) accountByEmail(ctx context.Context, userType models.UserType, email string) (account, error) {
	switch userType {
	case models.UserTypeUser:
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return account{}, err
		}
		return userAccount(user), nil
	case models.UserTypeRider:
		rider, err := s.riders.GetByEmail(ctx, email)
		if err != nil {
			return account{}, err
		}
		return riderAccount(rider), nil
	}
	return account{}, interfaces.ErrNotFound
}

func (s *authService) credentials(userType models.UserType) credentialStore {
	if userType == models.UserTypeRider {
		return s.riders
	}
	return s.users
}

func userAccount(u *models.User) account {
	return account{ID: u.ID, Email: u.Email, FirstName: u.FullName.FirstName, Verified: u.EmailVerified}
}

func riderAccount(r *models.Rider) account {
	return account{ID: r.ID, Email: r.Email, FirstName: r.FullName.FirstName, Verified: r.EmailVerified}
}
