package utils

import "time"

const (
	AppName = "QuickRide"

	OTPLength     = 6
	OTPMin        = 100000
	OTPMaxExcl    = 1000000
	EarthRadiusKM = 6371.0

	JWTAccessTokenTTL = 24 * time.Hour
	// Lifetime of links sent by mail.
	EmailTokenTTL = 15 * time.Minute

	// Layout for the per-message chat date label, e.g. "Mar 07".
	ChatDateLayout = "Jan 02"
	// Layout stored alongside frontend log lines.
	LogTimestampLayout = "Jan 02 03:04:05 PM"

	TokenCookieName = "token"
	TokenHeaderName = "token"
)

// Token purposes. Access tokens carry none.
const (
	PurposeEmailVerification = "email-verification"
	PurposePasswordReset     = "password-reset"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "Unauthorized User"
	ErrTokenExpired     = "Token Expired"
	ErrValidationFailed = "validation failed"
	ErrTooManyRequests  = "too many requests"
)
