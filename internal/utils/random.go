package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP draws a uniform six digit passcode from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OTPMaxExcl-OTPMin))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+OTPMin), nil
}
