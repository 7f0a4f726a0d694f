package auth

import "errors"

// Access token errors.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrWrongTokenType is returned when a refresh token is presented as an
	// access token or the reverse.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Refresh token errors.
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)

// ErrPasswordMismatch is returned by PasswordHasher.Compare for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")
