package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenHasNoExpiry = errors.New("token has no expiry claim")

// TokenExpiry reads the exp claim of a bearer token without verifying its
// signature. The catalog signs its tokens with a key the client never sees,
// so the claim is only used to schedule a refresh.
func TokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("error reading token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrTokenHasNoExpiry
	}

	return exp.Time, nil
}

// TokenExpiresWithin reports whether the token expires within d from now.
// Tokens whose expiry cannot be read are treated as fresh; the server's 401
// remains the authoritative signal.
func TokenExpiresWithin(tokenString string, d time.Duration) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return false
	}
	return time.Until(exp) < d
}
