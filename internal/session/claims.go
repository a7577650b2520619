package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken means the token payload could not be decoded into the
// expected claims. Treated as fatal to the login attempt.
var ErrMalformedToken = errors.New("malformed authentication token")

// Claims is the strict shape of the token payload this client relies on.
// The client never verifies the signature; that is the server's job. It only
// reads the userId claim the server put there.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// DecodeClaims parses the payload segment of token without verifying the
// signature and validates that a userId claim is present.
func DecodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing userId claim", ErrMalformedToken)
	}
	return claims, nil
}
