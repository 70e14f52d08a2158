package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedIdentity = errors.New("malformed identity token")

// SessionClaims is the payload of the token stored under userToken after a mock login.
type SessionClaims struct {
	ClientID string `json:"cid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Method   string `json:"amr"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(secret string, clientID string, email string, name string, method string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		ClientID: clientID,
		Email:    email,
		Name:     name,
		Method:   method,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "annex",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   clientID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseSessionToken(tokenStr string, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// IdentityClaims are the profile fields read from an OAuth ID token.
type IdentityClaims struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// DecodeIdentityToken reads the claims of an ID token WITHOUT verifying its
// signature, issuer or audience. The result must not be trusted as proof of identity.
func DecodeIdentityToken(raw string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	return claims, nil
}
