package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNotAdmin     = errors.New("token lacks admin role")
)

// AdminClaims are the claims the external identity provider puts on admin
// console tokens. This backend only validates them; issuance happens upstream.
type AdminClaims struct {
	UserID int32    `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type TokenValidator interface {
	ValidateAdminToken(tokenString string) (*AdminClaims, error)
}

type tokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) TokenValidator {
	return &tokenValidator{secret: []byte(secret)}
}

func (v *tokenValidator) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.HasRole("admin") {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
