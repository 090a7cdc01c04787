package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/budgenv/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims of an access token.
type Claims struct {
	AuthorizedBudgetKeys []string `json:"authorizedBudgetKeys"`
	jwt.RegisteredClaims
}

// Token is an issued access token.
type Token struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // Signed JWT
	ExpiresAt time.Time `json:"expiresAt" example:"2024-03-12T10:00:00Z"`                // Expiry of the token
}

// IssueToken signs a token granting access to keys.
func (a *Authenticator) IssueToken(subject string, keys []string) (Token, error) {
	if keys == nil {
		keys = []string{}
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := &Claims{
		AuthorizedBudgetKeys: keys,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, fmt.Errorf("signing token: %w", err)
	}

	return Token{Token: signed, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// ParseToken verifies the signature and expiry of a token and returns its claims.
//
// Every failure is reported as models.ErrInvalidToken.
func (a *Authenticator) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: the token has expired", models.ErrInvalidToken)
		}
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
