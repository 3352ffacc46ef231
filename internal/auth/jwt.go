// Package auth issues and validates the JWTs that carry user identity between
// requests. Tokens are HS256-signed and come in two flavors: short-lived
// access tokens and longer-lived refresh tokens. Claims carry the user ID and
// role so the HTTP layer can authorize without a DB round trip; moderation
// decisions always re-check the database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds embedded in claims so a refresh token cannot be replayed as an
// access token.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// ErrWrongTokenType is returned when a token of one kind is presented where
// the other is required.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims represents the JWT claims for both token kinds.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer mints signed tokens for authenticated users.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewIssuer constructs an Issuer with the given secret and token lifetimes.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

// IssuePair mints an access and refresh token pair for the user.
func (i *Issuer) IssuePair(userID, role string) (access, refresh string, err error) {
	access, err = i.issue(userID, role, TokenAccess, i.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = i.issue(userID, role, TokenRefresh, i.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueAccess mints a fresh access token (the refresh flow).
func (i *Issuer) IssueAccess(userID, role string) (string, error) {
	return i.issue(userID, role, TokenAccess, i.AccessTTL)
}

func (i *Issuer) issue(userID, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, additionally requiring the given
// kind. It returns ErrWrongTokenType when the signature is valid but the
// token kind does not match.
func (i *Issuer) Validate(tokenStr, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != kind {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
