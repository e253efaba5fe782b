// Package auth manages bearer-token issuance and verification. Tokens are
// HMAC-signed JWTs carrying the user id and admin flag; verification is
// local and touches no storage, so forged or expired tokens are rejected
// before any store round trip. Revoking a still-valid token is the session
// registry's job, not this package's.
package auth

import (
	"time"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims plus the identity fields the
// middleware needs downstream.
type Claims struct {
	jwt.RegisteredClaims
	UserID  int64 `json:"uid"`
	IsAdmin bool  `json:"adm"`
}

// Identity is the request-scoped authenticated identity derived from a
// verified token. It is never persisted.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// GenerateToken issues a signed token for the given user valid for
// validityDuration.
func GenerateToken(userID int64, isAdmin bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:  userID,
		IsAdmin: isAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the embedded identity. Every failure mode (garbled input, wrong signing
// method, bad signature, expired token) comes back as
// common.ErrInvalidToken so callers cannot tell the classes apart.
func ParseToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}
