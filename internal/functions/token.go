// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned for any token that does not identify a user.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier checks session tokens signed with the project's JWT secret.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenVerifier verifies HS256 tokens against secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the user the token was issued to. Anonymous project keys
// carry no subject and are rejected.
func (v *TokenVerifier) UserID(token string) (uuid.UUID, error) {
	if token == "" || len(v.secret) == 0 {
		return uuid.Nil, ErrUnauthorized
	}
	var c sessionClaims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return v.secret, nil })
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthorized)
	}
	return id, nil
}

// keyMatches compares a presented service key in constant time.
func keyMatches(presented, want string) bool {
	if want == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(want)) == 1
}
