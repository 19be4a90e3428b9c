// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session is the CLI's replica of the backend auth session.
//
// The Store wraps the auth service: it signs users in, up and out, keeps the
// current session and its user, persists the session in the OS keychain so a
// later process can resume it, refreshes tokens before they expire, and
// publishes every transition to subscribers.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"arenatv/cli/internal/backend"
)

// Event names an auth state transition.
type Event string

const (
	SignedIn       Event = "SIGNED_IN"
	SignedOut      Event = "SIGNED_OUT"
	TokenRefreshed Event = "TOKEN_REFRESHED"
	UserUpdated    Event = "USER_UPDATED"
)

// User is the projection of the session's user that the CLI reads.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an issued token pair with its expiry and user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// UserOf returns a copy of the session's user, or nil for a nil session.
func UserOf(s *Session) *User {
	if s == nil {
		return nil
	}
	u := s.User
	return &u
}

// Clone returns an independent copy; nil stays nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ExpiresWithin reports whether the access token expires within d of now.
// A session without a known expiry never reports expiry.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}

// fromToken builds a Session from an auth response. Missing expiry or user
// fields are read from the access token's claims; the signature is not
// checked here since the token came straight from the auth service.
func fromToken(tok *backend.TokenResponse, now time.Time) (*Session, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, errors.New("empty access token")
	}
	s := &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		User:         User{ID: tok.User.ID, Email: tok.User.Email},
	}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0).UTC()
	case tok.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()
	}

	if s.ExpiresAt.IsZero() || s.User.ID == "" || s.User.Email == "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
			if s.ExpiresAt.IsZero() {
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					s.ExpiresAt = exp.UTC()
				}
			}
			if s.User.ID == "" {
				s.User.ID, _ = claims.GetSubject()
			}
			if s.User.Email == "" {
				s.User.Email, _ = claims["email"].(string)
			}
		}
	}

	if _, err := uuid.Parse(s.User.ID); err != nil {
		return nil, fmt.Errorf("session user id %q: %w", s.User.ID, err)
	}
	if s.TokenType == "" {
		s.TokenType = "bearer"
	}
	return s, nil
}
