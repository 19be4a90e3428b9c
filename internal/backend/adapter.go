// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for the hosted backend project: the auth
// service, the REST/RPC data API and the serverless functions.
// It defines the API contract the rest of the CLI depends on so that tests can
// substitute fakes, and an HTTP implementation of it.
package backend

import (
	"context"

	"arenatv/cli/internal/model"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	AuthAPI
	EntitlementAPI
	CatalogAPI
	// ProcessPayment invokes the process-payment function with the caller's session.
	ProcessPayment(ctx context.Context, accessToken string, req model.PaymentRequest) (*model.PaymentResult, error)
	// GetVersion returns the auth service version; used for connectivity checks.
	GetVersion(ctx context.Context) (string, error)
}

// AuthAPI is the subset of the auth service the session store uses.
// Every method fails with an auth error (see internal/errors.AuthError).
type AuthAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error)
	// SignUp registers a user. The returned session is nil when the project
	// requires email confirmation.
	SignUp(ctx context.Context, email, password string) (*SignUpResponse, error)
	// SignOut revokes the refresh tokens behind accessToken.
	SignOut(ctx context.Context, accessToken string) error
	// RefreshSession exchanges a refresh token for a new token pair.
	RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error)
	// GetUser validates accessToken and returns its user.
	GetUser(ctx context.Context, accessToken string) (*UserResponse, error)
}

// EntitlementAPI exposes the subscription check stored procedure.
type EntitlementAPI interface {
	CheckActiveSubscription(ctx context.Context, accessToken, userID string) (bool, error)
}

// CatalogAPI covers the storefront tables. accessToken may be empty for the
// public tables (sports, teams, events).
type CatalogAPI interface {
	Sports(ctx context.Context, accessToken string) ([]model.Sport, error)
	Teams(ctx context.Context, accessToken string, sportID string) ([]model.Team, error)
	Events(ctx context.Context, accessToken string, filter EventFilter) ([]model.Event, error)
	Event(ctx context.Context, accessToken string, eventID string) (*model.Event, error)

	FavoriteSports(ctx context.Context, accessToken string) ([]model.FavoriteSport, error)
	AddFavoriteSport(ctx context.Context, accessToken string, sportID string) error
	RemoveFavoriteSport(ctx context.Context, accessToken string, sportID string) error
	FavoriteTeams(ctx context.Context, accessToken string) ([]model.FavoriteTeam, error)
	AddFavoriteTeam(ctx context.Context, accessToken string, teamID string) error
	RemoveFavoriteTeam(ctx context.Context, accessToken string, teamID string) error

	Notifications(ctx context.Context, accessToken string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, accessToken string, notificationID string) error
}

// EventFilter narrows Events; zero values mean "any".
type EventFilter struct {
	SportID string
	Status  model.EventStatus
}

// TokenResponse is the auth service's session payload.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// SignUpResponse carries the created user and, when confirmation is off, a session.
type SignUpResponse struct {
	User    UserResponse
	Session *TokenResponse
}

// UserResponse is the auth service's user object, trimmed to what the CLI reads.
type UserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
}
