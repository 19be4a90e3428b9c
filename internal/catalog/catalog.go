// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog is the storefront: sports, teams and events, the user's
// favorites and notifications, and the subscription checkout. Every call
// uses the session held by the auth state.
package catalog

import (
	"context"
	"strings"

	"arenatv/cli/internal/authstate"
	"arenatv/cli/internal/backend"
	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

// API is the backend surface the catalog uses.
type API interface {
	backend.CatalogAPI
	ProcessPayment(ctx context.Context, accessToken string, req model.PaymentRequest) (*model.PaymentResult, error)
}

// Auth is the shared auth state; *authstate.Provider satisfies it.
type Auth interface {
	State() authstate.State
	RefreshEntitlement(ctx context.Context)
}

// Service reads and writes storefront data as the current user.
type Service struct {
	api  API
	auth Auth
}

// New creates a Service.
func New(api API, auth Auth) *Service {
	return &Service{api: api, auth: auth}
}

// token returns the current access token, or "" for anonymous reads.
func (s *Service) token() string {
	if st := s.auth.State(); st.Session != nil {
		return st.Session.AccessToken
	}
	return ""
}

func (s *Service) requireToken() (string, error) {
	tok := s.token()
	if tok == "" {
		return "", apperrors.New(apperrors.Unauthorized, "sign in first: arenatv login")
	}
	return tok, nil
}

func (s *Service) Sports(ctx context.Context) ([]model.Sport, error) {
	return s.api.Sports(ctx, s.token())
}

// Teams lists teams, optionally for one sport.
func (s *Service) Teams(ctx context.Context, sportID string) ([]model.Team, error) {
	return s.api.Teams(ctx, s.token(), strings.TrimSpace(sportID))
}

// EventQuery narrows Events. Status must be one of the event statuses.
type EventQuery struct {
	SportID string
	Status  string
}

// Events lists events ordered by start time.
func (s *Service) Events(ctx context.Context, q EventQuery) ([]model.Event, error) {
	f := backend.EventFilter{SportID: strings.TrimSpace(q.SportID)}
	if q.Status != "" {
		st := model.EventStatus(strings.ToLower(q.Status))
		if !st.Valid() {
			return nil, apperrors.New(apperrors.InvalidRequest, "status must be upcoming, live or completed")
		}
		f.Status = st
	}
	return s.api.Events(ctx, s.token(), f)
}

func (s *Service) Event(ctx context.Context, id string) (*model.Event, error) {
	return s.api.Event(ctx, s.token(), id)
}

// StreamURL returns the playback URL of an event. Callers gate this behind
// an entitlement check.
func (s *Service) StreamURL(ctx context.Context, eventID string) (*model.Event, string, error) {
	ev, err := s.Event(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	if ev.StreamURL == nil || *ev.StreamURL == "" {
		return ev, "", apperrors.New(apperrors.NotFound, "stream not available for this event")
	}
	return ev, *ev.StreamURL, nil
}
