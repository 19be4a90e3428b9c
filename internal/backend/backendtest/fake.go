// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backendtest provides an in-memory backend.API for tests.
package backendtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"arenatv/cli/internal/backend"
	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

// Fake implements backend.API. Accounts sign in with their password; every
// hook left nil falls back to the in-memory behaviour.
type Fake struct {
	mu sync.Mutex

	// Accounts maps email to password and user id.
	Accounts map[string]Account
	// Subscribed holds user ids with an active subscription.
	Subscribed map[string]bool

	SportsList []model.Sport
	TeamsList  []model.Team
	EventsList []model.Event
	Notes      []model.Notification
	FavSports  map[string]bool
	FavTeams   map[string]bool

	// TokenTTL is the lifetime of issued access tokens (default one hour).
	TokenTTL time.Duration

	CheckHook   func(ctx context.Context, userID string) (bool, error)
	RefreshHook func(ctx context.Context, refreshToken string) (*backend.TokenResponse, error)
	PaymentHook func(ctx context.Context, req model.PaymentRequest) (*model.PaymentResult, error)
	SignOutErr  error

	issued  int
	Calls   map[string]int
	Payment []model.PaymentRequest
}

// Account is a registered user.
type Account struct {
	ID       string
	Password string
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Accounts:   map[string]Account{},
		Subscribed: map[string]bool{},
		FavSports:  map[string]bool{},
		FavTeams:   map[string]bool{},
		Calls:      map[string]int{},
	}
}

var _ backend.API = (*Fake)(nil)

func (f *Fake) count(name string) {
	f.mu.Lock()
	f.Calls[name]++
	f.mu.Unlock()
}

// CallCount returns how often the named method ran.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *Fake) token(id, email string) *backend.TokenResponse {
	f.mu.Lock()
	f.issued++
	n := f.issued
	ttl := f.TokenTTL
	f.mu.Unlock()
	if ttl == 0 {
		ttl = time.Hour
	}
	return &backend.TokenResponse{
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d|%s|%s", n, id, email),
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(ttl).Unix(),
		User:         backend.UserResponse{ID: id, Email: email},
	}
}

func (f *Fake) SignInWithPassword(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
	f.count("SignInWithPassword")
	f.mu.Lock()
	acct, ok := f.Accounts[email]
	f.mu.Unlock()
	if !ok || acct.Password != password {
		return nil, apperrors.AuthError("Invalid login credentials", nil)
	}
	return f.token(acct.ID, email), nil
}

func (f *Fake) SignUp(ctx context.Context, email, password string) (*backend.SignUpResponse, error) {
	f.count("SignUp")
	f.mu.Lock()
	if _, exists := f.Accounts[email]; exists {
		f.mu.Unlock()
		return nil, apperrors.AuthError("User already registered", nil)
	}
	id := fmt.Sprintf("00000000-0000-4000-8000-%012d", len(f.Accounts)+1)
	f.Accounts[email] = Account{ID: id, Password: password}
	f.mu.Unlock()
	return &backend.SignUpResponse{User: backend.UserResponse{ID: id, Email: email}}, nil
}

func (f *Fake) SignOut(ctx context.Context, accessToken string) error {
	f.count("SignOut")
	return f.SignOutErr
}

func (f *Fake) RefreshSession(ctx context.Context, refreshToken string) (*backend.TokenResponse, error) {
	f.count("RefreshSession")
	if f.RefreshHook != nil {
		return f.RefreshHook(ctx, refreshToken)
	}
	parts := strings.Split(refreshToken, "|")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "refresh-") {
		return nil, apperrors.AuthError("Invalid Refresh Token", nil)
	}
	return f.token(parts[1], parts[2]), nil
}

func (f *Fake) GetUser(ctx context.Context, accessToken string) (*backend.UserResponse, error) {
	f.count("GetUser")
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, a := range f.Accounts {
		return &backend.UserResponse{ID: a.ID, Email: email}, nil
	}
	return nil, apperrors.AuthError("invalid JWT", nil)
}

func (f *Fake) CheckActiveSubscription(ctx context.Context, accessToken, userID string) (bool, error) {
	f.count("CheckActiveSubscription")
	if f.CheckHook != nil {
		return f.CheckHook(ctx, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Subscribed[userID], nil
}

// SetSubscribed flips a user's subscription.
func (f *Fake) SetSubscribed(userID string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Subscribed[userID] = active
}

func (f *Fake) ProcessPayment(ctx context.Context, accessToken string, req model.PaymentRequest) (*model.PaymentResult, error) {
	f.count("ProcessPayment")
	f.mu.Lock()
	f.Payment = append(f.Payment, req)
	f.mu.Unlock()
	if f.PaymentHook != nil {
		return f.PaymentHook(ctx, req)
	}
	return &model.PaymentResult{Success: true, Message: "Payment processed successfully"}, nil
}

func (f *Fake) GetVersion(ctx context.Context) (string, error) { return "fake", nil }

func (f *Fake) Sports(ctx context.Context, accessToken string) ([]model.Sport, error) {
	f.count("Sports")
	return f.SportsList, nil
}

func (f *Fake) Teams(ctx context.Context, accessToken string, sportID string) ([]model.Team, error) {
	f.count("Teams")
	var out []model.Team
	for _, t := range f.TeamsList {
		if sportID == "" || t.SportID == sportID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Fake) Events(ctx context.Context, accessToken string, filter backend.EventFilter) ([]model.Event, error) {
	f.count("Events")
	var out []model.Event
	for _, e := range f.EventsList {
		if filter.SportID != "" && e.SportID != filter.SportID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *Fake) Event(ctx context.Context, accessToken string, eventID string) (*model.Event, error) {
	f.count("Event")
	for _, e := range f.EventsList {
		if e.ID == eventID {
			ev := e
			return &ev, nil
		}
	}
	return nil, apperrors.New(apperrors.NotFound, "fetch event")
}

func (f *Fake) FavoriteSports(ctx context.Context, accessToken string) ([]model.FavoriteSport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FavoriteSport
	for id := range f.FavSports {
		out = append(out, model.FavoriteSport{SportID: id})
	}
	return out, nil
}

func (f *Fake) AddFavoriteSport(ctx context.Context, accessToken string, sportID string) error {
	f.count("AddFavoriteSport")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FavSports[sportID] = true
	return nil
}

func (f *Fake) RemoveFavoriteSport(ctx context.Context, accessToken string, sportID string) error {
	f.count("RemoveFavoriteSport")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.FavSports, sportID)
	return nil
}

func (f *Fake) FavoriteTeams(ctx context.Context, accessToken string) ([]model.FavoriteTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FavoriteTeam
	for id := range f.FavTeams {
		out = append(out, model.FavoriteTeam{TeamID: id})
	}
	return out, nil
}

func (f *Fake) AddFavoriteTeam(ctx context.Context, accessToken string, teamID string) error {
	f.count("AddFavoriteTeam")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FavTeams[teamID] = true
	return nil
}

func (f *Fake) RemoveFavoriteTeam(ctx context.Context, accessToken string, teamID string) error {
	f.count("RemoveFavoriteTeam")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.FavTeams, teamID)
	return nil
}

func (f *Fake) Notifications(ctx context.Context, accessToken string) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.Notes...), nil
}

func (f *Fake) MarkNotificationRead(ctx context.Context, accessToken string, notificationID string) error {
	f.count("MarkNotificationRead")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Notes {
		if f.Notes[i].ID == notificationID {
			f.Notes[i].IsRead = true
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "mark notification as read")
}
