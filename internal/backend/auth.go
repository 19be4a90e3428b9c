// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	apperrors "arenatv/cli/internal/errors"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authError converts a failed auth call into an AuthError. 4xx responses are
// rejections carrying the service's message; everything else is transport.
func authError(op string, err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Status >= 400 && se.Status < 500 {
			return apperrors.AuthError(se.Message, nil)
		}
		return apperrors.AuthError(op+" failed", se)
	}
	return apperrors.AuthError(op+" failed", err)
}

// SignInWithPassword calls POST /auth/v1/token?grant_type=password.
func (h *HTTP) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	q := url.Values{"grant_type": {"password"}}
	req, err := h.newRequest(ctx, http.MethodPost, authPath+"/token", q, credentials{Email: email, Password: password}, "")
	if err != nil {
		return nil, authError("sign in", err)
	}
	var out TokenResponse
	if err := h.do(req, &out); err != nil {
		return nil, authError("sign in", err)
	}
	if out.AccessToken == "" {
		return nil, apperrors.AuthError("sign in returned no session", errors.New("empty access_token"))
	}
	return &out, nil
}

// SignUp calls POST /auth/v1/signup. Depending on the project's confirmation
// setting the service answers with a full session or with the bare user.
func (h *HTTP) SignUp(ctx context.Context, email, password string) (*SignUpResponse, error) {
	req, err := h.newRequest(ctx, http.MethodPost, authPath+"/signup", nil, credentials{Email: email, Password: password}, "")
	if err != nil {
		return nil, authError("sign up", err)
	}
	var raw json.RawMessage
	if err := h.do(req, &raw); err != nil {
		return nil, authError("sign up", err)
	}
	return parseSignUp(raw)
}

func parseSignUp(raw json.RawMessage) (*SignUpResponse, error) {
	var tok TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, apperrors.AuthError("sign up returned an unexpected payload", err)
	}
	if tok.AccessToken != "" {
		return &SignUpResponse{User: tok.User, Session: &tok}, nil
	}
	var user UserResponse
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, apperrors.AuthError("sign up returned an unexpected payload", err)
	}
	if user.ID == "" {
		user = tok.User
	}
	return &SignUpResponse{User: user}, nil
}

// SignOut calls POST /auth/v1/logout with the user's token.
// An already-invalid token is treated as signed out.
func (h *HTTP) SignOut(ctx context.Context, accessToken string) error {
	req, err := h.newRequest(ctx, http.MethodPost, authPath+"/logout", nil, nil, accessToken)
	if err != nil {
		return authError("sign out", err)
	}
	err = h.do(req, nil)
	var se *StatusError
	if errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden || se.Status == http.StatusNotFound) {
		return nil
	}
	if err != nil {
		return authError("sign out", err)
	}
	return nil
}

// RefreshSession calls POST /auth/v1/token?grant_type=refresh_token.
// The service rotates refresh tokens, so the returned pair replaces the old one.
func (h *HTTP) RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}
	req, err := h.newRequest(ctx, http.MethodPost, authPath+"/token", q, body, "")
	if err != nil {
		return nil, authError("refresh session", err)
	}
	var out TokenResponse
	if err := h.do(req, &out); err != nil {
		return nil, authError("refresh session", err)
	}
	if out.AccessToken == "" {
		return nil, apperrors.AuthError("refresh returned no access_token", errors.New("empty access_token"))
	}
	return &out, nil
}

// GetUser calls GET /auth/v1/user to validate a token and fetch its user.
func (h *HTTP) GetUser(ctx context.Context, accessToken string) (*UserResponse, error) {
	req, err := h.newRequest(ctx, http.MethodGet, authPath+"/user", nil, nil, accessToken)
	if err != nil {
		return nil, authError("get user", err)
	}
	var out UserResponse
	if err := h.do(req, &out); err != nil {
		return nil, authError("get user", err)
	}
	return &out, nil
}
