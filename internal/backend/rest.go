// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

// restError maps a data API failure onto an error kind.
func restError(op string, err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return apperrors.Wrap(apperrors.BackendUnavailable, op, err)
	}
	switch {
	case se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden:
		return apperrors.Wrap(apperrors.Unauthorized, op, se)
	case se.Status == http.StatusNotFound || se.Status == http.StatusNotAcceptable || se.Code == "PGRST116":
		return apperrors.Wrap(apperrors.NotFound, op, se)
	case se.Status >= 500:
		return apperrors.Wrap(apperrors.BackendUnavailable, op, se)
	default:
		return apperrors.Wrap(apperrors.InvalidRequest, op, se)
	}
}

// list runs GET /rest/v1/<table> with PostgREST query parameters.
func (h *HTTP) list(ctx context.Context, accessToken, table string, q url.Values, out any) error {
	req, err := h.newRequest(ctx, http.MethodGet, restPath+"/"+table, q, nil, accessToken)
	if err != nil {
		return err
	}
	return h.do(req, out)
}

// Sports calls GET /rest/v1/sports?select=*&order=name.
func (h *HTTP) Sports(ctx context.Context, accessToken string) ([]model.Sport, error) {
	var out []model.Sport
	q := url.Values{"select": {"*"}, "order": {"name"}}
	if err := h.list(ctx, accessToken, "sports", q, &out); err != nil {
		return nil, restError("fetch sports", err)
	}
	return out, nil
}

// Teams lists teams with their sport embedded, optionally for one sport.
func (h *HTTP) Teams(ctx context.Context, accessToken string, sportID string) ([]model.Team, error) {
	var out []model.Team
	q := url.Values{"select": {"*,sports(*)"}, "order": {"name"}}
	if sportID != "" {
		q.Set("sport_id", "eq."+sportID)
	}
	if err := h.list(ctx, accessToken, "teams", q, &out); err != nil {
		return nil, restError("fetch teams", err)
	}
	return out, nil
}

// Events lists events ordered by start time with their sport embedded.
func (h *HTTP) Events(ctx context.Context, accessToken string, filter EventFilter) ([]model.Event, error) {
	var out []model.Event
	q := url.Values{"select": {"*,sports(*)"}, "order": {"start_time"}}
	if filter.SportID != "" {
		q.Set("sport_id", "eq."+filter.SportID)
	}
	if filter.Status != "" {
		q.Set("status", "eq."+string(filter.Status))
	}
	if err := h.list(ctx, accessToken, "events", q, &out); err != nil {
		return nil, restError("fetch events", err)
	}
	return out, nil
}

// Event fetches a single event. A missing row is a NotFound error.
func (h *HTTP) Event(ctx context.Context, accessToken string, eventID string) (*model.Event, error) {
	q := url.Values{"select": {"*,sports(*)"}, "id": {"eq." + eventID}}
	req, err := h.newRequest(ctx, http.MethodGet, restPath+"/events", q, nil, accessToken)
	if err != nil {
		return nil, restError("fetch event", err)
	}
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	var out model.Event
	if err := h.do(req, &out); err != nil {
		return nil, restError("fetch event", err)
	}
	return &out, nil
}

// FavoriteSports lists the caller's favorite sports (row-level security scopes them).
func (h *HTTP) FavoriteSports(ctx context.Context, accessToken string) ([]model.FavoriteSport, error) {
	var out []model.FavoriteSport
	if err := h.list(ctx, accessToken, "favorite_sports", url.Values{"select": {"*,sports(*)"}}, &out); err != nil {
		return nil, restError("fetch favorite sports", err)
	}
	return out, nil
}

func (h *HTTP) AddFavoriteSport(ctx context.Context, accessToken string, sportID string) error {
	return h.insert(ctx, accessToken, "favorite_sports", map[string]string{"sport_id": sportID}, "add favorite sport")
}

func (h *HTTP) RemoveFavoriteSport(ctx context.Context, accessToken string, sportID string) error {
	return h.remove(ctx, accessToken, "favorite_sports", url.Values{"sport_id": {"eq." + sportID}}, "remove favorite sport")
}

// FavoriteTeams lists the caller's favorite teams.
func (h *HTTP) FavoriteTeams(ctx context.Context, accessToken string) ([]model.FavoriteTeam, error) {
	var out []model.FavoriteTeam
	if err := h.list(ctx, accessToken, "favorite_teams", url.Values{"select": {"*,teams(*)"}}, &out); err != nil {
		return nil, restError("fetch favorite teams", err)
	}
	return out, nil
}

func (h *HTTP) AddFavoriteTeam(ctx context.Context, accessToken string, teamID string) error {
	return h.insert(ctx, accessToken, "favorite_teams", map[string]string{"team_id": teamID}, "add favorite team")
}

func (h *HTTP) RemoveFavoriteTeam(ctx context.Context, accessToken string, teamID string) error {
	return h.remove(ctx, accessToken, "favorite_teams", url.Values{"team_id": {"eq." + teamID}}, "remove favorite team")
}

// Notifications lists the caller's notifications, newest first.
func (h *HTTP) Notifications(ctx context.Context, accessToken string) ([]model.Notification, error) {
	var out []model.Notification
	q := url.Values{"select": {"*,events(*)"}, "order": {"created_at.desc"}}
	if err := h.list(ctx, accessToken, "notifications", q, &out); err != nil {
		return nil, restError("fetch notifications", err)
	}
	return out, nil
}

// MarkNotificationRead sets is_read on one notification.
func (h *HTTP) MarkNotificationRead(ctx context.Context, accessToken string, notificationID string) error {
	q := url.Values{"id": {"eq." + notificationID}}
	req, err := h.newRequest(ctx, http.MethodPatch, restPath+"/notifications", q, map[string]bool{"is_read": true}, accessToken)
	if err != nil {
		return restError("mark notification as read", err)
	}
	req.Header.Set("Prefer", "return=minimal")
	if err := h.do(req, nil); err != nil {
		return restError("mark notification as read", err)
	}
	return nil
}

// insert posts one row; the owning user_id is filled in by the table default.
func (h *HTTP) insert(ctx context.Context, accessToken, table string, row any, op string) error {
	req, err := h.newRequest(ctx, http.MethodPost, restPath+"/"+table, nil, row, accessToken)
	if err != nil {
		return restError(op, err)
	}
	req.Header.Set("Prefer", "return=minimal")
	if err := h.do(req, nil); err != nil {
		return restError(op, err)
	}
	return nil
}

func (h *HTTP) remove(ctx context.Context, accessToken, table string, q url.Values, op string) error {
	req, err := h.newRequest(ctx, http.MethodDelete, restPath+"/"+table, q, nil, accessToken)
	if err != nil {
		return restError(op, err)
	}
	if err := h.do(req, nil); err != nil {
		return restError(op, err)
	}
	return nil
}
