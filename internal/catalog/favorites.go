// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"context"

	"arenatv/cli/internal/model"
)

func (s *Service) FavoriteSports(ctx context.Context) ([]model.FavoriteSport, error) {
	tok, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.api.FavoriteSports(ctx, tok)
}

// ToggleFavoriteSport removes the sport when isFavorite, adds it otherwise.
func (s *Service) ToggleFavoriteSport(ctx context.Context, sportID string, isFavorite bool) error {
	tok, err := s.requireToken()
	if err != nil {
		return err
	}
	if isFavorite {
		return s.api.RemoveFavoriteSport(ctx, tok, sportID)
	}
	return s.api.AddFavoriteSport(ctx, tok, sportID)
}

func (s *Service) FavoriteTeams(ctx context.Context) ([]model.FavoriteTeam, error) {
	tok, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.api.FavoriteTeams(ctx, tok)
}

// ToggleFavoriteTeam removes the team when isFavorite, adds it otherwise.
func (s *Service) ToggleFavoriteTeam(ctx context.Context, teamID string, isFavorite bool) error {
	tok, err := s.requireToken()
	if err != nil {
		return err
	}
	if isFavorite {
		return s.api.RemoveFavoriteTeam(ctx, tok, teamID)
	}
	return s.api.AddFavoriteTeam(ctx, tok, teamID)
}

// Notifications lists the user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context) ([]model.Notification, error) {
	tok, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return s.api.Notifications(ctx, tok)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	tok, err := s.requireToken()
	if err != nil {
		return err
	}
	return s.api.MarkNotificationRead(ctx, tok, id)
}

// UnreadCount counts unread notifications in ns.
func UnreadCount(ns []model.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}
