package services

import (
	"context"
	"net/url"

	"github.com/justmusik/jmk/internal/models"
)

// FavoritesService wraps the /favorites endpoints for the current user.
type FavoritesService struct {
	client *Client
}

// NewFavoritesService creates a FavoritesService backed by the shared API client.
func NewFavoritesService(client *Client) *FavoritesService {
	return &FavoritesService{client: client}
}

// List fetches the songs the current user has favorited.
func (s *FavoritesService) List(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	if err := s.client.GetJSON(ctx, "/favorites", &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Add marks a song as a favorite.
func (s *FavoritesService) Add(ctx context.Context, songID string) error {
	return s.client.PostJSON(ctx, "/favorites/"+url.PathEscape(songID), nil, nil)
}

// Remove clears a song's favorite marking.
func (s *FavoritesService) Remove(ctx context.Context, songID string) error {
	resp, err := s.client.Delete(ctx, "/favorites/"+url.PathEscape(songID))
	if err != nil {
		return err
	}
	return decodeInto(resp, nil)
}

// Check asks the server whether the song is in the current user's favorites.
// The UI toggle tracks membership locally; this backs the explicit check command.
func (s *FavoritesService) Check(ctx context.Context, songID string) (bool, error) {
	resp, err := s.client.Get(ctx, "/favorites/check/"+url.PathEscape(songID))
	if err != nil {
		return false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, respError(resp)
	}

	switch v := resp.JSONData.(type) {
	case bool:
		return v, nil
	case map[string]any:
		for _, key := range []string{"favorite", "isFavorite"} {
			if b, ok := v[key].(bool); ok {
				return b, nil
			}
		}
	}
	return false, nil
}
