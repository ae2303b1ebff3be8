package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/justmusik/jmk/internal/models"
)

// SongService wraps the /songs endpoints.
type SongService struct {
	client *Client
}

// NewSongService creates a SongService backed by the shared API client.
func NewSongService(client *Client) *SongService {
	return &SongService{client: client}
}

// SongMeta holds the form fields for song create and update calls. Title and
// artist are required; the rest are written to the form only when set.
type SongMeta struct {
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration int // seconds
	ImageURL string
}

// AudioFile is the audio part of a multipart song payload.
type AudioFile struct {
	Name   string
	MIME   string
	Size   int64
	Reader io.Reader
}

// List fetches the entire catalog in one call.
func (s *SongService) List(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	if err := s.client.GetJSON(ctx, "/songs", &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Get fetches a single song by ID.
func (s *SongService) Get(ctx context.Context, id string) (*models.Song, error) {
	var song models.Song
	if err := s.client.GetJSON(ctx, "/songs/"+url.PathEscape(id), &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Search runs the server-side search endpoint. The catalog view filters its
// fetched list locally; this exists for callers that want the remote index.
func (s *SongService) Search(ctx context.Context, query string) ([]models.Song, error) {
	var songs []models.Song
	path := "/songs/search?q=" + url.QueryEscape(query)
	if err := s.client.GetJSON(ctx, path, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Create uploads a new song as a multipart payload. The audio part is required
// by the server; callers validate it before reaching this method.
func (s *SongService) Create(ctx context.Context, meta SongMeta, audio *AudioFile) (*models.Song, error) {
	body, contentType, err := buildSongForm(meta, audio)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(ctx, "/songs", body, contentType)
	if err != nil {
		return nil, err
	}

	var song models.Song
	if err := decodeInto(resp, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Update replaces a song's metadata. A nil audio leaves the stored audio file
// untouched: the form simply omits the part.
func (s *SongService) Update(ctx context.Context, id string, meta SongMeta, audio *AudioFile) (*models.Song, error) {
	body, contentType, err := buildSongForm(meta, audio)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Put(ctx, "/songs/"+url.PathEscape(id), body, contentType)
	if err != nil {
		return nil, err
	}

	var song models.Song
	if err := decodeInto(resp, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Delete removes a song. Callers reconcile their local lists afterwards instead
// of re-fetching.
func (s *SongService) Delete(ctx context.Context, id string) error {
	resp, err := s.client.Delete(ctx, "/songs/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return decodeInto(resp, nil)
}

// StreamURL resolves a fresh streamable URL for the song. The server returns
// either a bare JSON string or a {"streamUrl": ...} object depending on
// deployment; both shapes are accepted.
func (s *SongService) StreamURL(ctx context.Context, id string) (string, error) {
	resp, err := s.client.Get(ctx, "/songs/"+url.PathEscape(id)+"/stream")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", respError(resp)
	}
	return extractURL(resp, "streamUrl")
}

// DownloadURL resolves a downloadable URL for the song.
func (s *SongService) DownloadURL(ctx context.Context, id string) (string, error) {
	resp, err := s.client.Get(ctx, "/songs/"+url.PathEscape(id)+"/download")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", respError(resp)
	}
	return extractURL(resp, "downloadUrl")
}

func extractURL(resp *APIResponse, key string) (string, error) {
	switch v := resp.JSONData.(type) {
	case string:
		return v, nil
	case map[string]any:
		if u, ok := v[key].(string); ok {
			return u, nil
		}
	}

	// Some deployments return the URL as plain text.
	if u := strings.TrimSpace(string(resp.Body)); u != "" && !resp.IsJSON {
		return u, nil
	}
	return "", fmt.Errorf("response did not contain %s", key)
}

// buildSongForm assembles the multipart payload for create and update calls.
func buildSongForm(meta SongMeta, audio *AudioFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct {
		name, value string
	}{
		{"title", meta.Title},
		{"artist", meta.Artist},
		{"album", meta.Album},
		{"genre", meta.Genre},
		{"imageUrl", meta.ImageURL},
	}
	for _, f := range fields {
		if f.value == "" && f.name != "title" && f.name != "artist" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	if meta.Duration > 0 {
		if err := mw.WriteField("duration", strconv.Itoa(meta.Duration)); err != nil {
			return nil, "", fmt.Errorf("failed to write form field duration: %w", err)
		}
	}

	if audio != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audioFile"; filename=%s`, strconv.Quote(audio.Name)))
		h.Set("Content-Type", audio.MIME)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create audio part: %w", err)
		}
		if _, err := io.Copy(part, audio.Reader); err != nil {
			return nil, "", fmt.Errorf("failed to write audio data: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
