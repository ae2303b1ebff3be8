package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/justmusik/jmk/internal/models"
)

// SongCacheRepository stores the last fetched catalog so `songs list --cached`
// works offline. Positions preserve the server's fetch order, which is also the
// catalog pipeline's sort tie-break.
type SongCacheRepository struct {
	db *sql.DB
}

// NewSongCacheRepository creates a SongCacheRepository over the given database.
func NewSongCacheRepository(db *sql.DB) *SongCacheRepository {
	return &SongCacheRepository{db: db}
}

// ReplaceAll swaps the cached catalog for the given list in one transaction.
func (r *SongCacheRepository) ReplaceAll(songs []models.Song) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM song_cache"); err != nil {
		return fmt.Errorf("failed to clear song cache: %w", err)
	}

	query := `
		INSERT INTO song_cache (id, position, title, artist, album, genre, duration, image_url, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for i, song := range songs {
		_, err := tx.Exec(query, song.ID, i, song.Title, song.Artist, song.Album, song.Genre, song.Duration, song.ImageURL, now)
		if err != nil {
			return fmt.Errorf("failed to cache song %s: %w", song.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit song cache: %w", err)
	}
	return nil
}

// List returns the cached catalog in fetch order.
func (r *SongCacheRepository) List() ([]models.Song, error) {
	query := `
		SELECT id, title, artist, album, genre, duration, image_url
		FROM song_cache
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query song cache: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		var album, genre, imageURL sql.NullString

		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &album, &genre, &song.Duration, &imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan cached song: %w", err)
		}

		song.Album = album.String
		song.Genre = genre.String
		song.ImageURL = imageURL.String
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Remove drops a single song from the cache, keeping it aligned with a remote
// delete without a re-fetch.
func (r *SongCacheRepository) Remove(id string) error {
	if _, err := r.db.Exec("DELETE FROM song_cache WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to remove cached song: %w", err)
	}
	return nil
}
