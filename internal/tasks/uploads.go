package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/shared"
)

// MaxAudioFileSize is the upload ceiling enforced before any network call.
const MaxAudioFileSize = 100 << 20 // 100 MB

// allowedMIMETypes are the audio formats the platform accepts.
var allowedMIMETypes = map[string]bool{
	"audio/mpeg": true,
	"audio/mp3":  true,
	"audio/wav":  true,
	"audio/ogg":  true,
	"audio/flac": true,
}

// mimeByExtension maps audio file extensions to their MIME type. Lookup is on
// the lowercased extension including the dot.
var mimeByExtension = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// SongUpload is the validated input for a create or update flow.
type SongUpload struct {
	Meta  services.SongMeta
	Audio *services.AudioFile
}

// Validate checks the upload before any network traffic. Updates may omit the
// audio file, which leaves the stored audio untouched; creates require it.
func (u *SongUpload) Validate(isUpdate bool) error {
	if strings.TrimSpace(u.Meta.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingField)
	}
	if strings.TrimSpace(u.Meta.Artist) == "" {
		return fmt.Errorf("%w: artist", shared.ErrMissingField)
	}

	if u.Audio == nil {
		if !isUpdate {
			return fmt.Errorf("%w: audio file", shared.ErrMissingField)
		}
		return nil
	}

	if !allowedMIMETypes[u.Audio.MIME] {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, u.Audio.MIME)
	}
	if u.Audio.Size > MaxAudioFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", shared.ErrFileTooLarge, u.Audio.Size, MaxAudioFileSize)
	}
	return nil
}

// LoadAudioFile stats the file at path and wraps it as an upload part, with
// the MIME type derived from the extension. The returned file is open; the
// caller closes it via the Reader after the upload.
func LoadAudioFile(path string) (*services.AudioFile, error) {
	mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	return &services.AudioFile{
		Name:   filepath.Base(path),
		MIME:   mime,
		Size:   info.Size(),
		Reader: f,
	}, nil
}

// SongAPI is the slice of the song service the mutation flows need.
// [services.SongService] satisfies it.
type SongAPI interface {
	Create(ctx context.Context, meta services.SongMeta, audio *services.AudioFile) (*models.Song, error)
	Update(ctx context.Context, id string, meta services.SongMeta, audio *services.AudioFile) (*models.Song, error)
	Delete(ctx context.Context, id string) error
}

// Engine runs the admin mutation flows.
type Engine struct {
	api    SongAPI
	logger *log.Logger
}

// NewEngine creates an Engine over the given song API.
func NewEngine(api SongAPI, logger *log.Logger) *Engine {
	return &Engine{api: api, logger: logger}
}

// Create validates and uploads a new song.
func (e *Engine) Create(ctx context.Context, upload SongUpload) (*models.Song, error) {
	if err := upload.Validate(false); err != nil {
		return nil, err
	}

	song, err := e.api.Create(ctx, upload.Meta, upload.Audio)
	if err != nil {
		return nil, err
	}

	e.logger.Info("song created", "id", song.ID, "title", song.Title)
	return song, nil
}

// Update validates and applies a metadata (and optionally audio) update.
func (e *Engine) Update(ctx context.Context, id string, upload SongUpload) (*models.Song, error) {
	if err := upload.Validate(true); err != nil {
		return nil, err
	}

	song, err := e.api.Update(ctx, id, upload.Meta, upload.Audio)
	if err != nil {
		return nil, err
	}

	e.logger.Info("song updated", "id", song.ID, "title", song.Title)
	return song, nil
}

// Delete removes a song after confirmation, then reconciles local state:
// the song is filtered out of the given list and playback is cleared if it
// was the current song. A nil confirm skips the prompt. The filtered list is
// returned; on abort or failure the input list comes back unchanged.
func (e *Engine) Delete(ctx context.Context, id string, songs []models.Song, ctrl *player.Controller, confirm func() bool) ([]models.Song, error) {
	if confirm != nil && !confirm() {
		return songs, shared.ErrAborted
	}

	if err := e.api.Delete(ctx, id); err != nil {
		return songs, err
	}

	kept := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if song.ID != id {
			kept = append(kept, song)
		}
	}

	if ctrl != nil {
		ctrl.ClearIf(id)
	}

	e.logger.Info("song deleted", "id", id)
	return kept, nil
}
