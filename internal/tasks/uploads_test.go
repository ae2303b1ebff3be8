package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/shared"
	tu "github.com/justmusik/jmk/internal/testing"
)

// countingAPI fails the test if any call reaches it unexpectedly and records
// calls otherwise.
type countingAPI struct {
	creates   int
	updates   int
	deletes   int
	deleteErr error
}

func (a *countingAPI) Create(_ context.Context, meta services.SongMeta, _ *services.AudioFile) (*models.Song, error) {
	a.creates++
	return &models.Song{ID: "new", Title: meta.Title, Artist: meta.Artist}, nil
}

func (a *countingAPI) Update(_ context.Context, id string, meta services.SongMeta, _ *services.AudioFile) (*models.Song, error) {
	a.updates++
	return &models.Song{ID: id, Title: meta.Title, Artist: meta.Artist}, nil
}

func (a *countingAPI) Delete(context.Context, string) error {
	a.deletes++
	return a.deleteErr
}

func newTestEngine(api SongAPI) *Engine {
	return NewEngine(api, shared.NewLogger(io.Discard))
}

func validAudio(size int64) *services.AudioFile {
	return &services.AudioFile{Name: "track.mp3", MIME: "audio/mpeg", Size: size, Reader: strings.NewReader("data")}
}

func TestValidate(t *testing.T) {
	meta := services.SongMeta{Title: "Song", Artist: "Artist"}

	tc := []struct {
		name     string
		upload   SongUpload
		isUpdate bool
		wantErr  error
	}{
		{"Valid Create", SongUpload{Meta: meta, Audio: validAudio(1 << 20)}, false, nil},
		{"Missing Title", SongUpload{Meta: services.SongMeta{Artist: "A"}, Audio: validAudio(1)}, false, shared.ErrMissingField},
		{"Blank Artist", SongUpload{Meta: services.SongMeta{Title: "T", Artist: "   "}, Audio: validAudio(1)}, false, shared.ErrMissingField},
		{"Create Without Audio", SongUpload{Meta: meta}, false, shared.ErrMissingField},
		{"Update Without Audio", SongUpload{Meta: meta}, true, nil},
		{"Video MIME Rejected", SongUpload{Meta: meta, Audio: &services.AudioFile{Name: "x.mp4", MIME: "video/mp4", Size: 1}}, false, shared.ErrUnsupportedFormat},
		{"At The Size Limit", SongUpload{Meta: meta, Audio: validAudio(MaxAudioFileSize)}, false, nil},
		{"Over The Size Limit", SongUpload{Meta: meta, Audio: validAudio(MaxAudioFileSize + 1)}, false, shared.ErrFileTooLarge},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload.Validate(tt.isUpdate)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateFlow(t *testing.T) {
	t.Run("Oversized Upload Never Reaches The Network", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)

		_, err := e.Create(context.Background(), SongUpload{
			Meta:  services.SongMeta{Title: "Big", Artist: "File"},
			Audio: validAudio(150 << 20),
		})

		if !errors.Is(err, shared.ErrFileTooLarge) {
			t.Errorf("Create() error = %v, want ErrFileTooLarge", err)
		}
		if api.creates != 0 {
			t.Errorf("API saw %d create calls, want 0", api.creates)
		}
	})

	t.Run("Valid Upload Creates", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)

		song, err := e.Create(context.Background(), SongUpload{
			Meta:  services.SongMeta{Title: "New Song", Artist: "Someone"},
			Audio: validAudio(5 << 20),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if song.Title != "New Song" || api.creates != 1 {
			t.Errorf("unexpected create result: song=%+v creates=%d", song, api.creates)
		}
	})
}

func TestUpdateFlow(t *testing.T) {
	t.Run("Metadata Only Update Is Valid", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)

		song, err := e.Update(context.Background(), "s1", SongUpload{
			Meta: services.SongMeta{Title: "Renamed", Artist: "Same Artist"},
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if song.ID != "s1" || api.updates != 1 {
			t.Errorf("unexpected update result: song=%+v updates=%d", song, api.updates)
		}
	})

	t.Run("Invalid Replacement Audio Rejected Before Network", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)

		_, err := e.Update(context.Background(), "s1", SongUpload{
			Meta:  services.SongMeta{Title: "T", Artist: "A"},
			Audio: &services.AudioFile{Name: "x.txt", MIME: "text/plain", Size: 10},
		})

		if !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("Update() error = %v, want ErrUnsupportedFormat", err)
		}
		if api.updates != 0 {
			t.Errorf("API saw %d update calls, want 0", api.updates)
		}
	})
}

func TestDeleteFlow(t *testing.T) {
	newPlayer := func() *player.Controller {
		return player.NewController(&tu.MockBackend{}, nil, shared.NewLogger(io.Discard))
	}

	t.Run("Removes Song From List And Clears Playback", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)
		songs := tu.SampleSongs()

		ctrl := newPlayer()
		ctrl.Select(context.Background(), songs[2])

		kept, err := e.Delete(context.Background(), "s3", songs, ctrl, func() bool { return true })
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(kept) != len(songs)-1 {
			t.Errorf("kept %d songs, want %d", len(kept), len(songs)-1)
		}
		for _, song := range kept {
			if song.ID == "s3" {
				t.Error("deleted song still in list")
			}
		}
		if ctrl.Current() != nil {
			t.Error("expected playback cleared for the deleted song")
		}
	})

	t.Run("Unrelated Delete Leaves Playback Alone", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)
		songs := tu.SampleSongs()

		ctrl := newPlayer()
		ctrl.Select(context.Background(), songs[0])

		if _, err := e.Delete(context.Background(), "s3", songs, ctrl, nil); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if ctrl.Current() == nil || ctrl.Current().ID != "s1" {
			t.Error("expected playback untouched")
		}
	})

	t.Run("Declined Confirmation Aborts", func(t *testing.T) {
		api := &countingAPI{}
		e := newTestEngine(api)
		songs := tu.SampleSongs()

		kept, err := e.Delete(context.Background(), "s1", songs, nil, func() bool { return false })
		if !errors.Is(err, shared.ErrAborted) {
			t.Errorf("Delete() error = %v, want ErrAborted", err)
		}
		if len(kept) != len(songs) || api.deletes != 0 {
			t.Errorf("expected untouched list and no API call, got %d songs, %d deletes", len(kept), api.deletes)
		}
	})

	t.Run("Remote Failure Keeps The List", func(t *testing.T) {
		api := &countingAPI{deleteErr: errors.New("server error")}
		e := newTestEngine(api)
		songs := tu.SampleSongs()

		kept, err := e.Delete(context.Background(), "s1", songs, nil, nil)
		if err == nil {
			t.Fatal("expected delete error")
		}
		if len(kept) != len(songs) {
			t.Errorf("kept %d songs after failed delete, want %d", len(kept), len(songs))
		}
	})
}

func TestLoadAudioFile(t *testing.T) {
	t.Run("Unknown Extension Rejected", func(t *testing.T) {
		_, err := LoadAudioFile("/tmp/notes.txt")
		if !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("LoadAudioFile() error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("Reads Size And MIME From Disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "track.MP3")
		if err := os.WriteFile(path, []byte("fake mp3 bytes"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		audio, err := LoadAudioFile(path)
		if err != nil {
			t.Fatalf("LoadAudioFile() error = %v", err)
		}
		defer closeReader(audio.Reader)

		if audio.Name != "track.MP3" {
			t.Errorf("Name = %q, want track.MP3", audio.Name)
		}
		if audio.MIME != "audio/mpeg" {
			t.Errorf("MIME = %q, want audio/mpeg", audio.MIME)
		}
		if audio.Size != int64(len("fake mp3 bytes")) {
			t.Errorf("Size = %d, want %d", audio.Size, len("fake mp3 bytes"))
		}
	})
}

func closeReader(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}
