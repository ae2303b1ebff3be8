package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/justmusik/jmk/internal/models"
)

func TestSongService(t *testing.T) {
	t.Run("Create Sends Multipart Form", func(t *testing.T) {
		var gotTitle, gotArtist, gotDuration string
		var audioName, audioMIME, audioData string

		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(10 << 20); err != nil {
				t.Errorf("failed to parse multipart form: %v", err)
			}
			gotTitle = req.FormValue("title")
			gotArtist = req.FormValue("artist")
			gotDuration = req.FormValue("duration")

			file, header, err := req.FormFile("audioFile")
			if err != nil {
				t.Errorf("missing audio part: %v", err)
			} else {
				defer file.Close()
				data, _ := io.ReadAll(file)
				audioName = header.Filename
				audioMIME = header.Header.Get("Content-Type")
				audioData = string(data)
			}

			json.NewEncoder(w).Encode(models.Song{ID: "new", Title: req.FormValue("title")})
		}))

		meta := SongMeta{Title: "New Song", Artist: "Someone", Duration: 180}
		audio := &AudioFile{Name: "track.mp3", MIME: "audio/mpeg", Size: 4, Reader: strings.NewReader("data")}

		song, err := svc.Create(context.Background(), meta, audio)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if song.ID != "new" {
			t.Errorf("song.ID = %q", song.ID)
		}
		if gotTitle != "New Song" || gotArtist != "Someone" || gotDuration != "180" {
			t.Errorf("form fields: title=%q artist=%q duration=%q", gotTitle, gotArtist, gotDuration)
		}
		if audioName != "track.mp3" || audioMIME != "audio/mpeg" || audioData != "data" {
			t.Errorf("audio part: name=%q mime=%q data=%q", audioName, audioMIME, audioData)
		}
	})

	t.Run("Update Without Audio Omits The Part", func(t *testing.T) {
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodPut {
				t.Errorf("method = %s, want PUT", req.Method)
			}
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("failed to parse multipart form: %v", err)
			}
			if _, _, err := req.FormFile("audioFile"); err == nil {
				t.Error("expected no audio part on metadata-only update")
			}
			json.NewEncoder(w).Encode(models.Song{ID: "s1", Title: req.FormValue("title")})
		}))

		song, err := svc.Update(context.Background(), "s1", SongMeta{Title: "Renamed", Artist: "Same"}, nil)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if song.Title != "Renamed" {
			t.Errorf("song.Title = %q", song.Title)
		}
	})

	t.Run("Optional Fields Written Only When Set", func(t *testing.T) {
		var form map[string][]string
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			req.ParseMultipartForm(1 << 20)
			form = req.MultipartForm.Value
			json.NewEncoder(w).Encode(models.Song{ID: "s1"})
		}))

		_, err := svc.Update(context.Background(), "s1", SongMeta{Title: "T", Artist: "A"}, nil)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		for _, absent := range []string{"album", "genre", "imageUrl", "duration"} {
			if _, ok := form[absent]; ok {
				t.Errorf("unset field %q was written to the form", absent)
			}
		}
	})

	t.Run("Search Escapes The Query", func(t *testing.T) {
		var rawQuery string
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			rawQuery = req.URL.RawQuery
			json.NewEncoder(w).Encode([]models.Song{})
		}))

		if _, err := svc.Search(context.Background(), "rock & roll"); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if rawQuery != "q=rock+%26+roll" {
			t.Errorf("query = %q", rawQuery)
		}
	})

	t.Run("Get Escapes The ID", func(t *testing.T) {
		var path string
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			path = req.URL.EscapedPath()
			json.NewEncoder(w).Encode(models.Song{ID: "a/b"})
		}))

		if _, err := svc.Get(context.Background(), "a/b"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if path != "/songs/a%2Fb" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("StreamURL", func(t *testing.T) {
		tc := []struct {
			name string
			body string
			want string
		}{
			{"Object Shape", `{"streamUrl": "http://cdn/s1"}`, "http://cdn/s1"},
			{"Bare JSON String", `"http://cdn/s1"`, "http://cdn/s1"},
			{"Plain Text", "http://cdn/s1", "http://cdn/s1"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
					w.Write([]byte(tt.body))
				}))

				got, err := svc.StreamURL(context.Background(), "s1")
				if err != nil {
					t.Fatalf("StreamURL() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("StreamURL() = %q, want %q", got, tt.want)
				}
			})
		}

		t.Run("Missing URL", func(t *testing.T) {
			svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(`{"unexpected": true}`))
			}))

			if _, err := svc.StreamURL(context.Background(), "s1"); err == nil {
				t.Error("expected error for response without a URL")
			}
		})
	})

	t.Run("Delete Surfaces Server Error", func(t *testing.T) {
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Song not found"}`))
		}))

		err := svc.Delete(context.Background(), "missing")
		if err == nil || !strings.Contains(err.Error(), "Song not found") {
			t.Errorf("expected server message, got %v", err)
		}
	})

	t.Run("List Returns The Catalog", func(t *testing.T) {
		svc := NewSongService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			json.NewEncoder(w).Encode([]models.Song{{ID: "s1"}, {ID: "s2"}})
		}))

		songs, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("got %d songs, want 2", len(songs))
		}
	})
}

func TestFavoritesService(t *testing.T) {
	t.Run("Check Accepts Both Response Shapes", func(t *testing.T) {
		tc := []struct {
			name string
			body string
			want bool
		}{
			{"Bare Bool", `true`, true},
			{"Favorite Key", `{"favorite": true}`, true},
			{"IsFavorite Key", `{"isFavorite": false}`, false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				svc := NewFavoritesService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
					w.Write([]byte(tt.body))
				}))

				got, err := svc.Check(context.Background(), "s1")
				if err != nil {
					t.Fatalf("Check() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Check() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Add Posts To The Song Path", func(t *testing.T) {
		var method, path string
		svc := NewFavoritesService(newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
			method = req.Method
			path = req.URL.Path
			w.WriteHeader(http.StatusCreated)
		}))

		if err := svc.Add(context.Background(), "s1"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if method != http.MethodPost || path != "/favorites/s1" {
			t.Errorf("request = %s %s", method, path)
		}
	})
}
