package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/repositories"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/session"
	"github.com/justmusik/jmk/internal/shared"
	tu "github.com/justmusik/jmk/internal/testing"
	"github.com/urfave/cli/v3"
)

// testRunner wires a Runner against an httptest server with an in-memory
// database, capturing output.
type testRunner struct {
	runner  *Runner
	output  *bytes.Buffer
	storage *tu.MockStorage
	store   *session.Store
}

func newTestRunner(t *testing.T, handler http.Handler) *testRunner {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := shared.NewLogger(nil)
	client := services.NewClient(server.URL, server.Client(), logger)

	storage := &tu.MockStorage{}
	store := session.NewStore(storage, services.NewAuthService(client), logger)
	client.SetTokenSource(store)
	client.OnUnauthorized(store.HandleUnauthorized)

	db, err := repositories.Open(":memory:", 1, 1)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	songs := services.NewSongService(client)
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		Client:     client,
		Session:    store,
		Songs:      songs,
		Favorites:  services.NewFavoritesService(client),
		Cache:      repositories.NewSongCacheRepository(db),
		Player:     player.NewController(&tu.MockBackend{}, nil, logger),
		HTTPClient: server.Client(),
		Logger:     logger,
		Output:     output,
	})

	return &testRunner{runner: runner, output: output, storage: storage, store: store}
}

// run executes a CLI invocation against the runner's command tree.
func (tr *testRunner) run(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "jmk", Commands: tr.runner.register()}
	return app.Run(context.Background(), append([]string{"jmk"}, args...))
}

// signIn seeds an authenticated session without a network call.
func (tr *testRunner) signIn(t *testing.T, roles ...string) {
	t.Helper()
	tr.storage.Token = "tok-test"
	tr.storage.User = &models.User{ID: "u1", Username: "asfar", Roles: roles}
	if err := tr.store.Restore(); err != nil {
		t.Fatalf("failed to restore seeded session: %v", err)
	}
}

func catalogHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/songs", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(tu.SampleSongs())
	})
	mux.HandleFunc("/favorites", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(tu.SampleSongs()[:2])
	})
	return mux
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("registers all top level commands", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			commands := runner.register()

			want := []string{"setup", "auth", "songs", "favorites", "admin", "tui"}
			if len(commands) != len(want) {
				t.Fatalf("registered %d commands, want %d", len(commands), len(want))
			}
			for i, name := range want {
				if commands[i].Name != name {
					t.Errorf("command %d = %s, want %s", i, commands[i].Name, name)
				}
			}
		})
	})
}

func TestSongsCommands(t *testing.T) {
	t.Run("List Prints A Page With Footer", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())

		if err := tr.run(t, "songs", "list"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}

		out := tr.output.String()
		if !strings.Contains(out, "Aurora Skies - Midnight Rain") {
			t.Errorf("missing song line, got: %s", out)
		}
		if !strings.Contains(out, "Page 1/1 (5 songs)") {
			t.Errorf("missing footer, got: %s", out)
		}
	})

	t.Run("List With Query Filters", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())

		if err := tr.run(t, "songs", "list", "--query", "folk"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}

		out := tr.output.String()
		if !strings.Contains(out, "(2 songs)") {
			t.Errorf("expected 2 folk songs, got: %s", out)
		}
		if strings.Contains(out, "Midnight Rain") {
			t.Errorf("pop song leaked through folk filter: %s", out)
		}
	})

	t.Run("List JSON Outputs The Filtered Catalog", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())

		if err := tr.run(t, "songs", "list", "--json", "--genre", "Pop"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}

		var songs []models.Song
		if err := json.Unmarshal(tr.output.Bytes(), &songs); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("got %d songs, want 2", len(songs))
		}
	})

	t.Run("List Rejects Unknown Sort Key", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())

		err := tr.run(t, "songs", "list", "--sort", "tempo")
		if err == nil || !strings.Contains(err.Error(), "unknown sort key") {
			t.Errorf("expected sort key error, got %v", err)
		}
	})

	t.Run("Cached List Works After A Fetch", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())

		if err := tr.run(t, "songs", "list"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}
		tr.output.Reset()

		if err := tr.run(t, "songs", "list", "--cached"); err != nil {
			t.Fatalf("cached list failed: %v", err)
		}
		if !strings.Contains(tr.output.String(), "Midnight Rain") {
			t.Errorf("cached list missing songs, got: %s", tr.output.String())
		}
	})

	t.Run("Stream URL Prints The Resolved URL", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/songs/s1/stream", func(w http.ResponseWriter, req *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"streamUrl": "http://cdn/stream/s1"})
		})
		tr := newTestRunner(t, mux)

		if err := tr.run(t, "songs", "stream-url", "s1"); err != nil {
			t.Fatalf("stream-url failed: %v", err)
		}
		if got := strings.TrimSpace(tr.output.String()); got != "http://cdn/stream/s1" {
			t.Errorf("output = %q", got)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Status When Signed Out", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())

		if err := tr.run(t, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(tr.output.String(), "✗ Not signed in") {
			t.Errorf("output = %q", tr.output.String())
		}
	})

	t.Run("Login Persists Session And Reports Role", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/signin", func(w http.ResponseWriter, req *http.Request) {
			var creds models.Credentials
			json.NewDecoder(req.Body).Decode(&creds)
			if creds.Username != "asfar" || creds.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(models.SignInResponse{
				Token: "tok-1", ID: "u1", Username: "asfar", Roles: []string{models.RoleUser},
			})
		})
		tr := newTestRunner(t, mux)

		if err := tr.run(t, "auth", "login", "--username", "asfar", "--password", "secret"); err != nil {
			t.Fatalf("auth login failed: %v", err)
		}
		if !strings.Contains(tr.output.String(), "✓ Signed in as asfar") {
			t.Errorf("output = %q", tr.output.String())
		}
		if tr.storage.Token != "tok-1" {
			t.Errorf("persisted token = %q, want tok-1", tr.storage.Token)
		}
	})

	t.Run("Rejected Login Surfaces Server Message", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/signin", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
		})
		tr := newTestRunner(t, mux)

		err := tr.run(t, "auth", "login", "--username", "asfar", "--password", "wrong")
		if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
			t.Errorf("expected server message in error, got %v", err)
		}
	})

	t.Run("Whoami Requires A Session", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())

		err := tr.run(t, "auth", "whoami")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Whoami Prints Profile", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())
		tr.signIn(t, models.RoleAdmin)

		if err := tr.run(t, "auth", "whoami"); err != nil {
			t.Fatalf("whoami failed: %v", err)
		}
		if !strings.Contains(tr.output.String(), "Username: asfar") {
			t.Errorf("output = %q", tr.output.String())
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	t.Run("Require A Session", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())

		err := tr.run(t, "favorites", "list")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("List Prints Favorites", func(t *testing.T) {
		tr := newTestRunner(t, catalogHandler())
		tr.signIn(t, models.RoleUser)

		if err := tr.run(t, "favorites", "list"); err != nil {
			t.Fatalf("favorites list failed: %v", err)
		}
		if !strings.Contains(tr.output.String(), "2 favorites") {
			t.Errorf("output = %q", tr.output.String())
		}
	})
}

func TestAdminCommands(t *testing.T) {
	t.Run("Gated On The Admin Role", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())
		tr.signIn(t, models.RoleUser)

		err := tr.run(t, "admin", "delete", "--yes", "s1")
		if !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Delete Hits The API And Reports", func(t *testing.T) {
		deleted := false
		mux := http.NewServeMux()
		mux.HandleFunc("/songs/s1", func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodDelete {
				deleted = true
			}
			w.WriteHeader(http.StatusNoContent)
		})
		tr := newTestRunner(t, mux)
		tr.signIn(t, models.RoleAdmin)

		if err := tr.run(t, "admin", "delete", "--yes", "s1"); err != nil {
			t.Fatalf("admin delete failed: %v", err)
		}
		if !deleted {
			t.Error("DELETE never reached the server")
		}
		if !strings.Contains(tr.output.String(), "✓ Deleted s1") {
			t.Errorf("output = %q", tr.output.String())
		}
	})

	t.Run("Delete Prompt Declined Aborts", func(t *testing.T) {
		tr := newTestRunner(t, http.NewServeMux())
		tr.signIn(t, models.RoleAdmin)
		tr.runner.input = strings.NewReader("n\n")

		err := tr.run(t, "admin", "delete", "s1")
		if !errors.Is(err, shared.ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", err)
		}
	})
}

func TestExportCoverURL(t *testing.T) {
	songs := []models.Song{
		{ID: "s1", Title: "No Cover"},
		{ID: "s2", Title: "Covered", ImageURL: "http://img/cover.jpg"},
	}

	if got := exportCoverURL(songs); got != "http://img/cover.jpg" {
		t.Errorf("exportCoverURL() = %q, want the first image in the list", got)
	}
	if got := exportCoverURL(songs[:1]); got != "" {
		t.Errorf("exportCoverURL() = %q for songs without images, want empty", got)
	}
	if got := exportCoverURL(nil); got != "" {
		t.Errorf("exportCoverURL() = %q for an empty export, want empty", got)
	}
}

func TestDownloadFilename(t *testing.T) {
	tc := []struct {
		name string
		song models.Song
		want string
	}{
		{"Plain", models.Song{Title: "Midnight Rain", Artist: "Aurora Skies"}, "Midnight Rain - Aurora Skies.mp3"},
		{"Strips Separators", models.Song{Title: "A/B", Artist: `C\D`}, "A-B - C-D.mp3"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := downloadFilename(&tt.song); got != tt.want {
				t.Errorf("downloadFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
