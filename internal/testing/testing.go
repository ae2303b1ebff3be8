// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/justmusik/jmk/internal/models"
)

// MockStorage is an in-memory test double for the session storage port.
type MockStorage struct {
	mu      sync.Mutex
	Token   string
	User    *models.User
	LoadErr error
	SaveErr error
	Clears  int
}

func (m *MockStorage) Load() (string, *models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return "", nil, m.LoadErr
	}
	return m.Token, m.User, nil
}

func (m *MockStorage) Save(token string, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Token = token
	m.User = user
	return nil
}

func (m *MockStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = ""
	m.User = nil
	m.Clears++
	return nil
}

// MockBackend records playback transport calls for assertions.
type MockBackend struct {
	mu      sync.Mutex
	Loaded  []string
	Plays   int
	Pauses  int
	Seeks   []float64
	Volumes []float64
	Closed  bool
	LoadErr error
	PlayErr error
}

func (b *MockBackend) Load(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return b.LoadErr
	}
	b.Loaded = append(b.Loaded, url)
	return nil
}

func (b *MockBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PlayErr != nil {
		return b.PlayErr
	}
	b.Plays++
	return nil
}

func (b *MockBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Pauses++
	return nil
}

func (b *MockBackend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Seeks = append(b.Seeks, seconds)
	return nil
}

func (b *MockBackend) SetVolume(v float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Volumes = append(b.Volumes, v)
	return nil
}

func (b *MockBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SampleSongs returns a small fixed catalog for list and pipeline tests.
func SampleSongs() []models.Song {
	return []models.Song{
		{ID: "s1", Title: "Midnight Rain", Artist: "Aurora Skies", Album: "Nocturne", Genre: "Pop", Duration: 215},
		{ID: "s2", Title: "Harbor Lights", Artist: "Ben Calder", Album: "Tides", Genre: "Folk", Duration: 184},
		{ID: "s3", Title: "Static Bloom", Artist: "Circuit Garden", Genre: "Electronic", Duration: 302},
		{ID: "s4", Title: "Afternoon Gold", Artist: "Aurora Skies", Album: "Nocturne", Genre: "Pop", Duration: 198},
		{ID: "s5", Title: "Cedar and Smoke", Artist: "Ben Calder", Genre: "Folk", Duration: 241},
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

// DrainBody reads and closes an HTTP response body, failing the test on error.
func DrainBody(t *testing.T, body io.ReadCloser) string {
	t.Helper()
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return string(data)
}
