// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/moodmusic/internal/models"
)

// MemoryStore is an in-memory credential store that counts writes.
type MemoryStore struct {
	mu      sync.Mutex
	creds   map[string]models.Credential
	Saves   int
	Clears  int
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]models.Credential)}
}

func storeKey(userID string, provider models.Provider) string {
	return userID + "/" + string(provider)
}

// Put seeds a credential without counting it as a save.
func (m *MemoryStore) Put(cred models.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[storeKey(cred.UserID, cred.Provider)] = cred
}

func (m *MemoryStore) Load(_ context.Context, userID string, provider models.Provider) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[storeKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, provider models.Provider, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	c := *cred
	c.UserID, c.Provider = userID, provider
	m.creds[storeKey(userID, provider)] = c
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID string, provider models.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clears++
	delete(m.creds, storeKey(userID, provider))
	return nil
}

// FakeCatalog returns scripted results per query and records every call.
type FakeCatalog struct {
	Provider models.Provider
	NeedAuth bool
	Results  map[string][]models.CatalogItem
	Errors   map[string]error
	Calls    []CatalogCall
	Releases []models.CatalogItem
}

// CatalogCall is one recorded [FakeCatalog.Search] invocation.
type CatalogCall struct {
	Token string
	Query string
	Kind  models.ItemKind
	Limit int
}

func (f *FakeCatalog) Source() models.Provider { return f.Provider }
func (f *FakeCatalog) AuthRequired() bool      { return f.NeedAuth }

func (f *FakeCatalog) Search(_ context.Context, token, query string, kind models.ItemKind, limit int) ([]models.CatalogItem, error) {
	f.Calls = append(f.Calls, CatalogCall{Token: token, Query: query, Kind: kind, Limit: limit})
	if err := f.Errors[query]; err != nil {
		return nil, err
	}
	items := f.Results[query]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *FakeCatalog) NewReleases(_ context.Context, token string, limit int) ([]models.CatalogItem, error) {
	f.Calls = append(f.Calls, CatalogCall{Token: token, Query: "new-releases", Kind: models.KindAlbum, Limit: limit})
	return f.Releases, nil
}

// Tracks builds catalog items with the given ids.
func Tracks(source models.Provider, ids ...string) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, len(ids))
	for _, id := range ids {
		item := models.CatalogItem{ID: id, Title: "Track " + id, Source: source, Kind: models.KindTrack}
		item.SetArtists([]string{"Artist " + id})
		items = append(items, item)
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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
