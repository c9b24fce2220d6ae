package logo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
)

type memStore struct {
	logos   map[string]store.LogoEntry
	classes map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		logos:   make(map[string]store.LogoEntry),
		classes: make(map[string]string),
	}
}

func (m *memStore) GetLogo(ctx context.Context, domain string) (*store.LogoEntry, error) {
	if e, ok := m.logos[domain]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *memStore) PutLogo(ctx context.Context, domain string, entry store.LogoEntry) error {
	m.logos[domain] = entry
	return nil
}

func (m *memStore) GetClassifications(ctx context.Context, domains []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, d := range domains {
		if c, ok := m.classes[d]; ok {
			out[d] = c
		}
	}
	return out, nil
}

func (m *memStore) PutClassifications(ctx context.Context, classes map[string]string) error {
	for d, c := range classes {
		m.classes[d] = c
	}
	return nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

func logoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/good/") {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(strings.Repeat("x", 400)))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testCascade(srv *httptest.Server) []Spec {
	return []Spec{
		{
			Name:    "primary",
			Quality: model.LogoQualityHigh,
			Method:  http.MethodHead,
			Candidates: func(b model.Brand) []string {
				if b.Logo.URL == "" {
					return nil
				}
				return []string{b.Logo.URL}
			},
		},
		{
			Name:    "secondary",
			Quality: model.LogoQualityLow,
			Method:  http.MethodHead,
			Stable:  true,
			Candidates: func(b model.Brand) []string {
				return []string{srv.URL + "/good/" + b.Domain}
			},
		},
	}
}

func newTestResolver(srv *httptest.Server, cache store.Store) *Resolver {
	return NewResolver(
		NewProber(ProbeOptions{Timeout: 2 * time.Second, MinImageBytes: 200}),
		testCascade(srv),
		cache,
		ResolverOptions{BatchSize: 4},
	)
}

func TestResolveAll_CascadeFallthrough(t *testing.T) {
	srv := logoServer(t)
	r := newTestResolver(srv, nil)

	brands := []model.Brand{
		{Domain: "direct.com", Logo: model.Logo{URL: srv.URL + "/good/direct.png"}},
		{Domain: "fallthrough.com", Logo: model.Logo{URL: srv.URL + "/missing.png"}},
	}

	r.ResolveAll(context.Background(), brands)

	assert.Equal(t, "primary", brands[0].Logo.Source)
	assert.Equal(t, model.LogoQualityHigh, brands[0].Logo.Quality)

	assert.Equal(t, "secondary", brands[1].Logo.Source)
	assert.Equal(t, model.LogoQualityLow, brands[1].Logo.Quality)
	assert.Equal(t, srv.URL+"/good/fallthrough.com", brands[1].Logo.URL)
}

func TestResolveAll_ExhaustedCascade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := newTestResolver(srv, nil)
	brands := []model.Brand{{Domain: "nowhere.com"}}

	r.ResolveAll(context.Background(), brands)

	assert.Equal(t, model.LogoQualityNone, brands[0].Logo.Quality)
	assert.Equal(t, SourceNone, brands[0].Logo.Source)
	assert.Empty(t, brands[0].Logo.URL)
}

func TestResolveAll_StableCacheReused(t *testing.T) {
	srv := logoServer(t)
	cache := newMemStore()
	cache.logos["cached.com"] = store.LogoEntry{
		URL:     "https://cdn.brandlens.io/cached.com/icon.png",
		Quality: model.LogoQualityHigh,
		Source:  SourceBrandLens,
	}
	// Unstable sources are re-resolved, not reused.
	cache.logos["stale.com"] = store.LogoEntry{
		URL:     "https://old.example/logo.png",
		Quality: model.LogoQualityHigh,
		Source:  "primary",
	}

	r := newTestResolver(srv, cache)
	brands := []model.Brand{
		{Domain: "cached.com"},
		{Domain: "stale.com"},
	}

	r.ResolveAll(context.Background(), brands)

	assert.Equal(t, SourceBrandLens, brands[0].Logo.Source)
	assert.Equal(t, "https://cdn.brandlens.io/cached.com/icon.png", brands[0].Logo.URL)

	assert.Equal(t, "secondary", brands[1].Logo.Source)
}

func TestResolveAll_WritesCacheAfterBatch(t *testing.T) {
	srv := logoServer(t)
	cache := newMemStore()
	r := newTestResolver(srv, cache)

	brands := []model.Brand{{Domain: "acme.com"}}
	r.ResolveAll(context.Background(), brands)

	entry := cache.logos["acme.com"]
	assert.Equal(t, "secondary", entry.Source)
	assert.Equal(t, srv.URL+"/good/acme.com", entry.URL)
}

func TestResolveAll_SkipsAlreadyResolved(t *testing.T) {
	srv := logoServer(t)
	r := newTestResolver(srv, nil)

	brands := []model.Brand{
		{Domain: "done.com", Logo: model.Logo{URL: "https://keep.example/x.png", Quality: model.LogoQualityHigh, Source: "primary"}},
	}
	r.ResolveAll(context.Background(), brands)

	assert.Equal(t, "https://keep.example/x.png", brands[0].Logo.URL)
}
