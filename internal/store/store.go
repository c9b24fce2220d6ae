package store

import (
	"context"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// LogoEntry is a resolved logo cached across runs, keyed by domain.
type LogoEntry struct {
	URL     string            `json:"url"`
	Quality model.LogoQuality `json:"quality"`
	Source  string            `json:"source"`
}

// Classification sentinels stored in the category cache alongside real
// category labels.
const (
	CategoryUnknown = "unknown"
	CategoryJunk    = "junk"
)

// Store is the persistence interface for the pipeline's cross-run caches:
// resolved logos and LLM category classifications, both keyed by domain.
type Store interface {
	// Logo cache
	GetLogo(ctx context.Context, domain string) (*LogoEntry, error)
	PutLogo(ctx context.Context, domain string, entry LogoEntry) error

	// Classification cache
	GetClassifications(ctx context.Context, domains []string) (map[string]string, error)
	PutClassifications(ctx context.Context, classes map[string]string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
