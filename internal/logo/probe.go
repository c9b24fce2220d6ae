package logo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProbeOptions configures logo existence checks.
type ProbeOptions struct {
	Timeout       time.Duration // hard per-probe timeout
	MinImageBytes int           // rejects blank/placeholder assets
}

// Prober validates candidate logo URLs. A URL passes when the response
// carries an image content type and at least MinImageBytes of body.
// Verdicts are cached by URL for the duration of the run so a URL probed for
// several brands costs one round-trip.
type Prober struct {
	client *http.Client
	opts   ProbeOptions

	mu    sync.Mutex
	cache map[string]bool
}

// NewProber creates a prober with its own HTTP client.
func NewProber(opts ProbeOptions) *Prober {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MinImageBytes <= 0 {
		opts.MinImageBytes = 200
	}
	return &Prober{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		opts:  opts,
		cache: make(map[string]bool),
	}
}

// Valid probes url with the given method (HEAD for a plain existence check,
// GET when the source requires a real request) and reports whether it serves
// an acceptable image. Failures and timeouts mean "source unavailable",
// never an error.
func (p *Prober) Valid(ctx context.Context, rawURL, method string) bool {
	p.mu.Lock()
	if verdict, ok := p.cache[rawURL]; ok {
		p.mu.Unlock()
		return verdict
	}
	p.mu.Unlock()

	verdict := p.probe(ctx, rawURL, method)

	p.mu.Lock()
	p.cache[rawURL] = verdict
	p.mu.Unlock()
	return verdict
}

func (p *Prober) probe(ctx context.Context, rawURL, method string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		zap.L().Debug("logo: probe failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return false
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return false
	}

	// A declared length settles the size check without reading the body.
	if resp.ContentLength >= 0 {
		return resp.ContentLength >= int64(p.opts.MinImageBytes)
	}

	// No Content-Length: read just enough body to clear the threshold.
	n, _ := io.Copy(io.Discard, io.LimitReader(resp.Body, int64(p.opts.MinImageBytes)))
	return n >= int64(p.opts.MinImageBytes)
}
