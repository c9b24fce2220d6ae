package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/resilience"
)

// Page is one fetched page of feed records, already tagged with the
// originating feed's name and priority.
type Page struct {
	TotalPages   int
	TotalRecords int
	Records      []model.RawFeedRecord
}

// pageEnvelope is the fixed wire schema shared by all feeds.
type pageEnvelope struct {
	Status       int          `json:"status"`
	Message      string       `json:"message,omitempty"`
	TotalPages   int          `json:"total_pages"`
	TotalRecords int          `json:"total_records"`
	Results      []wireRecord `json:"results"`
}

type wireRecord struct {
	AdvertiserID    string   `json:"advertiser_id"`
	AdvertiserName  string   `json:"advertiser_name"`
	Country         string   `json:"country"`
	Domain          string   `json:"domain"`
	TrackingURL     string   `json:"tracking_url"`
	LogoURL         string   `json:"logo_url"`
	Categories      []string `json:"categories"`
	Commission      string   `json:"commission"`
	CommissionValue float64  `json:"commission_value"`
	EPC             float64  `json:"epc"`
	DeepLink        bool     `json:"deep_link"`
}

// ClientOptions configures the feed HTTP client.
type ClientOptions struct {
	PageSize int
	Timeout  time.Duration
	Retry    resilience.RetryConfig
}

// Client fetches single pages from feed endpoints. Pure I/O: pagination and
// resumption live in the Orchestrator.
type Client struct {
	http     *http.Client
	opts     ClientOptions
	limiters map[string]*rate.Limiter // per host
}

// NewClient creates a feed client.
func NewClient(opts ClientOptions) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(5, 5)
	}
	if lim, ok := c.limiters[u.Host]; ok {
		return lim
	}
	lim := rate.NewLimiter(5, 5)
	c.limiters[u.Host] = lim
	return lim
}

// FetchPage fetches one page of records from a feed. A feed reporting no data
// returns an empty page with TotalPages 0, which the caller treats as a
// zero-page success.
func (c *Client) FetchPage(ctx context.Context, feed model.FeedConfig, page int) (*Page, error) {
	return resilience.Do(ctx, c.opts.Retry, func(ctx context.Context) (*Page, error) {
		return c.fetchOnce(ctx, feed, page)
	})
}

func (c *Client) fetchOnce(ctx context.Context, feed model.FeedConfig, page int) (*Page, error) {
	if err := c.limiterFor(feed.BaseURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "feed: rate limiter wait")
	}

	reqURL, err := pageURL(feed.BaseURL, page, c.opts.PageSize)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "feed: create request")
	}
	// Feeds expect the bare credential, no scheme prefix.
	req.Header.Set("Authorization", feed.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "feed: %s page %d", feed.Name, page)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, eris.Errorf("feed: %s page %d: http %d", feed.Name, page, resp.StatusCode)
	}

	var env pageEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, eris.Wrapf(err, "feed: %s page %d: decode", feed.Name, page)
	}

	// "No data" is a valid zero-page answer, not an error.
	if env.Status != http.StatusOK && len(env.Results) == 0 {
		zap.L().Info("feed: no data reported",
			zap.String("feed", feed.Name),
			zap.Int("status", env.Status),
			zap.String("message", env.Message),
		)
		return &Page{}, nil
	}
	if env.Status != http.StatusOK {
		return nil, eris.Errorf("feed: %s page %d: api status %d (%s)", feed.Name, page, env.Status, env.Message)
	}

	out := &Page{
		TotalPages:   env.TotalPages,
		TotalRecords: env.TotalRecords,
		Records:      make([]model.RawFeedRecord, 0, len(env.Results)),
	}
	for _, w := range env.Results {
		out.Records = append(out.Records, model.RawFeedRecord{
			ExternalID:      w.AdvertiserID,
			Name:            w.AdvertiserName,
			Country:         w.Country,
			Domain:          w.Domain,
			TrackingURL:     w.TrackingURL,
			LogoURL:         w.LogoURL,
			Categories:      w.Categories,
			Commission:      w.Commission,
			CommissionValue: w.CommissionValue,
			EPC:             w.EPC,
			DeepLink:        w.DeepLink,
			FeedName:        feed.Name,
			FeedPriority:    feed.Priority,
		})
	}
	return out, nil
}

func pageURL(base string, page, pageSize int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", eris.Wrapf(err, "feed: parse base url %s", base)
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("page_size", fmt.Sprintf("%d", pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
