package model

// FeedConfig describes one affiliate-network feed.
type FeedConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Priority int    `yaml:"priority" mapstructure:"priority"` // lower wins cross-feed conflicts
}

// RawFeedRecord is one listing exactly as a feed returned it, tagged with the
// originating feed once fetched. Never mutated after fetch.
type RawFeedRecord struct {
	ExternalID      string   `json:"external_id"`
	Name            string   `json:"name"`
	Country         string   `json:"country"`
	Domain          string   `json:"domain"`
	TrackingURL     string   `json:"tracking_url"`
	LogoURL         string   `json:"logo_url,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Commission      string   `json:"commission,omitempty"`
	CommissionValue float64  `json:"commission_value,omitempty"`
	EPC             float64  `json:"epc,omitempty"`
	DeepLink        bool     `json:"deep_link"`

	FeedName     string `json:"feed_name"`
	FeedPriority int    `json:"feed_priority"`
}

// Key identifies a record within the accumulated raw set.
func (r RawFeedRecord) Key() string {
	return r.FeedName + ":" + r.ExternalID
}

// LogoQuality grades a resolved logo by the source that satisfied it.
type LogoQuality string

const (
	LogoQualityHigh LogoQuality = "high"
	LogoQualityLow  LogoQuality = "low"
	LogoQualityNone LogoQuality = "none"
)

// Logo holds the resolved logo for a brand.
type Logo struct {
	URL           string      `json:"url,omitempty"`
	Quality       LogoQuality `json:"quality,omitempty"`
	Source        string      `json:"source,omitempty"`
	InheritedFrom string      `json:"inherited_from,omitempty"`
}

// BrandQuality is the internal good/suspect flag set by the junk detector.
// It steers filtering only and is stripped from every output artifact.
type BrandQuality string

const (
	BrandQualityGood    BrandQuality = "good"
	BrandQualitySuspect BrandQuality = "suspect"
)

// Brand is the canonical catalog entity. Created once per normalized record,
// then mutated in place through dedup, enrichment and similarity stages.
type Brand struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Domain          string   `json:"domain"`
	Description     string   `json:"description,omitempty"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags,omitempty"`
	Country         string   `json:"country"`
	AffiliateURL    string   `json:"affiliate_url"`
	DeepLink        bool     `json:"deep_link"`
	Commission      string   `json:"commission,omitempty"`
	CommissionValue float64  `json:"commission_value,omitempty"`
	EPC             float64  `json:"epc,omitempty"`
	SimilarBrands   []string `json:"similar_brands,omitempty"`
	Logo            Logo     `json:"logo"`

	Quality      BrandQuality `json:"-"`
	FeedName     string       `json:"-"`
	FeedPriority int          `json:"-"`
}

// PrimaryCategory returns the first category, or empty when none is set.
func (b Brand) PrimaryCategory() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return b.Categories[0]
}

// SearchIndexEntry is the lightweight per-brand record served to the
// autocomplete frontend.
type SearchIndexEntry struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Domain      string      `json:"domain"`
	LogoURL     string      `json:"logo_url,omitempty"`
	LogoQuality LogoQuality `json:"logo_quality,omitempty"`
	Category    string      `json:"category,omitempty"`
	EPC         float64     `json:"epc,omitempty"`
}

// CategorySummary aggregates one category within a market.
type CategorySummary struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}
