package logo

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// Source provenance names, stored with every resolved logo.
const (
	SourceFeedImage = "feed_image"
	SourceBrandLens = "brandlens"
	SourceIconGrab  = "icongrab"
	SourcePaid      = "logokit"
	SourceFallback  = "fallback"
	SourceFavicon   = "favicon"
	SourceInherited = "inherited"
	SourceNone      = "none"
)

const (
	fallbackLogoHost = "logo.clearbit.com"
	faviconHost      = "www.google.com"
)

// subBrandSuffixes mark product-line domains that should inherit the parent
// brand's logo: "nikeoutlet.com" belongs to "nike.com".
var subBrandSuffixes = []string{"outlet", "store", "kids", "baby", "shop"}

// Spec declares one strategy in the cascade. Sources are tried in slice
// order; the first candidate URL that survives validation wins.
type Spec struct {
	Name    string
	Quality model.LogoQuality
	// Method is the probe HTTP method. The paid service bills per request
	// and only answers GET.
	Method string
	// Stable sources keep serving the same asset across runs, so a cached
	// result from them is reused without re-validation.
	Stable bool
	// RateLimited sources get a politeness delay before each probe.
	RateLimited bool
	// Candidates returns the URLs to try for a brand, in order.
	Candidates func(b model.Brand) []string
}

// Sources returns the cascade in strict priority order. paidKey enables the
// paid lookup service; when empty that tier is skipped.
func Sources(paidKey string) []Spec {
	specs := []Spec{
		{
			Name:    SourceFeedImage,
			Quality: model.LogoQualityHigh,
			Method:  http.MethodHead,
			Candidates: func(b model.Brand) []string {
				if b.Logo.URL == "" || IsGenericURL(b.Logo.URL) {
					return nil
				}
				return []string{b.Logo.URL}
			},
		},
		{
			Name:        SourceBrandLens,
			Quality:     model.LogoQualityHigh,
			Method:      http.MethodHead,
			Stable:      true,
			RateLimited: true,
			Candidates: func(b model.Brand) []string {
				if b.Domain == "" {
					return nil
				}
				return []string{fmt.Sprintf("https://cdn.brandlens.io/%s/icon.png", b.Domain)}
			},
		},
		{
			Name:        SourceIconGrab,
			Quality:     model.LogoQualityHigh,
			Method:      http.MethodHead,
			Stable:      true,
			RateLimited: true,
			Candidates: func(b model.Brand) []string {
				if b.Domain == "" {
					return nil
				}
				return []string{fmt.Sprintf("https://icons.icongrab.app/%s?size=256", b.Domain)}
			},
		},
	}

	if paidKey != "" {
		specs = append(specs, Spec{
			Name:    SourcePaid,
			Quality: model.LogoQualityHigh,
			Method:  http.MethodGet,
			Stable:  true,
			Candidates: func(b model.Brand) []string {
				if b.Domain == "" {
					return nil
				}
				return []string{fmt.Sprintf("https://img.logokit.com/%s?token=%s", b.Domain, paidKey)}
			},
		})
	}

	specs = append(specs,
		Spec{
			Name:    SourceFallback,
			Quality: model.LogoQualityHigh,
			Method:  http.MethodHead,
			Candidates: func(b model.Brand) []string {
				if b.Domain == "" {
					return nil
				}
				urls := []string{fallbackURL(b.Domain)}
				// Sub-brand domains retry the heuristic parent:
				// "nikeoutlet.com" falls back to "nike.com".
				if parent := ParentDomain(b.Domain); parent != "" {
					urls = append(urls, fallbackURL(parent))
				}
				return urls
			},
		},
		Spec{
			Name:    SourceFavicon,
			Quality: model.LogoQualityLow,
			Method:  http.MethodHead,
			Candidates: func(b model.Brand) []string {
				if b.Domain == "" {
					return nil
				}
				return []string{fmt.Sprintf("https://%s/s2/favicons?domain=%s&sz=128", faviconHost, b.Domain)}
			},
		},
	)

	return specs
}

func fallbackURL(domain string) string {
	return fmt.Sprintf("https://%s/%s", fallbackLogoHost, domain)
}

// IsGenericURL reports whether a logo URL points at the logo-by-domain
// fallback or favicon services rather than a real brand asset.
func IsGenericURL(rawURL string) bool {
	return strings.Contains(rawURL, fallbackLogoHost) ||
		strings.Contains(rawURL, "/s2/favicons")
}

// StableSource reports whether a provenance tag belongs to a stable source,
// whose cached result can be reused without re-validation on later runs.
func StableSource(source string) bool {
	switch source {
	case SourceBrandLens, SourceIconGrab, SourcePaid:
		return true
	}
	return false
}

// ParentDomain derives the parent of a sub-brand domain by stripping a known
// product-line suffix from the first label: "nikeoutlet.com" → "nike.com".
// Returns empty when no suffix matches or stripping would empty the label.
func ParentDomain(domain string) string {
	label, rest, ok := strings.Cut(domain, ".")
	if !ok {
		return ""
	}
	for _, suffix := range subBrandSuffixes {
		root := strings.TrimSuffix(label, suffix)
		if root != label && root != "" {
			return root + "." + rest
		}
	}
	return ""
}

// DomainRoot returns the first label of a domain with any product-line
// suffix removed. Both "nike.com" and "nikeoutlet.com" share the root "nike".
func DomainRoot(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	for _, suffix := range subBrandSuffixes {
		if root := strings.TrimSuffix(label, suffix); root != label && root != "" {
			return root
		}
	}
	return label
}
