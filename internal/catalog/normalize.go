package catalog

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// maxCleanupPasses caps the name-cleanup fixed point so a future rule set
// cannot oscillate forever.
const maxCleanupPasses = 10

// regionAlt matches country/region annotations that feeds append to names.
const regionAlt = `usa?|uk|gb|de|at|ch|fr|it|es|pt|nl|be|ca|au|nz|se|no|dk|fi|pl|ie|mx|br|jp|eu|emea|latam|apac|global|worldwide`

var (
	leadingPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:aff(?:iliate)?|partner|program|cpa|cps|api|aw|cj)[\s:_\-]+`),
		regexp.MustCompile(`(?i)^\[[^\]]*\]\s*`),
	}

	// Order matters: stripping one suffix can expose the next underneath,
	// so the list is applied in a stable order every pass.
	trailingNoise = []*regexp.Regexp{
		// Bracketed region lists: "(US)", "(DE, AT, CH)".
		regexp.MustCompile(`(?i)\s*\(\s*(?:` + regionAlt + `)(?:\s*[,/&+]\s*(?:` + regionAlt + `))*\s*\)$`),
		// Bare region lists: "US", "US, CA", "DE/AT/CH".
		regexp.MustCompile(`(?i)[\s,\-|]+(?:` + regionAlt + `)(?:\s*[,/&+]\s*(?:` + regionAlt + `))*$`),
		// Affiliate model suffixes: "CPA", "CPS", "Rev Share".
		regexp.MustCompile(`(?i)[\s\-|]+(?:cpa|cps|cpl|cpc|cpo|rev\s*share|revshare|pay\s*per\s*sale)$`),
		// Reporting latency annotations: "(30 days)", "- 7 day delay".
		regexp.MustCompile(`(?i)\s*\(\s*\d+\s*days?(?:\s+delay)?\s*\)$`),
		regexp.MustCompile(`(?i)[\s\-|]+\d+\s*days?\s+(?:delay|reporting|cookie)$`),
		// Dangling separators and punctuation.
		regexp.MustCompile(`[\s\-_|,;:.]+$`),
	}

	underscoreRuns = regexp.MustCompile(`_+`)
	spaceRuns      = regexp.MustCompile(`\s{2,}`)

	bareDomain = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9.\-]*\.[a-z]{2,6}$`)
	tldSuffix  = regexp.MustCompile(`(?i)(\.[a-z]{2,6})+$`)

	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	tagPunct      = regexp.MustCompile(`[^\pL\pN\s]+`)
)

var titleCaser = cases.Title(language.English)

// tagStopWords are dropped during tag derivation.
var tagStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "from": true,
	"your": true, "our": true, "all": true, "more": true, "other": true,
	"misc": true, "general": true, "online": true, "shop": true, "store": true,
}

// NormalizeRecord maps one surviving raw feed record into a canonical Brand.
func NormalizeRecord(raw model.RawFeedRecord) model.Brand {
	domain := NormalizeDomain(raw.Domain)
	name := CleanName(raw.Name)
	if looksLikeDomain(name) {
		name = HumanizeDomain(name)
	}
	if name == "" {
		name = strings.TrimSpace(raw.Name)
	}

	return model.Brand{
		ID:              raw.FeedName + "-" + raw.ExternalID,
		Name:            name,
		Domain:          domain,
		Categories:      append([]string(nil), raw.Categories...),
		Tags:            DeriveTags(raw.Categories),
		Country:         strings.ToLower(strings.TrimSpace(raw.Country)),
		AffiliateURL:    raw.TrackingURL,
		DeepLink:        raw.DeepLink,
		Commission:      raw.Commission,
		CommissionValue: raw.CommissionValue,
		EPC:             raw.EPC,
		Logo:            model.Logo{URL: raw.LogoURL},
		Quality:         model.BrandQualityGood,
		FeedName:        raw.FeedName,
		FeedPriority:    raw.FeedPriority,
	}
}

// CleanName strips feed noise from a raw listing name. It is a bounded
// fixed-point loop: one pass applies every rule in a stable order, and the
// loop stops when a pass changes nothing.
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	for pass := 0; pass < maxCleanupPasses; pass++ {
		prev := name
		for _, re := range leadingPrefixes {
			name = re.ReplaceAllString(name, "")
		}
		for _, re := range trailingNoise {
			name = re.ReplaceAllString(name, "")
		}
		name = underscoreRuns.ReplaceAllString(name, " ")
		name = spaceRuns.ReplaceAllString(name, " ")
		name = strings.TrimSpace(name)
		if name == prev {
			break
		}
	}
	return name
}

// NormalizeDomain lower-cases a home URL or bare domain and strips the
// www./shop. storefront prefixes.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	host := s
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		host = u.Host
	} else if u, err := url.Parse("https://" + s); err == nil && u.Host != "" {
		host = u.Host
	} else {
		// Best-effort string parsing.
		host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
		if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
			host = host[:idx]
		}
	}

	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "shop.")
	return host
}

// looksLikeDomain reports whether a cleaned name is still a bare domain:
// no spaces, ends in a TLD pattern.
func looksLikeDomain(name string) bool {
	return name != "" && !strings.Contains(name, " ") && bareDomain.MatchString(name)
}

// HumanizeDomain turns "super-shoes.co.uk" into "Super Shoes" and
// "beautyBay.com" into "Beauty Bay".
func HumanizeDomain(domain string) string {
	base := tldSuffix.ReplaceAllString(domain, "")
	base = camelBoundary.ReplaceAllString(base, "$1 $2")
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, tok := range tokens {
		tokens[i] = titleCaser.String(strings.ToLower(tok))
	}
	return strings.Join(tokens, " ")
}

// DeriveTags lowers category strings into a deduplicated token set:
// punctuation stripped, whitespace split, stop-words and short tokens dropped.
func DeriveTags(categories []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, cat := range categories {
		cleaned := tagPunct.ReplaceAllString(strings.ToLower(cat), " ")
		for _, tok := range strings.Fields(cleaned) {
			if len(tok) < 3 || tagStopWords[tok] || seen[tok] {
				continue
			}
			seen[tok] = true
			tags = append(tags, tok)
		}
	}
	sort.Strings(tags)
	return tags
}
