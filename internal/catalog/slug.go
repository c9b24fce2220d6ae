package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashRuns = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a display name to its URL-safe slug form.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", "and")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return slugDashRuns.ReplaceAllString(s, "-")
}

// AssignSlugs gives every brand a unique slug within the market. When two
// different domains produce the same name-derived candidate, all of them
// switch to a name+country candidate; any duplicates still left get a
// numeric suffix per repeat, in input order.
func AssignSlugs(brands []model.Brand) {
	candidates := make([]string, len(brands))
	domainsPerSlug := make(map[string]map[string]bool)

	for i := range brands {
		c := Slugify(brands[i].Name)
		candidates[i] = c
		if domainsPerSlug[c] == nil {
			domainsPerSlug[c] = make(map[string]bool)
		}
		domainsPerSlug[c][brands[i].Domain] = true
	}

	for i := range brands {
		if len(domainsPerSlug[candidates[i]]) > 1 {
			candidates[i] = Slugify(brands[i].Name + " " + brands[i].Country)
		}
	}

	seen := make(map[string]int)
	for i := range brands {
		c := candidates[i]
		seen[c]++
		if seen[c] > 1 {
			c = fmt.Sprintf("%s-%d", c, seen[c])
		}
		brands[i].Slug = c
	}
}
