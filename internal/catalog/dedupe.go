package catalog

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/logo"
	"github.com/photon-dotcom/brandswitch/internal/model"
)

// DedupPolicy carries the dedup ranking signals. Which signal should win a
// within-market conflict is a business decision, so it stays configurable;
// the defaults reproduce the historical behavior.
type DedupPolicy struct {
	// WithinMarketKeys rank same-domain brands inside one market. Known keys:
	// "commission" (value, descending), "epc" (descending), "logo" (presence,
	// descending), "name_length" (ascending), "priority" (feed priority,
	// ascending).
	WithinMarketKeys []string
}

// DefaultDedupPolicy returns the historical tie-break order.
func DefaultDedupPolicy() DedupPolicy {
	return DedupPolicy{WithinMarketKeys: []string{"commission", "logo", "name_length"}}
}

// DedupCrossFeed resolves brands that the same advertiser published through
// multiple feeds, keyed by (domain, country). The record from the
// lowest-priority-number feed wins its core fields; categories are unioned
// across the group, the display name is the best across the group, and a real
// logo is rescued from any member when the winner lacks one. Returns the
// surviving brands and the number of resolved conflicts.
func DedupCrossFeed(brands []model.Brand) ([]model.Brand, int) {
	type groupKey struct{ domain, country string }
	groups := make(map[groupKey][]model.Brand)
	var order []groupKey

	for _, b := range brands {
		k := groupKey{b.Domain, b.Country}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], b)
	}

	out := make([]model.Brand, 0, len(order))
	conflicts := 0
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 || k.domain == "" {
			out = append(out, group...)
			continue
		}
		conflicts++

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].FeedPriority < group[j].FeedPriority
		})
		winner := group[0]

		winner.Categories = mergeCategories(group)
		winner.Tags = DeriveTags(winner.Categories)
		winner.Name = bestName(names(group))

		if winner.Logo.URL == "" || logo.IsGenericURL(winner.Logo.URL) {
			for _, member := range group[1:] {
				if member.Logo.URL != "" && !logo.IsGenericURL(member.Logo.URL) {
					winner.Logo.URL = member.Logo.URL
					break
				}
			}
		}

		out = append(out, winner)
	}

	zap.L().Info("dedup: cross-feed resolved",
		zap.Int("in", len(brands)),
		zap.Int("out", len(out)),
		zap.Int("conflicts", conflicts),
	)
	return out, conflicts
}

// DedupWithinMarket merges brands sharing a domain inside one market. The
// policy's ranked keys pick the winner; categories are unioned and the best
// display name across the group is kept.
func DedupWithinMarket(brands []model.Brand, policy DedupPolicy) ([]model.Brand, int) {
	if len(policy.WithinMarketKeys) == 0 {
		policy = DefaultDedupPolicy()
	}

	groups := make(map[string][]model.Brand)
	var order []string
	for _, b := range brands {
		if _, ok := groups[b.Domain]; !ok {
			order = append(order, b.Domain)
		}
		groups[b.Domain] = append(groups[b.Domain], b)
	}

	out := make([]model.Brand, 0, len(order))
	merged := 0
	for _, domain := range order {
		group := groups[domain]
		if len(group) == 1 || domain == "" {
			out = append(out, group...)
			continue
		}
		merged += len(group) - 1

		sort.SliceStable(group, func(i, j int) bool {
			return lessByPolicy(group[i], group[j], policy.WithinMarketKeys)
		})
		winner := group[0]
		winner.Categories = mergeCategories(group)
		winner.Tags = DeriveTags(winner.Categories)
		winner.Name = bestName(names(group))

		out = append(out, winner)
	}

	zap.L().Info("dedup: within-market merged",
		zap.Int("in", len(brands)),
		zap.Int("out", len(out)),
		zap.Int("merged_away", merged),
	)
	return out, merged
}

func lessByPolicy(a, b model.Brand, keys []string) bool {
	for _, key := range keys {
		switch key {
		case "commission":
			if a.CommissionValue != b.CommissionValue {
				return a.CommissionValue > b.CommissionValue
			}
		case "epc":
			if a.EPC != b.EPC {
				return a.EPC > b.EPC
			}
		case "logo":
			al, bl := a.Logo.URL != "", b.Logo.URL != ""
			if al != bl {
				return al
			}
		case "name_length":
			if len(a.Name) != len(b.Name) {
				return len(a.Name) < len(b.Name)
			}
		case "priority":
			if a.FeedPriority != b.FeedPriority {
				return a.FeedPriority < b.FeedPriority
			}
		}
	}
	return false
}

// mergeCategories unions every member's categories, keeping first-seen order.
func mergeCategories(group []model.Brand) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range group {
		for _, c := range b.Categories {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func names(group []model.Brand) []string {
	out := make([]string, len(group))
	for i, b := range group {
		out[i] = b.Name
	}
	return out
}

// bestName picks the preferred display name: non-ALL-CAPS beats ALL-CAPS,
// intentional internal mixed case beats plain, then shorter beats longer.
func bestName(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if preferName(c, best) {
			best = c
		}
	}
	return best
}

// preferName reports whether a should replace b.
func preferName(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	aCaps, bCaps := isAllCaps(a), isAllCaps(b)
	if aCaps != bCaps {
		return !aCaps
	}
	aMixed, bMixed := hasInternalMixedCase(a), hasInternalMixedCase(b)
	if aMixed != bMixed {
		return aMixed
	}
	return len(a) < len(b)
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// hasInternalMixedCase detects names like "eBay" or "YouTube": an uppercase
// letter somewhere past the first rune, with lowercase present too.
func hasInternalMixedCase(s string) bool {
	if isAllCaps(s) {
		return false
	}
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && !startsNewWord(s, i) {
			return strings.ContainsFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' })
		}
	}
	return false
}

// startsNewWord reports whether the byte index follows a space or separator,
// so ordinary title case ("Beauty Bay") does not count as internal mixed case.
func startsNewWord(s string, i int) bool {
	if i == 0 {
		return true
	}
	prev := s[i-1]
	return prev == ' ' || prev == '-' || prev == '.' || prev == '\'' || prev == '&'
}
