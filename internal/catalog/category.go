package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
)

// GenericCategory is the placeholder kept by brands no strategy could
// categorize. The category list invariant (never empty) rests on it.
const GenericCategory = "Other"

type categoryPattern struct {
	name string
	re   *regexp.Regexp
}

// categoryPatterns is the ordered keyword-inference rule set; the first
// pattern matching a brand's name+domain text wins.
var categoryPatterns = []categoryPattern{
	{"Fashion", regexp.MustCompile(`(?i)\b(?:fashion|cloth(?:es|ing)|apparel|dress(?:es)?|shoes?|sneakers?|boots?|jewel|watch(?:es)?|lingerie|accessor)`)},
	{"Beauty", regexp.MustCompile(`(?i)\b(?:beauty|cosmetic|makeup|skin\s?care|fragrance|perfume|haircare|grooming)`)},
	{"Electronics", regexp.MustCompile(`(?i)\b(?:electronic|gadget|computer|laptop|smartphone|tablet|camera|headphone|audio|drone)`)},
	{"Gaming", regexp.MustCompile(`(?i)\b(?:gaming|video\s?games?|console|playstation|xbox|nintendo|esports?)`)},
	{"Home & Garden", regexp.MustCompile(`(?i)\b(?:furniture|garden(?:ing)?|kitchen|decor|bedding|mattress|lighting|diy|home\s?(?:ware|improvement))`)},
	{"Travel", regexp.MustCompile(`(?i)\b(?:travel|hotels?|flights?|holidays?|vacations?|cruises?|airlines?|tours?)`)},
	{"Sports & Outdoors", regexp.MustCompile(`(?i)\b(?:sports?|fitness|gym|outdoor|cycling|bikes?|running|hiking|camping|ski)`)},
	{"Health", regexp.MustCompile(`(?i)\b(?:health|vitamins?|supplements?|pharmacy|wellness|medical|dental)`)},
	{"Food & Drink", regexp.MustCompile(`(?i)\b(?:food|grocery|snacks?|coffee|tea|wine|beer|spirits|restaurant|meal\s?kits?)`)},
	{"Toys & Kids", regexp.MustCompile(`(?i)\b(?:toys?|kids?|baby|children|nursery|puzzles?)`)},
	{"Pets", regexp.MustCompile(`(?i)\b(?:pets?|dog|cat|puppy|kitten|aquarium)`)},
	{"Finance", regexp.MustCompile(`(?i)\b(?:finance|insurance|loans?|credit|banking|invest(?:ing|ment)?|crypto|trading)`)},
	{"Software", regexp.MustCompile(`(?i)\b(?:software|saas|vpn|antivirus|hosting|cloud|apps?)`)},
	{"Books & Media", regexp.MustCompile(`(?i)\b(?:books?|ebooks?|audiobooks?|magazines?|music|movies?|streaming|courses?)`)},
	{"Automotive", regexp.MustCompile(`(?i)\b(?:automotive|cars?|tyres?|tires?|motorcycles?|vehicles?|scooters?)`)},
}

// ValidCategories returns the fixed classification vocabulary in rule order.
func ValidCategories() []string {
	out := make([]string, len(categoryPatterns))
	for i, p := range categoryPatterns {
		out[i] = p.name
	}
	return out
}

// HasRealCategory reports whether a brand carries any category beyond the
// generic placeholder.
func HasRealCategory(b model.Brand) bool {
	for _, c := range b.Categories {
		if c != "" && c != GenericCategory {
			return true
		}
	}
	return false
}

// setInferredCategory puts the inferred category first, keeping the generic
// label only as a secondary display fallback.
func setInferredCategory(b *model.Brand, category string) {
	cats := []string{category}
	for _, c := range b.Categories {
		if c != category && c != "" {
			cats = append(cats, c)
		}
	}
	b.Categories = cats
	b.Tags = DeriveTags(b.Categories)
}

// InferCategories is strategy 1: keyword inference over brand name + domain.
// Returns the number of brands categorized.
func InferCategories(brands []model.Brand) int {
	matched := 0
	for i := range brands {
		if HasRealCategory(brands[i]) {
			continue
		}
		text := brands[i].Name + " " + brands[i].Domain
		for _, p := range categoryPatterns {
			if p.re.MatchString(text) {
				setInferredCategory(&brands[i], p.name)
				matched++
				break
			}
		}
	}
	zap.L().Info("category: keyword inference", zap.Int("matched", matched))
	return matched
}

// InheritAcrossMarkets is strategy 2: a domain categorized in any other
// market donates its category to the uncategorized twin. Markets are scanned
// in sorted order so the donor choice is deterministic.
func InheritAcrossMarkets(byMarket map[string][]model.Brand) int {
	markets := make([]string, 0, len(byMarket))
	for m := range byMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	// domain → first real category seen, scanning markets in order.
	donors := make(map[string]string)
	for _, m := range markets {
		for _, b := range byMarket[m] {
			if b.Domain == "" || !HasRealCategory(b) {
				continue
			}
			if _, ok := donors[b.Domain]; !ok {
				donors[b.Domain] = b.PrimaryCategory()
			}
		}
	}

	inherited := 0
	for _, m := range markets {
		brands := byMarket[m]
		for i := range brands {
			if HasRealCategory(brands[i]) {
				continue
			}
			if cat, ok := donors[brands[i].Domain]; ok {
				setInferredCategory(&brands[i], cat)
				inherited++
			}
		}
	}

	zap.L().Info("category: cross-market inheritance", zap.Int("inherited", inherited))
	return inherited
}

// ApplyCachedClassifications is the lookup half of strategy 3: domains
// already answered by a previous paid pass are applied from the cache.
// It returns the uncategorized brands whose domains are absent from the
// cache, as candidates for a new classification batch.
func ApplyCachedClassifications(ctx context.Context, st store.Store, brands []model.Brand) ([]int, error) {
	valid := make(map[string]bool, len(categoryPatterns))
	for _, c := range ValidCategories() {
		valid[c] = true
	}

	var domains []string
	var pending []int
	for i := range brands {
		if HasRealCategory(brands[i]) || brands[i].Domain == "" {
			continue
		}
		domains = append(domains, brands[i].Domain)
		pending = append(pending, i)
	}
	if len(pending) == 0 || st == nil {
		return pending, nil
	}

	cached, err := st.GetClassifications(ctx, domains)
	if err != nil {
		return nil, err
	}

	applied := 0
	var missing []int
	for _, i := range pending {
		label, ok := cached[brands[i].Domain]
		if !ok {
			missing = append(missing, i)
			continue
		}
		if valid[label] {
			setInferredCategory(&brands[i], label)
			applied++
		}
		// unknown/junk sentinels stay uncategorized and are never resubmitted.
	}

	zap.L().Info("category: cache applied",
		zap.Int("applied", applied),
		zap.Int("missing", len(missing)),
	)
	return missing, nil
}

// EnsureCategories enforces the non-empty category invariant, giving the
// generic placeholder to anything still uncategorized. Returns those brands'
// positions for the uncategorized review file.
func EnsureCategories(brands []model.Brand) []int {
	var uncategorized []int
	for i := range brands {
		if len(brands[i].Categories) == 0 {
			brands[i].Categories = []string{GenericCategory}
		}
		if !HasRealCategory(brands[i]) {
			uncategorized = append(uncategorized, i)
		}
	}
	return uncategorized
}

// CategorySlug converts a category label to its URL slug form.
func CategorySlug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", "and")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return slugDashRuns.ReplaceAllString(s, "-")
}
