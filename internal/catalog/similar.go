package catalog

import (
	"sort"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

const (
	categoryWeight = 3
	tagWeight      = 1
	maxSimilar     = 15
)

// BuildSimilarity fills SimilarBrands for every brand in the market: weight 3
// per shared category, plus weight 1 per shared tag among the brands that
// already share a category (tag overlap is not scored against the full set).
// Candidates sharing the subject's exact domain are excluded; only slugs are
// stored so the output graph carries no cycles. Returns the number of
// same-domain self references filtered.
func BuildSimilarity(brands []model.Brand) int {
	byCategory := make(map[string][]int)
	for i := range brands {
		for _, c := range brands[i].Categories {
			byCategory[c] = append(byCategory[c], i)
		}
	}

	selfFiltered := 0
	for i := range brands {
		scores := make(map[int]int)
		for _, c := range brands[i].Categories {
			for _, j := range byCategory[c] {
				if j != i {
					scores[j] += categoryWeight
				}
			}
		}
		if len(scores) == 0 {
			brands[i].SimilarBrands = nil
			continue
		}

		tags := make(map[string]bool, len(brands[i].Tags))
		for _, t := range brands[i].Tags {
			tags[t] = true
		}
		for j := range scores {
			for _, t := range brands[j].Tags {
				if tags[t] {
					scores[j] += tagWeight
				}
			}
		}

		candidates := make([]int, 0, len(scores))
		for j := range scores {
			candidates = append(candidates, j)
		}
		// Score descending, input order as the deterministic tie-break.
		sort.Slice(candidates, func(a, b int) bool {
			if scores[candidates[a]] != scores[candidates[b]] {
				return scores[candidates[a]] > scores[candidates[b]]
			}
			return candidates[a] < candidates[b]
		})

		var similar []string
		for _, j := range candidates {
			if len(similar) >= maxSimilar {
				break
			}
			if brands[j].Domain == brands[i].Domain {
				selfFiltered++
				continue
			}
			similar = append(similar, brands[j].Slug)
		}
		brands[i].SimilarBrands = similar
	}

	zap.L().Info("similarity: graph built",
		zap.Int("brands", len(brands)),
		zap.Int("self_references_filtered", selfFiltered),
	)
	return selfFiltered
}
