package catalog

import (
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// PartitionMarkets splits brands by normalized country into the configured
// target markets. Brands from out-of-scope countries are dropped and counted.
func PartitionMarkets(brands []model.Brand, markets []string) map[string][]model.Brand {
	target := make(map[string]bool, len(markets))
	for _, m := range markets {
		target[m] = true
	}

	out := make(map[string][]model.Brand, len(markets))
	for _, m := range markets {
		out[m] = nil
	}

	dropped := 0
	for _, b := range brands {
		if !target[b.Country] {
			dropped++
			continue
		}
		out[b.Country] = append(out[b.Country], b)
	}

	zap.L().Info("market: partitioned",
		zap.Int("markets", len(markets)),
		zap.Int("dropped_out_of_scope", dropped),
	)
	return out
}
