package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func TestDedupCrossFeed_LowestPriorityWins(t *testing.T) {
	brands := []model.Brand{
		{ID: "beta-1", Name: "NIKE", Domain: "nike.com", Country: "us", Categories: []string{"Shoes"}, FeedName: "beta", FeedPriority: 2},
		{ID: "alpha-1", Name: "Nike", Domain: "nike.com", Country: "us", Categories: []string{"Fashion"}, FeedName: "alpha", FeedPriority: 1,
			Logo: model.Logo{URL: "https://cdn.alpha.example/nike.png"}},
	}

	out, conflicts := DedupCrossFeed(brands)

	require.Len(t, out, 1)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, "alpha-1", out[0].ID)
	assert.Equal(t, "Nike", out[0].Name)
	// Union keeps the winner's categories first.
	assert.Equal(t, []string{"Fashion", "Shoes"}, out[0].Categories)
}

func TestDedupCrossFeed_LogoRescue(t *testing.T) {
	brands := []model.Brand{
		{ID: "alpha-1", Name: "Acme", Domain: "acme.com", Country: "us", FeedPriority: 1},
		{ID: "beta-1", Name: "Acme", Domain: "acme.com", Country: "us", FeedPriority: 2,
			Logo: model.Logo{URL: "https://cdn.beta.example/acme.png"}},
	}

	out, _ := DedupCrossFeed(brands)

	require.Len(t, out, 1)
	assert.Equal(t, "alpha-1", out[0].ID)
	assert.Equal(t, "https://cdn.beta.example/acme.png", out[0].Logo.URL)
}

func TestDedupCrossFeed_DifferentCountriesKept(t *testing.T) {
	brands := []model.Brand{
		{ID: "a", Domain: "nike.com", Country: "us", FeedPriority: 1},
		{ID: "b", Domain: "nike.com", Country: "uk", FeedPriority: 2},
	}

	out, conflicts := DedupCrossFeed(brands)

	assert.Len(t, out, 2)
	assert.Equal(t, 0, conflicts)
}

func TestDedupWithinMarket_DefaultPolicy(t *testing.T) {
	brands := []model.Brand{
		{ID: "low", Name: "Acme Store", Domain: "acme.com", CommissionValue: 2},
		{ID: "high", Name: "Acme", Domain: "acme.com", CommissionValue: 8},
	}

	out, merged := DedupWithinMarket(brands, DefaultDedupPolicy())

	require.Len(t, out, 1)
	assert.Equal(t, 1, merged)
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, "Acme", out[0].Name)
}

func TestDedupWithinMarket_PolicySwap(t *testing.T) {
	brands := []model.Brand{
		{ID: "a", Name: "Acme", Domain: "acme.com", CommissionValue: 8, EPC: 0.1},
		{ID: "b", Name: "Acme", Domain: "acme.com", CommissionValue: 2, EPC: 0.9},
	}

	out, _ := DedupWithinMarket(brands, DedupPolicy{WithinMarketKeys: []string{"epc"}})

	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestDedupWithinMarket_PreservesFirstSeenOrder(t *testing.T) {
	brands := []model.Brand{
		{ID: "1", Domain: "a.com"},
		{ID: "2", Domain: "b.com"},
		{ID: "3", Domain: "a.com"},
	}

	out, _ := DedupWithinMarket(brands, DefaultDedupPolicy())

	require.Len(t, out, 2)
	assert.Equal(t, "a.com", out[0].Domain)
	assert.Equal(t, "b.com", out[1].Domain)
}

func TestBestName(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"non-caps beats caps", []string{"NIKE", "Nike"}, "Nike"},
		{"internal mixed case wins", []string{"Ebay", "eBay"}, "eBay"},
		{"shorter wins otherwise", []string{"Acme Store Online", "Acme"}, "Acme"},
		{"title case is not mixed case", []string{"Beauty Bay Official Store", "Beauty Bay"}, "Beauty Bay"},
		{"empty never wins", []string{"", "Acme"}, "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestName(tt.candidates))
		})
	}
}
