package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
)

func TestInferCategories(t *testing.T) {
	brands := []model.Brand{
		{Name: "Super Shoes", Domain: "super-shoes.com"},
		{Name: "Acme", Domain: "acme-cosmetics.de"},
		{Name: "Mystery Brand", Domain: "xqzt.com"},
		{Name: "Nike", Domain: "nike.com", Categories: []string{"Sports & Outdoors"}},
	}

	matched := InferCategories(brands)

	assert.Equal(t, 2, matched)
	assert.Equal(t, "Fashion", brands[0].PrimaryCategory())
	assert.Equal(t, "Beauty", brands[1].PrimaryCategory())
	assert.Empty(t, brands[2].Categories)
	// Already categorized brands are left alone.
	assert.Equal(t, "Sports & Outdoors", brands[3].PrimaryCategory())
}

func TestInferCategories_KeepsGenericAsSecondary(t *testing.T) {
	brands := []model.Brand{
		{Name: "Super Shoes", Domain: "super-shoes.com", Categories: []string{GenericCategory}},
	}

	InferCategories(brands)

	assert.Equal(t, []string{"Fashion", GenericCategory}, brands[0].Categories)
}

func TestInheritAcrossMarkets(t *testing.T) {
	byMarket := map[string][]model.Brand{
		"us": {
			{Name: "HiFi Corner", Domain: "hificorner.com", Categories: []string{"Electronics"}},
		},
		"de": {
			{Name: "HiFi Corner", Domain: "hificorner.com", Categories: []string{GenericCategory}},
			{Name: "Lonely Shop", Domain: "lonely.de"},
		},
	}

	inherited := InheritAcrossMarkets(byMarket)

	assert.Equal(t, 1, inherited)
	assert.Equal(t, "Electronics", byMarket["de"][0].PrimaryCategory())
	assert.Empty(t, byMarket["de"][1].Categories)
}

func TestApplyCachedClassifications(t *testing.T) {
	st := newFakeStore()
	st.classes["cached.com"] = "Travel"
	st.classes["junky.com"] = store.CategoryJunk
	st.classes["hard.com"] = store.CategoryUnknown

	brands := []model.Brand{
		{Name: "Cached", Domain: "cached.com"},
		{Name: "Junky", Domain: "junky.com"},
		{Name: "Hard", Domain: "hard.com"},
		{Name: "New", Domain: "new.com"},
		{Name: "Done", Domain: "done.com", Categories: []string{"Fashion"}},
	}

	missing, err := ApplyCachedClassifications(context.Background(), st, brands)

	require.NoError(t, err)
	assert.Equal(t, "Travel", brands[0].PrimaryCategory())
	// Sentinel entries stay uncategorized and are not resubmitted.
	assert.False(t, HasRealCategory(brands[1]))
	assert.False(t, HasRealCategory(brands[2]))
	assert.Equal(t, []int{3}, missing)
}

func TestEnsureCategories(t *testing.T) {
	brands := []model.Brand{
		{Name: "Has One", Categories: []string{"Fashion"}},
		{Name: "Empty"},
		{Name: "Generic Only", Categories: []string{GenericCategory}},
	}

	uncategorized := EnsureCategories(brands)

	assert.Equal(t, []string{GenericCategory}, brands[1].Categories)
	assert.Equal(t, []int{1, 2}, uncategorized)
}

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "home-and-garden", CategorySlug("Home & Garden"))
	assert.Equal(t, "sports-and-outdoors", CategorySlug("Sports & Outdoors"))
	assert.Equal(t, "other", CategorySlug(GenericCategory))
}
