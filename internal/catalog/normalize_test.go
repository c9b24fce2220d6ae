package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading network prefix", "AW: Nike Store", "Nike Store"},
		{"bracketed tag prefix", "[NEW] Super Shoes", "Super Shoes"},
		{"bracketed region list", "Super Shoes (DE, AT, CH)", "Super Shoes"},
		{"bare region list", "Nike Store US, CA", "Nike Store"},
		{"affiliate model suffix", "Brandfield - CPS", "Brandfield"},
		{"latency annotation", "Shop Name (30 days)", "Shop Name"},
		{"cookie annotation", "Shop Name - 30 day cookie", "Shop Name"},
		{"layered noise", "Partner: Foo CPA (US)", "Foo"},
		{"dangling punctuation", "Foo - ", "Foo"},
		{"underscores", "Big__Sale__Shop", "Big Sale Shop"},
		{"clean already", "Beauty Bay", "Beauty Bay"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestCleanName_Idempotent(t *testing.T) {
	inputs := []string{
		"AW: Nike Store - US, CA",
		"Partner: Foo CPA (US)",
		"Super Shoes (DE, AT, CH) - CPS",
		"Plain Name",
		"weird___name -- UK",
	}
	for _, in := range inputs {
		once := CleanName(in)
		assert.Equal(t, once, CleanName(once), "not a fixed point for %q", in)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Nike.com/us/shoes", "nike.com"},
		{"http://shop.adidas.de", "adidas.de"},
		{"beautybay.com", "beautybay.com"},
		{"www.example.co.uk/path?q=1", "example.co.uk"},
		{"https://foo.com:8443/x", "foo.com"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.in), "input %q", tt.in)
	}
}

func TestHumanizeDomain(t *testing.T) {
	assert.Equal(t, "Super Shoes", HumanizeDomain("super-shoes.co.uk"))
	assert.Equal(t, "Beauty Bay", HumanizeDomain("beautyBay.com"))
	assert.Equal(t, "Acme", HumanizeDomain("acme.com"))
}

func TestNormalizeRecord_HumanizesDomainName(t *testing.T) {
	b := NormalizeRecord(model.RawFeedRecord{
		ExternalID: "42",
		Name:       "beauty-bay.com",
		Country:    "UK",
		Domain:     "https://www.beauty-bay.com",
		FeedName:   "alpha",
	})

	assert.Equal(t, "alpha-42", b.ID)
	assert.Equal(t, "Beauty Bay", b.Name)
	assert.Equal(t, "beauty-bay.com", b.Domain)
	assert.Equal(t, "uk", b.Country)
	assert.Equal(t, model.BrandQualityGood, b.Quality)
}

func TestDeriveTags(t *testing.T) {
	tags := DeriveTags([]string{"Fashion & Accessories", "Online Shop", "Fashion"})
	assert.Equal(t, []string{"accessories", "fashion"}, tags)
}
