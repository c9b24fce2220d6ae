package logo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func TestInheritSubBrands(t *testing.T) {
	brands := []model.Brand{
		{Domain: "nike.com", Logo: model.Logo{URL: "https://cdn.example/nike.png", Quality: model.LogoQualityHigh, Source: SourceFeedImage}},
		{Domain: "nikeoutlet.com", Logo: model.Logo{URL: "https://logo.clearbit.com/nikeoutlet.com", Quality: model.LogoQualityHigh, Source: SourceFallback}},
		{Domain: "acme.com", Logo: model.Logo{Quality: model.LogoQualityNone, Source: SourceNone}},
		{Domain: "acmekids.de", Logo: model.Logo{URL: "https://x.example/k.png", Quality: model.LogoQualityLow, Source: SourceFavicon}},
	}

	inherited := InheritSubBrands(brands)

	assert.Equal(t, 1, inherited)

	// The sub-brand takes the parent logo even over its own resolved result.
	sub := brands[1]
	assert.Equal(t, "https://cdn.example/nike.png", sub.Logo.URL)
	assert.Equal(t, model.LogoQualityHigh, sub.Logo.Quality)
	assert.Equal(t, SourceInherited, sub.Logo.Source)
	assert.Equal(t, "nike.com", sub.Logo.InheritedFrom)

	// No parent logo for acme.com, so acmekids.de keeps what it has.
	assert.Equal(t, SourceFavicon, brands[3].Logo.Source)
}

func TestInheritSubBrands_Idempotent(t *testing.T) {
	brands := []model.Brand{
		{Domain: "nike.com", Logo: model.Logo{URL: "https://cdn.example/nike.png", Quality: model.LogoQualityHigh}},
		{Domain: "nikeoutlet.com", Logo: model.Logo{URL: "https://logo.clearbit.com/x", Quality: model.LogoQualityHigh}},
	}

	assert.Equal(t, 1, InheritSubBrands(brands))
	assert.Equal(t, 0, InheritSubBrands(brands))
}

func TestInheritSubBrands_BestQualityParentWins(t *testing.T) {
	brands := []model.Brand{
		{Domain: "acme.com", Logo: model.Logo{URL: "https://low.example/a.png", Quality: model.LogoQualityLow}},
		{Domain: "acme.de", Logo: model.Logo{URL: "https://high.example/a.png", Quality: model.LogoQualityHigh}},
		{Domain: "acmestore.com"},
	}

	InheritSubBrands(brands)

	assert.Equal(t, "https://high.example/a.png", brands[2].Logo.URL)
	assert.Equal(t, "acme.de", brands[2].Logo.InheritedFrom)
}
