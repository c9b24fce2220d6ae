package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func TestDetectJunk(t *testing.T) {
	tests := []struct {
		name    string
		brand   model.Brand
		suspect bool
	}{
		{
			"bare ip domain",
			model.Brand{Name: "Acme", Domain: "192.168.1.1", CommissionValue: 5},
			true,
		},
		{
			"spam lead word without revenue",
			model.Brand{Name: "Free iPhone Now", Domain: "sketchy.biz"},
			true,
		},
		{
			"spam lead word with commission value",
			model.Brand{Name: "Free iPhone Now", Domain: "sketchy.biz", CommissionValue: 4},
			false,
		},
		{
			"spam lead word with undisclosed marker",
			model.Brand{Name: "Win Big", Domain: "sketchy.biz", Commission: "Undisclosed"},
			false,
		},
		{
			"name restates domain",
			model.Brand{Name: "Beauty Bay", Domain: "beautybay.com"},
			false,
		},
		{
			"ordinary brand",
			model.Brand{Name: "Acme Tools", Domain: "acmetools.com"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good, suspect := DetectJunk([]model.Brand{tt.brand})
			if tt.suspect {
				require.Len(t, suspect, 1)
				assert.Empty(t, good)
				assert.Equal(t, model.BrandQualitySuspect, suspect[0].Quality)
			} else {
				require.Len(t, good, 1)
				assert.Empty(t, suspect)
				assert.Equal(t, model.BrandQualityGood, good[0].Quality)
			}
		})
	}
}
