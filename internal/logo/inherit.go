package logo

import (
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func qualityRank(q model.LogoQuality) int {
	switch q {
	case model.LogoQualityHigh:
		return 2
	case model.LogoQualityLow:
		return 1
	}
	return 0
}

// InheritSubBrands overwrites every sub-brand's logo with its parent brand's.
// The override is unconditional, even over a previously high-quality result:
// a generic logo wrongly matched to "nikeoutlet.com" must be corrected once
// the real "nike.com" logo is known. The pass is idempotent. Returns the
// number of logos rewritten.
func InheritSubBrands(brands []model.Brand) int {
	type parent struct {
		domain string
		logo   model.Logo
	}

	// Best logo per root token, from brands whose domain IS the root.
	parents := make(map[string]parent)
	for i := range brands {
		b := brands[i]
		if b.Domain == "" || b.Logo.URL == "" || ParentDomain(b.Domain) != "" {
			continue
		}
		root := DomainRoot(b.Domain)
		cur, ok := parents[root]
		if !ok || qualityRank(b.Logo.Quality) > qualityRank(cur.logo.Quality) {
			parents[root] = parent{domain: b.Domain, logo: b.Logo}
		}
	}

	inherited := 0
	for i := range brands {
		b := &brands[i]
		if ParentDomain(b.Domain) == "" {
			continue
		}
		p, ok := parents[DomainRoot(b.Domain)]
		if !ok {
			continue
		}
		if b.Logo.InheritedFrom == p.domain && b.Logo.URL == p.logo.URL {
			continue // already inherited from this parent
		}
		b.Logo = model.Logo{
			URL:           p.logo.URL,
			Quality:       p.logo.Quality,
			Source:        SourceInherited,
			InheritedFrom: p.domain,
		}
		inherited++
	}

	if inherited > 0 {
		zap.L().Info("logo: sub-brand logos inherited", zap.Int("count", inherited))
	}
	return inherited
}
