package catalog

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// leadGenMarker matches lead-generation offer tokens in raw listing names.
// This filter runs against the RAW name, before cleanup: cleanup strips
// affiliate-model suffixes and would erase exactly these markers.
var leadGenMarker = regexp.MustCompile(`(?i)\b(?:soi|doi|email\s*submit|sweepstakes?|survey|lead\s*gen(?:eration)?|free\s*trial\s*offer)\b`)

// FilterLeadGen drops non-product lead-generation offers from the raw record
// set and returns the survivors.
func FilterLeadGen(records []model.RawFeedRecord) []model.RawFeedRecord {
	out := make([]model.RawFeedRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		if leadGenMarker.MatchString(r.Name) {
			dropped++
			continue
		}
		out = append(out, r)
	}
	if dropped > 0 {
		zap.L().Info("leadgen: offers filtered",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}
