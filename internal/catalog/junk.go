package catalog

import (
	"net"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// spamLeadTokens flag a listing whose name opens with a bait word.
var spamLeadTokens = map[string]bool{
	"free": true, "win": true, "earn": true, "claim": true, "cheap": true,
	"bonus": true, "prize": true, "unlock": true, "instant": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// DetectJunk splits brands into trusted and suspect sets. A brand is suspect
// when its domain is a bare IP address, or when its name is not just the
// domain restated, carries no revenue signal, and opens with a spam token.
// Suspect brands go to a per-market review file and skip all later stages.
func DetectJunk(brands []model.Brand) (good, suspect []model.Brand) {
	for _, b := range brands {
		if isSuspect(b) {
			b.Quality = model.BrandQualitySuspect
			suspect = append(suspect, b)
			continue
		}
		b.Quality = model.BrandQualityGood
		good = append(good, b)
	}
	if len(suspect) > 0 {
		zap.L().Info("junk: suspect brands flagged",
			zap.Int("suspect", len(suspect)),
			zap.Int("good", len(good)),
		)
	}
	return good, suspect
}

func isSuspect(b model.Brand) bool {
	if net.ParseIP(b.Domain) != nil {
		return true
	}
	if nameRestatesDomain(b.Name, b.Domain) {
		return false
	}
	if hasRevenueSignal(b) {
		return false
	}
	first := firstWord(b.Name)
	return spamLeadTokens[first]
}

// hasRevenueSignal reports any positive revenue evidence: an explicit
// "undisclosed" commission marker, a nonzero commission value, or nonzero eCPC.
func hasRevenueSignal(b model.Brand) bool {
	if strings.Contains(strings.ToLower(b.Commission), "undisclosed") {
		return true
	}
	return b.CommissionValue > 0 || b.EPC > 0
}

// nameRestatesDomain reports whether the display name is just the domain
// with the TLD and separators removed, e.g. "Beauty Bay" vs "beautybay.com".
func nameRestatesDomain(name, domain string) bool {
	if name == "" || domain == "" {
		return false
	}
	base := domain
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}
	return squash(name) == squash(base)
}

func squash(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

func firstWord(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
