package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

func TestFilterLeadGen(t *testing.T) {
	records := []model.RawFeedRecord{
		{ExternalID: "1", Name: "Acme Store"},
		{ExternalID: "2", Name: "iPhone 17 Sweepstakes SOI"},
		{ExternalID: "3", Name: "Email Submit - Win a TV"},
		{ExternalID: "4", Name: "Customer Survey US"},
		{ExternalID: "5", Name: "Beauty Bay"},
	}

	out := FilterLeadGen(records)

	ids := make([]string, 0, len(out))
	for _, r := range out {
		ids = append(ids, r.ExternalID)
	}
	assert.Equal(t, []string{"1", "5"}, ids)
}
