package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryCategory(t *testing.T) {
	assert.Equal(t, "Fashion", Brand{Categories: []string{"Fashion", "Other"}}.PrimaryCategory())
	assert.Equal(t, "", Brand{}.PrimaryCategory())
}

func TestBrandJSON_InternalFieldsStripped(t *testing.T) {
	b := Brand{
		ID:           "alpha-1",
		Name:         "Acme",
		Quality:      BrandQualitySuspect,
		FeedName:     "alpha",
		FeedPriority: 1,
	}

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "feed_name")
	assert.NotContains(t, decoded, "quality")
	assert.Contains(t, decoded, "id")
}
