package overpass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate_UnionsCategories(t *testing.T) {
	input := []Element{
		{ID: 1, Type: "way", Tags: map[string]string{"name": "Peter and Paul Fortress"}, Categories: []string{"HISTORY"}},
		{ID: 2, Type: "node", Tags: map[string]string{"name": "Bronze Horseman"}, Categories: []string{"MONUMENT"}},
		{ID: 1, Type: "way", Tags: map[string]string{"name": "ignored duplicate"}, Categories: []string{"TOURIST_ATTRACTION"}},
		{ID: 2, Type: "node", Categories: []string{"MONUMENT"}},
		{ID: 1, Type: "way", Categories: []string{"MUSEUMS", "HISTORY"}},
	}

	out := Deduplicate(input)
	require.Len(t, out, 2)

	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, "Peter and Paul Fortress", out[0].Tags["name"])
	assert.Equal(t, []string{"HISTORY", "TOURIST_ATTRACTION", "MUSEUMS"}, out[0].Categories)

	assert.Equal(t, int64(2), out[1].ID)
	assert.Equal(t, []string{"MONUMENT"}, out[1].Categories)
}

func TestDeduplicate_DistinctIDsPreserved(t *testing.T) {
	input := []Element{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 1}}
	out := Deduplicate(input)

	ids := make([]int64, len(out))
	for i, e := range out {
		ids[i] = e.ID
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
	assert.LessOrEqual(t, len(out), len(input))
}

func TestDeduplicate_DoesNotAliasInput(t *testing.T) {
	cats := []string{"RUINS"}
	input := []Element{{ID: 7, Categories: cats}, {ID: 7, Categories: []string{"HISTORY"}}}

	out := Deduplicate(input)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"RUINS", "HISTORY"}, out[0].Categories)
	assert.Equal(t, []string{"RUINS"}, input[0].Categories)
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
