package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
)

func TestMergeGroups_Album(t *testing.T) {
	entries := []*domain.Entry{
		{GUID: "1/1", Body: "<p>A</p>", GroupID: 9},
		{GUID: "1/2", Body: "<p>B</p>", GroupID: 9},
	}

	merged := mergeGroups(entries)

	require.Len(t, merged, 1)
	assert.Equal(t, "<p>A</p><p>B</p>", merged[0].Body)
	assert.Equal(t, "1/1", merged[0].GUID)
}

// Albums end up after every ungrouped entry even when they are older.
// This ordering is kept as it is, not corrected.
func TestMergeGroups_AlbumsComeLast(t *testing.T) {
	entries := []*domain.Entry{
		{GUID: "1/1", GroupID: 5},
		{GUID: "1/2", GroupID: 5},
		{GUID: "1/3"},
		{GUID: "1/4", GroupID: 6},
		{GUID: "1/5"},
	}

	merged := mergeGroups(entries)

	assert.Equal(t, []string{"1/3", "1/5", "1/1", "1/4"}, lo.Map(merged, func(e *domain.Entry, _ int) string {
		return e.GUID
	}))
}

func TestMergeGroups_NoGroups(t *testing.T) {
	entries := []*domain.Entry{{GUID: "1/1"}, {GUID: "1/2"}}
	assert.Equal(t, entries, mergeGroups(entries))
	assert.Empty(t, mergeGroups(nil))
}
