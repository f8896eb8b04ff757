package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_OrderIsPinned(t *testing.T) {
	s := All()
	require.Len(t, s, 30)

	assert.Equal(t, "kitchen-refresh", s[0].ID)
	assert.Equal(t, "bathroom-update", s[1].ID)
	assert.Equal(t, "basement-finishing", s[2].ID)
	assert.Equal(t, "lighting-modernization", s[14].ID, "last base entry")
	assert.Equal(t, "brick-restoration", s[15].ID, "first additional entry")
	assert.Equal(t, "listing-media", s[29].ID)
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "mutated"
	b := All()
	assert.Equal(t, "Kitchen Refresh", b[0].Name)
}

func TestAll_EntriesWellFormed(t *testing.T) {
	for _, s := range All() {
		assert.NotEmpty(t, s.Description, s.ID)
		assert.Positive(t, s.BaseCost.Min, s.ID)
		assert.GreaterOrEqual(t, s.BaseCost.Max, s.BaseCost.Min, s.ID)
		assert.Positive(t, s.BaseROI.Min, s.ID)
		assert.GreaterOrEqual(t, s.BaseROI.Max, s.BaseROI.Min, s.ID)
		assert.Positive(t, s.ValueImpactPercent, s.ID)
		assert.NotZero(t, s.Tags, s.ID)
	}
}

func TestAll_FenceAndHVACTags(t *testing.T) {
	var fence, hvac int
	for _, s := range All() {
		if s.Tags.Has(TagFencing) {
			fence++
			assert.True(t, s.Tags.Has(TagYard))
		}
		if s.Tags.Has(TagHVAC) {
			hvac++
			assert.True(t, s.Tags.Has(TagSystems))
		}
	}
	assert.Equal(t, 1, fence)
	assert.Equal(t, 1, hvac)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown tag": `
base:
  - {id: a, name: A, base_cost: [1, 2], base_roi: [1, 2], tags: [shiny]}
`,
		"bad range": `
base:
  - {id: a, name: A, base_cost: [5, 2], base_roi: [1, 2]}
`,
		"short range": `
base:
  - {id: a, name: A, base_cost: [5], base_roi: [1, 2]}
`,
		"duplicate": `
base:
  - {id: a, name: A, base_cost: [1, 2], base_roi: [1, 2]}
additional:
  - {id: a, name: B, base_cost: [1, 2], base_roi: [1, 2]}
`,
		"missing name": `
base:
  - {id: a, base_cost: [1, 2], base_roi: [1, 2]}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_MergesSectionsInOrder(t *testing.T) {
	doc := `
base:
  - {id: b1, name: B1, base_cost: [1, 2], base_roi: [1, 2], tags: [kitchen]}
additional:
  - {id: a1, name: A1, base_cost: [1, 2], base_roi: [1, 2], tags: [roof, older-home]}
`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, "b1", s[0].ID)
	assert.Equal(t, "a1", s[1].ID)
	assert.Equal(t, []string{"older-home", "roof"}, s[1].Tags.Strings())
}

func TestTagSet(t *testing.T) {
	s := NewTagSet(TagKitchen, TagHighROI)
	assert.True(t, s.Has(TagKitchen))
	assert.False(t, s.Has(TagRoof))
	assert.True(t, s.HasAny(TagRoof, TagHighROI))
	assert.False(t, s.HasAny(TagRoof, TagBrick))

	tag, err := ParseTag(" High-ROI ")
	require.NoError(t, err)
	assert.Equal(t, TagHighROI, tag)
}
