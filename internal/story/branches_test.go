package story_test

import (
	"testing"

	"story-branches/internal/models"
	"story-branches/internal/story"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBranches() []models.Branch {
	return []models.Branch{
		{ID: "b1", Text: "Start", Choices: []models.Choice{{Text: "Go", NextBranchID: "b2"}}},
		{ID: "b2", Text: "Middle", Choices: []models.Choice{{Text: "Back", NextBranchID: "b1"}, {Text: "On", NextBranchID: "b3"}}},
		{ID: "b3", Text: "End", Choices: []models.Choice{}},
	}
}

func TestUpsert(t *testing.T) {
	t.Run("replaces in place and keeps position", func(t *testing.T) {
		in := sampleBranches()
		edited := models.Branch{ID: "b2", Text: "Edited", Choices: []models.Choice{}}

		out, replaced := story.Upsert(in, edited)

		require.True(t, replaced)
		require.Len(t, out, 3)
		assert.Equal(t, edited, out[1])
		if diff := cmp.Diff(in[0], out[0]); diff != "" {
			t.Errorf("untouched branch changed (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(in[2], out[2]); diff != "" {
			t.Errorf("untouched branch changed (-want +got):\n%s", diff)
		}
		// входной срез не должен меняться
		assert.Equal(t, "Middle", in[1].Text)
	})

	t.Run("appends unknown id", func(t *testing.T) {
		in := sampleBranches()
		out, replaced := story.Upsert(in, models.Branch{ID: "b4", Text: "New"})

		require.False(t, replaced)
		require.Len(t, out, 4)
		assert.Equal(t, "b4", out[3].ID)
		assert.Len(t, in, 3)
	})

	t.Run("appends to empty sequence", func(t *testing.T) {
		out, replaced := story.Upsert(nil, models.Branch{ID: "b1"})
		assert.False(t, replaced)
		assert.Len(t, out, 1)
	})
}

func TestRemoveByID(t *testing.T) {
	in := sampleBranches()

	out, removed := story.RemoveByID(in, "b2")
	require.True(t, removed)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"b1", "b3"}, []string{out[0].ID, out[1].ID})
	// удаление не каскадируется на выборы
	assert.Equal(t, "b2", out[0].Choices[0].NextBranchID)

	out, removed = story.RemoveByID(in, "missing")
	assert.False(t, removed)
	assert.Len(t, out, 3)
}

func TestGraphLookup(t *testing.T) {
	g := story.NewGraph(sampleBranches())

	b, ok := g.Lookup("b3")
	require.True(t, ok)
	assert.Equal(t, "End", b.Text)

	_, ok = g.Lookup("nope")
	assert.False(t, ok)

	first, ok := g.First()
	require.True(t, ok)
	assert.Equal(t, "b1", first.ID)
	assert.Equal(t, 3, g.Len())

	_, ok = story.NewGraph(nil).First()
	assert.False(t, ok)
}

func TestGraphDuplicateIDsEarliestWins(t *testing.T) {
	g := story.NewGraph([]models.Branch{{ID: "x", Text: "first"}, {ID: "x", Text: "second"}})
	b, ok := g.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "first", b.Text)
}
