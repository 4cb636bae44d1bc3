package service

import (
	"context"
	"testing"

	"story-branches/internal/models"
	"story-branches/internal/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_DeadEndScenario(t *testing.T) {
	f := newFixture(t)
	st := f.seedStory(t, models.StatusApproved,
		models.Branch{ID: "b1", Text: "Start", Choices: []models.Choice{{Text: "Go", NextBranchID: "b2"}}},
	)
	reader := NewReaderService(f.repo, f.logger)
	ctx := context.Background()

	view, err := reader.Start(ctx, stranger, st.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, story.StatePresenting, view.State)
	require.NotNil(t, view.Branch)
	assert.Equal(t, "b1", view.Branch.ID)

	view, err = reader.Advance(ctx, stranger, st.ID, "b1", 0, view.Path)
	require.NoError(t, err)
	assert.Equal(t, story.StateDeadEnd, view.State)
	assert.Equal(t, "b2", view.DeadEndTarget)
	assert.Empty(t, view.Path)
}

// Создать ветку, добавить выбор на еще не существующий id, создать ветку с этим id,
// затем пройти по выбору.
func TestReader_AuthoringRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.seedStory(t, models.StatusDraft)
	branches := f.branchService(nil)
	reader := NewReaderService(f.repo, f.logger)

	first, err := branches.AddBranch(ctx, author, st.ID, models.Branch{Text: "At the gate"})
	require.NoError(t, err)
	withChoice, err := branches.AddChoice(ctx, author, st.ID, first.ID, "Enter")
	require.NoError(t, err)
	targetID := withChoice.Choices[0].NextBranchID

	_, err = branches.AddBranch(ctx, author, st.ID, models.Branch{ID: targetID, Text: "Inside the castle"})
	require.NoError(t, err)

	view, err := reader.Start(ctx, author, st.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, view.Branch.ID)

	view, err = reader.Advance(ctx, author, st.ID, first.ID, 0, view.Path)
	require.NoError(t, err)
	assert.Equal(t, story.StateStoryEnd, view.State)
	assert.Equal(t, "Inside the castle", view.Branch.Text)
	assert.Equal(t, []story.PathEntry{{BranchID: targetID, ChoiceText: "Enter"}}, view.Path)
}

func TestReader_PathIsForwardedAndDeduplicated(t *testing.T) {
	f := newFixture(t)
	st := f.seedStory(t, models.StatusApproved,
		models.Branch{ID: "b1", Text: "Hall", Choices: []models.Choice{{Text: "On", NextBranchID: "b2"}}},
		models.Branch{ID: "b2", Text: "Room", Choices: []models.Choice{{Text: "Back", NextBranchID: "b1"}}},
	)
	reader := NewReaderService(f.repo, f.logger)
	ctx := context.Background()

	view, err := reader.Advance(ctx, stranger, st.ID, "b1", 0, nil)
	require.NoError(t, err)
	view, err = reader.Advance(ctx, stranger, st.ID, "b2", 0, view.Path)
	require.NoError(t, err)
	view, err = reader.Advance(ctx, stranger, st.ID, "b1", 0, view.Path)
	require.NoError(t, err)

	// Повторный переход "On" -> b2 не попадает в путь: дедупликация по содержимому.
	assert.Equal(t, []story.PathEntry{
		{BranchID: "b2", ChoiceText: "On"},
		{BranchID: "b1", ChoiceText: "Back"},
	}, view.Path)
	assert.Equal(t, "b2", view.Branch.ID)
}

func TestReader_Errors(t *testing.T) {
	f := newFixture(t)
	reader := NewReaderService(f.repo, f.logger)
	ctx := context.Background()

	draft := f.seedStory(t, models.StatusDraft, twoBranches()...)
	_, err := reader.Start(ctx, stranger, draft.ID, "", nil)
	assert.ErrorIs(t, err, models.ErrStoryNotFound)

	empty := f.seedStory(t, models.StatusApproved)
	_, err = reader.Start(ctx, stranger, empty.ID, "", nil)
	assert.ErrorIs(t, err, models.ErrEmptyStory)

	st := f.seedStory(t, models.StatusApproved,
		models.Branch{ID: "b1", Text: "Start", Choices: []models.Choice{{Text: "Go", NextBranchID: "end"}}},
		models.Branch{ID: "end", Text: "Fin", Choices: []models.Choice{}},
	)
	_, err = reader.Advance(ctx, stranger, st.ID, "b1", 7, nil)
	assert.ErrorIs(t, err, models.ErrInvalidChoice)

	_, err = reader.Advance(ctx, stranger, st.ID, "nope", 0, nil)
	assert.ErrorIs(t, err, models.ErrBranchNotFound)

	_, err = reader.Advance(ctx, stranger, st.ID, "", 0, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = reader.Advance(ctx, stranger, st.ID, "end", 0, nil)
	assert.ErrorIs(t, err, models.ErrNavigationFinished)

	view, err := reader.Start(ctx, stranger, st.ID, "unknown", nil)
	require.NoError(t, err)
	assert.Equal(t, "b1", view.Branch.ID, "unknown start branch falls back to the first one")
}
