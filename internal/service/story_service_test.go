package service

import (
	"context"
	"strings"
	"testing"

	"story-branches/internal/interfaces/mocks"
	"story-branches/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) storyService(images *mocks.ImageStore) StoryService {
	if images == nil {
		images = new(mocks.ImageStore)
	}
	return NewStoryService(f.repo, f.publisher, images, f.logger)
}

func TestCreateStory(t *testing.T) {
	f := newFixture(t)
	svc := f.storyService(nil)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, author, "  Лес  ", " Тропа ")
	require.NoError(t, err)
	assert.Equal(t, "Лес", st.Title)
	assert.Equal(t, "Тропа", st.Description)
	assert.Equal(t, models.StatusDraft, st.Status)
	assert.Equal(t, author.UID, st.AuthorID)
	assert.Equal(t, []models.StoryEventType{models.EventStoryCreated}, publishedTypes(f.publisher))

	_, err = svc.CreateStory(ctx, author, "   ", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.CreateStory(ctx, author, strings.Repeat("я", maxTitleLength+1), "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.CreateStory(ctx, models.Actor{}, "t", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestStoryLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := f.storyService(nil)
	ctx := context.Background()

	empty := f.seedStory(t, models.StatusDraft)
	_, err := svc.SubmitForReview(ctx, author, empty.ID)
	assert.ErrorIs(t, err, models.ErrEmptyStory)

	st := f.seedStory(t, models.StatusDraft, twoBranches()...)

	_, err = svc.SubmitForReview(ctx, stranger, st.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Moderate(ctx, moderator, st.ID, true)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition, "draft cannot be approved directly")

	submitted, err := svc.SubmitForReview(ctx, author, st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, submitted.Status)

	_, err = svc.SubmitForReview(ctx, author, st.ID)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)

	_, err = svc.Moderate(ctx, author, st.ID, true)
	assert.ErrorIs(t, err, models.ErrForbidden)

	pending, err := svc.ListPendingStories(ctx, moderator, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].BranchCount)

	rejected, err := svc.Moderate(ctx, moderator, st.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	_, err = svc.SubmitForReview(ctx, author, st.ID)
	require.NoError(t, err, "rejected story can be resubmitted")

	approved, err := svc.Moderate(ctx, moderator, st.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	public, err := svc.ListPublicStories(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, st.ID, public[0].ID)

	changes := 0
	for _, typ := range publishedTypes(f.publisher) {
		if typ == models.EventStoryStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 4, changes)
}

func TestGetStory_Visibility(t *testing.T) {
	f := newFixture(t)
	svc := f.storyService(nil)
	ctx := context.Background()

	draft := f.seedStory(t, models.StatusDraft)
	_, err := svc.GetStory(ctx, stranger, draft.ID)
	assert.ErrorIs(t, err, models.ErrStoryNotFound)
	_, err = svc.GetStory(ctx, author, draft.ID)
	assert.NoError(t, err)
	_, err = svc.GetStory(ctx, moderator, draft.ID)
	assert.NoError(t, err)

	published := f.seedStory(t, models.StatusApproved)
	_, err = svc.GetStory(ctx, stranger, published.ID)
	assert.NoError(t, err)
}

func TestUpdateMetadataAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := f.storyService(nil)
	ctx := context.Background()
	st := f.seedStory(t, models.StatusDraft, twoBranches()...)

	_, err := svc.UpdateMetadata(ctx, stranger, st.ID, "x", "")
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := svc.UpdateMetadata(ctx, author, st.ID, "Горы", "Перевал")
	require.NoError(t, err)
	assert.Equal(t, "Горы", updated.Title)
	assert.Len(t, updated.Branches, 2)

	mine, err := svc.ListMyStories(ctx, author, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assert.ErrorIs(t, svc.DeleteStory(ctx, stranger, st.ID), models.ErrForbidden)
	require.NoError(t, svc.DeleteStory(ctx, author, st.ID))
	_, err = svc.GetStory(ctx, author, st.ID)
	assert.ErrorIs(t, err, models.ErrStoryNotFound)
	assert.Contains(t, publishedTypes(f.publisher), models.EventStoryDeleted)
}

func TestUploadCover(t *testing.T) {
	f := newFixture(t)
	images := new(mocks.ImageStore)
	svc := f.storyService(images)
	ctx := context.Background()
	st := f.seedStory(t, models.StatusDraft)

	images.On("Upload", mock.Anything,
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "stories/"+st.ID+"/cover_") && strings.HasSuffix(name, ".png")
		}),
		"image/png", mock.Anything,
	).Return("https://storage.googleapis.com/b/cover.png", nil).Once()

	updated, err := svc.UploadCover(ctx, author, st.ID, "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/b/cover.png", updated.CoverImage)

	_, err = svc.UploadCover(ctx, author, st.ID, "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	images.On("Upload", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return("", models.ErrImageStorageDisabled).Once()
	_, err = svc.UploadCover(ctx, author, st.ID, "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrImageStorageDisabled)

	images.AssertExpectations(t)
}

func TestNormalizePage(t *testing.T) {
	limit, offset := normalizePage(0, -5)
	assert.Equal(t, defaultPageLimit, limit)
	assert.Equal(t, 0, offset)

	limit, _ = normalizePage(1000, 0)
	assert.Equal(t, maxPageLimit, limit)
}
