package database

import (
	"context"
	"testing"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoryRepositoryContract проверяет поведение, общее для всех реализаций StoryRepository.
// newRepo должен возвращать репозиторий поверх пустой БД.
func runStoryRepositoryContract(t *testing.T, newRepo func(t *testing.T) interfaces.StoryRepository) {
	ctx := context.Background()

	seed := func(t *testing.T, repo interfaces.StoryRepository, authorID string, branches ...models.Branch) *models.Story {
		t.Helper()
		story := &models.Story{Title: "Лес", Description: "Тропа", AuthorID: authorID}
		require.NoError(t, repo.Create(ctx, story))
		if len(branches) > 0 {
			_, err := repo.PutStoryBranches(ctx, story.ID, branches)
			require.NoError(t, err)
		}
		return story
	}

	b := func(id string, targets ...string) models.Branch {
		choices := make([]models.Choice, 0, len(targets))
		for _, target := range targets {
			choices = append(choices, models.Choice{Text: "to " + target, NextBranchID: target})
		}
		return models.Branch{ID: id, Text: "text " + id, Choices: choices}
	}

	t.Run("create applies defaults", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1")

		assert.NotEmpty(t, story.ID)
		got, err := repo.GetStory(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Equal(t, "Лес", got.Title)
		assert.Equal(t, "author-1", got.AuthorID)
		assert.NotNil(t, got.Branches)
		assert.Empty(t, got.Branches)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get unknown story", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetStory(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
	})

	t.Run("put branches replaces whole sequence", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1", b("b1", "b2"), b("b2"))

		want := []models.Branch{b("b3", "b1"), b("b1", "b3")}
		updated, err := repo.PutStoryBranches(ctx, story.ID, want)
		require.NoError(t, err)
		if diff := cmp.Diff(want, updated.Branches); diff != "" {
			t.Errorf("branches mismatch (-want +got):\n%s", diff)
		}

		reloaded, err := repo.GetStory(ctx, story.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(want, reloaded.Branches); diff != "" {
			t.Errorf("reloaded branches mismatch (-want +got):\n%s", diff)
		}

		_, err = repo.PutStoryBranches(ctx, "missing", want)
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
	})

	t.Run("append branch keeps order and rejects duplicates", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1", b("b1", "b2"))

		added, err := repo.AppendBranch(ctx, story.ID, models.Branch{ID: "b2", Text: "second"})
		require.NoError(t, err)
		assert.Equal(t, "b2", added.ID)
		assert.NotNil(t, added.Choices)

		got, err := repo.GetStory(ctx, story.ID)
		require.NoError(t, err)
		require.Len(t, got.Branches, 2)
		assert.Equal(t, "b1", got.Branches[0].ID)
		assert.Equal(t, "b2", got.Branches[1].ID)

		_, err = repo.AppendBranch(ctx, story.ID, models.Branch{ID: "b1"})
		assert.ErrorIs(t, err, models.ErrDuplicateBranchID)

		_, err = repo.AppendBranch(ctx, "missing", models.Branch{ID: "b9"})
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
	})

	t.Run("delete branch leaves dangling references", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1", b("b1", "b2"), b("b2", "b3"), b("b3"))

		require.NoError(t, repo.DeleteBranch(ctx, story.ID, "b2"))

		got, err := repo.GetStory(ctx, story.ID)
		require.NoError(t, err)
		require.Len(t, got.Branches, 2)
		assert.Equal(t, "b1", got.Branches[0].ID)
		assert.Equal(t, "b3", got.Branches[1].ID)
		assert.Equal(t, "b2", got.Branches[0].Choices[0].NextBranchID)

		assert.ErrorIs(t, repo.DeleteBranch(ctx, story.ID, "b2"), models.ErrBranchNotFound)
		assert.ErrorIs(t, repo.DeleteBranch(ctx, "missing", "b1"), models.ErrStoryNotFound)
	})

	t.Run("metadata status and cover updates", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1", b("b1"))

		updated, err := repo.UpdateMetadata(ctx, story.ID, "Горы", "Перевал")
		require.NoError(t, err)
		assert.Equal(t, "Горы", updated.Title)
		assert.Equal(t, "Перевал", updated.Description)
		assert.Len(t, updated.Branches, 1)

		updated, err = repo.UpdateStatus(ctx, story.ID, models.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, updated.Status)

		updated, err = repo.UpdateCoverImage(ctx, story.ID, "https://cdn.example/cover.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/cover.png", updated.CoverImage)

		_, err = repo.UpdateStatus(ctx, "missing", models.StatusPending)
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
	})

	t.Run("listings report branch counts", func(t *testing.T) {
		repo := newRepo(t)
		first := seed(t, repo, "author-1", b("b1"), b("b2"))
		seed(t, repo, "author-2")
		third := seed(t, repo, "author-1")
		_, err := repo.UpdateStatus(ctx, third.ID, models.StatusPending)
		require.NoError(t, err)

		mine, err := repo.ListByAuthor(ctx, "author-1", 10, 0)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		counts := map[string]int{}
		for _, s := range mine {
			counts[s.ID] = s.BranchCount
		}
		assert.Equal(t, 2, counts[first.ID])
		assert.Equal(t, 0, counts[third.ID])

		page, err := repo.ListByAuthor(ctx, "author-1", 1, 1)
		require.NoError(t, err)
		assert.Len(t, page, 1)

		pending, err := repo.ListByStatus(ctx, models.StatusPending, 10, 0)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, third.ID, pending[0].ID)

		none, err := repo.ListByAuthor(ctx, "nobody", 10, 0)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete story", func(t *testing.T) {
		repo := newRepo(t)
		story := seed(t, repo, "author-1")

		require.NoError(t, repo.Delete(ctx, story.ID))
		_, err := repo.GetStory(ctx, story.ID)
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, story.ID), models.ErrStoryNotFound)
	})
}
