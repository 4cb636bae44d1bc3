package interfaces

import (
	"context"

	"story-branches/internal/models"
)

// StoryRepository persists stories. The branches field is always written as a
// whole; there is no version check, so the last writer wins.
//
// Implementations return models.ErrStoryNotFound / models.ErrBranchNotFound for
// missing records and wrap failed writes with models.ErrPersistence.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// Create inserts a new story. ID, timestamps and an empty branch list are filled in when missing.
	Create(ctx context.Context, story *models.Story) error

	// GetStory returns the full story document including all branches.
	GetStory(ctx context.Context, id string) (*models.Story, error)

	// PutStoryBranches replaces the branches field of the story wholesale.
	PutStoryBranches(ctx context.Context, id string, branches []models.Branch) (*models.Story, error)

	// AppendBranch adds a branch to the end of the sequence.
	// Fails with models.ErrDuplicateBranchID when the id is already used in the story.
	AppendBranch(ctx context.Context, id string, branch models.Branch) (*models.Branch, error)

	// DeleteBranch removes the branch from the sequence. Choices pointing at it are left untouched.
	DeleteBranch(ctx context.Context, id, branchID string) error

	UpdateMetadata(ctx context.Context, id, title, description string) (*models.Story, error)
	UpdateStatus(ctx context.Context, id string, status models.StoryStatus) (*models.Story, error)
	UpdateCoverImage(ctx context.Context, id, coverImageURL string) (*models.Story, error)

	// ListByAuthor returns summaries of the author's stories, most recently updated first.
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.StorySummary, error)

	// ListByStatus returns summaries of stories in the given status, most recently updated first.
	ListByStatus(ctx context.Context, status models.StoryStatus, limit, offset int) ([]models.StorySummary, error)

	Delete(ctx context.Context, id string) error
}
