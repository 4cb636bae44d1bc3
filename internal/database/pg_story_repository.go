package database

import (
	"context"
	"fmt"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgStoryRepository creates a PostgreSQL-backed StoryRepository.
// Branches live in a single JSONB column and are always rewritten whole.
func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

const storyFields = `id, title, description, cover_image, author_id, status, branches, created_at, updated_at`

const summaryFields = `id, title, description, cover_image, author_id, status,
	jsonb_array_length(branches) AS branch_count, created_at, updated_at`

const (
	createStoryQuery = `
INSERT INTO stories (id, title, description, cover_image, author_id, status, branches, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getStoryQuery = `SELECT ` + storyFields + ` FROM stories WHERE id = $1`

	putStoryBranchesQuery = `
UPDATE stories SET branches = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + storyFields

	// Добавляет ветку в конец массива, только если ее id еще не занят.
	appendBranchQuery = `
UPDATE stories SET branches = branches || jsonb_build_array($2::jsonb), updated_at = NOW()
WHERE id = $1
  AND NOT EXISTS (SELECT 1 FROM jsonb_array_elements(branches) AS b WHERE b->>'_id' = $3)
RETURNING id`

	// Фильтрует ветку из массива, сохраняя порядок остальных.
	deleteBranchQuery = `
UPDATE stories SET
	branches = COALESCE((
		SELECT jsonb_agg(t.elem ORDER BY t.pos)
		FROM jsonb_array_elements(branches) WITH ORDINALITY AS t(elem, pos)
		WHERE t.elem->>'_id' <> $2
	), '[]'::jsonb),
	updated_at = NOW()
WHERE id = $1
  AND EXISTS (SELECT 1 FROM jsonb_array_elements(branches) AS b WHERE b->>'_id' = $2)
RETURNING id`

	storyExistsQuery = `SELECT EXISTS (SELECT 1 FROM stories WHERE id = $1)`

	updateMetadataQuery = `
UPDATE stories SET title = $2, description = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + storyFields

	updateStatusQuery = `
UPDATE stories SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + storyFields

	updateCoverImageQuery = `
UPDATE stories SET cover_image = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + storyFields

	listByAuthorQuery = `SELECT ` + summaryFields + ` FROM stories
WHERE author_id = $1
ORDER BY updated_at DESC, id
LIMIT $2 OFFSET $3`

	listByStatusQuery = `SELECT ` + summaryFields + ` FROM stories
WHERE status = $1
ORDER BY updated_at DESC, id
LIMIT $2 OFFSET $3`

	deleteStoryQuery = `DELETE FROM stories WHERE id = $1`
)

// Create inserts a new story record.
func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	prepareNewStory(story)

	_, err := r.db.Exec(ctx, createStoryQuery,
		story.ID,
		story.Title,
		story.Description,
		story.CoverImage,
		story.AuthorID,
		story.Status,
		story.Branches,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.String("authorID", story.AuthorID))
		return fmt.Errorf("%w: ошибка создания истории: %w", models.ErrPersistence, err)
	}
	r.logger.Info("Story created", zap.String("storyID", story.ID), zap.String("authorID", story.AuthorID))
	return nil
}

// GetStory retrieves the full story document.
func (r *pgStoryRepository) GetStory(ctx context.Context, id string) (*models.Story, error) {
	return r.getOne(ctx, "get story", id, getStoryQuery, id)
}

// PutStoryBranches overwrites the branches column in one statement.
func (r *pgStoryRepository) PutStoryBranches(ctx context.Context, id string, branches []models.Branch) (*models.Story, error) {
	if branches == nil {
		branches = []models.Branch{}
	}
	story, err := r.getOne(ctx, "put branches", id, putStoryBranchesQuery, id, branches)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Story branches replaced", zap.String("storyID", id), zap.Int("branches", len(branches)))
	return story, nil
}

// AppendBranch adds the branch at the end of the sequence.
func (r *pgStoryRepository) AppendBranch(ctx context.Context, id string, branch models.Branch) (*models.Branch, error) {
	if branch.Choices == nil {
		branch.Choices = []models.Choice{}
	}
	var returnedID string
	err := pgxscan.Get(ctx, r.db, &returnedID, appendBranchQuery, id, branch, branch.ID)
	if err != nil {
		if !pgxscan.NotFound(err) {
			r.logger.Error("Failed to append branch", zap.String("storyID", id), zap.String("branchID", branch.ID), zap.Error(err))
			return nil, fmt.Errorf("%w: ошибка добавления ветки: %w", models.ErrPersistence, err)
		}
		// Либо истории нет, либо id ветки уже занят.
		exists, exErr := r.exists(ctx, id)
		if exErr != nil {
			return nil, exErr
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s", models.ErrDuplicateBranchID, branch.ID)
	}
	r.logger.Debug("Branch appended", zap.String("storyID", id), zap.String("branchID", branch.ID))
	return &branch, nil
}

// DeleteBranch filters the branch out of the sequence.
func (r *pgStoryRepository) DeleteBranch(ctx context.Context, id, branchID string) error {
	var returnedID string
	err := pgxscan.Get(ctx, r.db, &returnedID, deleteBranchQuery, id, branchID)
	if err != nil {
		if !pgxscan.NotFound(err) {
			r.logger.Error("Failed to delete branch", zap.String("storyID", id), zap.String("branchID", branchID), zap.Error(err))
			return fmt.Errorf("%w: ошибка удаления ветки: %w", models.ErrPersistence, err)
		}
		exists, exErr := r.exists(ctx, id)
		if exErr != nil {
			return exErr
		}
		if !exists {
			return fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
		}
		return fmt.Errorf("%w: %s", models.ErrBranchNotFound, branchID)
	}
	r.logger.Debug("Branch deleted", zap.String("storyID", id), zap.String("branchID", branchID))
	return nil
}

// UpdateMetadata updates title and description.
func (r *pgStoryRepository) UpdateMetadata(ctx context.Context, id, title, description string) (*models.Story, error) {
	return r.getOne(ctx, "update metadata", id, updateMetadataQuery, id, title, description)
}

// UpdateStatus sets the lifecycle status. Transition rules are checked by the caller.
func (r *pgStoryRepository) UpdateStatus(ctx context.Context, id string, status models.StoryStatus) (*models.Story, error) {
	return r.getOne(ctx, "update status", id, updateStatusQuery, id, status)
}

// UpdateCoverImage stores the URL returned by object storage.
func (r *pgStoryRepository) UpdateCoverImage(ctx context.Context, id, coverImageURL string) (*models.Story, error) {
	return r.getOne(ctx, "update cover image", id, updateCoverImageQuery, id, coverImageURL)
}

// ListByAuthor returns the author's stories without branches.
func (r *pgStoryRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.StorySummary, error) {
	summaries := make([]models.StorySummary, 0)
	if err := pgxscan.Select(ctx, r.db, &summaries, listByAuthorQuery, authorID, limit, offset); err != nil {
		r.logger.Error("Failed to list stories by author", zap.String("authorID", authorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения списка историй автора: %w", err)
	}
	return summaries, nil
}

// ListByStatus returns stories in the given status without branches.
func (r *pgStoryRepository) ListByStatus(ctx context.Context, status models.StoryStatus, limit, offset int) ([]models.StorySummary, error) {
	summaries := make([]models.StorySummary, 0)
	if err := pgxscan.Select(ctx, r.db, &summaries, listByStatusQuery, status, limit, offset); err != nil {
		r.logger.Error("Failed to list stories by status", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения списка историй по статусу: %w", err)
	}
	return summaries, nil
}

// Delete removes the story.
func (r *pgStoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.String("storyID", id), zap.Error(err))
		return fmt.Errorf("%w: ошибка удаления истории: %w", models.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
	}
	r.logger.Info("Story deleted", zap.String("storyID", id))
	return nil
}

func (r *pgStoryRepository) getOne(ctx context.Context, op, id, query string, args ...any) (*models.Story, error) {
	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("Story not found", zap.String("op", op), zap.String("storyID", id))
			return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
		}
		r.logger.Error("Story query failed", zap.String("op", op), zap.String("storyID", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", models.ErrPersistence, op, err)
	}
	if story.Branches == nil {
		story.Branches = []models.Branch{}
	}
	return story, nil
}

func (r *pgStoryRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, storyExistsQuery, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: проверка существования истории: %w", models.ErrPersistence, err)
	}
	return exists, nil
}

// prepareNewStory fills the fields a new record must have.
func prepareNewStory(story *models.Story) {
	if story.ID == "" {
		story.ID = uuid.NewString()
	}
	if story.Status == "" {
		story.Status = models.StatusDraft
	}
	if story.Branches == nil {
		story.Branches = []models.Branch{}
	}
	now := time.Now().UTC()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = story.CreatedAt
}
