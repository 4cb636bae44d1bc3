package database

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// Фиксированная ширина, чтобы строки сортировались как время.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ interfaces.StoryRepository = (*sqliteStoryRepository)(nil)

type sqliteStoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) a SQLite database file and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть sqlite %s: %w", path, err)
	}
	// Один writer: так read-modify-write внутри транзакции не конфликтует.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось применить схему sqlite: %w", err)
	}
	return db, nil
}

// NewSQLiteStoryRepository creates a StoryRepository on top of an opened SQLite database.
func NewSQLiteStoryRepository(db *sql.DB, logger *zap.Logger) interfaces.StoryRepository {
	return &sqliteStoryRepository{
		db:     db,
		logger: logger.Named("SQLiteStoryRepo"),
	}
}

const sqliteStoryFields = `id, title, description, cover_image, author_id, status, branches, created_at, updated_at`

const sqliteSummaryFields = `id, title, description, cover_image, author_id, status,
	json_array_length(branches), created_at, updated_at`

func (r *sqliteStoryRepository) Create(ctx context.Context, story *models.Story) error {
	prepareNewStory(story)

	raw, err := json.Marshal(story.Branches)
	if err != nil {
		return fmt.Errorf("%w: ошибка сериализации веток: %w", models.ErrPersistence, err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO stories (`+sqliteStoryFields+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID, story.Title, story.Description, story.CoverImage, story.AuthorID, string(story.Status),
		string(raw), formatTime(story.CreatedAt), formatTime(story.UpdatedAt))
	if err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.String("authorID", story.AuthorID))
		return fmt.Errorf("%w: ошибка создания истории: %w", models.ErrPersistence, err)
	}
	r.logger.Info("Story created", zap.String("storyID", story.ID), zap.String("authorID", story.AuthorID))
	return nil
}

func (r *sqliteStoryRepository) GetStory(ctx context.Context, id string) (*models.Story, error) {
	return r.get(ctx, r.db, id)
}

func (r *sqliteStoryRepository) PutStoryBranches(ctx context.Context, id string, branches []models.Branch) (*models.Story, error) {
	if branches == nil {
		branches = []models.Branch{}
	}
	if err := r.writeBranches(ctx, r.db, id, branches); err != nil {
		return nil, err
	}
	return r.get(ctx, r.db, id)
}

func (r *sqliteStoryRepository) AppendBranch(ctx context.Context, id string, branch models.Branch) (*models.Branch, error) {
	if branch.Choices == nil {
		branch.Choices = []models.Choice{}
	}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		story, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, b := range story.Branches {
			if b.ID == branch.ID {
				return fmt.Errorf("%w: %s", models.ErrDuplicateBranchID, branch.ID)
			}
		}
		return r.writeBranches(ctx, tx, id, append(story.Branches, branch))
	})
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *sqliteStoryRepository) DeleteBranch(ctx context.Context, id, branchID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		story, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		kept := make([]models.Branch, 0, len(story.Branches))
		for _, b := range story.Branches {
			if b.ID != branchID {
				kept = append(kept, b)
			}
		}
		if len(kept) == len(story.Branches) {
			return fmt.Errorf("%w: %s", models.ErrBranchNotFound, branchID)
		}
		return r.writeBranches(ctx, tx, id, kept)
	})
}

func (r *sqliteStoryRepository) UpdateMetadata(ctx context.Context, id, title, description string) (*models.Story, error) {
	return r.update(ctx, id, `UPDATE stories SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, formatTime(time.Now()), id)
}

func (r *sqliteStoryRepository) UpdateStatus(ctx context.Context, id string, status models.StoryStatus) (*models.Story, error) {
	return r.update(ctx, id, `UPDATE stories SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
}

func (r *sqliteStoryRepository) UpdateCoverImage(ctx context.Context, id, coverImageURL string) (*models.Story, error) {
	return r.update(ctx, id, `UPDATE stories SET cover_image = ?, updated_at = ? WHERE id = ?`,
		coverImageURL, formatTime(time.Now()), id)
}

func (r *sqliteStoryRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.StorySummary, error) {
	return r.list(ctx, `SELECT `+sqliteSummaryFields+` FROM stories WHERE author_id = ?
		ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, authorID, limit, offset)
}

func (r *sqliteStoryRepository) ListByStatus(ctx context.Context, status models.StoryStatus, limit, offset int) ([]models.StorySummary, error) {
	return r.list(ctx, `SELECT `+sqliteSummaryFields+` FROM stories WHERE status = ?
		ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, string(status), limit, offset)
}

func (r *sqliteStoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: ошибка удаления истории: %w", models.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
	}
	r.logger.Info("Story deleted", zap.String("storyID", id))
	return nil
}

type sqlQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *sqliteStoryRepository) get(ctx context.Context, q sqlQueryer, id string) (*models.Story, error) {
	var (
		story                models.Story
		status, raw          string
		createdAt, updatedAt string
	)
	err := q.QueryRowContext(ctx, `SELECT `+sqliteStoryFields+` FROM stories WHERE id = ?`, id).Scan(
		&story.ID, &story.Title, &story.Description, &story.CoverImage, &story.AuthorID,
		&status, &raw, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
		}
		return nil, fmt.Errorf("%w: ошибка чтения истории: %w", models.ErrPersistence, err)
	}
	story.Status = models.StoryStatus(status)
	if err := json.Unmarshal([]byte(raw), &story.Branches); err != nil {
		return nil, fmt.Errorf("%w: поврежден документ веток истории %s: %w", models.ErrPersistence, id, err)
	}
	if story.Branches == nil {
		story.Branches = []models.Branch{}
	}
	story.CreatedAt = parseTime(createdAt)
	story.UpdatedAt = parseTime(updatedAt)
	return &story, nil
}

func (r *sqliteStoryRepository) writeBranches(ctx context.Context, q sqlQueryer, id string, branches []models.Branch) error {
	raw, err := json.Marshal(branches)
	if err != nil {
		return fmt.Errorf("%w: ошибка сериализации веток: %w", models.ErrPersistence, err)
	}
	res, err := q.ExecContext(ctx, `UPDATE stories SET branches = ?, updated_at = ? WHERE id = ?`,
		string(raw), formatTime(time.Now()), id)
	if err != nil {
		r.logger.Error("Failed to write branches", zap.String("storyID", id), zap.Error(err))
		return fmt.Errorf("%w: ошибка записи веток: %w", models.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
	}
	return nil
}

func (r *sqliteStoryRepository) update(ctx context.Context, id, query string, args ...any) (*models.Story, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Story update failed", zap.String("storyID", id), zap.Error(err))
		return nil, fmt.Errorf("%w: ошибка обновления истории: %w", models.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, id)
	}
	return r.get(ctx, r.db, id)
}

func (r *sqliteStoryRepository) list(ctx context.Context, query string, args ...any) ([]models.StorySummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка историй: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.StorySummary, 0)
	for rows.Next() {
		var (
			s                    models.StorySummary
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.CoverImage, &s.AuthorID,
			&status, &s.BranchCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки списка историй: %w", err)
		}
		s.Status = models.StoryStatus(status)
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации списка историй: %w", err)
	}
	return summaries, nil
}

func (r *sqliteStoryRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: не удалось начать транзакцию: %w", models.ErrPersistence, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: не удалось зафиксировать транзакцию: %w", models.ErrPersistence, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
