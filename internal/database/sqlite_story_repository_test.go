package database

import (
	"context"
	"path/filepath"
	"testing"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSQLiteRepo(t *testing.T) interfaces.StoryRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "stories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStoryRepository(db, zaptest.NewLogger(t))
}

func TestSQLiteStoryRepository(t *testing.T) {
	runStoryRepositoryContract(t, newSQLiteRepo)
}

func TestSQLiteStoryRepository_CorruptBranchesDocument(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "stories.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLiteStoryRepository(db, zaptest.NewLogger(t))

	story := &models.Story{Title: "t", AuthorID: "a"}
	require.NoError(t, repo.Create(ctx, story))
	_, err = db.ExecContext(ctx, `UPDATE stories SET branches = 'not json' WHERE id = ?`, story.ID)
	require.NoError(t, err)

	_, err = repo.GetStory(ctx, story.ID)
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestSQLiteTimeLayoutSortsLexically(t *testing.T) {
	a := parseTime("2024-01-02T03:04:05.100000000Z")
	b := parseTime("2024-01-02T03:04:05.900000000Z")
	assert.True(t, a.Before(b))
	assert.Less(t, formatTime(a), formatTime(b))
}
