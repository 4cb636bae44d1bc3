package service

import (
	"context"
	"path/filepath"
	"testing"

	"story-branches/internal/database"
	"story-branches/internal/interfaces"
	"story-branches/internal/interfaces/mocks"
	"story-branches/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var (
	author    = models.Actor{UID: "author-1", Role: models.RoleUser}
	stranger  = models.Actor{UID: "user-2", Role: models.RoleUser}
	moderator = models.Actor{UID: "mod-1", Role: models.RoleModerator}
)

type fixture struct {
	repo      interfaces.StoryRepository
	publisher *mocks.StoryEventPublisher
	logger    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "stories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	publisher := new(mocks.StoryEventPublisher)
	publisher.On("PublishStoryEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		repo:      database.NewSQLiteStoryRepository(db, logger),
		publisher: publisher,
		logger:    logger,
	}
}

// seedStory создает историю автора с заданными ветками.
func (f *fixture) seedStory(t *testing.T, status models.StoryStatus, branches ...models.Branch) *models.Story {
	t.Helper()
	ctx := context.Background()
	st := &models.Story{Title: "Лес", AuthorID: author.UID}
	require.NoError(t, f.repo.Create(ctx, st))
	if len(branches) > 0 {
		_, err := f.repo.PutStoryBranches(ctx, st.ID, branches)
		require.NoError(t, err)
	}
	if status != models.StatusDraft {
		_, err := f.repo.UpdateStatus(ctx, st.ID, status)
		require.NoError(t, err)
	}
	got, err := f.repo.GetStory(ctx, st.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) branchService(illustrator interfaces.IllustrationGenerator) BranchService {
	if illustrator == nil {
		illustrator = new(mocks.IllustrationGenerator)
	}
	return NewBranchService(f.repo, f.publisher, illustrator, f.logger)
}

func publishedTypes(p *mocks.StoryEventPublisher) []models.StoryEventType {
	var out []models.StoryEventType
	for _, call := range p.Calls {
		if call.Method == "PublishStoryEvent" {
			out = append(out, call.Arguments.Get(1).(models.StoryEvent).Type)
		}
	}
	return out
}
