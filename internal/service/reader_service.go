package service

import (
	"context"
	"fmt"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"
	"story-branches/internal/story"

	"go.uber.org/zap"
)

// ReaderService walks a published story. It keeps no state between calls:
// the client sends back the breadcrumb it received and the branch it is on.
type ReaderService interface {
	// Start presents branchID when given and present, otherwise the first branch.
	Start(ctx context.Context, actor models.Actor, storyID, branchID string, path []story.PathEntry) (*story.View, error)
	// Advance follows the choice at choiceIndex from branchID.
	Advance(ctx context.Context, actor models.Actor, storyID, branchID string, choiceIndex int, path []story.PathEntry) (*story.View, error)
}

type readerServiceImpl struct {
	repo   interfaces.StoryRepository
	logger *zap.Logger
}

// NewReaderService creates the reading service.
func NewReaderService(repo interfaces.StoryRepository, logger *zap.Logger) ReaderService {
	return &readerServiceImpl{repo: repo, logger: logger.Named("ReaderService")}
}

func (s *readerServiceImpl) Start(ctx context.Context, actor models.Actor, storyID, branchID string, path []story.PathEntry) (*story.View, error) {
	nav, err := s.navigator(ctx, actor, storyID, path)
	if err != nil {
		return nil, err
	}
	if err := nav.Start(ctx, storyID, branchID); err != nil {
		readerTransitionsTotal.WithLabelValues(string(story.StateError)).Inc()
		return nil, err
	}
	readerTransitionsTotal.WithLabelValues(string(nav.State())).Inc()
	v := nav.View()
	return &v, nil
}

func (s *readerServiceImpl) Advance(ctx context.Context, actor models.Actor, storyID, branchID string, choiceIndex int, path []story.PathEntry) (*story.View, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branchId is required", models.ErrInvalidInput)
	}
	nav, err := s.navigator(ctx, actor, storyID, path)
	if err != nil {
		return nil, err
	}
	if err := nav.Start(ctx, storyID, branchID); err != nil {
		return nil, err
	}
	// Start откатывается на первую ветку; для перехода нужна именно указанная.
	if cur, _ := nav.Current(); cur.ID != branchID {
		return nil, fmt.Errorf("%w: %s", models.ErrBranchNotFound, branchID)
	}

	state, err := nav.Advance(choiceIndex)
	readerTransitionsTotal.WithLabelValues(string(state)).Inc()
	if err != nil {
		s.logger.Debug("Reader advance rejected",
			zap.String("storyID", storyID), zap.String("branchID", branchID),
			zap.Int("choiceIndex", choiceIndex), zap.Error(err))
		return nil, err
	}
	if state == story.StateDeadEnd {
		s.logger.Info("Reader hit a dead end",
			zap.String("storyID", storyID), zap.String("branchID", branchID), zap.Int("choiceIndex", choiceIndex))
	}
	v := nav.View()
	return &v, nil
}

func (s *readerServiceImpl) navigator(ctx context.Context, actor models.Actor, storyID string, path []story.PathEntry) (*story.Navigator, error) {
	st, err := loadForReading(ctx, s.repo, actor, storyID)
	if err != nil {
		return nil, err
	}
	session := story.Session{UserID: actor.UID, Mode: story.ModeReading}
	// Документ уже загружен при проверке доступа, повторно в БД не ходим.
	loader := story.BranchLoaderFunc(func(context.Context, string) ([]models.Branch, error) {
		return st.Branches, nil
	})
	return story.NewNavigator(loader, session, story.NewPathTracker(session, path...)), nil
}
