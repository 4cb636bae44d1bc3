package service

import (
	"context"
	"errors"
	"fmt"

	"story-branches/internal/illustration"
	"story-branches/internal/interfaces"
	"story-branches/internal/models"
	"story-branches/internal/story"

	"go.uber.org/zap"
)

// Diagnostics lists the broken parts of a story graph. Nothing here is
// enforced at write time; reading tolerates both cases.
type Diagnostics struct {
	Dangling    []story.DanglingReference `json:"dangling"`
	Unreachable []string                  `json:"unreachable"`
}

// BranchService is the authoring side of the story graph.
// Every write rewrites the whole branches field of the story; there is no
// version check, so concurrent editors overwrite each other.
type BranchService interface {
	// Get returns the branches in insertion order.
	Get(ctx context.Context, actor models.Actor, storyID string) ([]models.Branch, error)
	// SaveBranch replaces the branch with the same id in place or appends it.
	SaveBranch(ctx context.Context, actor models.Actor, storyID string, branch models.Branch) (*models.Branch, error)
	// AddBranch appends a new branch. An empty id is generated.
	AddBranch(ctx context.Context, actor models.Actor, storyID string, branch models.Branch) (*models.Branch, error)
	// RemoveByID deletes a branch. Choices pointing at it are left dangling.
	RemoveByID(ctx context.Context, actor models.Actor, storyID, branchID string) error

	AddChoice(ctx context.Context, actor models.Actor, storyID, branchID, text string) (*models.Branch, error)
	RemoveChoice(ctx context.Context, actor models.Actor, storyID, branchID string, index int) (*models.Branch, error)
	// FollowChoice returns the target of a choice, creating an empty branch
	// with the target id when it does not exist yet.
	FollowChoice(ctx context.Context, actor models.Actor, storyID, branchID string, index int) (target *models.Branch, created bool, err error)

	Illustrate(ctx context.Context, actor models.Actor, storyID, branchID string) (*models.Branch, error)
	Diagnose(ctx context.Context, actor models.Actor, storyID string) (*Diagnostics, error)
}

type branchServiceImpl struct {
	repo        interfaces.StoryRepository
	publisher   interfaces.StoryEventPublisher
	illustrator interfaces.IllustrationGenerator
	logger      *zap.Logger
}

// NewBranchService creates the authoring service.
func NewBranchService(
	repo interfaces.StoryRepository,
	publisher interfaces.StoryEventPublisher,
	illustrator interfaces.IllustrationGenerator,
	logger *zap.Logger,
) BranchService {
	return &branchServiceImpl{
		repo:        repo,
		publisher:   publisher,
		illustrator: illustrator,
		logger:      logger.Named("BranchService"),
	}
}

func (s *branchServiceImpl) Get(ctx context.Context, actor models.Actor, storyID string) ([]models.Branch, error) {
	st, err := loadForAuthoring(ctx, s.repo, actor, storyID)
	if err != nil {
		return nil, err
	}
	return st.Branches, nil
}

func (s *branchServiceImpl) SaveBranch(ctx context.Context, actor models.Actor, storyID string, branch models.Branch) (*models.Branch, error) {
	if branch.ID == "" {
		return nil, fmt.Errorf("%w: branch id is required", models.ErrInvalidInput)
	}
	st, err := loadForAuthoring(ctx, s.repo, actor, storyID)
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, actor, st, branch, "save")
}

// merge - read-modify-write всего документа веток: заменить по id на месте или добавить в конец.
func (s *branchServiceImpl) merge(ctx context.Context, actor models.Actor, st *models.Story, branch models.Branch, op string) (*models.Branch, error) {
	normalized, err := story.NormalizeChoices(branch)
	if err != nil {
		return nil, err
	}

	merged, replaced := story.Upsert(st.Branches, normalized)
	_, err = s.repo.PutStoryBranches(ctx, st.ID, merged)
	observeBranchWrite(op, err)
	if err != nil {
		s.logger.Error("Failed to save branch",
			zap.String("storyID", st.ID), zap.String("branchID", branch.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Debug("Branch saved",
		zap.String("storyID", st.ID),
		zap.String("branchID", normalized.ID),
		zap.Bool("replaced", replaced),
		zap.Int("branches", len(merged)),
	)
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:     models.EventBranchSaved,
		StoryID:  st.ID,
		BranchID: normalized.ID,
		ActorID:  actor.UID,
	})
	return &normalized, nil
}

func (s *branchServiceImpl) AddBranch(ctx context.Context, actor models.Actor, storyID string, branch models.Branch) (*models.Branch, error) {
	if _, err := loadForAuthoring(ctx, s.repo, actor, storyID); err != nil {
		return nil, err
	}
	if branch.ID == "" {
		branch.ID = story.NewBranchID()
	}
	normalized, err := story.NormalizeChoices(branch)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.AppendBranch(ctx, storyID, normalized)
	observeBranchWrite("add", err)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:     models.EventBranchSaved,
		StoryID:  storyID,
		BranchID: added.ID,
		ActorID:  actor.UID,
	})
	return added, nil
}

func (s *branchServiceImpl) RemoveByID(ctx context.Context, actor models.Actor, storyID, branchID string) error {
	if _, err := loadForAuthoring(ctx, s.repo, actor, storyID); err != nil {
		return err
	}
	err := s.repo.DeleteBranch(ctx, storyID, branchID)
	observeBranchWrite("remove", err)
	if err != nil {
		return err
	}
	s.logger.Debug("Branch removed", zap.String("storyID", storyID), zap.String("branchID", branchID))
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:     models.EventBranchDeleted,
		StoryID:  storyID,
		BranchID: branchID,
		ActorID:  actor.UID,
	})
	return nil
}

func (s *branchServiceImpl) AddChoice(ctx context.Context, actor models.Actor, storyID, branchID, text string) (*models.Branch, error) {
	st, b, err := s.loadBranch(ctx, actor, storyID, branchID)
	if err != nil {
		return nil, err
	}
	edited, _, err := story.AddChoice(b, text)
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, actor, st, edited, "add_choice")
}

func (s *branchServiceImpl) RemoveChoice(ctx context.Context, actor models.Actor, storyID, branchID string, index int) (*models.Branch, error) {
	st, b, err := s.loadBranch(ctx, actor, storyID, branchID)
	if err != nil {
		return nil, err
	}
	edited, err := story.RemoveChoice(b, index)
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, actor, st, edited, "remove_choice")
}

func (s *branchServiceImpl) FollowChoice(ctx context.Context, actor models.Actor, storyID, branchID string, index int) (*models.Branch, bool, error) {
	st, b, err := s.loadBranch(ctx, actor, storyID, branchID)
	if err != nil {
		return nil, false, err
	}
	targetID, err := story.ResolveTarget(b, index)
	if err != nil {
		return nil, false, err
	}
	if targetID == "" {
		return nil, false, fmt.Errorf("%w: choice %d has no target", models.ErrInvalidChoice, index)
	}

	if target, ok := story.EnsureTargetExists(st.Branches, targetID); ok {
		return &target, false, nil
	}

	empty := models.Branch{ID: targetID, Text: "", Choices: []models.Choice{}}
	added, err := s.repo.AppendBranch(ctx, storyID, empty)
	observeBranchWrite("follow", err)
	if errors.Is(err, models.ErrDuplicateBranchID) {
		// Ветку успел создать другой редактор.
		fresh, gErr := s.repo.GetStory(ctx, storyID)
		if gErr != nil {
			return nil, false, gErr
		}
		if target, ok := story.EnsureTargetExists(fresh.Branches, targetID); ok {
			return &target, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("Empty branch created for choice target",
		zap.String("storyID", storyID), zap.String("from", branchID), zap.String("branchID", targetID))
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:     models.EventBranchSaved,
		StoryID:  storyID,
		BranchID: targetID,
		ActorID:  actor.UID,
	})
	return added, true, nil
}

// Illustrate генерирует иллюстрацию по тексту ветки и сохраняет ее URL.
func (s *branchServiceImpl) Illustrate(ctx context.Context, actor models.Actor, storyID, branchID string) (*models.Branch, error) {
	st, b, err := s.loadBranch(ctx, actor, storyID, branchID)
	if err != nil {
		return nil, err
	}
	if b.Text == "" {
		return nil, fmt.Errorf("%w: branch %s has no text to illustrate", models.ErrInvalidInput, branchID)
	}

	url, err := s.illustrator.Generate(ctx, illustration.Prompt(st.Title, b))
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации иллюстрации: %w", err)
	}

	// Генерация может занять минуты: перечитываем документ, чтобы не затереть чужие правки.
	fresh, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	current, _, ok := story.FindByID(fresh.Branches, branchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrBranchNotFound, branchID)
	}
	current = current.Clone()
	current.IllustrationURL = url
	return s.merge(ctx, actor, fresh, current, "illustrate")
}

func (s *branchServiceImpl) Diagnose(ctx context.Context, actor models.Actor, storyID string) (*Diagnostics, error) {
	st, err := loadForAuthoring(ctx, s.repo, actor, storyID)
	if err != nil {
		return nil, err
	}
	d := &Diagnostics{
		Dangling:    story.FindDanglingReferences(st.Branches),
		Unreachable: story.UnreachableBranches(st.Branches),
	}
	if d.Dangling == nil {
		d.Dangling = []story.DanglingReference{}
	}
	if d.Unreachable == nil {
		d.Unreachable = []string{}
	}
	return d, nil
}

func (s *branchServiceImpl) loadBranch(ctx context.Context, actor models.Actor, storyID, branchID string) (*models.Story, models.Branch, error) {
	st, err := loadForAuthoring(ctx, s.repo, actor, storyID)
	if err != nil {
		return nil, models.Branch{}, err
	}
	b, _, ok := story.FindByID(st.Branches, branchID)
	if !ok {
		return nil, models.Branch{}, fmt.Errorf("%w: %s", models.ErrBranchNotFound, branchID)
	}
	return st, b, nil
}
