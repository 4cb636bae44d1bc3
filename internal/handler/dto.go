package handler

import (
	"story-branches/internal/models"
	"story-branches/internal/story"
)

type createStoryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateStoryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type moderateStoryRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// saveBranchRequest заменяет текст и варианты ветки целиком.
type saveBranchRequest struct {
	Text            string          `json:"text"`
	Choices         []models.Choice `json:"choices"`
	IllustrationURL string          `json:"illustrationUrl"`
}

type addBranchRequest struct {
	ID      string          `json:"_id"`
	Text    string          `json:"text"`
	Choices []models.Choice `json:"choices"`
}

type addChoiceRequest struct {
	Text string `json:"text"`
}

type followChoiceResponse struct {
	Branch  *models.Branch `json:"branch"`
	Created bool           `json:"created"`
}

type advanceRequest struct {
	BranchID    string            `json:"branchId" binding:"required"`
	ChoiceIndex *int              `json:"choiceIndex" binding:"required"`
	Path        []story.PathEntry `json:"path"`
}

type storyListResponse struct {
	Data []models.StorySummary `json:"data"`
}
