package handler

import (
	"net/http"

	"story-branches/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *StoryHandler) listBranches(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	branches, err := h.branches.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, branches)
}

func (h *StoryHandler) addBranch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req addBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	branch, err := h.branches.AddBranch(c.Request.Context(), actor, c.Param("id"), models.Branch{
		ID:      req.ID,
		Text:    req.Text,
		Choices: req.Choices,
	})
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

// saveBranch - upsert по id из пути: существующая ветка заменяется на месте, новая дописывается в конец.
func (h *StoryHandler) saveBranch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req saveBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	branch, err := h.branches.SaveBranch(c.Request.Context(), actor, c.Param("id"), models.Branch{
		ID:              c.Param("branchId"),
		Text:            req.Text,
		Choices:         req.Choices,
		IllustrationURL: req.IllustrationURL,
	})
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *StoryHandler) removeBranch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.branches.RemoveByID(c.Request.Context(), actor, c.Param("id"), c.Param("branchId")); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) addChoice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req addChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	branch, err := h.branches.AddChoice(c.Request.Context(), actor, c.Param("id"), c.Param("branchId"), req.Text)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *StoryHandler) removeChoice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	idx, ok := choiceIndexParam(c)
	if !ok {
		return
	}
	branch, err := h.branches.RemoveChoice(c.Request.Context(), actor, c.Param("id"), c.Param("branchId"), idx)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *StoryHandler) followChoice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	idx, ok := choiceIndexParam(c)
	if !ok {
		return
	}
	target, created, err := h.branches.FollowChoice(c.Request.Context(), actor, c.Param("id"), c.Param("branchId"), idx)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, followChoiceResponse{Branch: target, Created: created})
}

func (h *StoryHandler) illustrateBranch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	branch, err := h.branches.Illustrate(c.Request.Context(), actor, c.Param("id"), c.Param("branchId"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *StoryHandler) diagnostics(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	diag, err := h.branches.Diagnose(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, diag)
}
