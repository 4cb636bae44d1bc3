package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// startReading открывает историю на ветке ?branchId= или на первой ветке.
// DeadEnd и StoryEnd - обычные состояния ответа, не ошибки.
func (h *StoryHandler) startReading(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	view, err := h.reader.Start(c.Request.Context(), actor, c.Param("id"), c.Query("branchId"), nil)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *StoryHandler) advanceReading(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	view, err := h.reader.Advance(c.Request.Context(), actor, c.Param("id"), req.BranchID, *req.ChoiceIndex, req.Path)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, view)
}
