package handler

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"story-branches/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const coverFormField = "file"

func (h *StoryHandler) createStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	st, err := h.stories.CreateStory(c.Request.Context(), actor, req.Title, req.Description)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *StoryHandler) getStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	st, err := h.stories.GetStory(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoryHandler) listMyStories(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	list, err := h.stories.ListMyStories(c.Request.Context(), actor, limit, offset)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, storyListResponse{Data: list})
}

func (h *StoryHandler) listPublicStories(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	list, err := h.stories.ListPublicStories(c.Request.Context(), limit, offset)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, storyListResponse{Data: list})
}

func (h *StoryHandler) listPendingStories(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	list, err := h.stories.ListPendingStories(c.Request.Context(), actor, limit, offset)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, storyListResponse{Data: list})
}

func (h *StoryHandler) updateStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req updateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	st, err := h.stories.UpdateMetadata(c.Request.Context(), actor, c.Param("id"), req.Title, req.Description)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoryHandler) deleteStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.stories.DeleteStory(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) submitStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	st, err := h.stories.SubmitForReview(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoryHandler) moderateStory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req moderateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	st, err := h.stories.Moderate(c.Request.Context(), actor, c.Param("id"), *req.Approve)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, st)
}

// uploadCover принимает multipart-файл в поле "file". Тип определяется по содержимому,
// заголовок Content-Type части используется только если сниффер ничего не распознал.
func (h *StoryHandler) uploadCover(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			coverTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile(coverFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			coverTooLarge(c)
			return
		}
		badRequest(c, "Missing cover file: "+err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded cover", zap.Error(err))
		badRequest(c, "Cannot read cover file")
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	head, _ := reader.Peek(512)
	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" {
		contentType = fileHeader.Header.Get("Content-Type")
	}
	contentType, _, _ = strings.Cut(contentType, ";")

	st, err := h.stories.UploadCover(c.Request.Context(), actor, c.Param("id"), contentType, reader)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, st)
}

func coverTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
		Code:    models.ErrCodeBadRequest,
		Message: "Cover image is too large",
	})
}
