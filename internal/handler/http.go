package handler

import (
	"errors"
	"net/http"
	"strconv"

	"story-branches/internal/middleware"
	"story-branches/internal/models"
	"story-branches/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoryHandler обслуживает HTTP API историй, веток и чтения.
type StoryHandler struct {
	stories        service.StoryService
	branches       service.BranchService
	reader         service.ReaderService
	verifier       middleware.TokenVerifier
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewStoryHandler создает обработчик. maxUploadBytes ограничивает размер загружаемой обложки.
func NewStoryHandler(
	stories service.StoryService,
	branches service.BranchService,
	reader service.ReaderService,
	verifier middleware.TokenVerifier,
	maxUploadBytes int64,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		stories:        stories,
		branches:       branches,
		reader:         reader,
		verifier:       verifier,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("StoryHandler"),
	}
}

// RegisterRoutes регистрирует все маршруты API. Все они требуют Bearer-токен.
// illustrationLimit (может быть nil) ограничивает частоту генерации иллюстраций.
func (h *StoryHandler) RegisterRoutes(router gin.IRouter, illustrationLimit gin.HandlerFunc) {
	auth := middleware.AuthMiddleware(h.verifier, h.logger)
	moderatorOnly := middleware.RequireRole(h.logger, models.RoleModerator)
	illustrate := []gin.HandlerFunc{h.illustrateBranch}
	if illustrationLimit != nil {
		illustrate = append([]gin.HandlerFunc{illustrationLimit}, illustrate...)
	}

	stories := router.Group("/stories", auth)
	{
		stories.POST("", h.createStory)
		stories.GET("/me", h.listMyStories)
		stories.GET("/public", h.listPublicStories)
		stories.GET("/pending", moderatorOnly, h.listPendingStories)
		stories.GET("/:id", h.getStory)
		stories.PATCH("/:id", h.updateStory)
		stories.DELETE("/:id", h.deleteStory)
		stories.POST("/:id/submit", h.submitStory)
		stories.POST("/:id/moderation", moderatorOnly, h.moderateStory)
		stories.POST("/:id/cover", h.uploadCover)

		stories.GET("/:id/branches", h.listBranches)
		stories.POST("/:id/branches", h.addBranch)
		stories.PUT("/:id/branches/:branchId", h.saveBranch)
		stories.DELETE("/:id/branches/:branchId", h.removeBranch)
		stories.POST("/:id/branches/:branchId/choices", h.addChoice)
		stories.DELETE("/:id/branches/:branchId/choices/:index", h.removeChoice)
		stories.POST("/:id/branches/:branchId/choices/:index/follow", h.followChoice)
		stories.POST("/:id/branches/:branchId/illustration", illustrate...)
		stories.GET("/:id/diagnostics/dangling", h.diagnostics)

		stories.GET("/:id/read", h.startReading)
		stories.POST("/:id/read/advance", h.advanceReading)
	}
}

// handleServiceError переводит ошибки сервисов в HTTP-ответы.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		status int
		code   string
	)
	message := err.Error()

	switch {
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrTokenMalformed):
		status, code = http.StatusUnauthorized, models.ErrCodeUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status, code = http.StatusForbidden, models.ErrCodeForbidden
	case errors.Is(err, models.ErrStoryNotFound),
		errors.Is(err, models.ErrBranchNotFound),
		errors.Is(err, models.ErrNotFound):
		status, code = http.StatusNotFound, models.ErrCodeNotFound
	case errors.Is(err, models.ErrInvalidChoice):
		status, code = http.StatusBadRequest, models.ErrCodeInvalidChoice
	case errors.Is(err, models.ErrEmptyChoiceText),
		errors.Is(err, models.ErrInvalidInput):
		status, code = http.StatusBadRequest, models.ErrCodeValidation
	case errors.Is(err, models.ErrDuplicateBranchID),
		errors.Is(err, models.ErrNavigationFinished),
		errors.Is(err, models.ErrNavigationNotStarted):
		status, code = http.StatusConflict, models.ErrCodeConflict
	case errors.Is(err, models.ErrInvalidStatusTransition):
		status, code = http.StatusConflict, models.ErrCodeStatusTransition
	case errors.Is(err, models.ErrEmptyStory):
		status, code = http.StatusConflict, models.ErrCodeEmptyStory
	case errors.Is(err, models.ErrImageStorageDisabled),
		errors.Is(err, models.ErrIllustrationDisabled):
		status, code = http.StatusNotImplemented, models.ErrCodeNotImplemented
	default:
		// ErrPersistence и все неожиданное: подробности только в логе.
		status, code = http.StatusInternalServerError, models.ErrCodeInternal
		message = "Internal server error"
		logger.Error("Unhandled service error",
			zap.String("path", c.FullPath()), zap.String("method", c.Request.Method), zap.Error(err))
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: message})
}

func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    models.ErrCodeUnauthorized,
			Message: "Unauthorized",
		})
	}
	return actor, ok
}

// pagination читает limit/offset из query. Пустые значения означают значения по умолчанию сервиса.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			badRequest(c, "Invalid 'limit' parameter")
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			badRequest(c, "Invalid 'offset' parameter")
			return 0, 0, false
		}
	}
	return limit, offset, true
}

func choiceIndexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Invalid choice index")
		return 0, false
	}
	return idx, true
}
