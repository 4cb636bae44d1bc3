package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"story-branches/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier проверяет строку токена и возвращает claims.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

type ginKey string

// Ключи gin.Context, под которыми лежат данные пользователя.
const (
	ctxUserKey ginKey = "uid"
	ctxRoleKey ginKey = "role"
)

// AuthMiddleware проверяет Bearer-токен и кладет Actor в контекст запроса.
// Если указаны requiredRoles, роль пользователя должна быть одной из них.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger, requiredRoles ...string) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized: Missing token")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			log.Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusUnauthorized, "Unauthorized: Malformed token header")
			return
		}

		claims, err := verifier(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				abort(c, http.StatusUnauthorized, "Unauthorized: Token expired")
			case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				abort(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
			default:
				log.Error("Unexpected token verification error", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
					Code:    models.ErrCodeInternal,
					Message: "Internal server error during token verification",
				})
			}
			return
		}

		if len(requiredRoles) > 0 && !hasRole(claims.Role, requiredRoles) {
			log.Warn("User does not have required role",
				zap.String("uid", claims.UID),
				zap.String("role", claims.Role),
				zap.Strings("requiredRoles", requiredRoles),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Code:    models.ErrCodeForbidden,
				Message: "Forbidden: Insufficient permissions",
			})
			return
		}

		actor := models.Actor{UID: claims.UID, Role: claims.Role}
		c.Set(string(ctxUserKey), actor.UID)
		c.Set(string(ctxRoleKey), actor.Role)
		c.Request = c.Request.WithContext(models.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ActorFrom возвращает пользователя, установленного AuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	return models.ActorFromContext(c.Request.Context())
}

// RequireRole пропускает запрос дальше только если роль пользователя, установленного
// AuthMiddleware, входит в roles.
func RequireRole(logger *zap.Logger, roles ...string) gin.HandlerFunc {
	log := logger.Named("RequireRole")
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !hasRole(actor.Role, roles) {
			log.Warn("User does not have required role", zap.String("uid", actor.UID), zap.String("role", actor.Role))
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Code:    models.ErrCodeForbidden,
				Message: "Forbidden: Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: msg})
}
