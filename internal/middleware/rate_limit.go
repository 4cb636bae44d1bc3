package middleware

import (
	"net/http"
	"strconv"
	"time"

	"story-branches/internal/models"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig задает окно и число запросов в нем на одного пользователя.
type RateLimitConfig struct {
	Rate  time.Duration
	Limit uint
}

// NewRateLimitStore возвращает Redis-хранилище счетчиков, если клиент задан,
// иначе хранилище в памяти процесса.
func NewRateLimitStore(client *redis.Client, cfg RateLimitConfig) ratelimit.Store {
	if client != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        cfg.Rate,
			Limit:       cfg.Limit,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  cfg.Rate,
		Limit: cfg.Limit,
	})
}

// RateLimitByActor ограничивает частоту запросов по uid пользователя.
// Ставится после AuthMiddleware; без пользователя ключом служит IP клиента.
func RateLimitByActor(store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RateLimit")
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("key", actorKey(c)),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(int(time.Until(info.ResetTime).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    models.ErrCodeRateLimited,
				Message: "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: actorKey,
	})
}

func actorKey(c *gin.Context) string {
	if actor, ok := ActorFrom(c); ok && actor.UID != "" {
		return "uid:" + actor.UID
	}
	return "ip:" + c.ClientIP()
}
