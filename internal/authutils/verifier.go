package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"story-branches/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTVerifier проверяет HS256-токены внешнего провайдера идентификации.
// Сам сервис токены не выпускает.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
	logger *zap.Logger
}

// Option настраивает проверку токенов.
type Option func(*verifierOptions)

type verifierOptions struct {
	issuer string
	leeway time.Duration
}

// WithIssuer требует совпадения claim iss.
func WithIssuer(issuer string) Option {
	return func(o *verifierOptions) { o.issuer = issuer }
}

// WithLeeway допускает расхождение часов при проверке exp/nbf/iat.
func WithLeeway(d time.Duration) Option {
	return func(o *verifierOptions) { o.leeway = d }
}

// NewJWTVerifier создает верификатор. Если логгер nil, используется Noop.
func NewJWTVerifier(secret string, logger *zap.Logger, opts ...Option) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o verifierOptions
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}
	if o.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(o.leeway))
	}

	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(parserOpts...),
		logger: logger.Named("JWTVerifier"),
	}, nil
}

// VerifyToken проверяет подпись и срок действия токена и возвращает claims.
// Токен без uid или с неизвестной ролью считается невалидным; пустая роль означает user.
func (v *JWTVerifier) VerifyToken(_ context.Context, tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		v.logger.Debug("Token rejected", zap.String("tokenSnippet", tokenSnippet(tokenString)), zap.Error(err))
		return nil, mapParseError(err)
	}

	switch {
	case claims.UID == "":
		return nil, fmt.Errorf("%w: uid missing", models.ErrTokenInvalid)
	case claims.Role == "":
		claims.Role = models.RoleUser
	case !models.IsKnownRole(claims.Role):
		v.logger.Warn("Token carries unknown role", zap.String("uid", claims.UID), zap.String("role", claims.Role))
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrTokenInvalid, claims.Role)
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return models.ErrTokenMalformed
	}
	// Подпись, алгоритм, iss, отсутствующий exp: все это невалидный токен.
	return fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
}

// tokenSnippet возвращает безопасную для логирования часть токена.
func tokenSnippet(tokenString string) string {
	const limit = 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
