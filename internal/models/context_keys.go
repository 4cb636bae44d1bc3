package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

const (
	// UserContextKey хранит UID пользователя (string) в контексте запроса.
	UserContextKey contextKey = "uid"
	// RoleContextKey хранит роль пользователя (string) в контексте запроса.
	RoleContextKey contextKey = "role"
)

// Actor identifies who performs an operation.
type Actor struct {
	UID  string
	Role string
}

// IsModerator reports whether the actor has the moderator role.
func (a Actor) IsModerator() bool {
	return IsModerator(a.Role)
}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, actor.UID)
	return context.WithValue(ctx, RoleContextKey, actor.Role)
}

// ActorFromContext извлекает Actor из контекста.
// Возвращает false, если UID не найден или пуст.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	uid, ok := ctx.Value(UserContextKey).(string)
	if !ok || uid == "" {
		return Actor{}, false
	}
	role, _ := ctx.Value(RoleContextKey).(string)
	return Actor{UID: uid, Role: role}, true
}
