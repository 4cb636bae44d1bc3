package models

// Роли из claim role токена.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// IsModerator reports whether role may decide on pending stories and edit any story.
func IsModerator(role string) bool {
	return role == RoleModerator
}

// IsKnownRole reports whether role is one this service understands.
func IsKnownRole(role string) bool {
	return role == RoleUser || role == RoleModerator
}
