package httpdto

import (
	"time"

	"cipher-chat/internal/domain/user"
)

// SidebarUsersResponse is returned by GET /api/messages/users
type SidebarUsersResponse struct {
	Users []UserDTO `json:"users"`
}

// OnlineUsersResponse is returned by GET /api/users/online
type OnlineUsersResponse struct {
	UserIDs []string `json:"user_ids"`
}

// UserDTO represents a user in API responses. The password hash never leaves
// the domain layer.
type UserDTO struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// FromUser converts a domain user to UserDTO
func FromUser(u user.User) UserDTO {
	return UserDTO{
		ID:         u.ID.String(),
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

// FromUserSlice converts a slice of domain users to UserDTO slice
func FromUserSlice(users []user.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = FromUser(u)
	}
	return dtos
}
