package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Without returns users minus the one with the given id, keeping order.
func Without(users []User, id uuid.UUID) []User {
	filtered := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
