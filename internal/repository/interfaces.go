package repository

import (
	"context"

	"cipher-chat/internal/domain/message"
	"cipher-chat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetAllUsers(ctx context.Context) ([]user.User, error)
	GetUsersExcept(ctx context.Context, id uuid.UUID) ([]user.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetConversation(ctx context.Context, userA, userB uuid.UUID, q message.ConversationQuery) ([]message.Message, error)
}
