package services

import (
	"context"

	"cipher-chat/internal/domain/user"
	"cipher-chat/internal/repository"
	"cipher-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserCache caches the full user directory.
type UserCache interface {
	GetUsers(ctx context.Context) ([]user.User, bool, error)
	SetUsers(ctx context.Context, users []user.User) error
}

// PresenceReader answers whether users hold a live realtime connection.
type PresenceReader interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
	GetOnlineUsers(ctx context.Context) ([]string, error)
}

type UserService struct {
	repo     repository.UserRepository
	cache    UserCache
	presence PresenceReader
	log      *logger.Logger
}

// NewUserService builds the service; cache and presence may be nil.
func NewUserService(repo repository.UserRepository, cache UserCache, presence PresenceReader, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &UserService{repo: repo, cache: cache, presence: presence, log: log}
}

// ListSidebarUsers returns every user the caller can chat with, that is
// everyone but the caller.
func (s *UserService) ListSidebarUsers(ctx context.Context, callerID uuid.UUID) ([]user.User, error) {
	if s.cache == nil {
		return s.repo.GetUsersExcept(ctx, callerID)
	}

	cached, ok, err := s.cache.GetUsers(ctx)
	if err != nil {
		s.log.Warn(ctx, "user cache read failed", zap.Error(err))
	}
	if ok {
		return user.Without(cached, callerID), nil
	}

	all, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetUsers(ctx, all); err != nil {
		s.log.Warn(ctx, "user cache write failed", zap.Error(err))
	}
	return user.Without(all, callerID), nil
}

// OnlineUsers lists the ids of users currently connected.
func (s *UserService) OnlineUsers(ctx context.Context) ([]string, error) {
	if s.presence == nil {
		return []string{}, nil
	}
	return s.presence.GetOnlineUsers(ctx)
}
