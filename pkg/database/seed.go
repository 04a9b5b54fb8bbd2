package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cipher-chat/internal/cipher"
	"cipher-chat/internal/domain/message"
	"cipher-chat/internal/domain/user"
	"cipher-chat/internal/repository"
	chat_errors "cipher-chat/pkg/errors"
	"cipher-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password      string
	TestUserCount int
	Shift         int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password:      "Password@123",
		TestUserCount: 5,
		Shift:         cipher.DefaultShift,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users    []user.User
	Messages []message.Message
}

var seedNames = []string{"Alice Martin", "Bob Dupont", "Chloe Bernard", "David Petit", "Emma Robert", "Farid Haddad", "Gina Rossi"}

// SeedDevelopment inserts demo users and a short exchange between the first two.
// Users that already exist are looked up by email so the command can be re-run.
func SeedDevelopment(ctx context.Context, pool *pgxpool.Pool, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	if cfg.TestUserCount > len(seedNames) {
		cfg.TestUserCount = len(seedNames)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := repository.NewUserRepository(pool)
	messages := repository.NewMessageRepository(pool)

	result := &SeedResult{}
	now := time.Now().UTC()
	for i := 0; i < cfg.TestUserCount; i++ {
		email := fmt.Sprintf("user%d@cipher.chat", i+1)
		u := user.User{
			FullName:     seedNames[i],
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    now,
		}
		err := users.Create(ctx, &u)
		if errors.Is(err, chat_errors.ErrAlreadyExists) {
			u, err = users.GetUserByEmail(ctx, email)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		result.Users = append(result.Users, u)
	}

	if len(result.Users) < 2 {
		return result, nil
	}

	codec := cipher.NewCodec(cfg.Shift)
	a, b := result.Users[0], result.Users[1]
	lines := []struct {
		from, to uuid.UUID
		text     string
	}{
		{a.ID, b.ID, "Hello there!"},
		{b.ID, a.ID, "Hi! Ready for the meeting at 10?"},
		{a.ID, b.ID, "Yes, see you soon."},
	}
	for i, line := range lines {
		encoded := codec.Encode(line.text)
		at := now.Add(time.Duration(i) * time.Second)
		m := message.Message{SenderID: line.from, ReceiverID: line.to, Text: &encoded, CreatedAt: at}
		if err := messages.Create(ctx, &m); err != nil {
			return nil, fmt.Errorf("failed to seed message: %w", err)
		}
		result.Messages = append(result.Messages, m)
	}

	logger.GetGlobalLogger().Infof("Seeded %d users and %d messages", len(result.Users), len(result.Messages))
	return result, nil
}
