package repository

import (
	"context"
	"fmt"
	"time"

	"cipher-chat/internal/domain/message"
	chat_errors "cipher-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `id, sender_id, receiver_id, text, image, created_at, updated_at`

type PostgresMessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create stores m as is. Text is expected to be encoded already.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.Image, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return chat_errors.ErrAlreadyExists
		case isForeignKeyViolation(err):
			return chat_errors.ErrNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetConversation returns the messages exchanged between userA and userB in
// either direction, oldest first. With a limit, the newest q.Limit messages
// are kept.
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, userA, userB uuid.UUID, q message.ConversationQuery) ([]message.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))`
	args := []any{userA, userB}

	if !q.Before.IsZero() {
		args = append(args, q.Before)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query = `SELECT * FROM (` + query + fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d) recent ORDER BY created_at ASC, id ASC`, len(args))
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (message.Message, error) {
		var m message.Message
		err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt, &m.UpdatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	return messages, nil
}
