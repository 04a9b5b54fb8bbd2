package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cipher-chat/internal/cipher"
	"cipher-chat/internal/domain/message"
	"cipher-chat/internal/events"
	"cipher-chat/internal/repository"
	chat_errors "cipher-chat/pkg/errors"
	"cipher-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStore uploads image bytes and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type MessageServiceOptions struct {
	Messages      repository.MessageRepository
	Users         repository.UserRepository
	Images        ImageStore
	Publisher     events.Publisher
	Presence      PresenceReader
	Codec         cipher.Codec
	MaxImageBytes int64
	Logger        *logger.Logger
}

type MessageService struct {
	messages      repository.MessageRepository
	users         repository.UserRepository
	images        ImageStore
	publisher     events.Publisher
	presence      PresenceReader
	codec         cipher.Codec
	maxImageBytes int64
	log           *logger.Logger
}

func NewMessageService(opts MessageServiceOptions) *MessageService {
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &MessageService{
		messages:      opts.Messages,
		users:         opts.Users,
		images:        opts.Images,
		publisher:     opts.Publisher,
		presence:      opts.Presence,
		codec:         opts.Codec,
		maxImageBytes: opts.MaxImageBytes,
		log:           log,
	}
}

// GetConversation returns the messages exchanged between caller and other in
// both directions, oldest first, with text decoded.
func (s *MessageService) GetConversation(ctx context.Context, callerID, otherID uuid.UUID, q message.ConversationQuery) ([]message.Message, error) {
	if callerID == uuid.Nil || otherID == uuid.Nil {
		return nil, chat_errors.ErrInvalidInput
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", chat_errors.ErrInvalidInput)
	}

	msgs, err := s.messages.GetConversation(ctx, callerID, otherID, q)
	if err != nil {
		return nil, err
	}

	decoded := make([]message.Message, 0, len(msgs))
	for _, m := range msgs {
		decoded = append(decoded, m.MapText(s.codec.Decode))
	}
	return decoded, nil
}

type SendMessageInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Text       *string
	Image      *string
}

// SendMessage stores an encoded message, uploading its image first when one
// is attached, and pushes the decoded message to whichever participants are
// online. Delivery failures do not fail the send.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (message.Message, error) {
	if in.SenderID == uuid.Nil || in.ReceiverID == uuid.Nil {
		return message.Message{}, chat_errors.ErrInvalidInput
	}

	text := nonEmpty(in.Text)
	image := nonEmpty(in.Image)
	if text == nil && image == nil {
		return message.Message{}, chat_errors.ErrEmptyMessage
	}

	if _, err := s.users.GetUserByID(ctx, in.ReceiverID); err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return message.Message{}, fmt.Errorf("%w: receiver %s", chat_errors.ErrNotFound, in.ReceiverID)
		}
		return message.Message{}, err
	}

	msg := message.Message{
		ID:         uuid.New(),
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
	}

	if text != nil {
		encoded := s.codec.Encode(*text)
		msg.Text = &encoded
	}

	if image != nil {
		url, err := s.uploadImage(ctx, in.SenderID, *image)
		if err != nil {
			return message.Message{}, err
		}
		msg.Image = &url
	}

	if err := s.messages.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}

	out := msg.MapText(s.codec.Decode)
	s.deliver(ctx, out)
	return out, nil
}

func (s *MessageService) uploadImage(ctx context.Context, senderID uuid.UUID, payload string) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", chat_errors.ErrServiceUnavailable)
	}
	img, err := DecodeImagePayload(payload, s.maxImageBytes)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("messages/%s/%s%s", senderID, uuid.NewString(), img.Extension)
	url, err := s.images.PutImage(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

func (s *MessageService) deliver(ctx context.Context, msg message.Message) {
	if s.publisher == nil {
		return
	}

	payload, err := events.Marshal(events.EventNewMessage, msg)
	if err != nil {
		s.log.Error(ctx, "failed to encode message event", zap.Error(err))
		return
	}

	// Detach from the request so a client disconnect does not drop delivery.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	for _, userID := range msg.Participants() {
		if !s.isOnline(pubCtx, userID) {
			continue
		}
		if err := s.publisher.Publish(pubCtx, events.UserChannel(userID.String()), payload); err != nil {
			s.log.Warn(ctx, "failed to publish message event",
				zap.String("message_id", msg.ID.String()),
				zap.String("recipient", userID.String()),
				zap.Error(err))
		}
	}
}

func (s *MessageService) isOnline(ctx context.Context, userID uuid.UUID) bool {
	if s.presence == nil {
		return true
	}
	online, err := s.presence.IsOnline(ctx, userID.String())
	if err != nil {
		s.log.Warn(ctx, "presence lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return true
	}
	return online
}

// nonEmpty treats an empty string like an absent one. Whitespace is content.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
