package services

import (
	"context"
	"sort"
	"sync"

	"cipher-chat/internal/domain/message"
	"cipher-chat/internal/domain/user"
	chat_errors "cipher-chat/pkg/errors"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users    []user.User
	err      error
	allCalls int
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.users = append(r.users, *u)
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, chat_errors.ErrNotFound
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	if r.err != nil {
		return user.User{}, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, chat_errors.ErrNotFound
}

func (r *fakeUserRepo) GetAllUsers(context.Context) ([]user.User, error) {
	r.allCalls++
	if r.err != nil {
		return nil, r.err
	}
	return append([]user.User(nil), r.users...), nil
}

func (r *fakeUserRepo) GetUsersExcept(_ context.Context, id uuid.UUID) ([]user.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return user.Without(r.users, id), nil
}

type fakeMessageRepo struct {
	stored []message.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	r.stored = append(r.stored, *m)
	return nil
}

func (r *fakeMessageRepo) GetConversation(_ context.Context, a, b uuid.UUID, q message.ConversationQuery) ([]message.Message, error) {
	var out []message.Message
	for _, m := range r.stored {
		if !q.Before.IsZero() && !m.CreatedAt.Before(q.Before) {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

type fakeCache struct {
	users   []user.User
	hit     bool
	readErr error
	sets    int
}

func (c *fakeCache) GetUsers(context.Context) ([]user.User, bool, error) {
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	return c.users, c.hit, nil
}

func (c *fakeCache) SetUsers(_ context.Context, users []user.User) error {
	c.sets++
	c.users = users
	c.hit = true
	return nil
}

type fakePresence struct {
	online map[string]bool
}

func (p *fakePresence) IsOnline(_ context.Context, userID string) (bool, error) {
	return p.online[userID], nil
}

func (p *fakePresence) GetOnlineUsers(context.Context) ([]string, error) {
	ids := make([]string, 0, len(p.online))
	for id, ok := range p.online {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{channel: channel, payload: payload})
	return nil
}

type fakeImageStore struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (s *fakeImageStore) PutImage(_ context.Context, key, contentType string, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.key, s.contentType, s.body = key, contentType, body
	return "https://cdn.example.com/" + key, nil
}
