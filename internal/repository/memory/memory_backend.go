package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Backend is the in-memory adapter. It doubles as the fallback store the
// session service degrades to when the configured backend stops answering,
// so it must never fail.
type Backend struct {
	cache *cache.Cache

	// Guards compound read-modify-write sequences (active-session swap,
	// transcript append); individual cache ops are already thread safe.
	mu sync.Mutex

	feedback []*entity.Feedback
}

func NewBackend() *Backend {
	// Entries never expire on their own; lifecycle is driven by the session
	// store and its sweeper, not by a cache TTL.
	return &Backend{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func userKey(telegramId int64) string     { return fmt.Sprintf("user:%d", telegramId) }
func userIdKey(id uuid.UUID) string       { return "userid:" + id.String() }
func activeKey(userId uuid.UUID) string   { return "active:" + userId.String() }
func sessionKey(id uuid.UUID) string      { return "session:" + id.String() }
func turnsKey(sessionId uuid.UUID) string { return "turns:" + sessionId.String() }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (b *Backend) FindUser(ctx context.Context, telegramId int64) (*entity.User, error) {
	if x, found := b.cache.Get(userKey(telegramId)); found {
		return x.(*entity.User), nil
	}
	return nil, contract.ErrNotFound
}

func (b *Backend) CreateUser(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*entity.User, error) {
	now := time.Now()
	user := &entity.User{
		Id:            uuid.New(),
		TelegramId:    telegramId,
		Username:      optional(profile.Username),
		FirstName:     optional(profile.FirstName),
		LastName:      optional(profile.LastName),
		LanguageLevel: optional(profile.LanguageLevel),
		CreatedAt:     now,
		LastActivity:  now,
	}

	// Add fails if the key exists, which is exactly the concurrent-create
	// race the contract asks us to surface.
	if err := b.cache.Add(userKey(telegramId), user, cache.NoExpiration); err != nil {
		return nil, contract.ErrDuplicateUser
	}
	b.cache.Set(userIdKey(user.Id), user, cache.NoExpiration)
	return user, nil
}

func (b *Backend) UpdateUser(ctx context.Context, user *entity.User) error {
	if _, found := b.cache.Get(userKey(user.TelegramId)); !found {
		return contract.ErrNotFound
	}
	user.LastActivity = time.Now()
	b.cache.Set(userKey(user.TelegramId), user, cache.NoExpiration)
	b.cache.Set(userIdKey(user.Id), user, cache.NoExpiration)
	return nil
}

func (b *Backend) GetActiveSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error) {
	if x, found := b.cache.Get(activeKey(userId)); found {
		sess := x.(*entity.Session)
		if sess.IsActive {
			return sess, nil
		}
	}
	return nil, contract.ErrNotFound
}

func (b *Backend) CreateSession(ctx context.Context, userId uuid.UUID, payload map[string]interface{}) (*entity.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// One active session per user: end the previous one before creating.
	if x, found := b.cache.Get(activeKey(userId)); found {
		b.endLocked(x.(*entity.Session))
	}

	now := time.Now()
	sess := &entity.Session{
		Id:           uuid.New(),
		UserId:       userId,
		StartedAt:    now,
		LastActivity: now,
		IsActive:     true,
		Payload:      map[string]interface{}{},
	}
	for k, v := range payload {
		sess.Payload[k] = v
	}

	b.cache.Set(sessionKey(sess.Id), sess, cache.NoExpiration)
	b.cache.Set(activeKey(userId), sess, cache.NoExpiration)
	return sess, nil
}

func (b *Backend) UpdateSession(ctx context.Context, sessionId uuid.UUID, partial map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	x, found := b.cache.Get(sessionKey(sessionId))
	if !found {
		return contract.ErrSessionNotFound
	}
	sess := x.(*entity.Session)
	if !sess.IsActive {
		return contract.ErrSessionNotFound
	}

	for k, v := range partial {
		sess.Payload[k] = v
	}
	sess.LastActivity = time.Now()
	return nil
}

func (b *Backend) EndSession(ctx context.Context, sessionId uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	x, found := b.cache.Get(sessionKey(sessionId))
	if !found {
		return nil // idempotent
	}
	b.endLocked(x.(*entity.Session))
	return nil
}

func (b *Backend) endLocked(sess *entity.Session) {
	if !sess.IsActive {
		return
	}
	now := time.Now()
	sess.IsActive = false
	sess.EndedAt = &now
	b.cache.Delete(activeKey(sess.UserId))
}

func (b *Backend) AppendTurn(ctx context.Context, sessionId uuid.UUID, role, content string) (*entity.Turn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	x, found := b.cache.Get(sessionKey(sessionId))
	if !found {
		return nil, contract.ErrSessionNotFound
	}
	sess := x.(*entity.Session)
	if !sess.IsActive {
		return nil, contract.ErrSessionNotFound
	}

	turn := &entity.Turn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	var turns []*entity.Turn
	if t, ok := b.cache.Get(turnsKey(sessionId)); ok {
		turns = t.([]*entity.Turn)
	}
	b.cache.Set(turnsKey(sessionId), append(turns, turn), cache.NoExpiration)

	sess.MessagesCount++
	sess.LastActivity = turn.CreatedAt
	return turn, nil
}

func (b *Backend) ListTurns(ctx context.Context, sessionId uuid.UUID) ([]*entity.Turn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.cache.Get(turnsKey(sessionId)); ok {
		turns := t.([]*entity.Turn)
		out := make([]*entity.Turn, len(turns))
		copy(out, turns)
		return out, nil
	}
	return []*entity.Turn{}, nil
}

func (b *Backend) AddFeedback(ctx context.Context, userId uuid.UUID, rating string, comment *string, sessionId *uuid.UUID) (*entity.Feedback, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fb := &entity.Feedback{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	b.feedback = append(b.feedback, fb)
	return fb, nil
}

func (b *Backend) ListFeedback(ctx context.Context) ([]*entity.Feedback, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*entity.Feedback, len(b.feedback))
	for i, fb := range b.feedback {
		out[len(b.feedback)-1-i] = fb
	}
	return out, nil
}

func (b *Backend) ListUsers(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	for k, item := range b.cache.Items() {
		if len(k) > 5 && k[:5] == "user:" {
			users = append(users, item.Object.(*entity.User))
		}
	}
	return users, nil
}

func (b *Backend) HealthCheck(ctx context.Context) bool {
	return true
}
