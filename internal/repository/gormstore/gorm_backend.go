package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/mapper"
	"language-mirror-be/internal/model"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// userCacheTTL bounds staleness of cached user rows. Quota mutations
// invalidate the key explicitly, so the TTL only covers external writes.
const userCacheTTL = 5 * time.Minute

// Backend is the relational adapter. An optional redis client fronts user
// lookups; when it is nil every read goes straight to postgres.
type Backend struct {
	db      *gorm.DB
	rdb     *redis.Client
	users   *mapper.UserMapper
	session *mapper.SessionMapper
}

func NewBackend(db *gorm.DB, rdb *redis.Client) contract.BackendAdapter {
	return &Backend{
		db:      db,
		rdb:     rdb,
		users:   mapper.NewUserMapper(),
		session: mapper.NewSessionMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func userCacheKey(telegramId int64) string {
	return "lm:user:" + strconv.FormatInt(telegramId, 10)
}

func (b *Backend) cachedUser(ctx context.Context, telegramId int64) *entity.User {
	if b.rdb == nil {
		return nil
	}
	raw, err := b.rdb.Get(ctx, userCacheKey(telegramId)).Bytes()
	if err != nil {
		return nil
	}
	var u entity.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}

func (b *Backend) cacheUser(ctx context.Context, u *entity.User) {
	if b.rdb == nil {
		return
	}
	if raw, err := json.Marshal(u); err == nil {
		b.rdb.Set(ctx, userCacheKey(u.TelegramId), raw, userCacheTTL)
	}
}

func (b *Backend) dropUser(ctx context.Context, telegramId int64) {
	if b.rdb != nil {
		b.rdb.Del(ctx, userCacheKey(telegramId))
	}
}

func (b *Backend) FindUser(ctx context.Context, telegramId int64) (*entity.User, error) {
	if u := b.cachedUser(ctx, telegramId); u != nil {
		return u, nil
	}

	var m model.User
	query := applySpecifications(b.db.WithContext(ctx), specification.ByTelegramID{TelegramID: telegramId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrNotFound
		}
		return nil, err
	}

	u := b.users.ToEntity(&m)
	b.cacheUser(ctx, u)
	return u, nil
}

func (b *Backend) CreateUser(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*entity.User, error) {
	m := &model.User{
		Id:         uuid.New(),
		TelegramId: telegramId,
	}
	if profile.Username != "" {
		m.Username = &profile.Username
	}
	if profile.FirstName != "" {
		m.FirstName = &profile.FirstName
	}
	if profile.LastName != "" {
		m.LastName = &profile.LastName
	}
	if profile.LanguageLevel != "" {
		m.LanguageLevel = &profile.LanguageLevel
	}

	if err := b.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, contract.ErrDuplicateUser
		}
		return nil, err
	}

	u := b.users.ToEntity(m)
	b.cacheUser(ctx, u)
	return u, nil
}

func (b *Backend) UpdateUser(ctx context.Context, user *entity.User) error {
	m := b.users.ToModel(user)
	if err := b.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	b.dropUser(ctx, user.TelegramId)
	return nil
}

func (b *Backend) GetActiveSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error) {
	var m model.Session
	query := applySpecifications(b.db.WithContext(ctx),
		specification.OwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrNotFound
		}
		return nil, err
	}
	return b.session.SessionToEntity(&m), nil
}

func (b *Backend) CreateSession(ctx context.Context, userId uuid.UUID, payload map[string]interface{}) (*entity.Session, error) {
	now := time.Now()
	sess := &entity.Session{
		Id:           uuid.New(),
		UserId:       userId,
		StartedAt:    now,
		LastActivity: now,
		IsActive:     true,
		Payload:      payload,
	}
	m := b.session.SessionToModel(sess)

	// Supersede any live session in the same transaction that creates the
	// new one, so the invariant holds even across process restarts.
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Session{}).
			Where("user_id = ? AND is_active = ?", userId, true).
			Updates(map[string]interface{}{"is_active": false, "ended_at": now}).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return b.session.SessionToEntity(m), nil
}

func (b *Backend) UpdateSession(ctx context.Context, sessionId uuid.UUID, partial map[string]interface{}) error {
	var m model.Session
	query := applySpecifications(b.db.WithContext(ctx), specification.ByID{ID: sessionId}, specification.ActiveOnly{})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contract.ErrSessionNotFound
		}
		return err
	}

	if m.Payload == nil {
		m.Payload = map[string]interface{}{}
	}
	for k, v := range partial {
		m.Payload[k] = v
	}
	m.LastActivity = time.Now()
	return b.db.WithContext(ctx).Save(&m).Error
}

func (b *Backend) EndSession(ctx context.Context, sessionId uuid.UUID) error {
	now := time.Now()
	// Idempotent: updating zero rows is fine.
	return b.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND is_active = ?", sessionId, true).
		Updates(map[string]interface{}{"is_active": false, "ended_at": now}).Error
}

func (b *Backend) AppendTurn(ctx context.Context, sessionId uuid.UUID, role, content string) (*entity.Turn, error) {
	var sess model.Session
	query := applySpecifications(b.db.WithContext(ctx), specification.ByID{ID: sessionId}, specification.ActiveOnly{})
	if err := query.First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, err
	}

	m := &model.Turn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&model.Session{}).Where("id = ?", sessionId).
			Updates(map[string]interface{}{
				"messages_count": gorm.Expr("messages_count + 1"),
				"last_activity":  time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return b.session.TurnToEntity(m), nil
}

func (b *Backend) ListTurns(ctx context.Context, sessionId uuid.UUID) ([]*entity.Turn, error) {
	var models []*model.Turn
	query := applySpecifications(b.db.WithContext(ctx),
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	turns := make([]*entity.Turn, len(models))
	for i, m := range models {
		turns[i] = b.session.TurnToEntity(m)
	}
	return turns, nil
}

func (b *Backend) AddFeedback(ctx context.Context, userId uuid.UUID, rating string, comment *string, sessionId *uuid.UUID) (*entity.Feedback, error) {
	m := &model.Feedback{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		Rating:    rating,
		Comment:   comment,
	}
	if err := b.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return b.session.FeedbackToEntity(m), nil
}

func (b *Backend) ListFeedback(ctx context.Context) ([]*entity.Feedback, error) {
	var models []*model.Feedback
	query := applySpecifications(b.db.WithContext(ctx), specification.OrderBy{Field: "created_at", Desc: true})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.Feedback, len(models))
	for i, m := range models {
		out[i] = b.session.FeedbackToEntity(m)
	}
	return out, nil
}

func (b *Backend) ListUsers(ctx context.Context) ([]*entity.User, error) {
	var models []*model.User
	query := applySpecifications(b.db.WithContext(ctx), specification.OrderBy{Field: "created_at", Desc: false})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.User, len(models))
	for i, m := range models {
		out[i] = b.users.ToEntity(m)
	}
	return out, nil
}

func (b *Backend) HealthCheck(ctx context.Context) bool {
	sqlDB, err := b.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
