package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/pkg/admin"
)

// ErrQuotaExhausted is an expected outcome of the daily limit, not a
// failure. Transports translate it into a friendly "come back tomorrow"
// style message.
var ErrQuotaExhausted = errors.New("daily discussion limit reached")

type IQuotaService interface {
	// Consume spends one discussion from the user's daily allowance, falling
	// back to a banked bonus request when the allowance is gone. Admins pass
	// without any accounting.
	Consume(ctx context.Context, user *entity.User) error

	// GrantBonus awards one bonus request for a substantive feedback comment.
	// At most one bonus is granted per user until an admin resets the flag.
	GrantBonus(ctx context.Context, user *entity.User, comment string) bool

	// ResetBonusFlag clears the one-bonus gate so the user can earn again.
	ResetBonusFlag(ctx context.Context, telegramId int64) error
}

type QuotaService struct {
	session    ISessionService
	authorizer *admin.Authorizer
	dailyLimit int
	minWords   int
	logger     logger.ILogger
}

func NewQuotaService(session ISessionService, authorizer *admin.Authorizer, dailyLimit, minFeedbackWords int, log logger.ILogger) IQuotaService {
	return &QuotaService{
		session:    session,
		authorizer: authorizer,
		dailyLimit: dailyLimit,
		minWords:   minFeedbackWords,
		logger:     log,
	}
}

func (q *QuotaService) Consume(ctx context.Context, user *entity.User) error {
	if q.authorizer.IsAdmin(user.TelegramId) {
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if user.LastDiscussionDate == nil || !user.LastDiscussionDate.UTC().Truncate(24*time.Hour).Equal(today) {
		user.DiscussionsToday = 0
		user.LastDiscussionDate = &today
	}

	switch {
	case user.DiscussionsToday < q.dailyLimit:
		user.DiscussionsToday++
	case user.BonusRequests > 0:
		user.BonusRequests--
	default:
		return ErrQuotaExhausted
	}

	q.persist(ctx, user, "consume")
	return nil
}

func (q *QuotaService) GrantBonus(ctx context.Context, user *entity.User, comment string) bool {
	if user.FeedbackBonusUsed {
		return false
	}
	if len(strings.Fields(comment)) < q.minWords {
		return false
	}

	user.BonusRequests++
	user.FeedbackBonusUsed = true
	q.persist(ctx, user, "grant bonus")

	q.logger.Info("quota", "bonus request granted for feedback", map[string]interface{}{
		"telegram_id": user.TelegramId,
	})
	return true
}

func (q *QuotaService) ResetBonusFlag(ctx context.Context, telegramId int64) error {
	adapter := q.session.Adapter()
	user, err := adapter.FindUser(ctx, telegramId)
	if err != nil {
		return err
	}
	user.FeedbackBonusUsed = false
	return adapter.UpdateUser(ctx, user)
}

// persist mirrors quota counters to the backend. The in-memory entity is
// already mutated, so a transient write failure only costs durability, not
// the current decision.
func (q *QuotaService) persist(ctx context.Context, user *entity.User, op string) {
	if err := q.session.Adapter().UpdateUser(ctx, user); err != nil {
		q.logger.Warn("quota", "failed to persist quota counters", map[string]interface{}{
			"op":          op,
			"telegram_id": user.TelegramId,
			"error":       err.Error(),
		})
	}
}
