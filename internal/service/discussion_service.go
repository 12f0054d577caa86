package service

import (
	"context"
	"errors"
	"fmt"

	"language-mirror-be/internal/constant"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/pkg/llm"

	"github.com/google/uuid"
)

var (
	ErrLevelNotSet   = errors.New("language level not set")
	ErrInvalidLevel  = errors.New("unknown language level")
	ErrInvalidRating = errors.New("unknown feedback rating")
)

// DiscussionStart describes a freshly started discussion for the transport
// layer to render.
type DiscussionStart struct {
	SessionId       string   `json:"session_id"`
	LanguageLevel   string   `json:"language_level"`
	SuggestedTopics []string `json:"suggested_topics"`
}

type IDiscussionService interface {
	// SetLanguageLevel records the user's CEFR level and mirrors it into the
	// live session payload when one exists.
	SetLanguageLevel(ctx context.Context, telegramId int64, profile contract.NewUserProfile, level string) error

	// StartDiscussion consumes quota and opens a new session. Returns
	// ErrLevelNotSet when the user has not picked a level yet and
	// ErrQuotaExhausted when the allowance and bonuses are spent.
	StartDiscussion(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*DiscussionStart, error)

	// HandleMessage appends the user's turn, asks the completion provider
	// for a reply over the recent window and appends that reply.
	HandleMessage(ctx context.Context, telegramId int64, text string) (string, error)

	// StopDiscussion ends the live session. Reports whether one was active.
	StopDiscussion(ctx context.Context, telegramId int64) bool

	// SubmitFeedback validates and records a rating, grants the feedback
	// bonus when the comment qualifies and ends any live session. Returns
	// whether a bonus was granted.
	SubmitFeedback(ctx context.Context, telegramId int64, profile contract.NewUserProfile, rating string, comment *string) (bool, error)
}

type DiscussionService struct {
	session   ISessionService
	quota     IQuotaService
	provider  llm.Provider
	publisher IPublisherService
	logger    logger.ILogger
}

func NewDiscussionService(session ISessionService, quota IQuotaService, provider llm.Provider, publisher IPublisherService, log logger.ILogger) IDiscussionService {
	return &DiscussionService{
		session:   session,
		quota:     quota,
		provider:  provider,
		publisher: publisher,
		logger:    log,
	}
}

func (d *DiscussionService) SetLanguageLevel(ctx context.Context, telegramId int64, profile contract.NewUserProfile, level string) error {
	if !constant.IsValidLevel(level) {
		return ErrInvalidLevel
	}

	user, err := d.session.ResolveUser(ctx, telegramId, profile)
	if err != nil {
		return err
	}
	user.LanguageLevel = &level
	if err := d.session.Adapter().UpdateUser(ctx, user); err != nil {
		return err
	}

	if live := d.session.GetSession(ctx, telegramId); live != nil {
		return d.session.UpdateSession(ctx, telegramId, map[string]interface{}{
			constant.PayloadKeyLanguageLevel: level,
		})
	}
	return nil
}

func (d *DiscussionService) StartDiscussion(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*DiscussionStart, error) {
	user, err := d.session.ResolveUser(ctx, telegramId, profile)
	if err != nil {
		return nil, err
	}
	if user.LanguageLevel == nil || !constant.IsValidLevel(*user.LanguageLevel) {
		return nil, ErrLevelNotSet
	}
	level := *user.LanguageLevel

	if err := d.quota.Consume(ctx, user); err != nil {
		return nil, err
	}

	live, err := d.session.CreateSession(ctx, user, telegramId, map[string]interface{}{
		constant.PayloadKeyLanguageLevel: level,
		constant.PayloadKeyState:         constant.StateAwaitingTopic,
	})
	if err != nil {
		return nil, err
	}

	d.publisher.Publish(TopicSessionStarted, SessionEvent{
		TelegramId: telegramId,
		SessionId:  live.SessionId.String(),
	})

	return &DiscussionStart{
		SessionId:       live.SessionId.String(),
		LanguageLevel:   level,
		SuggestedTopics: constant.ConversationTopics[level],
	}, nil
}

func (d *DiscussionService) HandleMessage(ctx context.Context, telegramId int64, text string) (string, error) {
	live := d.session.GetSession(ctx, telegramId)
	if live == nil {
		return "", ErrNoActiveSession
	}

	level, _ := live.Payload[constant.PayloadKeyLanguageLevel].(string)
	if level == "" {
		level = constant.LanguageLevelOrder[2]
	}

	if state, _ := live.Payload[constant.PayloadKeyState].(string); state == constant.StateAwaitingTopic {
		if err := d.session.UpdateSession(ctx, telegramId, map[string]interface{}{
			constant.PayloadKeyTopic: text,
			constant.PayloadKeyState: constant.StateChatting,
		}); err != nil {
			return "", err
		}
	}

	if err := d.session.AddMessage(ctx, telegramId, constant.TurnRoleUser, text); err != nil {
		return "", err
	}

	window := d.session.Window(telegramId)
	history := make([]llm.Message, 0, len(window))
	for _, turn := range window {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	systemPrompt := fmt.Sprintf(constant.SystemPromptTemplate, level, level)
	reply := d.provider.Complete(ctx, systemPrompt, history)

	if err := d.session.AddMessage(ctx, telegramId, constant.TurnRoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (d *DiscussionService) StopDiscussion(ctx context.Context, telegramId int64) bool {
	// Park the session in the feedback stage before closing it, so the
	// persisted payload records how the conversation ended.
	if err := d.session.UpdateSession(ctx, telegramId, map[string]interface{}{
		constant.PayloadKeyState: constant.StateFeedback,
	}); err != nil {
		d.logger.Warn("discussion", "failed to mark feedback stage", map[string]interface{}{
			"telegram_id": telegramId,
			"error":       err.Error(),
		})
	}

	live, ended := d.session.EndSession(ctx, telegramId)
	if !ended {
		return false
	}
	d.publisher.Publish(TopicSessionEnded, SessionEvent{
		TelegramId: telegramId,
		SessionId:  live.SessionId.String(),
		Reason:     "stopped",
	})
	return true
}

func (d *DiscussionService) SubmitFeedback(ctx context.Context, telegramId int64, profile contract.NewUserProfile, rating string, comment *string) (bool, error) {
	if !constant.ValidRatings[rating] {
		return false, ErrInvalidRating
	}

	user, err := d.session.ResolveUser(ctx, telegramId, profile)
	if err != nil {
		return false, err
	}

	var sessionId *uuid.UUID
	if live := d.session.GetSession(ctx, telegramId); live != nil {
		id := live.SessionId
		sessionId = &id
		if err := d.session.UpdateSession(ctx, telegramId, map[string]interface{}{
			constant.PayloadKeyState: constant.StateFeedback,
		}); err != nil {
			d.logger.Warn("discussion", "failed to mark feedback stage", map[string]interface{}{
				"telegram_id": telegramId,
				"error":       err.Error(),
			})
		}
	}

	if _, err := d.session.Adapter().AddFeedback(ctx, user.Id, rating, comment, sessionId); err != nil {
		d.logger.Warn("discussion", "failed to persist feedback", map[string]interface{}{
			"telegram_id": telegramId,
			"error":       err.Error(),
		})
	}

	granted := false
	if comment != nil {
		granted = d.quota.GrantBonus(ctx, user, *comment)
	}

	if live, ended := d.session.EndSession(ctx, telegramId); ended {
		d.publisher.Publish(TopicSessionEnded, SessionEvent{
			TelegramId: telegramId,
			SessionId:  live.SessionId.String(),
			Reason:     "feedback",
		})
	}

	d.publisher.Publish(TopicFeedbackReceived, FeedbackEvent{
		TelegramId:   telegramId,
		Rating:       rating,
		BonusGranted: granted,
	})
	return granted, nil
}
