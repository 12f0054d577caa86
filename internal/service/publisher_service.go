package service

import (
	"encoding/json"

	"language-mirror-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Event topics emitted by the discussion flow.
const (
	TopicSessionStarted   = "session.started"
	TopicSessionEnded     = "session.ended"
	TopicFeedbackReceived = "feedback.received"
)

// SessionEvent is the payload for session lifecycle topics.
type SessionEvent struct {
	TelegramId int64  `json:"telegram_id"`
	SessionId  string `json:"session_id"`
	Reason     string `json:"reason,omitempty"`
}

// FeedbackEvent is the payload for feedback.received.
type FeedbackEvent struct {
	TelegramId   int64  `json:"telegram_id"`
	Rating       string `json:"rating"`
	BonusGranted bool   `json:"bonus_granted"`
}

type IPublisherService interface {
	Publish(topic string, payload interface{})
}

type PublisherService struct {
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &PublisherService{publisher: publisher, logger: log}
}

// Publish emits the payload fire-and-forget. Event delivery is never on the
// request path's critical line, so failures are logged and dropped.
func (p *PublisherService) Publish(topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("events", "failed to encode event payload", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("events", "failed to publish event", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
	}
}
