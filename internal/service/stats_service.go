package service

import (
	"context"
	"encoding/json"
	"sync"

	"language-mirror-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// StatsSnapshot is the aggregate view served to the admin dashboard.
type StatsSnapshot struct {
	SessionsStarted int            `json:"sessions_started"`
	SessionsEnded   int            `json:"sessions_ended"`
	FeedbackCount   int            `json:"feedback_count"`
	BonusesGranted  int            `json:"bonuses_granted"`
	Ratings         map[string]int `json:"ratings"`
}

type IStatsService interface {
	// Start attaches the consumer to its topics. Runs until ctx is done.
	Start(ctx context.Context) error

	// Snapshot returns a copy of the current counters.
	Snapshot() StatsSnapshot
}

type StatsService struct {
	subscriber message.Subscriber
	logger     logger.ILogger

	mu    sync.Mutex
	stats StatsSnapshot
}

func NewStatsService(subscriber message.Subscriber, log logger.ILogger) IStatsService {
	return &StatsService{
		subscriber: subscriber,
		logger:     log,
		stats:      StatsSnapshot{Ratings: map[string]int{}},
	}
}

func (s *StatsService) Start(ctx context.Context) error {
	started, err := s.subscriber.Subscribe(ctx, TopicSessionStarted)
	if err != nil {
		return err
	}
	ended, err := s.subscriber.Subscribe(ctx, TopicSessionEnded)
	if err != nil {
		return err
	}
	feedback, err := s.subscriber.Subscribe(ctx, TopicFeedbackReceived)
	if err != nil {
		return err
	}

	go s.consume(started, s.onSessionStarted)
	go s.consume(ended, s.onSessionEnded)
	go s.consume(feedback, s.onFeedback)

	s.logger.Info("stats", "event consumer started", nil)
	return nil
}

func (s *StatsService) consume(messages <-chan *message.Message, handle func(*message.Message)) {
	for msg := range messages {
		handle(msg)
		msg.Ack()
	}
}

func (s *StatsService) onSessionStarted(msg *message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.SessionsStarted++
}

func (s *StatsService) onSessionEnded(msg *message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.SessionsEnded++
}

func (s *StatsService) onFeedback(msg *message.Message) {
	var event FeedbackEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.logger.Warn("stats", "dropping malformed feedback event", map[string]interface{}{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.FeedbackCount++
	s.stats.Ratings[event.Rating]++
	if event.BonusGranted {
		s.stats.BonusesGranted++
	}
}

func (s *StatsService) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.Ratings = make(map[string]int, len(s.stats.Ratings))
	for k, v := range s.stats.Ratings {
		out.Ratings[k] = v
	}
	return out
}
