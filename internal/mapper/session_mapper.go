package mapper

import (
	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// Session mappers

func (m *SessionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	payload := map[string]interface{}{}
	for k, v := range s.Payload {
		payload[k] = v
	}

	return &entity.Session{
		Id:            s.Id,
		UserId:        s.UserId,
		StartedAt:     s.StartedAt,
		LastActivity:  s.LastActivity,
		EndedAt:       s.EndedAt,
		IsActive:      s.IsActive,
		Payload:       payload,
		MessagesCount: s.MessagesCount,
	}
}

func (m *SessionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	payload := datatypes.JSONMap{}
	for k, v := range s.Payload {
		payload[k] = v
	}

	return &model.Session{
		Id:            s.Id,
		UserId:        s.UserId,
		StartedAt:     s.StartedAt,
		LastActivity:  s.LastActivity,
		EndedAt:       s.EndedAt,
		IsActive:      s.IsActive,
		Payload:       payload,
		MessagesCount: s.MessagesCount,
	}
}

// Turn mappers

func (m *SessionMapper) TurnToEntity(t *model.Turn) *entity.Turn {
	if t == nil {
		return nil
	}

	return &entity.Turn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func (m *SessionMapper) TurnToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	return &model.Turn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

// Feedback mappers

func (m *SessionMapper) FeedbackToEntity(f *model.Feedback) *entity.Feedback {
	if f == nil {
		return nil
	}

	return &entity.Feedback{
		Id:        f.Id,
		UserId:    f.UserId,
		SessionId: f.SessionId,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func (m *SessionMapper) FeedbackToModel(f *entity.Feedback) *model.Feedback {
	if f == nil {
		return nil
	}

	return &model.Feedback{
		Id:        f.Id,
		UserId:    f.UserId,
		SessionId: f.SessionId,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}
