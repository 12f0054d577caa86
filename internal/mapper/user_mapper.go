package mapper

import (
	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	return &entity.User{
		Id:                 u.Id,
		TelegramId:         u.TelegramId,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		LanguageLevel:      u.LanguageLevel,
		CreatedAt:          u.CreatedAt,
		LastActivity:       u.LastActivity,
		LastDiscussionDate: u.LastDiscussionDate,
		DiscussionsToday:   u.DiscussionsToday,
		BonusRequests:      u.BonusRequests,
		FeedbackBonusUsed:  u.FeedbackBonusUsed,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	return &model.User{
		Id:                 u.Id,
		TelegramId:         u.TelegramId,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		LanguageLevel:      u.LanguageLevel,
		CreatedAt:          u.CreatedAt,
		LastActivity:       u.LastActivity,
		LastDiscussionDate: u.LastDiscussionDate,
		DiscussionsToday:   u.DiscussionsToday,
		BonusRequests:      u.BonusRequests,
		FeedbackBonusUsed:  u.FeedbackBonusUsed,
	}
}
