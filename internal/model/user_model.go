package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TelegramId         int64     `gorm:"uniqueIndex;not null"`
	Username           *string   `gorm:"type:varchar(255)"`
	FirstName          *string   `gorm:"type:varchar(255)"`
	LastName           *string   `gorm:"type:varchar(255)"`
	LanguageLevel      *string   `gorm:"type:varchar(10)"`
	LastDiscussionDate *time.Time
	DiscussionsToday   int       `gorm:"default:0"`
	BonusRequests      int       `gorm:"default:0"`
	FeedbackBonusUsed  bool      `gorm:"default:false"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	LastActivity       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
