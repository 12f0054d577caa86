package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Session struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	StartedAt     time.Time `gorm:"autoCreateTime"`
	LastActivity  time.Time `gorm:"not null"`
	EndedAt       *time.Time
	IsActive      bool              `gorm:"default:true;index"`
	Payload       datatypes.JSONMap `gorm:"type:jsonb"`
	MessagesCount int               `gorm:"default:0"`
}

func (Session) TableName() string {
	return "sessions"
}
