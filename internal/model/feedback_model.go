package model

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionId *uuid.UUID `gorm:"type:uuid"`
	Rating    string     `gorm:"type:varchar(50);not null"`
	Comment   *string    `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string {
	return "feedback"
}
