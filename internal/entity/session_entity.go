package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a bounded conversation context. At most one active session
// exists per user at any time; creating a new one supersedes the old one.
type Session struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	StartedAt     time.Time
	LastActivity  time.Time
	EndedAt       *time.Time
	IsActive      bool
	Payload       map[string]interface{}
	MessagesCount int
}
