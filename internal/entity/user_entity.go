package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity anchor for one chat-platform account. Quota fields
// live here because every discussion start and feedback submission mutates
// them.
type User struct {
	Id                 uuid.UUID
	TelegramId         int64
	Username           *string
	FirstName          *string
	LastName           *string
	LanguageLevel      *string // A1..C2, nil until the user picks one
	CreatedAt          time.Time
	LastActivity       time.Time
	LastDiscussionDate *time.Time // date only, nil before first discussion
	DiscussionsToday   int
	BonusRequests      int
	FeedbackBonusUsed  bool
}
