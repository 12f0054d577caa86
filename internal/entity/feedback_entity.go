package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feedback closes out a session. It is owned by the user and only weakly
// references the session it rates.
type Feedback struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId *uuid.UUID
	Rating    string // "helpful", "okay", "not_helpful"
	Comment   *string
	CreatedAt time.Time
}
