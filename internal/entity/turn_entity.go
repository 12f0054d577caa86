package entity

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one role-tagged message inside a session transcript. Turns are
// append-only and never mutated after insertion.
type Turn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}
