package contract

import (
	"context"
	"errors"

	"language-mirror-be/internal/entity"

	"github.com/google/uuid"
)

// Semantic outcomes. Any other error returned by an adapter is a transient
// backend failure and is masked at the session-store boundary.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateUser   = errors.New("user already exists")
	ErrSessionNotFound = errors.New("session not found")
)

// NewUserProfile carries the optional profile fields known at first contact.
type NewUserProfile struct {
	Username      string
	FirstName     string
	LastName      string
	LanguageLevel string
}

// BackendAdapter is the uniform persistence contract the session store is
// written against. Three implementations exist: in-memory (repository/memory),
// relational (repository/gormstore) and spreadsheet (repository/sheet).
type BackendAdapter interface {
	// FindUser returns ErrNotFound when no user exists for the platform id.
	FindUser(ctx context.Context, telegramId int64) (*entity.User, error)

	// CreateUser returns ErrDuplicateUser when a concurrent create won the
	// race; callers re-fetch and proceed.
	CreateUser(ctx context.Context, telegramId int64, profile NewUserProfile) (*entity.User, error)

	// UpdateUser persists mutated quota and profile fields.
	UpdateUser(ctx context.Context, user *entity.User) error

	// GetActiveSession returns ErrNotFound when the user has no live session.
	GetActiveSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error)

	// CreateSession ends any pre-existing active session for the user before
	// creating the new one, enforcing the one-active-session invariant at
	// the storage boundary.
	CreateSession(ctx context.Context, userId uuid.UUID, payload map[string]interface{}) (*entity.Session, error)

	// UpdateSession merges partial into the session payload and refreshes
	// its last-activity timestamp. A nil partial is a pure activity touch.
	// Returns ErrSessionNotFound for unknown or ended sessions.
	UpdateSession(ctx context.Context, sessionId uuid.UUID, partial map[string]interface{}) error

	// EndSession marks the session inactive. Ending an already-ended session
	// is not an error.
	EndSession(ctx context.Context, sessionId uuid.UUID) error

	// AppendTurn returns ErrSessionNotFound if the session was concurrently
	// ended.
	AppendTurn(ctx context.Context, sessionId uuid.UUID, role, content string) (*entity.Turn, error)

	// ListTurns returns the session transcript in insertion order.
	ListTurns(ctx context.Context, sessionId uuid.UUID) ([]*entity.Turn, error)

	// AddFeedback records a rating (and optional comment) for the user,
	// weakly associated to a session.
	AddFeedback(ctx context.Context, userId uuid.UUID, rating string, comment *string, sessionId *uuid.UUID) (*entity.Feedback, error)

	// ListFeedback returns all recorded feedback, newest first.
	ListFeedback(ctx context.Context) ([]*entity.Feedback, error)

	// ListUsers returns all known users for the admin dashboard.
	ListUsers(ctx context.Context) ([]*entity.User, error)

	// HealthCheck is a cheap liveness probe. A false result switches the
	// session store to its in-memory fallback for the rest of the process
	// lifetime.
	HealthCheck(ctx context.Context) bool
}
