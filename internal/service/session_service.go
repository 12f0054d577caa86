package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/repository/contract"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// TurnRecord is one transcript entry kept in the live session buffer.
type TurnRecord struct {
	Role    string
	Content string
}

// LiveSession is the in-process view of an active discussion. The live map
// is authoritative for liveness and expiry; the backend adapter is a
// best-effort mirror whose transient failures never surface to callers.
type LiveSession struct {
	SessionId   uuid.UUID
	UserId      uuid.UUID
	TelegramId  int64
	StartedAt   time.Time
	LastUpdated time.Time
	Payload     map[string]interface{}
	Turns       []TurnRecord
}

type ISessionService interface {
	// ResolveUser finds or creates the user record for a platform id.
	ResolveUser(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*entity.User, error)

	// CreateSession starts a fresh session for the user, ending any prior
	// active one.
	CreateSession(ctx context.Context, user *entity.User, telegramId int64, payload map[string]interface{}) (*LiveSession, error)

	// GetSession returns the live session for the user, or nil when there is
	// none. A session past its inactivity timeout is ended as a side effect
	// of the read and nil is returned. A successful read refreshes the
	// sliding expiry timer.
	GetSession(ctx context.Context, telegramId int64) *LiveSession

	// UpdateSession merges partial into the session payload and refreshes
	// the activity timestamp. A nil partial is a pure touch. Silently
	// no-ops when the user has no live session.
	UpdateSession(ctx context.Context, telegramId int64, partial map[string]interface{}) error

	// EndSession closes the user's live session. Reports whether a session
	// was actually ended; ending when none exists is not an error.
	EndSession(ctx context.Context, telegramId int64) (*LiveSession, bool)

	// AddMessage appends a transcript turn to the live session. Silently
	// no-ops when the user has no live session.
	AddMessage(ctx context.Context, telegramId int64, role, content string) error

	// Messages returns the live session's full transcript, role and content
	// only. Empty when the user has no live session.
	Messages(telegramId int64) []TurnRecord

	// Window returns the most recent turns, bounded by the configured
	// history window, oldest first.
	Window(telegramId int64) []TurnRecord

	// SweepExpired ends every live session past the inactivity timeout and
	// returns how many were ended.
	SweepExpired(ctx context.Context) int

	// Adapter returns the backend currently in effect, accounting for a
	// degraded switch to the in-memory fallback.
	Adapter() contract.BackendAdapter

	// CheckBackend probes the primary backend. A failed probe switches the
	// store to the in-memory fallback for the rest of the process lifetime.
	CheckBackend(ctx context.Context) bool
}

var ErrNoActiveSession = errors.New("no active session")

type SessionService struct {
	primary  contract.BackendAdapter
	fallback contract.BackendAdapter
	degraded atomic.Bool

	mu   sync.Mutex
	live *gocache.Cache

	timeout time.Duration
	window  int
	logger  logger.ILogger
}

func NewSessionService(primary, fallback contract.BackendAdapter, timeout time.Duration, window int, log logger.ILogger) ISessionService {
	return &SessionService{
		primary:  primary,
		fallback: fallback,
		live:     gocache.New(gocache.NoExpiration, gocache.NoExpiration),
		timeout:  timeout,
		window:   window,
		logger:   log,
	}
}

func (s *SessionService) Adapter() contract.BackendAdapter {
	if s.degraded.Load() {
		return s.fallback
	}
	return s.primary
}

func (s *SessionService) CheckBackend(ctx context.Context) bool {
	if s.degraded.Load() {
		return false
	}
	if s.primary.HealthCheck(ctx) {
		return true
	}
	if s.degraded.CompareAndSwap(false, true) {
		s.logger.Error("session", "backend health check failed, switching to in-memory fallback", nil)
		s.migrateToFallback(ctx)
	}
	return false
}

// migrateToFallback re-creates live sessions in the fallback adapter so
// follow-up writes land somewhere. Transcripts already persisted in the
// failed backend are not carried over; the live buffer still holds the
// window the conversation needs.
func (s *SessionService) migrateToFallback(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.live.Items() {
		live, ok := item.Object.(*LiveSession)
		if !ok {
			continue
		}
		user, err := s.fallback.CreateUser(ctx, live.TelegramId, contract.NewUserProfile{})
		if errors.Is(err, contract.ErrDuplicateUser) {
			user, err = s.fallback.FindUser(ctx, live.TelegramId)
		}
		if err != nil {
			continue
		}
		session, err := s.fallback.CreateSession(ctx, user.Id, live.Payload)
		if err != nil {
			continue
		}
		live.UserId = user.Id
		live.SessionId = session.Id
	}
}

func (s *SessionService) ResolveUser(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*entity.User, error) {
	adapter := s.Adapter()

	user, err := adapter.FindUser(ctx, telegramId)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, contract.ErrNotFound) {
		return nil, err
	}

	user, err = adapter.CreateUser(ctx, telegramId, profile)
	if errors.Is(err, contract.ErrDuplicateUser) {
		return adapter.FindUser(ctx, telegramId)
	}
	return user, err
}

func (s *SessionService) CreateSession(ctx context.Context, user *entity.User, telegramId int64, payload map[string]interface{}) (*LiveSession, error) {
	copied := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		copied[k] = v
	}

	now := time.Now()
	live := &LiveSession{
		SessionId:   uuid.New(),
		UserId:      user.Id,
		TelegramId:  telegramId,
		StartedAt:   now,
		LastUpdated: now,
		Payload:     copied,
	}

	// Install the new entry first; the backend mirror happens after the
	// lock is released so a slow backend never stalls other users.
	s.mu.Lock()
	prior, hadPrior := s.liveFor(telegramId)
	s.live.Set(liveKey(telegramId), live, gocache.NoExpiration)
	s.mu.Unlock()

	if hadPrior {
		s.mirrorEnd(ctx, prior.SessionId)
	}

	session, err := s.Adapter().CreateSession(ctx, user.Id, copied)
	if err != nil {
		// The live map stays authoritative; the local id keeps working and
		// later mirror writes for it are masked as session-not-found.
		s.warnBackend("create session", err)
		return live, nil
	}

	s.mu.Lock()
	if current, ok := s.liveFor(telegramId); ok && current == live {
		current.SessionId = session.Id
	}
	s.mu.Unlock()
	return live, nil
}

func (s *SessionService) GetSession(ctx context.Context, telegramId int64) *LiveSession {
	s.mu.Lock()
	live, ok := s.liveFor(telegramId)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if time.Since(live.LastUpdated) > s.timeout {
		s.live.Delete(liveKey(telegramId))
		s.mu.Unlock()
		s.mirrorEnd(ctx, live.SessionId)
		return nil
	}
	live.LastUpdated = time.Now()
	s.mu.Unlock()
	return live
}

func (s *SessionService) UpdateSession(ctx context.Context, telegramId int64, partial map[string]interface{}) error {
	s.mu.Lock()
	live, ok := s.liveFor(telegramId)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	for k, v := range partial {
		live.Payload[k] = v
	}
	live.LastUpdated = time.Now()
	sessionId := live.SessionId
	s.mu.Unlock()

	if err := s.Adapter().UpdateSession(ctx, sessionId, partial); err != nil {
		s.warnBackend("update session", err)
	}
	return nil
}

func (s *SessionService) EndSession(ctx context.Context, telegramId int64) (*LiveSession, bool) {
	s.mu.Lock()
	live, ok := s.liveFor(telegramId)
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	s.live.Delete(liveKey(telegramId))
	s.mu.Unlock()

	s.mirrorEnd(ctx, live.SessionId)
	return live, true
}

func (s *SessionService) AddMessage(ctx context.Context, telegramId int64, role, content string) error {
	s.mu.Lock()
	live, ok := s.liveFor(telegramId)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	live.Turns = append(live.Turns, TurnRecord{Role: role, Content: content})
	live.LastUpdated = time.Now()
	sessionId := live.SessionId
	s.mu.Unlock()

	if _, err := s.Adapter().AppendTurn(ctx, sessionId, role, content); err != nil {
		s.warnBackend("append turn", err)
	}
	return nil
}

func (s *SessionService) Messages(telegramId int64) []TurnRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.liveFor(telegramId)
	if !ok {
		return []TurnRecord{}
	}
	out := make([]TurnRecord, len(live.Turns))
	copy(out, live.Turns)
	return out
}

func (s *SessionService) Window(telegramId int64) []TurnRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.liveFor(telegramId)
	if !ok {
		return nil
	}
	turns := live.Turns
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}
	out := make([]TurnRecord, len(turns))
	copy(out, turns)
	return out
}

func (s *SessionService) SweepExpired(ctx context.Context) int {
	// Collect under the lock, mirror after releasing it: a hung backend
	// must not stall the request path for the duration of the sweep.
	s.mu.Lock()
	var expired []*LiveSession
	for _, item := range s.live.Items() {
		live, ok := item.Object.(*LiveSession)
		if !ok {
			continue
		}
		if time.Since(live.LastUpdated) > s.timeout {
			s.live.Delete(liveKey(live.TelegramId))
			expired = append(expired, live)
		}
	}
	s.mu.Unlock()

	for _, live := range expired {
		s.mirrorEnd(ctx, live.SessionId)
	}
	return len(expired)
}

// mirrorEnd is the best-effort backend side of ending a session. Never
// called with s.mu held.
func (s *SessionService) mirrorEnd(ctx context.Context, sessionId uuid.UUID) {
	if err := s.Adapter().EndSession(ctx, sessionId); err != nil {
		s.warnBackend("end session", err)
	}
}

func (s *SessionService) liveFor(telegramId int64) (*LiveSession, bool) {
	raw, ok := s.live.Get(liveKey(telegramId))
	if !ok {
		return nil, false
	}
	live, ok := raw.(*LiveSession)
	return live, ok
}

func (s *SessionService) warnBackend(op string, err error) {
	if errors.Is(err, contract.ErrSessionNotFound) || errors.Is(err, contract.ErrNotFound) {
		return
	}
	s.logger.Warn("session", "backend write failed, continuing on live state", map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	})
}

func liveKey(telegramId int64) string {
	return strconv.FormatInt(telegramId, 10)
}
