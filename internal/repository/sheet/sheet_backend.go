package sheet

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/repository/contract"

	"github.com/google/uuid"
)

// Column layouts. Order matters; it mirrors the workbook the reporting
// tools read.
//
//	users:    id, telegram_id, username, first_name, last_name,
//	          language_level, created_at, last_activity,
//	          last_discussion_date, discussions_today, bonus_requests,
//	          feedback_bonus_used
//	sessions: id, user_id, started_at, last_activity, ended_at, is_active,
//	          payload, messages_count
//	messages: id, session_id, role, content, created_at
//	feedback: id, user_id, session_id, rating, comment, created_at
const (
	dateLayout = "2006-01-02"
)

// Backend is the spreadsheet adapter. Every operation is a full worksheet
// scan; acceptable because the workbook is small and the session store
// shields the request path behind its in-process map.
type Backend struct {
	rows RowStore
}

func NewBackend(rows RowStore) contract.BackendAdapter {
	return &Backend{rows: rows}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func optionalCell(row []string, i int) *string {
	if v := cell(row, i); v != "" {
		return &v
	}
	return nil
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func userFromRow(row []string) *entity.User {
	id, _ := uuid.Parse(cell(row, 0))
	tg, _ := strconv.ParseInt(cell(row, 1), 10, 64)
	discussions, _ := strconv.Atoi(cell(row, 9))
	bonus, _ := strconv.Atoi(cell(row, 10))

	u := &entity.User{
		Id:                id,
		TelegramId:        tg,
		Username:          optionalCell(row, 2),
		FirstName:         optionalCell(row, 3),
		LastName:          optionalCell(row, 4),
		LanguageLevel:     optionalCell(row, 5),
		CreatedAt:         parseTime(cell(row, 6)),
		LastActivity:      parseTime(cell(row, 7)),
		DiscussionsToday:  discussions,
		BonusRequests:     bonus,
		FeedbackBonusUsed: cell(row, 11) == "true",
	}
	if d := cell(row, 8); d != "" {
		if day, err := time.Parse(dateLayout, d); err == nil {
			u.LastDiscussionDate = &day
		}
	}
	return u
}

func userToRow(u *entity.User) []string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	lastDiscussion := ""
	if u.LastDiscussionDate != nil {
		lastDiscussion = u.LastDiscussionDate.Format(dateLayout)
	}
	return []string{
		u.Id.String(),
		strconv.FormatInt(u.TelegramId, 10),
		deref(u.Username),
		deref(u.FirstName),
		deref(u.LastName),
		deref(u.LanguageLevel),
		u.CreatedAt.Format(time.RFC3339),
		u.LastActivity.Format(time.RFC3339),
		lastDiscussion,
		strconv.Itoa(u.DiscussionsToday),
		strconv.Itoa(u.BonusRequests),
		strconv.FormatBool(u.FeedbackBonusUsed),
	}
}

func sessionFromRow(row []string) *entity.Session {
	id, _ := uuid.Parse(cell(row, 0))
	userId, _ := uuid.Parse(cell(row, 1))
	count, _ := strconv.Atoi(cell(row, 7))

	sess := &entity.Session{
		Id:            id,
		UserId:        userId,
		StartedAt:     parseTime(cell(row, 2)),
		LastActivity:  parseTime(cell(row, 3)),
		IsActive:      cell(row, 5) == "true",
		Payload:       map[string]interface{}{},
		MessagesCount: count,
	}
	if v := cell(row, 4); v != "" {
		t := parseTime(v)
		sess.EndedAt = &t
	}
	if raw := cell(row, 6); raw != "" {
		// Best effort; a corrupt cell degrades to an empty payload.
		json.Unmarshal([]byte(raw), &sess.Payload)
	}
	return sess
}

func sessionToRow(s *entity.Session) []string {
	endedAt := ""
	if s.EndedAt != nil {
		endedAt = s.EndedAt.Format(time.RFC3339)
	}
	payload, _ := json.Marshal(s.Payload)
	return []string{
		s.Id.String(),
		s.UserId.String(),
		s.StartedAt.Format(time.RFC3339),
		s.LastActivity.Format(time.RFC3339),
		endedAt,
		strconv.FormatBool(s.IsActive),
		string(payload),
		strconv.Itoa(s.MessagesCount),
	}
}

func (b *Backend) findUserRow(ctx context.Context, telegramId int64) (int, *entity.User, error) {
	rows, err := b.rows.Rows(ctx, SheetUsers)
	if err != nil {
		return 0, nil, err
	}
	key := strconv.FormatInt(telegramId, 10)
	for i, row := range rows {
		if cell(row, 1) == key {
			return i, userFromRow(row), nil
		}
	}
	return 0, nil, contract.ErrNotFound
}

func (b *Backend) FindUser(ctx context.Context, telegramId int64) (*entity.User, error) {
	_, u, err := b.findUserRow(ctx, telegramId)
	return u, err
}

func (b *Backend) CreateUser(ctx context.Context, telegramId int64, profile contract.NewUserProfile) (*entity.User, error) {
	if _, _, err := b.findUserRow(ctx, telegramId); err == nil {
		return nil, contract.ErrDuplicateUser
	} else if err != contract.ErrNotFound {
		return nil, err
	}

	now := time.Now()
	u := &entity.User{
		Id:           uuid.New(),
		TelegramId:   telegramId,
		CreatedAt:    now,
		LastActivity: now,
	}
	if profile.Username != "" {
		u.Username = &profile.Username
	}
	if profile.FirstName != "" {
		u.FirstName = &profile.FirstName
	}
	if profile.LastName != "" {
		u.LastName = &profile.LastName
	}
	if profile.LanguageLevel != "" {
		u.LanguageLevel = &profile.LanguageLevel
	}

	if err := b.rows.Append(ctx, SheetUsers, userToRow(u)); err != nil {
		return nil, err
	}
	return u, nil
}

func (b *Backend) UpdateUser(ctx context.Context, user *entity.User) error {
	idx, _, err := b.findUserRow(ctx, user.TelegramId)
	if err != nil {
		return err
	}
	user.LastActivity = time.Now()
	return b.rows.Update(ctx, SheetUsers, idx, userToRow(user))
}

func (b *Backend) findSessionRow(ctx context.Context, sessionId uuid.UUID) (int, *entity.Session, error) {
	rows, err := b.rows.Rows(ctx, SheetSessions)
	if err != nil {
		return 0, nil, err
	}
	key := sessionId.String()
	for i, row := range rows {
		if cell(row, 0) == key {
			return i, sessionFromRow(row), nil
		}
	}
	return 0, nil, contract.ErrSessionNotFound
}

func (b *Backend) GetActiveSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error) {
	rows, err := b.rows.Rows(ctx, SheetSessions)
	if err != nil {
		return nil, err
	}
	key := userId.String()
	// Scan from the end; the live session is always the newest row.
	for i := len(rows) - 1; i >= 0; i-- {
		if cell(rows[i], 1) == key && cell(rows[i], 5) == "true" {
			return sessionFromRow(rows[i]), nil
		}
	}
	return nil, contract.ErrNotFound
}

func (b *Backend) CreateSession(ctx context.Context, userId uuid.UUID, payload map[string]interface{}) (*entity.Session, error) {
	// Supersede any live session before appending the new one.
	rows, err := b.rows.Rows(ctx, SheetSessions)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	key := userId.String()
	for i, row := range rows {
		if cell(row, 1) == key && cell(row, 5) == "true" {
			old := sessionFromRow(row)
			old.IsActive = false
			old.EndedAt = &now
			if err := b.rows.Update(ctx, SheetSessions, i, sessionToRow(old)); err != nil {
				return nil, err
			}
		}
	}

	sess := &entity.Session{
		Id:           uuid.New(),
		UserId:       userId,
		StartedAt:    now,
		LastActivity: now,
		IsActive:     true,
		Payload:      map[string]interface{}{},
	}
	for k, v := range payload {
		sess.Payload[k] = v
	}
	if err := b.rows.Append(ctx, SheetSessions, sessionToRow(sess)); err != nil {
		return nil, err
	}
	return sess, nil
}

func (b *Backend) UpdateSession(ctx context.Context, sessionId uuid.UUID, partial map[string]interface{}) error {
	idx, sess, err := b.findSessionRow(ctx, sessionId)
	if err != nil {
		return err
	}
	if !sess.IsActive {
		return contract.ErrSessionNotFound
	}
	for k, v := range partial {
		sess.Payload[k] = v
	}
	sess.LastActivity = time.Now()
	return b.rows.Update(ctx, SheetSessions, idx, sessionToRow(sess))
}

func (b *Backend) EndSession(ctx context.Context, sessionId uuid.UUID) error {
	idx, sess, err := b.findSessionRow(ctx, sessionId)
	if err == contract.ErrSessionNotFound {
		return nil // idempotent
	}
	if err != nil {
		return err
	}
	if !sess.IsActive {
		return nil
	}
	now := time.Now()
	sess.IsActive = false
	sess.EndedAt = &now
	return b.rows.Update(ctx, SheetSessions, idx, sessionToRow(sess))
}

func (b *Backend) AppendTurn(ctx context.Context, sessionId uuid.UUID, role, content string) (*entity.Turn, error) {
	idx, sess, err := b.findSessionRow(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, contract.ErrSessionNotFound
	}

	turn := &entity.Turn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	row := []string{
		turn.Id.String(),
		sessionId.String(),
		role,
		content,
		turn.CreatedAt.Format(time.RFC3339),
	}
	if err := b.rows.Append(ctx, SheetMessages, row); err != nil {
		return nil, err
	}

	sess.MessagesCount++
	sess.LastActivity = turn.CreatedAt
	if err := b.rows.Update(ctx, SheetSessions, idx, sessionToRow(sess)); err != nil {
		return nil, err
	}
	return turn, nil
}

func (b *Backend) ListTurns(ctx context.Context, sessionId uuid.UUID) ([]*entity.Turn, error) {
	rows, err := b.rows.Rows(ctx, SheetMessages)
	if err != nil {
		return nil, err
	}
	key := sessionId.String()
	turns := []*entity.Turn{}
	for _, row := range rows {
		if cell(row, 1) != key {
			continue
		}
		id, _ := uuid.Parse(cell(row, 0))
		turns = append(turns, &entity.Turn{
			Id:        id,
			SessionId: sessionId,
			Role:      cell(row, 2),
			Content:   cell(row, 3),
			CreatedAt: parseTime(cell(row, 4)),
		})
	}
	return turns, nil
}

func (b *Backend) AddFeedback(ctx context.Context, userId uuid.UUID, rating string, comment *string, sessionId *uuid.UUID) (*entity.Feedback, error) {
	fb := &entity.Feedback{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	sessCell := ""
	if sessionId != nil {
		sessCell = sessionId.String()
	}
	commentCell := ""
	if comment != nil {
		commentCell = *comment
	}
	row := []string{
		fb.Id.String(),
		userId.String(),
		sessCell,
		rating,
		commentCell,
		fb.CreatedAt.Format(time.RFC3339),
	}
	if err := b.rows.Append(ctx, SheetFeedback, row); err != nil {
		return nil, err
	}
	return fb, nil
}

func (b *Backend) ListFeedback(ctx context.Context) ([]*entity.Feedback, error) {
	rows, err := b.rows.Rows(ctx, SheetFeedback)
	if err != nil {
		return nil, err
	}
	out := []*entity.Feedback{}
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		id, _ := uuid.Parse(cell(row, 0))
		userId, _ := uuid.Parse(cell(row, 1))
		fb := &entity.Feedback{
			Id:        id,
			UserId:    userId,
			Rating:    cell(row, 3),
			Comment:   optionalCell(row, 4),
			CreatedAt: parseTime(cell(row, 5)),
		}
		if v := cell(row, 2); v != "" {
			if sid, err := uuid.Parse(v); err == nil {
				fb.SessionId = &sid
			}
		}
		out = append(out, fb)
	}
	return out, nil
}

func (b *Backend) ListUsers(ctx context.Context) ([]*entity.User, error) {
	rows, err := b.rows.Rows(ctx, SheetUsers)
	if err != nil {
		return nil, err
	}
	users := make([]*entity.User, len(rows))
	for i, row := range rows {
		users[i] = userFromRow(row)
	}
	return users, nil
}

func (b *Backend) HealthCheck(ctx context.Context) bool {
	_, err := b.rows.Rows(ctx, SheetUsers)
	return err == nil
}
