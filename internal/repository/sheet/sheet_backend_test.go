package sheet

import (
	"context"
	"errors"
	"testing"

	"language-mirror-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRowStore keeps worksheets in memory, mimicking the wire client.
type fakeRowStore struct {
	sheets map[string][][]string
	fail   bool
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{sheets: map[string][][]string{}}
}

func (f *fakeRowStore) Append(ctx context.Context, sheet string, row []string) error {
	if f.fail {
		return errors.New("spreadsheet API unavailable")
	}
	f.sheets[sheet] = append(f.sheets[sheet], row)
	return nil
}

func (f *fakeRowStore) Rows(ctx context.Context, sheet string) ([][]string, error) {
	if f.fail {
		return nil, errors.New("spreadsheet API unavailable")
	}
	return f.sheets[sheet], nil
}

func (f *fakeRowStore) Update(ctx context.Context, sheet string, index int, row []string) error {
	if f.fail {
		return errors.New("spreadsheet API unavailable")
	}
	if index < 0 || index >= len(f.sheets[sheet]) {
		return errors.New("row index out of range")
	}
	f.sheets[sheet][index] = row
	return nil
}

func TestUserRowRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend(newFakeRowStore())

	created, err := backend.CreateUser(ctx, 100, contract.NewUserProfile{
		Username:      "bob",
		FirstName:     "Bob",
		LanguageLevel: "A2",
	})
	require.NoError(t, err)

	_, err = backend.CreateUser(ctx, 100, contract.NewUserProfile{})
	assert.ErrorIs(t, err, contract.ErrDuplicateUser)

	found, err := backend.FindUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	require.NotNil(t, found.LanguageLevel)
	assert.Equal(t, "A2", *found.LanguageLevel)

	found.DiscussionsToday = 1
	found.BonusRequests = 2
	found.FeedbackBonusUsed = true
	require.NoError(t, backend.UpdateUser(ctx, found))

	again, err := backend.FindUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, again.DiscussionsToday)
	assert.Equal(t, 2, again.BonusRequests)
	assert.True(t, again.FeedbackBonusUsed)
}

func TestSessionRowsSupersedeAndEnd(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend(newFakeRowStore())

	user, err := backend.CreateUser(ctx, 200, contract.NewUserProfile{})
	require.NoError(t, err)

	first, err := backend.CreateSession(ctx, user.Id, map[string]interface{}{"language_level": "B2"})
	require.NoError(t, err)
	second, err := backend.CreateSession(ctx, user.Id, nil)
	require.NoError(t, err)

	active, err := backend.GetActiveSession(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, second.Id, active.Id)

	_, err = backend.AppendTurn(ctx, first.Id, "user", "too late")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)

	require.NoError(t, backend.EndSession(ctx, second.Id))
	require.NoError(t, backend.EndSession(ctx, second.Id))

	_, err = backend.GetActiveSession(ctx, user.Id)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestPayloadSurvivesCells(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend(newFakeRowStore())

	user, err := backend.CreateUser(ctx, 300, contract.NewUserProfile{})
	require.NoError(t, err)

	sess, err := backend.CreateSession(ctx, user.Id, map[string]interface{}{"state": "awaiting_topic"})
	require.NoError(t, err)

	require.NoError(t, backend.UpdateSession(ctx, sess.Id, map[string]interface{}{
		"state": "chatting",
		"topic": "weekend plans",
	}))

	active, err := backend.GetActiveSession(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "chatting", active.Payload["state"])
	assert.Equal(t, "weekend plans", active.Payload["topic"])
}

func TestTurnsUpdateSessionCounters(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend(newFakeRowStore())

	user, err := backend.CreateUser(ctx, 400, contract.NewUserProfile{})
	require.NoError(t, err)
	sess, err := backend.CreateSession(ctx, user.Id, nil)
	require.NoError(t, err)

	_, err = backend.AppendTurn(ctx, sess.Id, "user", "hello")
	require.NoError(t, err)
	_, err = backend.AppendTurn(ctx, sess.Id, "assistant", "hi!")
	require.NoError(t, err)

	turns, err := backend.ListTurns(ctx, sess.Id)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Content)

	active, err := backend.GetActiveSession(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, active.MessagesCount)
}

func TestFeedbackAndHealth(t *testing.T) {
	ctx := context.Background()
	store := newFakeRowStore()
	backend := NewBackend(store)

	user, err := backend.CreateUser(ctx, 500, contract.NewUserProfile{})
	require.NoError(t, err)

	comment := "great practice session"
	_, err = backend.AddFeedback(ctx, user.Id, "helpful", &comment, nil)
	require.NoError(t, err)

	all, err := backend.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "helpful", all[0].Rating)
	require.NotNil(t, all[0].Comment)
	assert.Equal(t, comment, *all[0].Comment)

	assert.True(t, backend.HealthCheck(ctx))
	store.fail = true
	assert.False(t, backend.HealthCheck(ctx))
}
