package memory

import (
	"context"
	"testing"

	"language-mirror-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	_, err := backend.FindUser(ctx, 42)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	user, err := backend.CreateUser(ctx, 42, contract.NewUserProfile{Username: "alice", FirstName: "Alice"})
	require.NoError(t, err)
	require.NotNil(t, user.Username)
	assert.Equal(t, "alice", *user.Username)

	_, err = backend.CreateUser(ctx, 42, contract.NewUserProfile{})
	assert.ErrorIs(t, err, contract.ErrDuplicateUser)

	found, err := backend.FindUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, user.Id, found.Id)

	level := "B1"
	found.LanguageLevel = &level
	require.NoError(t, backend.UpdateUser(ctx, found))

	again, err := backend.FindUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, again.LanguageLevel)
	assert.Equal(t, "B1", *again.LanguageLevel)
}

func TestCreateSessionSupersedesActive(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	user, err := backend.CreateUser(ctx, 7, contract.NewUserProfile{})
	require.NoError(t, err)

	first, err := backend.CreateSession(ctx, user.Id, map[string]interface{}{"state": "awaiting_topic"})
	require.NoError(t, err)

	second, err := backend.CreateSession(ctx, user.Id, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, second.Id)

	active, err := backend.GetActiveSession(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, second.Id, active.Id)

	// The superseded session is closed for writes.
	_, err = backend.AppendTurn(ctx, first.Id, "user", "hello")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}

func TestTurnsAndCounts(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	user, err := backend.CreateUser(ctx, 9, contract.NewUserProfile{})
	require.NoError(t, err)
	sess, err := backend.CreateSession(ctx, user.Id, nil)
	require.NoError(t, err)

	_, err = backend.AppendTurn(ctx, sess.Id, "user", "hi")
	require.NoError(t, err)
	_, err = backend.AppendTurn(ctx, sess.Id, "assistant", "hello there")
	require.NoError(t, err)

	turns, err := backend.ListTurns(ctx, sess.Id)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)

	active, err := backend.GetActiveSession(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, active.MessagesCount)
}

func TestEndSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	user, err := backend.CreateUser(ctx, 11, contract.NewUserProfile{})
	require.NoError(t, err)
	sess, err := backend.CreateSession(ctx, user.Id, nil)
	require.NoError(t, err)

	require.NoError(t, backend.EndSession(ctx, sess.Id))
	require.NoError(t, backend.EndSession(ctx, sess.Id))

	_, err = backend.GetActiveSession(ctx, user.Id)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	err = backend.UpdateSession(ctx, sess.Id, map[string]interface{}{"state": "chatting"})
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}

func TestFeedbackNewestFirst(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	user, err := backend.CreateUser(ctx, 13, contract.NewUserProfile{})
	require.NoError(t, err)

	comment := "really helped my speaking"
	_, err = backend.AddFeedback(ctx, user.Id, "okay", nil, nil)
	require.NoError(t, err)
	_, err = backend.AddFeedback(ctx, user.Id, "helpful", &comment, nil)
	require.NoError(t, err)

	all, err := backend.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "helpful", all[0].Rating)
	assert.Equal(t, "okay", all[1].Rating)
}

func TestListUsersAndHealth(t *testing.T) {
	ctx := context.Background()
	backend := NewBackend()

	_, err := backend.CreateUser(ctx, 1, contract.NewUserProfile{})
	require.NoError(t, err)
	_, err = backend.CreateUser(ctx, 2, contract.NewUserProfile{})
	require.NoError(t, err)

	users, err := backend.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	assert.True(t, backend.HealthCheck(ctx))
}
