package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"language-mirror-be/internal/constant"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/pkg/admin"
	"language-mirror-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider records what it was asked and answers with a fixed reply.
type scriptedProvider struct {
	reply       string
	lastSystem  string
	lastHistory []llm.Message
}

func (p *scriptedProvider) Complete(ctx context.Context, systemPrompt string, history []llm.Message) string {
	p.lastSystem = systemPrompt
	p.lastHistory = history
	return p.reply
}

type discussionFixture struct {
	discussion IDiscussionService
	session    ISessionService
	quota      IQuotaService
	provider   *scriptedProvider
	stats      IStatsService
}

func newDiscussionFixture(t *testing.T, dailyLimit int) *discussionFixture {
	t.Helper()

	store, _, _ := newStore(time.Minute, 20)
	quota := NewQuotaService(store, admin.NewAuthorizer(nil), dailyLimit, 3, nopLogger{})
	provider := &scriptedProvider{reply: "That sounds interesting! Tell me more."}

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })

	stats := NewStatsService(pubsub, nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, stats.Start(ctx))

	publisher := NewPublisherService(pubsub, nopLogger{})
	discussion := NewDiscussionService(store, quota, provider, publisher, nopLogger{})

	return &discussionFixture{
		discussion: discussion,
		session:    store,
		quota:      quota,
		provider:   provider,
		stats:      stats,
	}
}

func TestStartRequiresLanguageLevel(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	_, err := f.discussion.StartDiscussion(ctx, 1, contract.NewUserProfile{})
	assert.ErrorIs(t, err, ErrLevelNotSet)
}

func TestSetLanguageLevel(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	assert.ErrorIs(t, f.discussion.SetLanguageLevel(ctx, 1, contract.NewUserProfile{}, "Z9"), ErrInvalidLevel)
	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 1, contract.NewUserProfile{Username: "alice"}, "B1"))

	user, err := f.session.Adapter().FindUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user.LanguageLevel)
	assert.Equal(t, "B1", *user.LanguageLevel)
}

func TestStartDiscussionSuggestsTopics(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 2, contract.NewUserProfile{}, "A2"))
	start, err := f.discussion.StartDiscussion(ctx, 2, contract.NewUserProfile{})
	require.NoError(t, err)

	assert.Equal(t, "A2", start.LanguageLevel)
	assert.Equal(t, constant.ConversationTopics["A2"], start.SuggestedTopics)

	live := f.session.GetSession(ctx, 2)
	require.NotNil(t, live)
	assert.Equal(t, constant.StateAwaitingTopic, live.Payload[constant.PayloadKeyState])
}

func TestStartDiscussionHonorsQuota(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 3, contract.NewUserProfile{}, "B1"))
	_, err := f.discussion.StartDiscussion(ctx, 3, contract.NewUserProfile{})
	require.NoError(t, err)

	_, err = f.discussion.StartDiscussion(ctx, 3, contract.NewUserProfile{})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestHandleMessageDrivesConversation(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 4, contract.NewUserProfile{}, "C1"))
	_, err := f.discussion.StartDiscussion(ctx, 4, contract.NewUserProfile{})
	require.NoError(t, err)

	reply, err := f.discussion.HandleMessage(ctx, 4, "Let's talk about music")
	require.NoError(t, err)
	assert.Equal(t, f.provider.reply, reply)

	// The provider sees a level-specific prompt and the user's turn.
	assert.True(t, strings.Contains(f.provider.lastSystem, "C1"))
	require.NotEmpty(t, f.provider.lastHistory)
	assert.Equal(t, "Let's talk about music", f.provider.lastHistory[len(f.provider.lastHistory)-1].Content)

	// First message fixes the topic and moves the state forward.
	live := f.session.GetSession(ctx, 4)
	require.NotNil(t, live)
	assert.Equal(t, constant.StateChatting, live.Payload[constant.PayloadKeyState])
	assert.Equal(t, "Let's talk about music", live.Payload[constant.PayloadKeyTopic])

	// Both turns landed in the window.
	window := f.session.Window(4)
	require.Len(t, window, 2)
	assert.Equal(t, constant.TurnRoleAssistant, window[1].Role)
}

func TestHandleMessageWithoutSession(t *testing.T) {
	f := newDiscussionFixture(t, 1)
	_, err := f.discussion.HandleMessage(context.Background(), 5, "anyone there?")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStopDiscussion(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 6, contract.NewUserProfile{}, "B2"))
	_, err := f.discussion.StartDiscussion(ctx, 6, contract.NewUserProfile{})
	require.NoError(t, err)

	live := f.session.GetSession(ctx, 6)
	require.NotNil(t, live)

	assert.True(t, f.discussion.StopDiscussion(ctx, 6))
	assert.False(t, f.discussion.StopDiscussion(ctx, 6))

	// The closed session's payload parks in the feedback stage.
	assert.Equal(t, constant.StateFeedback, live.Payload[constant.PayloadKeyState])
}

func TestSubmitFeedbackGrantsBonusAndEndsSession(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 7, contract.NewUserProfile{}, "B1"))
	_, err := f.discussion.StartDiscussion(ctx, 7, contract.NewUserProfile{})
	require.NoError(t, err)

	_, err = f.discussion.SubmitFeedback(ctx, 7, contract.NewUserProfile{}, "amazing", nil)
	assert.ErrorIs(t, err, ErrInvalidRating)

	comment := "this really improved my fluency"
	granted, err := f.discussion.SubmitFeedback(ctx, 7, contract.NewUserProfile{}, constant.FeedbackRatingHelpful, &comment)
	require.NoError(t, err)
	assert.True(t, granted)

	assert.Nil(t, f.session.GetSession(ctx, 7))

	feedback, err := f.session.Adapter().ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.Equal(t, constant.FeedbackRatingHelpful, feedback[0].Rating)

	user, err := f.session.Adapter().FindUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, user.BonusRequests)
	assert.True(t, user.FeedbackBonusUsed)
}

func TestShortCommentGrantsNoBonus(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 8, contract.NewUserProfile{}, "B1"))
	_, err := f.discussion.StartDiscussion(ctx, 8, contract.NewUserProfile{})
	require.NoError(t, err)

	comment := "nice bot"
	granted, err := f.discussion.SubmitFeedback(ctx, 8, contract.NewUserProfile{}, constant.FeedbackRatingOkay, &comment)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestEventsReachStatsConsumer(t *testing.T) {
	ctx := context.Background()
	f := newDiscussionFixture(t, 1)

	require.NoError(t, f.discussion.SetLanguageLevel(ctx, 9, contract.NewUserProfile{}, "A1"))
	_, err := f.discussion.StartDiscussion(ctx, 9, contract.NewUserProfile{})
	require.NoError(t, err)

	comment := "short"
	_, err = f.discussion.SubmitFeedback(ctx, 9, contract.NewUserProfile{}, constant.FeedbackRatingNotHelpful, &comment)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := f.stats.Snapshot()
		return snap.SessionsStarted == 1 &&
			snap.SessionsEnded == 1 &&
			snap.FeedbackCount == 1 &&
			snap.Ratings[constant.FeedbackRatingNotHelpful] == 1
	}, 2*time.Second, 10*time.Millisecond)
}
