package chat_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/chatbot-api/internal/ai"
	"github.com/mpetrov/chatbot-api/internal/auth"
	"github.com/mpetrov/chatbot-api/internal/chat"
	"github.com/mpetrov/chatbot-api/internal/db"
)

type failingResponder struct{}

func (failingResponder) GenerateResponse(context.Context, string) (string, error) {
	return "", errors.New("model unavailable")
}

type fixture struct {
	usecases *chat.UseCases
	service  *chat.Service
	database *db.Database
	tokens   *auth.Tokens
}

func newFixture(t *testing.T, responder ai.Responder) *fixture {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	tokens := auth.NewTokens("test-secret", time.Hour)
	service := chat.NewService(database)
	return &fixture{
		usecases: chat.NewUseCases(tokens, service, responder, database),
		service:  service,
		database: database,
		tokens:   tokens,
	}
}

// registerAndLogin creates a user and returns a valid token for them.
func (f *fixture) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.usecases.Register(ctx, name, email, "hunter2")
	require.NoError(t, err)
	token, err := f.usecases.Login(ctx, email, "hunter2")
	require.NoError(t, err)
	return token
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()

	_, err := f.usecases.Register(ctx, "Ann", "ann@x.com", "hunter2")
	require.NoError(t, err)

	_, err = f.usecases.Register(ctx, "Other Ann", "ann@x.com", "different")
	assert.ErrorIs(t, err, db.ErrEmailInUse)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()

	_, err := f.usecases.Register(ctx, "Ann", "ann@x.com", "hunter2")
	require.NoError(t, err)

	_, err = f.usecases.Login(ctx, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, chat.ErrInvalidCredentials)

	_, err = f.usecases.Login(ctx, "nobody@x.com", "hunter2")
	assert.ErrorIs(t, err, chat.ErrInvalidCredentials)
}

func TestCreateConversation(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()
	token := f.registerAndLogin(t, "Ann", "ann@x.com")

	id, err := f.usecases.CreateConversation(ctx, token, "trip planning")
	require.NoError(t, err)
	assert.Positive(t, id)

	// Same name again is a new conversation, never a dedup.
	second, err := f.usecases.CreateConversation(ctx, token, "trip planning")
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

func TestCreateConversation_BadToken(t *testing.T) {
	f := newFixture(t, ai.Stub{})

	_, err := f.usecases.CreateConversation(context.Background(), "not-a-token", "trip planning")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSendMessage_AppendsExchange(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()
	token := f.registerAndLogin(t, "Ann", "ann@x.com")

	id, err := f.usecases.CreateConversation(ctx, token, "trip planning")
	require.NoError(t, err)

	reply, err := f.usecases.SendMessage(ctx, token, id, "Where should I go in July?")
	require.NoError(t, err)
	assert.Contains(t, reply, "Where should I go in July?")

	messages, err := f.usecases.ListMessages(ctx, token, id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.True(t, messages[0].IsUser)
	assert.Equal(t, "Where should I go in July?", messages[0].Content)
	assert.False(t, messages[1].IsUser)
	assert.Equal(t, reply, messages[1].Content)
}

func TestSendMessage_ForeignConversation(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()
	annToken := f.registerAndLogin(t, "Ann", "ann@x.com")
	bobToken := f.registerAndLogin(t, "Bob", "bob@x.com")

	id, err := f.usecases.CreateConversation(ctx, annToken, "trip planning")
	require.NoError(t, err)

	_, err = f.usecases.SendMessage(ctx, bobToken, id, "let me in")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)

	// The failed attempt must not have touched Ann's conversation.
	messages, err := f.usecases.ListMessages(ctx, annToken, id)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendMessage_UnknownConversation(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	token := f.registerAndLogin(t, "Ann", "ann@x.com")

	_, err := f.usecases.SendMessage(context.Background(), token, 9999, "hello?")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestSendMessage_ResponderFailure(t *testing.T) {
	f := newFixture(t, failingResponder{})
	ctx := context.Background()
	token := f.registerAndLogin(t, "Ann", "ann@x.com")

	id, err := f.usecases.CreateConversation(ctx, token, "trip planning")
	require.NoError(t, err)

	_, err = f.usecases.SendMessage(ctx, token, id, "hello")
	require.Error(t, err)

	// Nothing is persisted when the AI call fails.
	messages, err := f.usecases.ListMessages(ctx, token, id)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestListConversations_PerUser(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()
	annToken := f.registerAndLogin(t, "Ann", "ann@x.com")
	bobToken := f.registerAndLogin(t, "Bob", "bob@x.com")

	_, err := f.usecases.CreateConversation(ctx, annToken, "trip planning")
	require.NoError(t, err)

	annConvs, err := f.usecases.ListConversations(ctx, annToken)
	require.NoError(t, err)
	assert.Len(t, annConvs, 1)

	bobConvs, err := f.usecases.ListConversations(ctx, bobToken)
	require.NoError(t, err)
	assert.Empty(t, bobConvs)
}

func TestListMessages_ForeignConversation(t *testing.T) {
	f := newFixture(t, ai.Stub{})
	ctx := context.Background()
	annToken := f.registerAndLogin(t, "Ann", "ann@x.com")
	bobToken := f.registerAndLogin(t, "Bob", "bob@x.com")

	id, err := f.usecases.CreateConversation(ctx, annToken, "trip planning")
	require.NoError(t, err)

	_, err = f.usecases.ListMessages(ctx, bobToken, id)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}
