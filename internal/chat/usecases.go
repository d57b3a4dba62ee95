package chat

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mpetrov/chatbot-api/internal/ai"
	"github.com/mpetrov/chatbot-api/internal/auth"
	"github.com/mpetrov/chatbot-api/internal/db"
	"github.com/mpetrov/chatbot-api/internal/models"
)

var (
	// ErrConversationNotFound deliberately covers both "does not exist"
	// and "exists but belongs to someone else", so a caller cannot probe
	// which conversation IDs exist.
	ErrConversationNotFound = errors.New("conversation not found or access denied")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UseCases bundles the business transactions. Each one resolves the
// caller from the bearer token before touching any state.
type UseCases struct {
	tokens    *auth.Tokens
	service   *Service
	responder ai.Responder
	users     UserStore
}

// UserStore is the slice of the database the auth flows need.
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
}

func NewUseCases(tokens *auth.Tokens, service *Service, responder ai.Responder, users UserStore) *UseCases {
	return &UseCases{
		tokens:    tokens,
		service:   service,
		responder: responder,
		users:     users,
	}
}

// Register creates a new user, rejecting duplicate emails. The password
// is bcrypt-hashed before it ever reaches the store.
func (u *UseCases) Register(ctx context.Context, name, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := u.users.CreateUser(user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login checks credentials and issues a bearer token for the user.
func (u *UseCases) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.GetUserByEmail(email)
	if errors.Is(err, db.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return u.tokens.Issue(user.ID)
}

// CreateConversation opens a new conversation owned by the caller.
func (u *UseCases) CreateConversation(ctx context.Context, token, name string) (int64, error) {
	userID, err := u.tokens.Decode(token)
	if err != nil {
		return 0, err
	}
	return u.service.CreateConversation(userID, name)
}

// ListConversations returns the caller's conversations, newest first.
func (u *UseCases) ListConversations(ctx context.Context, token string) ([]models.Conversation, error) {
	userID, err := u.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	return u.service.UserConversations(userID)
}

// ListMessages returns a conversation's messages in ascending order,
// provided the caller owns the conversation.
func (u *UseCases) ListMessages(ctx context.Context, token string, conversationID int64) ([]models.Message, error) {
	userID, err := u.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if err := u.checkOwnership(userID, conversationID); err != nil {
		return nil, err
	}
	return u.service.Messages(conversationID)
}

// SendMessage runs one chat turn: resolve the caller, check conversation
// ownership, generate the AI reply, then persist both messages atomically.
func (u *UseCases) SendMessage(ctx context.Context, token string, conversationID int64, prompt string) (string, error) {
	userID, err := u.tokens.Decode(token)
	if err != nil {
		return "", err
	}

	if err := u.checkOwnership(userID, conversationID); err != nil {
		return "", err
	}

	reply, err := u.responder.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate AI response: %w", err)
	}

	if _, _, err := u.service.AddExchange(conversationID, prompt, reply); err != nil {
		return "", fmt.Errorf("failed to save exchange: %w", err)
	}

	return reply, nil
}

func (u *UseCases) checkOwnership(userID, conversationID int64) error {
	conversations, err := u.service.UserConversations(userID)
	if err != nil {
		return err
	}
	for _, conv := range conversations {
		if conv.ID == conversationID {
			return nil
		}
	}
	return ErrConversationNotFound
}
