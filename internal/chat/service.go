// Package chat holds the conversation service and the business
// transactions composed on top of it.
package chat

import (
	"github.com/mpetrov/chatbot-api/internal/db"
	"github.com/mpetrov/chatbot-api/internal/models"
)

// Service orchestrates store access for conversations and messages.
type Service struct {
	db *db.Database
}

func NewService(database *db.Database) *Service {
	return &Service{db: database}
}

func (s *Service) CreateConversation(userID int64, name string) (int64, error) {
	conv, err := s.db.CreateConversation(userID, name)
	if err != nil {
		return 0, err
	}
	return conv.ID, nil
}

func (s *Service) UserConversations(userID int64) ([]models.Conversation, error) {
	return s.db.GetUserConversations(userID)
}

func (s *Service) Messages(conversationID int64) ([]models.Message, error) {
	return s.db.GetMessages(conversationID)
}

// AddExchange persists the user prompt and the AI reply atomically.
func (s *Service) AddExchange(conversationID int64, prompt, reply string) (*models.Message, *models.Message, error) {
	return s.db.AddExchange(conversationID, prompt, reply)
}
