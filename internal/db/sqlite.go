package db

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/mpetrov/chatbot-api/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    is_user BOOLEAN NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);`

var (
	ErrEmailInUse   = errors.New("email already in use")
	ErrUserNotFound = errors.New("user not found")
)

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// CreateUser persists a new user. The store assigns the ID.
func (db *Database) CreateUser(user *models.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	err := db.db.QueryRow(query, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailInUse
	}
	return err
}

func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	query := `
        SELECT id, name, email, password_hash, created_at
        FROM users
        WHERE email = ?`

	var user models.User
	err := db.db.QueryRow(query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Database) CreateConversation(userID int64, name string) (*models.Conversation, error) {
	query := `
        INSERT INTO conversations (name, user_id, created_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	conv := &models.Conversation{Name: name, UserID: userID}
	err := db.db.QueryRow(query, name, userID).Scan(&conv.ID, &conv.CreatedAt)
	return conv, err
}

func (db *Database) GetUserConversations(userID int64) ([]models.Conversation, error) {
	query := `
        SELECT id, name, user_id, created_at
        FROM conversations
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC`

	rows, err := db.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var conv models.Conversation
		err := rows.Scan(&conv.ID, &conv.Name, &conv.UserID, &conv.CreatedAt)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

func (db *Database) GetMessages(conversationID int64) ([]models.Message, error) {
	query := `
        SELECT id, conversation_id, content, is_user, created_at
        FROM messages
        WHERE conversation_id = ?
        ORDER BY created_at ASC, id ASC`

	rows, err := db.db.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Content, &msg.IsUser, &msg.CreatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AddExchange persists a user prompt and the AI reply in a single
// transaction, so a crash between the two writes cannot leave a
// conversation with a prompt and no reply.
func (db *Database) AddExchange(conversationID int64, prompt, reply string) (*models.Message, *models.Message, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO messages (conversation_id, content, is_user, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	userMsg := &models.Message{ConversationID: conversationID, Content: prompt, IsUser: true}
	if err := tx.QueryRow(query, conversationID, prompt, true).Scan(&userMsg.ID, &userMsg.CreatedAt); err != nil {
		return nil, nil, err
	}

	aiMsg := &models.Message{ConversationID: conversationID, Content: reply, IsUser: false}
	if err := tx.QueryRow(query, conversationID, reply, false).Scan(&aiMsg.ID, &aiMsg.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return userMsg, aiMsg, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
