package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/db"
)

// Store manages persistence of chats and their messages.
type Store struct {
	db *db.DB
}

// NewStore creates a new chat store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateChat creates a new chat. An empty title defaults to the placeholder.
func (s *Store) CreateChat(ctx context.Context, userID, title string) (*Chat, error) {
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now().UTC()
	c := Chat{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return &c, nil
}

// GetChat retrieves a chat by id. Returns nil if it doesn't exist.
func (s *Store) GetChat(ctx context.Context, id string) (*Chat, error) {
	var c Chat
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chats WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting chat: %w", err)
	}
	return &c, nil
}

// ListChats returns a user's chats, most recently active first.
func (s *Store) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chats WHERE user_id = ? ORDER BY updated_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and its messages.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

// RenameChat sets a new title, but only while the chat still carries the
// placeholder title. Used for the first-message auto-title.
func (s *Store) RenameChat(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET title = ? WHERE id = ? AND title = ?`,
		title, id, DefaultTitle,
	)
	if err != nil {
		return fmt.Errorf("renaming chat: %w", err)
	}
	return nil
}

// TouchChat bumps a chat's updated_at timestamp.
func (s *Store) TouchChat(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("touching chat: %w", err)
	}
	return nil
}

// AddMessage appends a message to a chat.
func (s *Store) AddMessage(ctx context.Context, chatID string, role Role, content string, citations []Citation) (*Message, error) {
	m := Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Citations: citations,
		CreatedAt: time.Now().UTC(),
	}

	var citationsJSON sql.NullString
	if len(citations) > 0 {
		b, err := json.Marshal(citations)
		if err != nil {
			return nil, fmt.Errorf("marshalling citations: %w", err)
		}
		citationsJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, role, content, citations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.Role, m.Content, citationsJSON, m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}
	return &m, nil
}

// ListMessages returns all messages for a chat in ascending creation order.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, role, content, citations, created_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at ASC, id ASC`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// RecentMessages returns the last limit messages for a chat, still in
// ascending creation order.
func (s *Store) RecentMessages(ctx context.Context, chatID string, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, role, content, citations, created_at FROM (
		     SELECT id, chat_id, role, content, citations, created_at
		     FROM messages WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
		 ) ORDER BY created_at ASC, id ASC`, chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		var m Message
		var citations sql.NullString
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &citations, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if citations.Valid && citations.String != "" {
			if err := json.Unmarshal([]byte(citations.String), &m.Citations); err != nil {
				return nil, fmt.Errorf("parsing citations: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
