// Package db archives chat transcripts in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"glowdesk/internal/models"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		model_id TEXT NOT NULL,
		last_user_prompt TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY(chat_id) REFERENCES chats(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_chats_updated_at ON chats(updated_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, id);`,
}

// Store is the transcript archive.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY under the server
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{db: conn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateChat inserts an empty chat row and returns its id.
func (s *Store) CreateChat(sessionID, modelID string, nowUnix int64) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO chats(session_id, created_at, updated_at, model_id) VALUES(?, ?, ?, ?)",
		sessionID, nowUnix, nowUnix, modelID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddMessage stores msg under chatID and bumps the chat's updated_at. User
// messages also refresh the chat's prompt preview.
func (s *Store) AddMessage(chatID int64, msg models.Message, nowUnix int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"INSERT INTO messages(chat_id, role, content, created_at) VALUES(?, ?, ?, ?)",
		chatID, string(msg.Role), msg.Content, nowUnix,
	); err != nil {
		return err
	}

	if msg.Role == models.RoleUser {
		_, err = tx.Exec(
			"UPDATE chats SET updated_at = ?, last_user_prompt = ? WHERE id = ?",
			nowUnix, PromptPreview(msg.Content), chatID,
		)
	} else {
		_, err = tx.Exec("UPDATE chats SET updated_at = ? WHERE id = ?", nowUnix, chatID)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RecentChats returns the total chat count and one page of chats, most
// recently updated first.
func (s *Store) RecentChats(limit, offset int) (int, []models.ChatListItem, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&count); err != nil {
		return 0, nil, err
	}

	rows, err := s.db.Query(
		"SELECT id, updated_at, last_user_prompt, model_id FROM chats ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := make([]models.ChatListItem, 0, limit)
	for rows.Next() {
		var it models.ChatListItem
		if err := rows.Scan(&it.ID, &it.UpdatedAtUnix, &it.LastUserPrompt, &it.ModelID); err != nil {
			return 0, nil, err
		}
		items = append(items, it)
	}
	return count, items, rows.Err()
}

// ChatMessages returns a chat's messages in insertion order.
func (s *Store) ChatMessages(chatID int64) ([]models.Message, error) {
	rows, err := s.db.Query(
		"SELECT role, content FROM messages WHERE chat_id = ? ORDER BY id ASC",
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var role string
		var m models.Message
		if err := rows.Scan(&role, &m.Content); err != nil {
			return nil, err
		}
		m.Role = models.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// PromptPreview flattens whitespace and caps s at 500 runes.
func PromptPreview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	const maxRunes = 500
	r := []rune(s)
	if len(r) > maxRunes {
		return string(r[:maxRunes])
	}
	return s
}
