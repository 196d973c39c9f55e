package sqlite

import (
	"context"
	"fmt"

	"void-backend/internal/models"
)

// AppendMessage inserts one message stamped with the store clock.
func (s *Storage) AppendMessage(ctx context.Context, accountID int64, role models.Role, content string) (*models.Message, error) {
	query := `
		INSERT INTO messages (account_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at
	`

	m := &models.Message{AccountID: accountID, Role: role, Content: content}
	var createdAt int64
	err := s.db.QueryRowContext(ctx, query, accountID, string(role), content, s.stamp()).Scan(&m.ID, &createdAt)
	if err != nil {
		s.log.Error("AppendMessage: insert failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	m.CreatedAt = fromStamp(createdAt)
	return m, nil
}

// ListMessagesByAccount returns the account's transcript oldest first.
func (s *Storage) ListMessagesByAccount(ctx context.Context, accountID int64) ([]models.Message, error) {
	query := `
		SELECT id, account_id, role, content, created_at
		FROM messages
		WHERE account_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	items := []models.Message{}
	for rows.Next() {
		var m models.Message
		var role string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.AccountID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = models.Role(role)
		m.CreatedAt = fromStamp(createdAt)
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return items, nil
}
