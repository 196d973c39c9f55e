package postgres

import (
	"context"
	"fmt"

	"void-backend/internal/models"
)

const appendMessage = `-- name: AppendMessage :one
INSERT INTO messages (
    account_id, role, content
) VALUES (
    $1, $2, $3
)
RETURNING id, account_id, role, content, created_at;
`

// AppendMessage inserts one message; created_at is assigned by the database.
func (s *PostgresStore) AppendMessage(ctx context.Context, accountID int64, role models.Role, content string) (*models.Message, error) {
	var m models.Message
	var r string
	err := s.db.QueryRow(ctx, appendMessage, accountID, string(role), content).Scan(
		&m.ID,
		&m.AccountID,
		&r,
		&m.Content,
		&m.CreatedAt,
	)
	if err != nil {
		s.log.Error("AppendMessage: insert failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("database error appending message: %w", err)
	}
	m.Role = models.Role(r)
	return &m, nil
}

const listMessagesByAccount = `-- name: ListMessagesByAccount :many
SELECT id, account_id, role, content, created_at
FROM messages
WHERE account_id = $1
ORDER BY created_at ASC, id ASC;
`

func (s *PostgresStore) ListMessagesByAccount(ctx context.Context, accountID int64) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessagesByAccount, accountID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	items := []models.Message{}
	for rows.Next() {
		var m models.Message
		var r string
		if err := rows.Scan(&m.ID, &m.AccountID, &r, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		m.Role = models.Role(r)
		items = append(items, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return items, nil
}
