package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"void-backend/internal/models"
	"void-backend/internal/store"
)

const accountColumns = `id, username, identity_kind, provider, credential_hash, security_question, security_answer_hash, created_at`

// CreateAccount inserts a new account, relying on the UNIQUE index on
// username to reject duplicates atomically.
func (s *Storage) CreateAccount(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, identity_kind, provider, credential_hash, security_question, security_answer_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + accountColumns

	row := s.db.QueryRowContext(ctx, query,
		a.Username,
		string(a.Kind),
		a.Provider,
		a.CredentialHash,
		a.SecurityQuestion,
		a.AnswerHash,
		s.stamp(),
	)
	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateUsername
		}
		s.log.Error("CreateAccount: insert failed", "username", a.Username, "error", err)
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return created, nil
}

// GetAccountByUsername retrieves an account by its exact (case-sensitive) username
func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// GetAccountByID retrieves an account by id
func (s *Storage) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// UpdateCredentialHash replaces the stored credential hash
func (s *Storage) UpdateCredentialHash(ctx context.Context, accountID int64, credentialHash string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET credential_hash = ? WHERE id = ?`, credentialHash, accountID)
	if err != nil {
		return fmt.Errorf("failed to update credential hash: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var kind string
	var createdAt int64
	err := row.Scan(
		&a.ID,
		&a.Username,
		&kind,
		&a.Provider,
		&a.CredentialHash,
		&a.SecurityQuestion,
		&a.AnswerHash,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	a.Kind = models.IdentityKind(kind)
	a.CreatedAt = fromStamp(createdAt)
	return &a, nil
}
