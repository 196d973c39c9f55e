package postgres

import (
	"context"
	"errors"
	"fmt"

	"void-backend/internal/models"
	"void-backend/internal/store"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, username, identity_kind, provider, credential_hash, security_question, security_answer_hash, created_at`

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (
    username, identity_kind, provider, credential_hash, security_question, security_answer_hash
) VALUES (
    $1, $2, $3, $4, $5, $6
)
RETURNING ` + accountColumns + `;
`

// CreateAccount inserts a new account. The unique constraint on username is
// the only duplicate check; a conflicting insert writes nothing and returns
// store.ErrDuplicateUsername.
func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) (*models.Account, error) {
	row := s.db.QueryRow(ctx, createAccount,
		a.Username,
		string(a.Kind),
		a.Provider,
		a.CredentialHash,
		a.SecurityQuestion,
		a.AnswerHash,
	)
	created, err := scanAccount(row)
	if err != nil {
		if isDuplicateUsername(err) {
			s.log.Info("CreateAccount: duplicate username", "username", a.Username)
			return nil, store.ErrDuplicateUsername
		}
		s.log.Error("CreateAccount: insert failed", "username", a.Username, "error", err)
		return nil, fmt.Errorf("database error creating account: %w", err)
	}

	s.log.Debug("CreateAccount: inserted", "account_id", created.ID)
	return created, nil
}

const getAccountByUsername = `-- name: GetAccountByUsername :one
SELECT ` + accountColumns + `
FROM accounts
WHERE username = $1;
`

// GetAccountByUsername returns store.ErrNotFound if the username does not exist.
func (s *PostgresStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx, getAccountByUsername, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching account by username: %w", err)
	}
	return a, nil
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1;
`

func (s *PostgresStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx, getAccountByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching account by id: %w", err)
	}
	return a, nil
}

const updateCredentialHash = `-- name: UpdateCredentialHash :exec
UPDATE accounts
SET credential_hash = $1
WHERE id = $2;
`

func (s *PostgresStore) UpdateCredentialHash(ctx context.Context, accountID int64, credentialHash string) error {
	tag, err := s.db.Exec(ctx, updateCredentialHash, credentialHash, accountID)
	if err != nil {
		return fmt.Errorf("error executing update credential hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var kind string
	err := row.Scan(
		&a.ID,
		&a.Username,
		&kind,
		&a.Provider,
		&a.CredentialHash,
		&a.SecurityQuestion,
		&a.AnswerHash,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Kind = models.IdentityKind(kind)
	return &a, nil
}
