package store

import (
	"context"
	"errors"

	"void-backend/internal/models"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when an insert hits the unique
	// constraint on accounts.username. No row is written in that case.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Store defines the interface for database operations.
// Every method is a single statement; implementations rely on the database
// for atomicity and never emulate constraints with a read-then-write.
type Store interface {
	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateCredentialHash(ctx context.Context, accountID int64, credentialHash string) error

	// Message operations
	AppendMessage(ctx context.Context, accountID int64, role models.Role, content string) (*models.Message, error)
	ListMessagesByAccount(ctx context.Context, accountID int64) ([]models.Message, error)

	Ping(ctx context.Context) error
	Close() error
}
