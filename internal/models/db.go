package models

import (
	"time"
)

// IdentityKind distinguishes how an account proves who it is.
type IdentityKind string

const (
	// IdentityPassword accounts log in with a locally chosen secret and can
	// recover it through their security question.
	IdentityPassword IdentityKind = "password"
	// IdentityFederated accounts were provisioned by an external provider and
	// have no local secret.
	IdentityFederated IdentityKind = "federated"
)

// FederatedRecoveryQuestion is the placeholder question stored for accounts
// that were provisioned through a federated provider.
const FederatedRecoveryQuestion = "OAuth"

// Account represents a row in the accounts table.
type Account struct {
	ID               int64        `db:"id"`
	Username         string       `db:"username"`
	Kind             IdentityKind `db:"identity_kind"`
	Provider         *string      `db:"provider"`        // Set for federated accounts only
	CredentialHash   *string      `db:"credential_hash"` // NULL for federated accounts
	SecurityQuestion *string      `db:"security_question"`
	AnswerHash       *string      `db:"security_answer_hash"`
	CreatedAt        time.Time    `db:"created_at"`
}

// IsFederated reports whether the account has no local secret.
func (a *Account) IsFederated() bool {
	return a.Kind == IdentityFederated
}

// NewPasswordAccount builds an unsaved password account from already hashed values.
func NewPasswordAccount(username, credentialHash, question, answerHash string) *Account {
	return &Account{
		Username:         username,
		Kind:             IdentityPassword,
		CredentialHash:   &credentialHash,
		SecurityQuestion: &question,
		AnswerHash:       &answerHash,
	}
}

// NewFederatedAccount builds an unsaved account for a provider-verified email.
func NewFederatedAccount(email, provider string) *Account {
	question := FederatedRecoveryQuestion
	return &Account{
		Username:         email,
		Kind:             IdentityFederated,
		Provider:         &provider,
		SecurityQuestion: &question,
	}
}
