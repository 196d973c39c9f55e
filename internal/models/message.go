package models

import (
	"fmt"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a role received from a client.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q (expected %q or %q)", s, RoleUser, RoleAssistant)
	}
}

// Message represents a single immutable entry in an account's transcript.
// Messages are only ever appended; the id doubles as the insertion sequence
// used to break createdAt ties.
type Message struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Role      Role      `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// Turn is the role/content pair handed to a completion provider.
type Turn struct {
	Role    Role
	Content string
}
