package user

import (
	"time"

	"github.com/google/uuid"
)

// Status represents user account status (matches user_status enum)
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusDeleted   Status = "DELETED"
)

// User represents an identity record. Accounts are owned by the external
// identity subsystem; the wallet engine only reads them.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	Name         string    `db:"name"`
	Status       Status    `db:"status"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsActive returns true if the account can send and receive money
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
