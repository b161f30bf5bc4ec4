// Package auth signs hotel owners in and out and guards their passwords.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Owner represents a hotel owner account.
type Owner struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
