package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered player with a stored balance
type Account struct {
	ID           uuid.UUID `db:"id"`
	Handle       string    `db:"handle"`
	PasswordHash string    `db:"password_hash"`
	Balance      int64     `db:"balance"` // minor units (cents)
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
