package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant owns API keys and the dialog sessions opened with them.
type Tenant struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

