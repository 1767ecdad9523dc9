package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Plan defaults. A fresh signup gets the trial allotment; enable_premium
// switches the account to the paid allotment.
const (
	TrialMaxGenerations   = 2
	TrialMaxCharacters    = 600
	PremiumMaxGenerations = 200
)

// Profile is one account's entitlement state. The profiles table is
// authoritative; in-memory copies are advisory and must be re-read before
// any quota decision.
type Profile struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Active         bool      `json:"active" db:"active"`
	UsageCount     int       `json:"usage_count" db:"usage_count"`
	MaxGenerations int       `json:"max_generations" db:"max_generations"`
	MaxCharacters  int       `json:"max_characters" db:"max_characters"`
	TrialUsed      bool      `json:"trial_used" db:"trial_used"`
	Role           Role      `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
