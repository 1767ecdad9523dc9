// Package profile persists account entitlement state. All mutations go
// straight to Postgres; reads always hit the database so that admin changes
// made out of band are visible to the very next quota decision.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dardja-ai/voice-backend/internal/models"
)

// ErrNotFound is returned when no profile row exists for the identifier.
var ErrNotFound = errors.New("profile not found")

const profileColumns = "id, email, active, usage_count, max_generations, max_characters, trial_used, role, created_at, updated_at"

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Active, &p.UsageCount, &p.MaxGenerations,
		&p.MaxCharacters, &p.TrialUsed, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		// NULLs in NOT NULL-by-contract columns land here too: a row
		// that cannot be scanned into the record is a data error, not
		// something to default around.
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	return scanProfile(row)
}

func (s *Service) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Create seeds a trial profile for a new auth identity. Normally the
// signup trigger does this; the admin list falls back to it for auth users
// that predate the trigger.
func (s *Service) Create(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO profiles (id, email, active, usage_count, max_generations, max_characters, trial_used, role)
		 VALUES ($1, $2, true, 0, $3, $4, false, 'user')
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		 RETURNING `+profileColumns,
		id, email, models.TrialMaxGenerations, models.TrialMaxCharacters)
	return scanProfile(row)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.exec(ctx, "UPDATE profiles SET active = $2, updated_at = now() WHERE id = $1", id, active)
}

// SetActiveByEmail backs the legacy toggle endpoint, which addresses
// accounts by email rather than id.
func (s *Service) SetActiveByEmail(ctx context.Context, email string, active bool) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE profiles SET active = $2, updated_at = now() WHERE email = $1", email, active)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUsage gives the trial back: both the counter and the exhausted flag
// are cleared, so a reset account can generate again without a separate
// premium upgrade.
func (s *Service) ResetUsage(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "UPDATE profiles SET usage_count = 0, trial_used = false, updated_at = now() WHERE id = $1", id)
}

// EnablePremium moves the account to the paid tier. The result does not
// depend on prior state.
func (s *Service) EnablePremium(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx,
		`UPDATE profiles
		 SET active = true, trial_used = false, usage_count = 0,
		     max_generations = $2, updated_at = now()
		 WHERE id = $1`,
		id, models.PremiumMaxGenerations)
}

// MarkTrialUsed permanently closes a partially-consumed trial. Idempotent.
func (s *Service) MarkTrialUsed(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "UPDATE profiles SET trial_used = true, updated_at = now() WHERE id = $1", id)
}

// IncrementUsage consumes one generation in a single statement so that
// concurrent requests cannot double-spend a stale in-memory count. When the
// new count reaches the ceiling the exhausted flag is set in the same write.
func (s *Service) IncrementUsage(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE profiles
		 SET usage_count = usage_count + 1,
		     trial_used = trial_used OR usage_count + 1 >= max_generations,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+profileColumns, id)
	return scanProfile(row)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "DELETE FROM profiles WHERE id = $1", id)
}

func (s *Service) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("exec profiles: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
