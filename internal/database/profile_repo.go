package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"linkedin-leads/internal/models"
)

const profileColumns = `id, full_name, headline, job_title, company, location, profile_url, about, created_at, updated_at`

const upsertProfileQuery = `
	INSERT INTO profiles (` + profileColumns + `)
	VALUES (:id, :full_name, :headline, :job_title, :company, :location, :profile_url, :about, :created_at, :updated_at)
	ON CONFLICT(profile_url) DO UPDATE SET
		full_name = excluded.full_name,
		headline = excluded.headline,
		job_title = excluded.job_title,
		company = excluded.company,
		location = excluded.location,
		about = excluded.about,
		updated_at = excluded.updated_at
`

// ProfileRepository handles profile operations
type ProfileRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{
		db:  db.GetConn(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Upsert inserts the profile or replaces every field of the row with the same
// profile URL. created_at and id survive the replace; updated_at moves to now.
func (pr *ProfileRepository) Upsert(ctx context.Context, profile models.ProfileRecord) (models.ProfileRecord, error) {
	now := pr.now()
	profile.ID = uuid.NewString()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	tx, err := pr.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ProfileRecord{}, err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, upsertProfileQuery, profile); err != nil {
		return models.ProfileRecord{}, fmt.Errorf("failed to upsert profile %s: %w", profile.ProfileURL, err)
	}

	var stored models.ProfileRecord
	if err := tx.GetContext(ctx, &stored, `SELECT `+profileColumns+` FROM profiles WHERE profile_url = ?`, profile.ProfileURL); err != nil {
		return models.ProfileRecord{}, fmt.Errorf("failed to read back profile %s: %w", profile.ProfileURL, err)
	}

	if err := tx.Commit(); err != nil {
		return models.ProfileRecord{}, err
	}
	return stored, nil
}

// Search returns profiles whose name, job title, company or location contains
// query, ignoring case, in insertion order
func (pr *ProfileRepository) Search(ctx context.Context, query string) ([]models.ProfileRecord, error) {
	profiles := []models.ProfileRecord{}
	err := pr.db.SelectContext(ctx, &profiles, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE instr(casefold(full_name), ?1) > 0
			OR instr(casefold(job_title), ?1) > 0
			OR instr(casefold(company), ?1) > 0
			OR instr(casefold(location), ?1) > 0
		ORDER BY rowid
	`, Casefold(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}

// GetByURL returns the profile stored under profileURL
func (pr *ProfileRepository) GetByURL(ctx context.Context, profileURL string) (models.ProfileRecord, error) {
	var profile models.ProfileRecord
	err := pr.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE profile_url = ?`, profileURL)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProfileRecord{}, fmt.Errorf("%w: %s", models.ErrNotFound, profileURL)
	}
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Count returns the number of stored profiles
func (pr *ProfileRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := pr.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles`); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}
