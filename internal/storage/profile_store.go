package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"linkedin-leads/internal/database"
	"linkedin-leads/internal/models"
)

// ErrBusy marks a write that lost a lock race and may succeed on retry
var ErrBusy = errors.New("profile store busy")

// ProfileStore is the keyed profile persistence used by the scraper and the
// query path. Errors are classified into ErrPersistence (record rejected),
// ErrBusy (retry) and ErrStoreUnavailable (fatal).
type ProfileStore struct {
	DB   *database.DB
	repo *database.ProfileRepository
}

// NewProfileStore opens the database at cfg.Path
func NewProfileStore(cfg models.DatabaseConfig) (*ProfileStore, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return NewProfileStoreWithDB(db), nil
}

// NewProfileStoreWithDB builds a store over an open database
func NewProfileStoreWithDB(db *database.DB) *ProfileStore {
	return &ProfileStore{
		DB:   db,
		repo: database.NewProfileRepository(db),
	}
}

// Close closes the database connection
func (s *ProfileStore) Close() error {
	return s.DB.Close()
}

// Upsert commits profile keyed on its profile URL and returns the stored row
func (s *ProfileStore) Upsert(ctx context.Context, profile models.ProfileRecord) (models.ProfileRecord, error) {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.ProfileURL = strings.TrimSpace(profile.ProfileURL)
	switch {
	case profile.FullName == "":
		return models.ProfileRecord{}, fmt.Errorf("%w: profile %q has no name", models.ErrPersistence, profile.ProfileURL)
	case profile.ProfileURL == "":
		return models.ProfileRecord{}, fmt.Errorf("%w: profile %q has no profile url", models.ErrPersistence, profile.FullName)
	}

	stored, err := s.repo.Upsert(ctx, profile)
	if err != nil {
		return models.ProfileRecord{}, classify(err)
	}
	return stored, nil
}

// Search returns every stored profile matching query
func (s *ProfileStore) Search(ctx context.Context, query string) ([]models.ProfileRecord, error) {
	profiles, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	return profiles, nil
}

// GetByURL returns one stored profile or ErrNotFound
func (s *ProfileStore) GetByURL(ctx context.Context, profileURL string) (models.ProfileRecord, error) {
	profile, err := s.repo.GetByURL(ctx, strings.TrimSpace(profileURL))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ProfileRecord{}, err
		}
		return models.ProfileRecord{}, classify(err)
	}
	return profile, nil
}

// Count returns the number of stored profiles
func (s *ProfileStore) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// Ping reports whether the store is reachable
func (s *ProfileStore) Ping(ctx context.Context) error {
	if err := s.DB.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// IsTransient reports whether err came from lock contention
func IsTransient(err error) bool {
	return errors.Is(err, ErrBusy)
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint, sqlite3.ErrMismatch, sqlite3.ErrTooBig, sqlite3.ErrRange:
			return fmt.Errorf("%w: %w", models.ErrPersistence, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", ErrBusy, err)
		}
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	// closed pools, bad connections and anything unrecognised
	return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
}
