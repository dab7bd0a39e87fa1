package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mintkit/hub/internal/model"
)

type StudioAccessStore struct {
	db *sql.DB
}

func NewStudioAccessStore(db *sql.DB) *StudioAccessStore {
	return &StudioAccessStore{db: db}
}

func scanStudioAccess(scanner interface{ Scan(...any) error }) (*model.StudioAccess, error) {
	var sa model.StudioAccess
	var last sql.NullTime
	err := scanner.Scan(&sa.ID, &sa.ProfileID, &sa.PrincipalID, &last, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		sa.LastAccessedAt = &last.Time
	}
	return &sa, nil
}

const studioAccessCols = `id, profile_id, principal_id, last_accessed_at, created_at, updated_at`

func (s *StudioAccessStore) GetByProfileID(profileID int64) (*model.StudioAccess, error) {
	row := s.db.QueryRow(`SELECT `+studioAccessCols+` FROM studio_access WHERE profile_id = ?`, profileID)
	sa, err := scanStudioAccess(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get studio access: %w", err)
	}
	return sa, nil
}

// SetPrincipalID stores the profile's Studio principal, creating the row if
// needed.
func (s *StudioAccessStore) SetPrincipalID(profileID int64, principalID string) (*model.StudioAccess, error) {
	existing, err := s.GetByProfileID(profileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, err = s.db.Exec(
			`UPDATE studio_access SET principal_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			principalID, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update principal id: %w", err)
		}
		return s.GetByProfileID(profileID)
	}

	_, err = s.db.Exec(
		`INSERT INTO studio_access (profile_id, principal_id) VALUES (?, ?)`,
		profileID, principalID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert studio access: %w", err)
	}
	return s.GetByProfileID(profileID)
}

// TouchLastAccessed records that the profile followed the Studio link,
// creating the row if needed. Best-effort bookkeeping.
func (s *StudioAccessStore) TouchLastAccessed(profileID int64, at time.Time) error {
	existing, err := s.GetByProfileID(profileID)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = s.db.Exec(
			`UPDATE studio_access SET last_accessed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			at, existing.ID,
		)
		if err != nil {
			return fmt.Errorf("touch studio access: %w", err)
		}
		return nil
	}

	_, err = s.db.Exec(
		`INSERT INTO studio_access (profile_id, last_accessed_at) VALUES (?, ?)`,
		profileID, at,
	)
	if err != nil {
		return fmt.Errorf("insert studio access: %w", err)
	}
	return nil
}
