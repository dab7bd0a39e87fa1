package store

import (
	"database/sql"
	"fmt"

	"github.com/mintkit/hub/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	err := scanner.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.ContactEmail, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const profileCols = `id, user_id, business_name, contact_email, created_at, updated_at`

func (s *ProfileStore) Create(userID int64, businessName, contactEmail string) (*model.Profile, error) {
	result, err := s.db.Exec(
		`INSERT INTO profiles (user_id, business_name, contact_email) VALUES (?, ?, ?)`,
		userID, businessName, contactEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetOrCreate returns the profile for the user, creating one with the given
// defaults if none exists yet. Registration creates profiles eagerly, but
// every entry point tolerates older accounts without one.
func (s *ProfileStore) GetOrCreate(userID int64, businessName, contactEmail string) (*model.Profile, error) {
	p, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return s.Create(userID, businessName, contactEmail)
}

func (s *ProfileStore) GetByID(id int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) GetByUserID(userID int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by user: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) Update(id int64, businessName, contactEmail string) (*model.Profile, error) {
	_, err := s.db.Exec(
		`UPDATE profiles SET business_name = ?, contact_email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		businessName, contactEmail, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
