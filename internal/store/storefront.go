package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mintkit/hub/internal/model"
	"github.com/mintkit/hub/internal/slug"
)

type StorefrontStore struct {
	db *sql.DB
}

func NewStorefrontStore(db *sql.DB) *StorefrontStore {
	return &StorefrontStore{db: db}
}

func scanStorefront(scanner interface{ Scan(...any) error }) (*model.Storefront, error) {
	var sf model.Storefront
	var active int
	err := scanner.Scan(
		&sf.ID, &sf.ProfileID, &sf.Slug, &sf.Headline, &sf.Description,
		&sf.ContactDetails, &active, &sf.CreatedAt, &sf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sf.IsActive = active != 0
	return &sf, nil
}

const storefrontCols = `id, profile_id, slug, headline, description, contact_details, is_active, created_at, updated_at`

// Create inserts a storefront with a slug derived from slugBase, appending a
// numeric suffix until it is unique. The insert itself is the uniqueness
// check: retrying on the slug constraint keeps two concurrent creates with
// the same name from failing.
func (s *StorefrontStore) Create(profileID int64, slugBase, headline, contactDetails string) (*model.Storefront, error) {
	base := slug.Make(slugBase)
	candidate := base
	for n := 2; ; n++ {
		result, err := s.db.Exec(
			`INSERT INTO storefronts (profile_id, slug, headline, contact_details) VALUES (?, ?, ?, ?)`,
			profileID, candidate, headline, contactDetails,
		)
		if err != nil {
			if isSlugConflict(err) && n <= slugRetryLimit {
				candidate = slug.WithSuffix(base, n)
				continue
			}
			return nil, fmt.Errorf("insert storefront: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return s.GetByID(id)
	}
}

const slugRetryLimit = 100

// isSlugConflict matches the slug unique constraint specifically, so a
// duplicate profile_id still surfaces as an error instead of looping.
func isSlugConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "storefronts.slug")
}

// GetOrCreate returns the profile's storefront, creating an unlisted one on
// first access. The owner dashboard relies on this so the editor always has
// a row to work with.
func (s *StorefrontStore) GetOrCreate(profileID int64, slugBase, headline, contactDetails string) (*model.Storefront, error) {
	sf, err := s.GetByProfileID(profileID)
	if err != nil {
		return nil, err
	}
	if sf != nil {
		return sf, nil
	}
	return s.Create(profileID, slugBase, headline, contactDetails)
}

func (s *StorefrontStore) GetByID(id int64) (*model.Storefront, error) {
	row := s.db.QueryRow(`SELECT `+storefrontCols+` FROM storefronts WHERE id = ?`, id)
	sf, err := scanStorefront(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get storefront: %w", err)
	}
	return sf, nil
}

func (s *StorefrontStore) GetByProfileID(profileID int64) (*model.Storefront, error) {
	row := s.db.QueryRow(`SELECT `+storefrontCols+` FROM storefronts WHERE profile_id = ?`, profileID)
	sf, err := scanStorefront(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get storefront by profile: %w", err)
	}
	return sf, nil
}

func (s *StorefrontStore) GetBySlug(slug string) (*model.Storefront, error) {
	row := s.db.QueryRow(`SELECT `+storefrontCols+` FROM storefronts WHERE slug = ?`, slug)
	sf, err := scanStorefront(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get storefront by slug: %w", err)
	}
	return sf, nil
}

func (s *StorefrontStore) Update(id int64, headline, description, contactDetails string) (*model.Storefront, error) {
	_, err := s.db.Exec(
		`UPDATE storefronts SET headline = ?, description = ?, contact_details = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		headline, description, contactDetails, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update storefront: %w", err)
	}
	return s.GetByID(id)
}

func (s *StorefrontStore) SetActive(id int64, active bool) error {
	var v int
	if active {
		v = 1
	}
	_, err := s.db.Exec(
		`UPDATE storefronts SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		v, id,
	)
	if err != nil {
		return fmt.Errorf("set storefront active: %w", err)
	}
	return nil
}

// ListActive returns listed storefronts for the explore page. Sort accepts
// "name" or "newest" (the default).
func (s *StorefrontStore) ListActive(sort string, limit, offset int) ([]*model.Storefront, error) {
	order := `created_at DESC, id DESC`
	if sort == "name" {
		order = `headline COLLATE NOCASE ASC, id ASC`
	}
	rows, err := s.db.Query(
		`SELECT `+storefrontCols+` FROM storefronts WHERE is_active = 1 ORDER BY `+order+` LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list active storefronts: %w", err)
	}
	defer rows.Close()

	var out []*model.Storefront
	for rows.Next() {
		sf, err := scanStorefront(rows)
		if err != nil {
			return nil, fmt.Errorf("scan storefront: %w", err)
		}
		out = append(out, sf)
	}
	return out, rows.Err()
}

func (s *StorefrontStore) CountActive() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM storefronts WHERE is_active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active storefronts: %w", err)
	}
	return n, nil
}

func (s *StorefrontStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM storefronts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete storefront: %w", err)
	}
	return nil
}
