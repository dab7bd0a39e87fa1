package store

import (
	"database/sql"
	"fmt"

	"github.com/mintkit/hub/internal/model"
)

type PlanStore struct {
	db *sql.DB
}

func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

func scanPlan(scanner interface{ Scan(...any) error }) (*model.Plan, error) {
	var p model.Plan
	var active int
	err := scanner.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.StripePriceID,
		&active, &p.SortOrder, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.IsActive = active != 0
	return &p, nil
}

const planCols = `id, code, name, description, stripe_price_id, is_active, sort_order, created_at`

func (s *PlanStore) GetByID(id int64) (*model.Plan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// GetByCode returns the plan with the given code, active or not. Checkout
// must additionally check IsActive.
func (s *PlanStore) GetByCode(code string) (*model.Plan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM plans WHERE code = ?`, code)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by code: %w", err)
	}
	return p, nil
}

// ListActive returns active plans in display order.
func (s *PlanStore) ListActive() ([]*model.Plan, error) {
	rows, err := s.db.Query(`SELECT ` + planCols + ` FROM plans WHERE is_active = 1 ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PlanStore) UpdateStripePriceID(id int64, priceID string) error {
	_, err := s.db.Exec(`UPDATE plans SET stripe_price_id = ? WHERE id = ?`, priceID, id)
	if err != nil {
		return fmt.Errorf("update plan price id: %w", err)
	}
	return nil
}

func (s *PlanStore) SetActive(id int64, active bool) error {
	var v int
	if active {
		v = 1
	}
	_, err := s.db.Exec(`UPDATE plans SET is_active = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("set plan active: %w", err)
	}
	return nil
}
