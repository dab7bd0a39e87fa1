package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mintkit/hub/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	var periodEnd sql.NullTime
	err := scanner.Scan(
		&sub.ID, &sub.ProfileID, &sub.PlanID, &sub.Status,
		&sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&periodEnd, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return &sub, nil
}

const subscriptionCols = `id, profile_id, plan_id, status, stripe_customer_id, stripe_subscription_id, current_period_end, created_at, updated_at`

// CreateTrial inserts a local trial row with no Stripe identifiers.
func (s *SubscriptionStore) CreateTrial(profileID, planID int64, periodEnd time.Time) (*model.Subscription, error) {
	result, err := s.db.Exec(
		`INSERT INTO subscriptions (profile_id, plan_id, status, current_period_end) VALUES (?, ?, ?, ?)`,
		profileID, planID, model.StatusTrialing, periodEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trial subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// UpsertFromStripe creates or updates the row keyed by the Stripe
// subscription ID. Checkout success and the webhook share this so their
// sync logic cannot drift.
func (s *SubscriptionStore) UpsertFromStripe(profileID, planID int64, stripeSubID, stripeCustomerID, status string, periodEnd *time.Time) (*model.Subscription, error) {
	existing, err := s.GetByStripeID(stripeSubID)
	if err != nil {
		return nil, err
	}

	var pe sql.NullTime
	if periodEnd != nil {
		pe = sql.NullTime{Time: *periodEnd, Valid: true}
	}

	if existing != nil {
		_, err = s.db.Exec(
			`UPDATE subscriptions SET profile_id = ?, plan_id = ?, status = ?, stripe_customer_id = ?, current_period_end = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			profileID, planID, status, stripeCustomerID, pe, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update subscription from stripe: %w", err)
		}
		return s.GetByID(existing.ID)
	}

	result, err := s.db.Exec(
		`INSERT INTO subscriptions (profile_id, plan_id, status, stripe_customer_id, stripe_subscription_id, current_period_end) VALUES (?, ?, ?, ?, ?, ?)`,
		profileID, planID, status, stripeCustomerID, stripeSubID, pe,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription from stripe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubscriptionStore) GetByID(id int64) (*model.Subscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// GetLatestByProfileID returns the most recent subscription row for the
// profile, trial or paid. Access evaluation reads this.
func (s *SubscriptionStore) GetLatestByProfileID(profileID int64) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE profile_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		profileID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by profile: %w", err)
	}
	return sub, nil
}

// GetActivePaidByProfileID returns the newest row that tracks a real Stripe
// subscription and is not canceled, or nil. Used to refuse double checkout.
func (s *SubscriptionStore) GetActivePaidByProfileID(profileID int64) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions
		 WHERE profile_id = ? AND stripe_subscription_id != '' AND status != ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		profileID, model.StatusCanceled,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active paid subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionStore) GetByStripeID(stripeSubID string) (*model.Subscription, error) {
	if stripeSubID == "" {
		return nil, nil
	}
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE stripe_subscription_id = ?`,
		stripeSubID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by stripe id: %w", err)
	}
	return sub, nil
}

// HasAnyByProfileID reports whether the profile ever had a subscription row.
// One row of any kind means the free trial was used.
func (s *SubscriptionStore) HasAnyByProfileID(profileID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE profile_id = ?`, profileID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count subscriptions: %w", err)
	}
	return n > 0, nil
}

func (s *SubscriptionStore) UpdateStatus(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) UpdatePeriodEnd(id int64, periodEnd time.Time) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET current_period_end = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		periodEnd, id,
	)
	if err != nil {
		return fmt.Errorf("update subscription period end: %w", err)
	}
	return nil
}

// CancelLocalTrials marks the profile's Stripe-less trialing rows canceled.
// Called after a paid subscription lands so the dashboard stops showing the
// trial.
func (s *SubscriptionStore) CancelLocalTrials(profileID int64) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE profile_id = ? AND stripe_subscription_id = '' AND status = ?`,
		model.StatusCanceled, profileID, model.StatusTrialing,
	)
	if err != nil {
		return fmt.Errorf("cancel local trials: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
